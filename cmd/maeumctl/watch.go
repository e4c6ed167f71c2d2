package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/maeumssi/maeumssi/internal/modules/guard"
	"github.com/maeumssi/maeumssi/internal/modules/notification/center"
	"github.com/maeumssi/maeumssi/internal/modules/notification/domain"
	"github.com/maeumssi/maeumssi/internal/modules/notification/infrastructure/httpclient"
	"github.com/maeumssi/maeumssi/internal/modules/notify"
	"github.com/maeumssi/maeumssi/internal/modules/session"
	card "github.com/maeumssi/maeumssi/internal/modules/sharecard/domain"
	"github.com/spf13/cobra"
)

// memberAPI is what watch mode calls behind the action guard.
type memberAPI interface {
	SetPIN(ctx context.Context, pin, current string) error
	CreateShareCard(ctx context.Context, req card.Request) (*card.Card, error)
}

func (c *cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow notifications live and run commands interactively",
		Args:  cobra.NoArgs,
		RunE:  c.runWatch,
	}
}

func (c *cli) runWatch(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	client := c.client()
	st, err := fetchSession(ctx, client)
	if err != nil {
		return err
	}

	term := newTerminal(cmd.OutOrStdout())
	holder := session.NewHolder()

	bus := notify.NewBus(c.log)
	provider := notify.NewProvider(bus, notify.ProviderOptions{
		ToastDuration: c.cfg.Notification.ToastDuration,
		OnChange:      term.showNotify,
		Logger:        c.log,
	})
	defer provider.Close()

	hook := center.NewRefreshHook()
	notifications := center.New(client, center.Options{
		PollInterval: c.cfg.Notification.PollInterval,
		PageSize:     c.pageSize(),
		Hook:         hook,
		OnChange:     term.showCenter,
		Logger:       c.log,
	})
	defer notifications.Close()

	stopFollowing := holder.OnChange(func(next session.State) {
		if err := notifications.SetUser(ctx, next.UserID()); err != nil {
			c.log.Warn("load notifications", "error", err)
		}
	})
	defer stopFollowing()

	if st.Present() {
		holder.SignIn(*st.Session)
	} else {
		holder.SignOut()
		term.printf("로그인하지 않은 상태예요. 알림을 보려면 --token 을 지정해 주세요.\n")
	}

	var wg sync.WaitGroup
	if st.Present() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			listen(ctx, client, bus, hook, c.log)
		}()
	}
	defer wg.Wait()
	defer cancel()

	con := &console{
		term:     term,
		bus:      bus,
		provider: provider,
		center:   notifications,
		api:      restAPI{client: client},
		log:      c.log,
	}
	con.guard = guard.New(holder, bus, guard.NavigatorFunc(func(path string, _ guard.NavigateOptions) {
		term.printf("→ %s: maeumctl register 또는 maeumctl login 으로 계정을 만들어 주세요.\n", path)
	}), c.log)

	term.help()
	lines := readLines(ctx, cmd.InOrStdin())
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok || con.exec(ctx, line) {
				return nil
			}
		}
	}
}

// listen turns push frames into a toast plus a center refresh.
func listen(ctx context.Context, client *httpclient.Client, bus *notify.Bus, hook *center.RefreshHook, log *slog.Logger) {
	err := client.Listen(ctx, func(frame []byte) {
		hook.RequestRefresh()

		var n domain.Notification
		if err := json.Unmarshal(frame, &n); err != nil {
			log.Debug("skipping push frame", "error", err)
			return
		}
		bus.Toast(notify.Toast{Message: n.Title, Icon: n.Icon, Variant: notify.VariantInfo})
	})
	if err != nil && ctx.Err() == nil {
		log.Warn("push socket closed", "error", err)
	}
}

func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

type console struct {
	term     *terminal
	bus      *notify.Bus
	provider *notify.Provider
	center   *center.Center
	guard    *guard.Guard
	api      memberAPI
	log      *slog.Logger
}

// exec runs one input line and reports whether the user asked to quit.
func (c *console) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	args := fields[1:]

	switch fields[0] {
	case "q", "quit", "exit":
		return true
	case "help", "?":
		c.term.help()
	case "ls":
		c.term.list(c.center.Items())
	case "read-all":
		if err := c.center.MarkAll(ctx); err != nil {
			c.fail("모두 읽음 처리하지 못했어요.", err)
		}
	case "read":
		c.markRead(ctx, args)
	case "pin":
		c.setPIN(ctx, args)
	case "card":
		c.shareCard(ctx, args)
	case "y":
		c.provider.ConfirmModal()
	case "n":
		c.provider.CancelModal()
	case "x":
		c.provider.DismissBanner()
	default:
		c.warn("알 수 없는 명령이에요. help 를 입력해 보세요.")
	}
	return false
}

func (c *console) markRead(ctx context.Context, args []string) {
	if len(args) != 1 {
		c.warn("read <번호|ID> 형식으로 입력해 주세요.")
		return
	}
	id, ok := pickNotification(c.center.Items(), args[0])
	if !ok {
		c.warn("번호를 확인해 주세요.")
		return
	}
	if err := c.center.MarkRead(ctx, id); err != nil {
		c.fail("읽음 처리하지 못했어요.", err)
	}
}

// pickNotification resolves a 1-based list position or a notification id.
func pickNotification(items []domain.Notification, arg string) (uuid.UUID, bool) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(items) {
			return uuid.Nil, false
		}
		return items[n-1].ID, true
	}
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (c *console) setPIN(ctx context.Context, args []string) {
	if len(args) < 1 || len(args) > 2 {
		c.warn("pin <새 PIN> [현재 PIN] 형식으로 입력해 주세요.")
		return
	}
	current := ""
	if len(args) == 2 {
		current = args[1]
	}
	c.guard.RequireAuthForAction("set_pin", func() {
		if err := c.api.SetPIN(ctx, args[0], current); err != nil {
			c.fail("PIN을 설정하지 못했어요.", err)
			return
		}
		c.bus.Toast(notify.Toast{Message: "잠금 PIN을 설정했어요.", Icon: "🔒", Variant: notify.VariantSuccess})
	}, guard.Options{})
}

func (c *console) shareCard(ctx context.Context, args []string) {
	if len(args) != 2 {
		c.warn("card <꽃> <연속 일수> 형식으로 입력해 주세요.")
		return
	}
	req, err := parseCard(args[0], args[1])
	if err != nil {
		c.warn("연속 일수는 숫자로 입력해 주세요.")
		return
	}
	c.guard.RequireAuthForAction("share_card", func() {
		created, err := c.api.CreateShareCard(ctx, req)
		if err != nil {
			c.fail("공유 카드를 만들지 못했어요.", err)
			return
		}
		c.bus.Banner(notify.Banner{
			Title:   "공유 카드가 준비됐어요",
			Message: created.URL,
			Icon:    "🌸",
			Variant: notify.VariantSuccess,
		})
	}, guard.Options{CustomMessage: "로그인하면 내 꽃을 카드로 나눌 수 있어요."})
}

func (c *console) warn(msg string) {
	c.bus.Toast(notify.Toast{Message: msg, Variant: notify.VariantWarning})
}

func (c *console) fail(msg string, err error) {
	c.log.Warn(msg, "error", err)
	c.bus.Toast(notify.Toast{Message: msg, Icon: "⚠️", Variant: notify.VariantError})
}
