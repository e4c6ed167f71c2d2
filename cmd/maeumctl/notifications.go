package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/maeumssi/maeumssi/internal/modules/notification/center"
	"github.com/maeumssi/maeumssi/internal/modules/notification/domain"
	"github.com/maeumssi/maeumssi/internal/modules/notification/infrastructure/httpclient"
	pin_http "github.com/maeumssi/maeumssi/internal/modules/pinlock/interfaces/http"
	card "github.com/maeumssi/maeumssi/internal/modules/sharecard/domain"
	"github.com/spf13/cobra"
)

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List notifications with the unread count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := c.client().GetUserNotifications(cmd.Context(), uuid.Nil, c.pageSize(), 0)
			if err != nil {
				return fmt.Errorf("list notifications: %w", err)
			}
			printNotifications(cmd.OutOrStdout(), items)
			return nil
		},
	}
}

func (c *cli) readCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <notification-id>",
		Short: "Mark one notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid notification id %q", args[0])
			}
			return c.client().MarkAsRead(cmd.Context(), id, uuid.Nil)
		},
	}
}

func (c *cli) markAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mark-all",
		Short: "Mark every notification as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.client().MarkAllAsRead(cmd.Context(), uuid.Nil)
		},
	}
}

func (c *cli) pushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push <type> [key=value...]",
		Short: "Create a notification for yourself",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := domain.ParseType(args[0])
			if err != nil {
				return err
			}
			meta, err := parseMeta(args[1:])
			if err != nil {
				return err
			}
			n, err := c.client().Create(cmd.Context(), uuid.Nil, t, meta)
			if err != nil {
				return fmt.Errorf("push %s: %w", t, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", n.Icon, n.Title)
			return nil
		},
	}
	cmd.Example = `  maeumctl push streak_milestone days=7
  maeumctl push flower_bloomed flower=장미`
	return cmd
}

func (c *cli) cardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "card <flower> <streak-days>",
		Short: "Render a share card and print its download link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parseCard(args[0], args[1])
			if err != nil {
				return err
			}
			created, err := restAPI{client: c.client()}.CreateShareCard(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), created.URL)
			return nil
		},
	}
}

func (c *cli) pageSize() int {
	if c.cfg.Notification.PageSize > 0 {
		return c.cfg.Notification.PageSize
	}
	return center.DefaultPageSize
}

// parseMeta turns key=value arguments into template values.
func parseMeta(args []string) (domain.Meta, error) {
	if len(args) == 0 {
		return nil, nil
	}
	meta := make(domain.Meta, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("meta %q is not key=value", arg)
		}
		meta[key] = value
	}
	return meta, nil
}

func parseCard(flower, days string) (card.Request, error) {
	n, err := strconv.Atoi(days)
	if err != nil {
		return card.Request{}, fmt.Errorf("streak days %q is not a number", days)
	}
	return card.Request{Flower: flower, StreakDays: n}, nil
}

func printNotifications(w io.Writer, items []domain.Notification) {
	fmt.Fprintf(w, "🔔 읽지 않은 알림 %d개\n", domain.CountUnread(items))
	for i, n := range items {
		mark := " "
		if !n.IsRead {
			mark = "•"
		}
		fmt.Fprintf(w, "%s %2d. %s %s  %s\n", mark, i+1, n.Icon, n.Title, n.Message)
	}
}

// restAPI is the member-only part of the API used by watch mode.
type restAPI struct {
	client *httpclient.Client
}

func (a restAPI) SetPIN(ctx context.Context, pin, current string) error {
	if err := a.client.Put(ctx, "/pin", pin_http.SetRequest{PIN: pin, CurrentPIN: current}, nil); err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	return nil
}

func (a restAPI) CreateShareCard(ctx context.Context, req card.Request) (*card.Card, error) {
	var created card.Card
	if err := a.client.Post(ctx, "/share-cards", req, &created); err != nil {
		return nil, fmt.Errorf("create share card: %w", err)
	}
	return &created, nil
}
