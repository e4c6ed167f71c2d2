// Package guard gates write actions on the session: members may act, guests
// and anonymous users are pointed at sign-in instead.
package guard

import (
	"log/slog"

	"github.com/maeumssi/maeumssi/internal/modules/notify"
	"github.com/maeumssi/maeumssi/internal/modules/session"
	"github.com/maeumssi/maeumssi/internal/shared/logger"
)

const (
	DefaultTitle        = "로그인이 필요해요"
	DefaultMessage      = "로그인하면 마음 기록을 저장하고 공감숲에 나눌 수 있어요."
	DefaultToastMessage = "로그인 후 이용할 수 있어요."
	ConfirmLabel        = "로그인하기"
	CancelLabel         = "나중에"
)

// Style selects how a denied action is reported.
type Style int

const (
	// StyleModal asks the user with a blocking dialog. It is the default.
	StyleModal Style = iota
	// StyleToast shows a short warning toast.
	StyleToast
)

// Options tunes the rejection. The zero value is a modal with default copy.
type Options struct {
	Style Style
	// CustomMessage replaces the default body (modal) or text (toast).
	CustomMessage string
}

// NavigateOptions mirrors a router's navigate flags.
type NavigateOptions struct {
	Replace bool
}

// Navigator moves the user to another route.
type Navigator interface {
	Navigate(path string, opts NavigateOptions)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string, opts NavigateOptions)

func (f NavigatorFunc) Navigate(path string, opts NavigateOptions) { f(path, opts) }

// Permits is the guard decision: a session must exist and must not be a
// guest session.
func Permits(st session.State) bool {
	return st.Present() && !st.Guest()
}

type Guard struct {
	source session.Source
	bus    *notify.Bus
	nav    Navigator
	logger *slog.Logger
}

func New(source session.Source, bus *notify.Bus, nav Navigator, l *slog.Logger) *Guard {
	return &Guard{source: source, bus: bus, nav: nav, logger: logger.OrDiscard(l)}
}

// RequireAuthForAction runs onAllowed when the current session permits it and
// reports whether it did. Otherwise exactly one bus event is emitted and
// onAllowed is not called. actionName only appears in logs.
func (g *Guard) RequireAuthForAction(actionName string, onAllowed func(), opts Options) bool {
	st := g.source.State()
	if Permits(st) {
		if onAllowed != nil {
			onAllowed()
		}
		return true
	}

	g.logger.Info("action blocked by auth guard",
		"action", actionName,
		"has_session", st.Present(),
		"guest", st.Guest(),
	)

	if opts.Style == StyleToast {
		msg := DefaultToastMessage
		if opts.CustomMessage != "" {
			msg = opts.CustomMessage
		}
		g.bus.Toast(notify.Toast{Message: msg, Icon: "🔒", Variant: notify.VariantWarning})
		return false
	}

	msg := DefaultMessage
	if opts.CustomMessage != "" {
		msg = opts.CustomMessage
	}
	g.bus.Modal(notify.Modal{
		Title:        DefaultTitle,
		Message:      msg,
		Icon:         "🌱",
		ConfirmLabel: ConfirmLabel,
		CancelLabel:  CancelLabel,
		OnConfirm: func() {
			if g.nav != nil {
				g.nav.Navigate(session.OnboardingPath, NavigateOptions{})
			}
		},
	})
	return false
}
