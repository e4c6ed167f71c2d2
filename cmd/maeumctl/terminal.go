package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/maeumssi/maeumssi/internal/modules/notification/center"
	"github.com/maeumssi/maeumssi/internal/modules/notification/domain"
	"github.com/maeumssi/maeumssi/internal/modules/notify"
)

var renderOrder = []notify.Kind{notify.KindModal, notify.KindBanner, notify.KindToast}

// terminal renders provider and center snapshots as lines of text. Each
// event is printed once, when it first shows.
type terminal struct {
	mu    sync.Mutex
	w     io.Writer
	shown map[notify.Kind]string

	badge  int
	latest uuid.UUID
}

func newTerminal(w io.Writer) *terminal {
	return &terminal{w: w, shown: make(map[notify.Kind]string), badge: -1}
}

func (t *terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, format, args...)
}

func (t *terminal) showNotify(s notify.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, k := range renderOrder {
		slot := s.Slot(k)
		id := ""
		if slot.State == notify.Showing {
			id = slot.Event.ID
		}
		if t.shown[k] == id {
			continue
		}
		t.shown[k] = id
		if id != "" {
			t.printEvent(slot.Event)
		}
	}
}

func (t *terminal) printEvent(ev notify.Event) {
	switch p := ev.Payload.(type) {
	case notify.Toast:
		fmt.Fprintf(t.w, "%s %s\n", iconOr(p.Icon, "💬"), p.Message)
	case notify.Banner:
		if p.Title != "" {
			fmt.Fprintf(t.w, "┃ %s %s\n┃ %s  (x: 닫기)\n", iconOr(p.Icon, "📌"), p.Title, p.Message)
			return
		}
		fmt.Fprintf(t.w, "┃ %s %s  (x: 닫기)\n", iconOr(p.Icon, "📌"), p.Message)
	case notify.Modal:
		confirm, cancel := p.ConfirmLabel, p.CancelLabel
		if confirm == "" {
			confirm = "확인"
		}
		if cancel == "" {
			cancel = "취소"
		}
		fmt.Fprintf(t.w, "\n%s %s\n  %s\n  [y] %s  [n] %s\n", iconOr(p.Icon, "❔"), p.Title, p.Message, confirm, cancel)
	}
}

// showCenter prints the list when the badge or the newest entry changes.
func (t *terminal) showCenter(s center.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	latest := uuid.Nil
	if len(s.Items) > 0 {
		latest = s.Items[0].ID
	}
	if s.BadgeCount == t.badge && latest == t.latest {
		return
	}
	t.badge, t.latest = s.BadgeCount, latest
	printNotifications(t.w, s.Items)
}

func (t *terminal) list(items []domain.Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()
	printNotifications(t.w, items)
}

func (t *terminal) help() {
	t.printf(`명령어:
  ls                    알림 목록
  read <번호|ID>        알림 하나 읽음 처리
  read-all              모두 읽음 처리
  pin <새 PIN> [현재 PIN] 잠금 PIN 설정
  card <꽃> <연속 일수>  공유 카드 만들기
  y / n                 확인 / 취소
  x                     배너 닫기
  q                     종료
`)
}

func iconOr(icon, fallback string) string {
	if icon == "" {
		return fallback
	}
	return icon
}
