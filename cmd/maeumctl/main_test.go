package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maeumssi/maeumssi/internal/modules/auth/application"
	auth "github.com/maeumssi/maeumssi/internal/modules/auth/domain"
	"github.com/maeumssi/maeumssi/internal/modules/guard"
	"github.com/maeumssi/maeumssi/internal/modules/notification/center"
	"github.com/maeumssi/maeumssi/internal/modules/notification/domain"
	"github.com/maeumssi/maeumssi/internal/modules/notify"
	"github.com/maeumssi/maeumssi/internal/modules/session"
	card "github.com/maeumssi/maeumssi/internal/modules/sharecard/domain"
	"github.com/maeumssi/maeumssi/internal/shared/infrastructure/config"
	"github.com/maeumssi/maeumssi/internal/shared/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(config.Config{}, strings.NewReader(""), &out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--api", srv.URL, "--token", "tok"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseMeta(t *testing.T) {
	meta, err := parseMeta([]string{"days=7", "flower=장미", "note=a=b"})
	require.NoError(t, err)
	assert.Equal(t, domain.Meta{"days": "7", "flower": "장미", "note": "a=b"}, meta)

	meta, err = parseMeta(nil)
	require.NoError(t, err)
	assert.Nil(t, meta)

	_, err = parseMeta([]string{"=x"})
	assert.Error(t, err)
	_, err = parseMeta([]string{"days"})
	assert.Error(t, err)
}

func TestParseCard(t *testing.T) {
	req, err := parseCard("튤립", "14")
	require.NoError(t, err)
	assert.Equal(t, card.Request{Flower: "튤립", StreakDays: 14}, req)

	_, err = parseCard("튤립", "two")
	assert.Error(t, err)
}

func TestLoginCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		var req application.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a@b.c", req.Email)
		assert.Equal(t, "pw123456", req.Password)
		_ = json.NewEncoder(w).Encode(application.TokenResponse{Token: "jwt-token", User: &auth.User{Nickname: "하루"}})
	}))
	defer srv.Close()

	out, err := run(t, srv, "login", "--email", "a@b.c", "--password", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token\n", out)
}

func TestLoginCommand_RequiresFlags(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := run(t, srv, "login", "--email", "a@b.c")
	assert.Error(t, err)
}

func TestListCommand(t *testing.T) {
	n1, err := domain.New(uuid.New(), domain.TypeWelcome, nil, time.Now())
	require.NoError(t, err)
	n2, err := domain.New(uuid.New(), domain.TypeDailyReminder, nil, time.Now())
	require.NoError(t, err)
	n2.IsRead = true

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []domain.Notification{*n1, *n2}})
	}))
	defer srv.Close()

	out, err := run(t, srv, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "읽지 않은 알림 1개")
	assert.Contains(t, out, n1.Title)
	assert.Contains(t, out, n2.Title)
}

func TestPushCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body struct {
			Type domain.Type `json:"type"`
			Meta domain.Meta `json:"meta"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, domain.TypeStreakMilestone, body.Type)
		assert.Equal(t, "7", body.Meta["days"])

		n, err := domain.New(uuid.New(), body.Type, body.Meta, time.Now())
		require.NoError(t, err)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(n)
	}))
	defer srv.Close()

	out, err := run(t, srv, "push", "streak_milestone", "days=7")
	require.NoError(t, err)
	assert.Contains(t, out, "7")
}

func TestPushCommand_UnknownType(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := run(t, srv, "push", "confetti")
	assert.Error(t, err)
}

func TestCardCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/share-cards", r.URL.Path)
		var req card.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(card.Card{URL: "https://cdn.example/cards/x.png", Flower: req.Flower, Stage: card.StageFor(req.StreakDays)})
	}))
	defer srv.Close()

	out, err := run(t, srv, "card", "장미", "30")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/cards/x.png\n", out)
}

func TestMigrateCommand_Errors(t *testing.T) {
	for _, args := range [][]string{
		{"migrate", "version", "--database-url", "bad://db"},
		{"migrate", "up", "--database-url", "bad://db"},
		{"migrate", "force", "x"},
		{"migrate", "down", "extra"},
	} {
		root := newRootCmd(config.Config{}, strings.NewReader(""), &bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})
		root.SetArgs(args)
		assert.Error(t, root.ExecuteContext(context.Background()), strings.Join(args, " "))
	}
}

func TestFetchSession(t *testing.T) {
	id := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": id, "role": "guest", "guest": true})
	}))
	defer srv.Close()

	c := &cli{api: srv.URL, token: "tok"}
	st, err := fetchSession(context.Background(), c.client())
	require.NoError(t, err)
	require.True(t, st.Present())
	assert.True(t, st.Guest())
	assert.Equal(t, id, st.UserID())

	c.token = ""
	st, err = fetchSession(context.Background(), c.client())
	require.NoError(t, err)
	assert.True(t, st.Initialized)
	assert.False(t, st.Present())
}

type fakeBackend struct {
	mu    sync.Mutex
	items []domain.Notification
	read  []uuid.UUID
}

func (f *fakeBackend) GetUserNotifications(_ context.Context, _ uuid.UUID, _, _ int) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Notification(nil), f.items...), nil
}

func (f *fakeBackend) Create(context.Context, uuid.UUID, domain.Type, domain.Meta) (*domain.Notification, error) {
	return nil, errors.New("not supported")
}

func (f *fakeBackend) MarkAsRead(_ context.Context, id, _ uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.read = append(f.read, id)
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].IsRead = true
		}
	}
	return nil
}

func (f *fakeBackend) MarkAllAsRead(context.Context, uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		f.items[i].IsRead = true
	}
	return nil
}

type fakeAPI struct {
	pins [][2]string
	err  error
}

func (f *fakeAPI) SetPIN(_ context.Context, pin, current string) error {
	f.pins = append(f.pins, [2]string{pin, current})
	return f.err
}

func (f *fakeAPI) CreateShareCard(_ context.Context, req card.Request) (*card.Card, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &card.Card{URL: "https://cdn.example/" + req.Flower + ".png", Flower: req.Flower}, nil
}

func newTestConsole(t *testing.T, s *session.Session) (*console, *syncBuffer, *fakeBackend, *fakeAPI) {
	t.Helper()
	out := &syncBuffer{}
	term := newTerminal(out)

	bus := notify.NewBus(nil)
	provider := notify.NewProvider(bus, notify.ProviderOptions{ToastDuration: time.Hour, OnChange: term.showNotify})
	t.Cleanup(provider.Close)

	n1, err := domain.New(uuid.New(), domain.TypeEmpathyReceived, nil, time.Now())
	require.NoError(t, err)
	n2, err := domain.New(uuid.New(), domain.TypeWelcome, nil, time.Now())
	require.NoError(t, err)
	backend := &fakeBackend{items: []domain.Notification{*n1, *n2}}

	ctr := center.New(backend, center.Options{PollInterval: time.Hour, OnChange: term.showCenter})
	t.Cleanup(ctr.Close)

	holder := session.NewHolder()
	if s != nil {
		holder.SignIn(*s)
		require.NoError(t, ctr.SetUser(context.Background(), s.UserID))
	} else {
		holder.SignOut()
	}

	api := &fakeAPI{}
	con := &console{
		term:     term,
		bus:      bus,
		provider: provider,
		center:   ctr,
		api:      api,
	}
	con.guard = guard.New(holder, bus, guard.NavigatorFunc(func(path string, _ guard.NavigateOptions) {
		term.printf("→ %s\n", path)
	}), nil)
	con.log = logger.Discard()
	return con, out, backend, api
}

func TestConsole_MemberActions(t *testing.T) {
	con, out, backend, api := newTestConsole(t, &session.Session{UserID: uuid.New(), Role: "member"})
	ctx := context.Background()

	assert.Contains(t, out.String(), "읽지 않은 알림 2개")

	assert.False(t, con.exec(ctx, "read 1"))
	require.Len(t, backend.read, 1)
	assert.Equal(t, backend.items[0].ID, backend.read[0])
	assert.Equal(t, 1, con.center.BadgeCount())
	assert.Contains(t, out.String(), "읽지 않은 알림 1개")

	assert.False(t, con.exec(ctx, "read "+backend.items[1].ID.String()))
	require.Len(t, backend.read, 2)
	assert.Equal(t, backend.items[1].ID, backend.read[1])
	assert.Equal(t, 0, con.center.BadgeCount())

	assert.False(t, con.exec(ctx, "pin 1234"))
	assert.Equal(t, [][2]string{{"1234", ""}}, api.pins)
	assert.Contains(t, out.String(), "잠금 PIN을 설정했어요.")

	assert.False(t, con.exec(ctx, "pin 5678 1234"))
	assert.Equal(t, [2]string{"5678", "1234"}, api.pins[1])

	assert.False(t, con.exec(ctx, "card 장미 10"))
	assert.True(t, con.provider.Snapshot().Showing(notify.KindBanner))
	assert.Contains(t, out.String(), "https://cdn.example/장미.png")

	assert.False(t, con.exec(ctx, "x"))
	assert.False(t, con.provider.Snapshot().Showing(notify.KindBanner))

	assert.False(t, con.exec(ctx, "read-all"))
	assert.Equal(t, 0, con.center.BadgeCount())

	assert.True(t, con.exec(ctx, "q"))
}

func TestConsole_GuestIsSentToOnboarding(t *testing.T) {
	con, out, _, api := newTestConsole(t, &session.Session{UserID: uuid.New(), Guest: true})
	ctx := context.Background()

	con.exec(ctx, "pin 1234")
	assert.Empty(t, api.pins)
	assert.True(t, con.provider.Snapshot().Showing(notify.KindModal))
	assert.Contains(t, out.String(), guard.DefaultTitle)

	con.exec(ctx, "y")
	assert.False(t, con.provider.Snapshot().Showing(notify.KindModal))
	assert.Contains(t, out.String(), "→ "+session.OnboardingPath)
}

func TestConsole_AnonymousCancelDoesNotNavigate(t *testing.T) {
	con, out, _, _ := newTestConsole(t, nil)
	ctx := context.Background()

	con.exec(ctx, "card 장미 3")
	assert.Contains(t, out.String(), "로그인하면 내 꽃을 카드로 나눌 수 있어요.")

	con.exec(ctx, "n")
	assert.False(t, con.provider.Snapshot().Showing(notify.KindModal))
	assert.NotContains(t, out.String(), "→ ")
}

func TestConsole_InputErrorsBecomeToasts(t *testing.T) {
	con, out, _, api := newTestConsole(t, &session.Session{UserID: uuid.New()})
	ctx := context.Background()

	con.exec(ctx, "read 9")
	assert.Contains(t, out.String(), "번호를 확인해 주세요.")

	con.exec(ctx, "dance")
	assert.Contains(t, out.String(), "알 수 없는 명령이에요.")

	api.err = errors.New("boom")
	con.exec(ctx, "pin 1234")
	assert.Contains(t, out.String(), "PIN을 설정하지 못했어요.")

	assert.False(t, con.exec(ctx, "   "))
}

func TestPickNotification(t *testing.T) {
	items := []domain.Notification{{ID: uuid.New()}, {ID: uuid.New()}}
	foreign := uuid.New()

	tests := []struct {
		arg    string
		want   uuid.UUID
		wantOK bool
	}{
		{"1", items[0].ID, true},
		{"2", items[1].ID, true},
		{"0", uuid.Nil, false},
		{"3", uuid.Nil, false},
		{items[1].ID.String(), items[1].ID, true},
		{foreign.String(), foreign, true},
		{"abc", uuid.Nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, ok := pickNotification(items, tt.arg)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTerminal_PrintsEachEventOnce(t *testing.T) {
	var out bytes.Buffer
	term := newTerminal(&out)
	bus := notify.NewBus(nil)
	provider := notify.NewProvider(bus, notify.ProviderOptions{ToastDuration: time.Hour, OnChange: term.showNotify})
	defer provider.Close()

	bus.Toast(notify.Toast{Message: "저장했어요"})
	bus.Banner(notify.Banner{Message: "새 기능"})
	assert.Equal(t, 1, strings.Count(out.String(), "저장했어요"))

	bus.Modal(notify.Modal{Title: "정말요?", Message: "삭제할까요"})
	assert.Contains(t, out.String(), "[y] 확인  [n] 취소")
}
