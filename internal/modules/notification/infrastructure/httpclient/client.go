// Package httpclient talks to the notification HTTP API. It is the backend
// of the terminal client's notification center.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/maeumssi/maeumssi/internal/modules/notification/center"
	"github.com/maeumssi/maeumssi/internal/modules/notification/domain"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	dialer     *websocket.Dialer
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		dialer: websocket.DefaultDialer,
	}
}

// SetToken replaces the bearer token, e.g. after a guest sign-in.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

func (c *Client) Patch(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPatch, path, body, result)
}

func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

func (c *Client) Delete(ctx context.Context, path string, body any) error {
	return c.do(ctx, http.MethodDelete, path, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response of %s %s: %w", method, path, err)
		}
	}
	return nil
}

// The methods below satisfy center.Backend. userID is implied by the
// token; the server never lets a caller act for someone else.

func (c *Client) GetUserNotifications(ctx context.Context, _ uuid.UUID, limit, offset int) ([]domain.Notification, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var out struct {
		Data []domain.Notification `json:"data"`
	}
	if err := c.Get(ctx, "/notifications?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		out.Data = []domain.Notification{}
	}
	return out.Data, nil
}

func (c *Client) Create(ctx context.Context, _ uuid.UUID, t domain.Type, meta domain.Meta) (*domain.Notification, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", domain.ErrUnknownType, int(t))
	}
	body := struct {
		Type domain.Type `json:"type"`
		Meta domain.Meta `json:"meta,omitempty"`
	}{t, meta}

	var out domain.Notification
	if err := c.Post(ctx, "/notifications", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MarkAsRead(ctx context.Context, notificationID, _ uuid.UUID) error {
	err := c.Patch(ctx, "/notifications/"+notificationID.String()+"/read", nil, nil)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return fmt.Errorf("%w: %s", domain.ErrNotificationNotFound, notificationID)
	}
	return err
}

func (c *Client) MarkAllAsRead(ctx context.Context, _ uuid.UUID) error {
	return c.Patch(ctx, "/notifications/read-all", nil, nil)
}

// Listen opens the push socket and calls onFrame for every text frame until
// ctx is cancelled or the connection drops.
func (c *Client) Listen(ctx context.Context, onFrame func([]byte)) error {
	u, err := url.Parse(c.baseURL + "/ws")
	if err != nil {
		return fmt.Errorf("parsing socket url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	if c.token != "" {
		q := u.Query()
		q.Set("token", c.token)
		u.RawQuery = q.Encode()
	}

	conn, _, err := c.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dialing %s://%s%s: %w", u.Scheme, u.Host, u.Path, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("reading socket: %w", err)
		}
		onFrame(msg)
	}
}

var _ center.Backend = (*Client)(nil)
