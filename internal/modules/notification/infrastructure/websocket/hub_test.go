package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Run()
	}()
	t.Cleanup(func() {
		h.Stop()
		<-done
	})
	return h
}

func attach(h *Hub, userID uuid.UUID, buffer int) *Client {
	c := &Client{hub: h, send: make(chan []byte, buffer), userID: userID}
	h.register <- c
	return c
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data := <-c.send:
		return data
	case <-time.After(2 * time.Second):
		t.Fatal("no frame delivered")
		return nil
	}
}

func TestHub_PushReachesEverySocketOfTheUser(t *testing.T) {
	h := startHub(t)
	userID := uuid.New()
	phone := attach(h, userID, 1)
	laptop := attach(h, userID, 1)
	stranger := attach(h, uuid.New(), 1)

	h.Push(userID, []byte(`{"title":"7일 연속 기록"}`))

	assert.Equal(t, `{"title":"7일 연속 기록"}`, string(receive(t, phone)))
	assert.Equal(t, `{"title":"7일 연속 기록"}`, string(receive(t, laptop)))
	assert.Equal(t, 2, h.Online(userID))
	select {
	case <-stranger.send:
		t.Fatal("frame leaked to another user")
	default:
	}
}

func TestHub_Unregister(t *testing.T) {
	h := startHub(t)
	userID := uuid.New()
	c := attach(h, userID, 1)
	before := testutil.ToFloat64(socketsOpen)

	h.unregister <- c
	_, ok := <-c.send
	assert.False(t, ok, "send channel should be closed")
	assert.Equal(t, 0, h.Online(userID))
	assert.Equal(t, before-1, testutil.ToFloat64(socketsOpen))

	// A second unregister, as sent by the reader after a drop, is ignored.
	h.unregister <- c
	assert.Equal(t, 0, h.Online(userID))
}

func TestHub_SlowSocketIsDropped(t *testing.T) {
	h := startHub(t)
	slow := attach(h, uuid.New(), 1)
	dropped := testutil.ToFloat64(framesDropped)

	h.Push(slow.userID, []byte("first"))
	h.Push(slow.userID, []byte("overflow"))

	assert.Equal(t, 0, h.Online(slow.userID))
	assert.Equal(t, "first", string(receive(t, slow)))
	_, ok := <-slow.send
	assert.False(t, ok, "slow socket should be closed")
	assert.Equal(t, dropped+1, testutil.ToFloat64(framesDropped))
}

func TestHub_StopClosesSockets(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	h := NewHub(nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Run()
	}()
	c := attach(h, uuid.New(), 1)

	h.Stop()
	h.Stop()
	<-done

	_, ok := <-c.send
	require.False(t, ok)

	h.Push(c.userID, []byte("after stop"))
	assert.Equal(t, 0, h.Online(c.userID))
}
