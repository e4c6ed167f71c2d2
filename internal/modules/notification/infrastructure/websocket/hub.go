package websocket

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/maeumssi/maeumssi/internal/shared/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	socketsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "notification_sockets_open",
		Help: "Push sockets currently registered with the hub",
	})
	framesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notification_frames_dropped_total",
		Help: "Push frames discarded because a socket fell behind",
	})
)

type frame struct {
	userID uuid.UUID
	data   []byte
}

type onlineQuery struct {
	userID uuid.UUID
	reply  chan int
}

// Hub owns every push socket and routes frames to the sockets of their
// user. All state is confined to the Run goroutine.
type Hub struct {
	users map[uuid.UUID]map[*Client]struct{}

	frames     chan frame
	register   chan *Client
	unregister chan *Client
	online     chan onlineQuery

	stop     chan struct{}
	stopOnce sync.Once

	log *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		users:      make(map[uuid.UUID]map[*Client]struct{}),
		frames:     make(chan frame),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		online:     make(chan onlineQuery),
		stop:       make(chan struct{}),
		log:        logger.OrDiscard(log).With("component", "ws_hub"),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case f := <-h.frames:
			for c := range h.users[f.userID] {
				h.deliver(c, f.data)
			}
		case q := <-h.online:
			q.reply <- len(h.users[q.userID])
		case <-h.stop:
			n := 0
			for _, sockets := range h.users {
				for c := range sockets {
					h.remove(c)
					n++
				}
			}
			h.log.Info("hub stopped", "closed", n)
			return
		}
	}
}

func (h *Hub) add(c *Client) {
	sockets := h.users[c.userID]
	if sockets == nil {
		sockets = make(map[*Client]struct{})
		h.users[c.userID] = sockets
	}
	sockets[c] = struct{}{}
	socketsOpen.Inc()
	h.log.Debug("socket registered", "user_id", c.userID, "remote", c.remoteAddr(), "sockets", len(sockets))
}

// remove closes c's send channel, which makes its writer hang up.
func (h *Hub) remove(c *Client) {
	sockets, ok := h.users[c.userID]
	if !ok {
		return
	}
	if _, ok := sockets[c]; !ok {
		return
	}
	delete(sockets, c)
	if len(sockets) == 0 {
		delete(h.users, c.userID)
	}
	close(c.send)
	socketsOpen.Dec()
	h.log.Debug("socket unregistered", "user_id", c.userID, "remote", c.remoteAddr())
}

func (h *Hub) deliver(c *Client, data []byte) {
	select {
	case c.send <- data:
	default:
		framesDropped.Inc()
		h.log.Warn("slow socket dropped", "user_id", c.userID, "remote", c.remoteAddr())
		h.remove(c)
	}
}

// Push queues data for every socket of userID. It is a no-op once the hub
// has stopped.
func (h *Hub) Push(userID uuid.UUID, data []byte) {
	select {
	case h.frames <- frame{userID: userID, data: data}:
	case <-h.stop:
	}
}

// Online reports how many sockets userID has open.
func (h *Hub) Online(userID uuid.UUID) int {
	q := onlineQuery{userID: userID, reply: make(chan int, 1)}
	select {
	case h.online <- q:
		return <-q.reply
	case <-h.stop:
		return 0
	}
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}
