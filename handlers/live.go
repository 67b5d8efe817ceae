// live.go - Websocket feed that pushes newly approved guestbook messages
// The hub goroutine owns the client set; handlers only talk to it through
// channels, so no lock guards the map.

package handlers

import (
	"context"
	"net/http"
	"slices"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = livePongWait * 9 / 10
	liveSendBuffer = 16 // per client, slow readers are dropped
)

type liveClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans out events to every connected websocket client.
type Hub struct {
	log        *logrus.Logger
	register   chan *liveClient
	unregister chan *liveClient
	broadcast  chan []byte
	done       chan struct{} // closed when Run returns
	clients    atomic.Int64
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		log:        log,
		register:   make(chan *liveClient),
		unregister: make(chan *liveClient),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	clients := make(map[*liveClient]struct{})
	drop := func(cl *liveClient) {
		if _, ok := clients[cl]; ok {
			delete(clients, cl)
			close(cl.send)
			h.clients.Add(-1)
		}
	}

	for {
		select {
		case <-ctx.Done():
			for cl := range clients {
				drop(cl)
			}
			return
		case cl := <-h.register:
			clients[cl] = struct{}{}
			h.clients.Add(1)
		case cl := <-h.unregister:
			drop(cl)
		case msg := <-h.broadcast:
			for cl := range clients {
				select {
				case cl.send <- msg:
				default:
					h.log.Warn("live client too slow, disconnecting")
					drop(cl)
				}
			}
		}
	}
}

// Publish queues v for every client. It never blocks a request: when the
// hub is backed up the event is dropped.
func (h *Hub) Publish(event string, v any) {
	payload, err := json.Marshal(gin.H{"event": event, "data": v})
	if err != nil {
		h.log.WithError(err).Error("encode live event")
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.log.WithField("event", event).Warn("live feed backed up, event dropped")
	}
}

// Clients is the number of connected websocket clients.
func (h *Hub) Clients() int { return int(h.clients.Load()) }

func (h *Handler) upgrader() *websocket.Upgrader {
	origins := h.Config.CORSOrigins
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(origins, "*") || slices.Contains(origins, origin)
		},
	}
}

// LiveMessages upgrades the request and streams message events.
func (h *Handler) LiveMessages(c *gin.Context) {
	conn, err := h.upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log(c).WithError(err).Debug("websocket upgrade failed")
		return // Upgrade already answered the request
	}
	cl := &liveClient{conn: conn, send: make(chan []byte, liveSendBuffer)}
	select {
	case h.Hub.register <- cl:
	case <-h.Hub.done:
		_ = conn.Close()
		return
	}

	go h.Hub.writePump(cl)
	h.Hub.readPump(cl)
}

// readPump only consumes control frames; the feed is one-way.
func (h *Hub) readPump(cl *liveClient) {
	defer func() {
		select {
		case h.unregister <- cl:
		case <-h.done:
		}
		_ = cl.conn.Close()
	}()
	cl.conn.SetReadLimit(512)
	_ = cl.conn.SetReadDeadline(time.Now().Add(livePongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(livePongWait))
	})
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(cl *liveClient) {
	ticker := time.NewTicker(livePingPeriod)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
