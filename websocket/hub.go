package websocket

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Client is one dashboard tab connected for a manager's session.
type Client struct {
	conn      *websocket.Conn
	send      chan []byte
	manager   string
	sessionID string
}

type delivery struct {
	manager   string
	sessionID string // empty targets every session of the manager
	payload   []byte
	close     bool
}

// Hub routes payloads to connected clients. All client bookkeeping happens on the run
// goroutine.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	count      chan chan map[string]int
	done       chan struct{}
	clients    map[string]map[*Client]bool
}

// NewHub creates and starts a new Hub loop.
func NewHub() *Hub {
	h := &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 64),
		count:      make(chan chan map[string]int),
		done:       make(chan struct{}),
		clients:    make(map[string]map[*Client]bool),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			set, ok := h.clients[c.manager]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[c.manager] = set
			}
			set[c] = true
		case c := <-h.unregister:
			h.drop(c)
		case d := <-h.deliver:
			for c := range h.clients[d.manager] {
				if d.sessionID != "" && c.sessionID != d.sessionID {
					continue
				}
				select {
				case c.send <- d.payload:
					if d.close {
						h.drop(c)
					}
				default:
					slog.Warn("dropping slow websocket client", "manager", c.manager)
					h.drop(c)
				}
			}
		case reply := <-h.count:
			out := make(map[string]int, len(h.clients))
			for m, set := range h.clients {
				out[m] = len(set)
			}
			reply <- out
		case <-h.done:
			for _, set := range h.clients {
				for c := range set {
					close(c.send)
				}
			}
			h.clients = map[string]map[*Client]bool{}
			return
		}
	}
}

func (h *Hub) drop(c *Client) {
	set, ok := h.clients[c.manager]
	if !ok {
		return
	}
	if _, exists := set[c]; !exists {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.manager)
	}
}

// Notify sends a payload to every connected client of the manager.
func (h *Hub) Notify(manager string, payload []byte) {
	h.push(delivery{manager: manager, payload: payload})
}

// CloseSession sends a last payload to the clients of one session and disconnects them.
func (h *Hub) CloseSession(manager, sessionID string, payload []byte) {
	h.push(delivery{manager: manager, sessionID: sessionID, payload: payload, close: true})
}

func (h *Hub) push(d delivery) {
	if h == nil {
		return
	}
	select {
	case h.deliver <- d:
	case <-h.done:
	}
}

// Connected returns the number of clients per manager.
func (h *Hub) Connected() map[string]int {
	reply := make(chan map[string]int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return map[string]int{}
	}
}

// Stop disconnects everybody and ends the run loop.
func (h *Hub) Stop() {
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades the connection and registers it under the authenticated manager.
// Authentication runs before; it leaves "manager" and "sessionId" in the context.
func ServeWS(h *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		manager := c.GetString("manager")
		if manager == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", "err", err)
			return
		}
		client := &Client{conn: conn, send: make(chan []byte, 32), manager: manager, sessionID: c.GetString("sessionId")}
		select {
		case h.register <- client:
		case <-h.done:
			_ = conn.Close()
			return
		}

		go func() {
			defer func() {
				select {
				case h.unregister <- client:
				case <-h.done:
				}
				_ = conn.Close()
			}()
			conn.SetReadLimit(1024)
			_ = conn.SetReadDeadline(time.Now().Add(pongWait))
			conn.SetPongHandler(func(string) error {
				return conn.SetReadDeadline(time.Now().Add(pongWait))
			})
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case msg, ok := <-client.send:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if !ok {
					_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					_ = conn.Close()
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					_ = conn.Close()
					return
				}
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					_ = conn.Close()
					return
				}
			}
		}
	}
}
