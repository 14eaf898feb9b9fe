package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pointshade/server/pkg/colormap"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Message kinds sent to websocket clients.
const (
	KindHello    = "hello"
	KindGeometry = "geometry"
	KindRender   = "render"
)

type messageOut struct {
	Kind    string      `json:"kind"`
	Payload interface{} `json:"payload"`
}

type redrawPayload struct {
	ID      string `json:"id,omitempty"`
	Palette string `json:"palette"`
}

// wsConn serializes writes on a gorilla connection.
type wsConn struct {
	sync.Mutex
	*websocket.Conn
	id        string
	createdAt time.Time
}

func (ws *wsConn) logError() *zerolog.Event {
	return log.Error().Str("context", "hub").Str("client", ws.id)
}

func (ws *wsConn) sendWithPayload(kind string, payload interface{}) error {
	ws.Lock()
	defer ws.Unlock()

	m := &messageOut{Kind: kind, Payload: payload}
	err := ws.Conn.WriteJSON(m)
	if err != nil {
		ws.logError().Err(err).Str("kind", kind).Msg("json_write_failed")
	}
	return err
}

// Hub tracks websocket viewers and tells them to redraw. It satisfies
// viewer.RedrawNotifier.
type Hub struct {
	palettes *colormap.Registry
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[string]*wsConn
}

// NewHub creates a hub reporting the active palette of palettes. Upgrades
// are accepted from allowedOrigins; "*" or an empty list accepts any origin.
func NewHub(palettes *colormap.Registry, allowedOrigins []string) *Hub {
	h := &Hub{
		palettes: palettes,
		conns:    make(map[string]*wsConn),
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowedOrigins) == 0 {
				return true
			}
			for _, o := range allowedOrigins {
				if o == "*" || o == origin {
					return true
				}
			}
			log.Info().Str("context", "hub").Str("origin", origin).Msg("ws_origin_rejected")
			return false
		},
	}
	return h
}

// ServeHTTP upgrades the request and keeps the client registered until it
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	unsafeConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Str("context", "hub").Err(err).Msg("ws_upgrade_failed")
		return
	}

	ws := &wsConn{Conn: unsafeConn, id: uuid.NewString(), createdAt: time.Now()}
	h.add(ws)
	defer h.remove(ws)

	log.Info().Str("context", "hub").Str("client", ws.id).Msg("client_connected")
	if err := ws.sendWithPayload(KindHello, redrawPayload{ID: ws.id, Palette: h.palettes.Kind().String()}); err != nil {
		return
	}

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				ws.logError().Err(err).Msg("read_failed")
			}
			return
		}
	}
}

func (h *Hub) add(ws *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[ws.id] = ws
}

func (h *Hub) remove(ws *wsConn) {
	h.mu.Lock()
	delete(h.conns, ws.id)
	h.mu.Unlock()
	ws.Close()
	log.Info().Str("context", "hub").Str("client", ws.id).Dur("connected_for", time.Since(ws.createdAt)).Msg("client_disconnected")
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) broadcast(kind string) {
	payload := redrawPayload{Palette: h.palettes.Kind().String()}

	h.mu.RLock()
	conns := make([]*wsConn, 0, len(h.conns))
	for _, ws := range h.conns {
		conns = append(conns, ws)
	}
	h.mu.RUnlock()

	for _, ws := range conns {
		ws.sendWithPayload(kind, payload)
	}
}

// UpdateGeometry asks clients to recompute vertex colors.
func (h *Hub) UpdateGeometry() {
	h.broadcast(KindGeometry)
}

// UpdateRender asks clients to redraw.
func (h *Hub) UpdateRender() {
	h.broadcast(KindRender)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ws := range h.conns {
		ws.Lock()
		ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
			time.Now().Add(time.Second))
		ws.Unlock()
	}
}
