package popout

import (
	"context"
	"sync"
	"time"

	"eegdash/internal/config"
	"eegdash/pkg/utils"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

const (
	defaultQueueSize      = 64
	defaultConnectTimeout = 30 * time.Second
)

type hubSurface struct {
	owner     string
	handle    func(Message)
	out       chan Message
	done      chan struct{}
	timer     *time.Timer
	connected bool
}

// WebSocketHub is the Windowing implementation for browser surfaces. Open
// only registers the surface and queues its init message; the browser window
// then connects to the surface's socket and drains the queue. A surface
// nobody connects to within the connect timeout is reported disconnected.
type WebSocketHub struct {
	mu             sync.Mutex
	surfaces       map[string]*hubSurface
	queueSize      int
	connectTimeout time.Duration
	log            *zap.Logger
}

func NewWebSocketHub(cfg *config.Config, log *zap.Logger) *WebSocketHub {
	timeout := cfg.PopoutConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	return &WebSocketHub{
		surfaces:       make(map[string]*hubSurface),
		queueSize:      defaultQueueSize,
		connectTimeout: timeout,
		log:            log,
	}
}

type ownerKey struct{}

// WithOwner tags ctx with the user a surface opened under it belongs to.
// Only that user may connect to the surface.
func WithOwner(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ownerKey{}, userID)
}

func ownerFrom(ctx context.Context) string {
	userID, _ := ctx.Value(ownerKey{}).(string)
	return userID
}

func (h *WebSocketHub) Open(ctx context.Context, surfaceID string, init Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := &hubSurface{
		owner: ownerFrom(ctx),
		out:   make(chan Message, h.queueSize),
		done:  make(chan struct{}),
	}
	s.out <- init

	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.surfaces[surfaceID]; ok {
		h.drop(old)
	}
	h.surfaces[surfaceID] = s
	s.timer = time.AfterFunc(h.connectTimeout, func() { h.expire(surfaceID, s) })
	return nil
}

// expire drops a surface whose window never connected
func (h *WebSocketHub) expire(surfaceID string, s *hubSurface) {
	h.mu.Lock()
	if cur, ok := h.surfaces[surfaceID]; !ok || cur != s || s.connected {
		h.mu.Unlock()
		return
	}
	delete(h.surfaces, surfaceID)
	close(s.done)
	handle := s.handle
	h.mu.Unlock()

	h.log.Info("Popout surface never connected", zap.String("surface_id", surfaceID))
	if handle != nil {
		handle(Message{Type: MessageDisconnected})
	}
}

// drop must be called with h.mu held
func (h *WebSocketHub) drop(s *hubSurface) {
	if s.timer != nil {
		s.timer.Stop()
	}
	close(s.done)
}

func (h *WebSocketHub) OnMessage(surfaceID string, handle func(Message)) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.surfaces[surfaceID]
	if !ok {
		return ErrUnknownSurface
	}
	s.handle = handle
	return nil
}

func (h *WebSocketHub) handler(s *hubSurface) func(Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s.handle == nil {
		return func(Message) {}
	}
	return s.handle
}

func (h *WebSocketHub) Close(surfaceID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.surfaces[surfaceID]
	if !ok {
		return ErrUnknownSurface
	}
	delete(h.surfaces, surfaceID)
	h.drop(s)
	return nil
}

// Send queues msg without blocking. A full queue drops the message.
func (h *WebSocketHub) Send(surfaceID string, msg Message) error {
	h.mu.Lock()
	s, ok := h.surfaces[surfaceID]
	h.mu.Unlock()
	if !ok {
		return ErrUnknownSurface
	}
	select {
	case s.out <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

func (h *WebSocketHub) attach(surfaceID, userID string) (*hubSurface, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.surfaces[surfaceID]
	if !ok {
		return nil, ErrUnknownSurface
	}
	if userID == "" || s.owner != userID {
		return nil, ErrSurfaceForbidden
	}
	if s.connected {
		return nil, ErrSurfaceBusy
	}
	s.connected = true
	if s.timer != nil {
		s.timer.Stop()
	}
	return s, nil
}

// detach drops the surface unless it was already closed from our side. It
// reports whether the surface was still registered.
func (h *WebSocketHub) detach(surfaceID string, s *hubSurface) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.surfaces[surfaceID]; !ok || cur != s {
		return false
	}
	delete(h.surfaces, surfaceID)
	h.drop(s)
	return true
}

// HandleWebSocket serves one surface connection
func (h *WebSocketHub) HandleWebSocket(c *websocket.Conn) {
	surfaceID := c.Params("surfaceId")
	var userID string
	if claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims); ok {
		userID = claims.UserID
	}
	s, err := h.attach(surfaceID, userID)
	if err != nil {
		h.log.Warn("Rejected popout connection", zap.String("surface_id", surfaceID), zap.Error(err))
		_ = c.WriteJSON(Message{Type: MessageError, Error: err.Error()})
		return
	}
	h.log.Debug("Popout surface connected", zap.String("surface_id", surfaceID))

	go func() {
		for {
			select {
			case msg := <-s.out:
				if err := c.WriteJSON(msg); err != nil {
					h.log.Debug("write:", zap.String("surface_id", surfaceID), zap.Error(err))
					return
				}
			case <-s.done:
				_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "popped in"))
				_ = c.Close()
				return
			}
		}
	}()

	for {
		var msg Message
		if err := c.ReadJSON(&msg); err != nil {
			h.log.Debug("read:", zap.String("surface_id", surfaceID), zap.Error(err))
			break
		}
		if msg.Type == MessageDisconnected {
			continue
		}
		h.handler(s)(msg)
	}

	if h.detach(surfaceID, s) {
		h.handler(s)(Message{Type: MessageDisconnected})
	}
}
