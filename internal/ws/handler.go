package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/asc2563/regression-thing/internal/infrastructure/logging"
	"github.com/asc2563/regression-thing/internal/infrastructure/monitoring"
	"github.com/asc2563/regression-thing/internal/ipc"
	"github.com/asc2563/regression-thing/internal/shared/id"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 20
	sendQueueSize  = 256
)

// Handler manages WebSocket connections; each one is a front-end surface
type Handler struct {
	router   *ipc.Router
	log      *zap.Logger
	metrics  *monitoring.Metrics
	upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket handler. allowOrigin decides browser
// origins; requests without an Origin header are always accepted.
func NewHandler(router *ipc.Router, logger *zap.Logger, metrics *monitoring.Metrics, allowOrigin func(string) bool) *Handler {
	h := &Handler{
		router:  router,
		log:     logging.Component(logger, "ws"),
		metrics: metrics,
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowOrigin == nil || allowOrigin(origin)
		},
	}
	return h
}

// HandleConnection upgrades the request and serves frames until it closes
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	s := newSurface(conn, h.metrics)
	log := h.log.With(zap.String("surface_id", s.id.String()))
	log.Info("Surface connected", zap.String("remote", c.ClientIP()))

	h.metrics.IncSurfaces()
	h.router.Attach(s)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(log)
	}()

	// Frames outlive the HTTP request's context only as long as the surface
	ctx, cancel := context.WithCancel(context.Background())
	var inflight sync.WaitGroup
	h.readLoop(ctx, s, &inflight, log)

	cancel()
	h.router.Detach(s)
	s.close()
	<-writerDone
	inflight.Wait()
	conn.Close()
	h.metrics.DecSurfaces()
	log.Info("Surface disconnected")
}

func (h *Handler) readLoop(ctx context.Context, s *surface, inflight *sync.WaitGroup, log *zap.Logger) {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame ipc.Frame
		if err := s.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}

		if ipc.Concurrent(frame.Channel) {
			inflight.Add(1)
			go func() {
				defer inflight.Done()
				h.router.Handle(ctx, s, frame)
			}()
			continue
		}
		h.router.Handle(ctx, s, frame)
	}
}

// surface is one connection, written to only by its writeLoop
type surface struct {
	id      id.SurfaceID
	conn    *websocket.Conn
	metrics *monitoring.Metrics

	out       chan ipc.Frame
	done      chan struct{}
	closeOnce sync.Once
}

func newSurface(conn *websocket.Conn, metrics *monitoring.Metrics) *surface {
	return &surface{
		id:      id.NewSurfaceID(),
		conn:    conn,
		metrics: metrics,
		out:     make(chan ipc.Frame, sendQueueSize),
		done:    make(chan struct{}),
	}
}

func (s *surface) ID() id.SurfaceID {
	return s.id
}

// Send blocks until the frame is queued, so chunks are never reordered or
// dropped while the surface is open
func (s *surface) Send(f ipc.Frame) error {
	select {
	case <-s.done:
		return ipc.ErrSurfaceClosed
	default:
	}

	select {
	case s.out <- f:
		return nil
	case <-s.done:
		return ipc.ErrSurfaceClosed
	}
}

func (s *surface) close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *surface) writeLoop(log *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case f := <-s.out:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(f); err != nil {
				log.Warn("WebSocket write error", zap.Error(err))
				s.fail()
				return
			}
			s.metrics.RecordMessage("out", f.Channel)
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				s.fail()
				return
			}
		case <-s.done:
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// fail closes the surface after a write error and unblocks the read loop
func (s *surface) fail() {
	s.close()
	s.conn.Close()
}
