package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Signal/internal/app/orch"
	"github.com/dkeye/Signal/internal/core"
)

// Settings tunes every connection accepted by a controller.
type Settings struct {
	ReadLimit  int64
	PingPeriod time.Duration
	PongWait   time.Duration
	WriteWait  time.Duration
	SendBuffer int
}

func DefaultSettings() Settings {
	return Settings{
		ReadLimit:  10_000_000,
		PingPeriod: 25 * time.Second,
		PongWait:   60 * time.Second,
		WriteWait:  10 * time.Second,
		SendBuffer: 256,
	}
}

type SignalWSController struct {
	Orch     *orch.Orchestrator
	Limiter  *RateLimiter
	settings Settings
}

func NewSignalWSController(o *orch.Orchestrator, limiter *RateLimiter, settings Settings) *SignalWSController {
	if limiter == nil {
		limiter = NewRateLimiter(0, 0)
	}
	return &SignalWSController{
		Orch:     o,
		Limiter:  limiter,
		settings: settings,
	}
}

// WsSignalConn is the core.SignalConnection of one WebSocket.
// Only writePump writes to the socket.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
	cancel context.CancelFunc
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
	c.cancel()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and serves it until the socket closes
// or ctx is done.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.settings.ReadLimit)

	ctx, cancel := context.WithCancel(ctx)
	conn := &WsSignalConn{
		conn:   ws,
		send:   make(chan core.Frame, ctl.settings.SendBuffer),
		cancel: cancel,
	}
	pid := ctl.Orch.Connect(conn)
	log.Info().Str("module", "signal").Str("peer_id", string(pid)).Str("remote", c.ClientIP()).Msg("new WS connection")

	go ctl.writePump(ctx, conn)
	go ctl.readPump(pid, conn)
}
