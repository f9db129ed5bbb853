package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/voxellabs/voxel-presence/internal/codec"
	"github.com/voxellabs/voxel-presence/transport/ipc"
)

const (
	cmdSetActivity      = "SET_ACTIVITY"
	defaultCloseTimeout = time.Second
)

var (
	ErrAlreadyStarted = errors.New("client: connect already attempted")
	ErrClosed         = errors.New("client: closed")
	ErrPeerClosed     = errors.New("client: peer closed the connection")
)

var readyMarker = []byte(`"READY"`)

// Dialer opens the transport handle.
type Dialer func(ctx context.Context) (*ipc.Conn, error)

type Option func(*Client)

func WithDialer(d Dialer) Option { return func(c *Client) { c.dial = d } }

func WithLogger(l zerolog.Logger) Option { return func(c *Client) { c.log = l } }

func WithPID(pid int) Option { return func(c *Client) { c.pid = pid } }

func WithClock(now func() time.Time) Option { return func(c *Client) { c.now = now } }

// WithCloseTimeout bounds how long Close waits to write the clear frame.
func WithCloseTimeout(d time.Duration) Option { return func(c *Client) { c.closeTimeout = d } }

// Client owns the single transport handle and drives the handshake. One
// Client makes at most one connection attempt in its lifetime.
type Client struct {
	AppID string

	dial Dialer
	log  zerolog.Logger
	pid  int
	now  func() time.Time

	closeTimeout time.Duration

	// event callbacks; set them before Connect
	onReady func(map[string]any)
	onError func(error)
	onClose func()

	mu        sync.Mutex
	state     State
	started   bool
	transport *ipc.Conn
	startedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewClient(appID string, opts ...Option) *Client {
	c := &Client{
		AppID:        appID,
		dial:         ipc.Dial,
		log:          log.Logger,
		pid:          os.Getpid(),
		now:          time.Now,
		closeTimeout: defaultCloseTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) OnReady(fn func(info map[string]any)) { c.onReady = fn }
func (c *Client) OnError(fn func(err error))           { c.onError = fn }
func (c *Client) OnClose(fn func())                    { c.onClose = fn }

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StartedAt is the session start: the instant Connect was first called. It
// is zero before that.
func (c *Client) StartedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startedAt
}

// Connect locates the peer, sends the handshake and starts the reader. It
// does not wait for READY.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.started || c.state != Disconnected {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	c.startedAt = c.now()
	c.mu.Unlock()

	conn, err := c.dial(ctx)
	if err != nil {
		c.setState(Closed)
		return fmt.Errorf("dial ipc: %w", err)
	}

	c.mu.Lock()
	if c.state == Closed {
		c.mu.Unlock()
		_ = conn.Close()
		return ErrClosed
	}
	c.transport = conn
	c.state = Connecting
	c.mu.Unlock()
	c.log.Debug().Str("path", conn.Path()).Msg("connected to ipc endpoint")

	hs := ipc.Handshake{Version: 1, ClientID: c.AppID}
	if err := conn.SendOp(ipc.OpHandshake, hs); err != nil {
		c.fail(conn, err)
		return fmt.Errorf("handshake send: %w", err)
	}

	readCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.mu.Lock()
	if c.state != Connecting {
		c.mu.Unlock()
		cancel()
		return ErrClosed
	}
	c.state = HandshakeSent
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()
	c.log.Debug().Str("client_id", c.AppID).Msg("handshake sent")

	go c.readLoop(readCtx, conn, done)
	return nil
}

// Close clears the activity if the peer is ready, stops the reader and
// releases the handle. Calling it again is a no-op.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.state == Closed {
		c.mu.Unlock()
		return nil
	}
	wasReady := c.state == Ready
	conn := c.transport
	cancel := c.cancel
	done := c.done
	c.state = Closed
	c.transport = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn == nil {
		return nil
	}
	if wasReady {
		// A stalled peer can leave a publish holding the write lock; closing
		// the handle after the timeout fails both writes and lets Close finish.
		stop := time.AfterFunc(c.closeTimeout, func() { _ = conn.Close() })
		if err := conn.SendOp(ipc.OpFrame, c.command(nil)); err != nil {
			c.log.Debug().Err(err).Msg("clear on close failed")
		}
		stop.Stop()
	}
	err := conn.Close()
	if done != nil {
		<-done
	}
	c.log.Debug().Msg("connection closed")
	return err
}

func (c *Client) SetActivity(act Activity) error {
	a := act.sanitize()
	return c.send(&a)
}

// ClearActivity sends SET_ACTIVITY without an activity.
func (c *Client) ClearActivity() error {
	return c.send(nil)
}

type commandArgs struct {
	PID      int       `json:"pid"`
	Activity *Activity `json:"activity,omitempty"`
}

type command struct {
	Cmd   string      `json:"cmd"`
	Args  commandArgs `json:"args"`
	Nonce string      `json:"nonce"`
}

func (c *Client) command(act *Activity) command {
	return command{
		Cmd:   cmdSetActivity,
		Args:  commandArgs{PID: c.pid, Activity: act},
		Nonce: uuid.NewString(),
	}
}

// send drops the activity unless the peer is ready. A write failure leaves
// the client closed.
func (c *Client) send(act *Activity) error {
	c.mu.Lock()
	if c.state != Ready || c.transport == nil {
		state := c.state
		c.mu.Unlock()
		c.log.Debug().Str("state", state.String()).Msg("activity dropped, peer not ready")
		return nil
	}
	conn := c.transport
	c.mu.Unlock()

	payload := c.command(act)
	if e := c.log.Trace(); e.Enabled() {
		if b, err := codec.MarshalIndent(payload); err == nil {
			e.Msgf("outgoing SET_ACTIVITY payload:\n%s", b)
		}
	}

	if err := conn.SendOp(ipc.OpFrame, payload); err != nil {
		c.fail(conn, err)
		return fmt.Errorf("send activity: %w", err)
	}
	return nil
}

func (c *Client) readLoop(ctx context.Context, conn *ipc.Conn, done chan struct{}) {
	defer close(done)
	for {
		f, err := conn.Receive()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			switch {
			case errors.Is(err, io.EOF):
				c.log.Info().Msg("peer closed the connection")
			case errors.Is(err, ipc.ErrMalformedFrame):
				c.log.Warn().Err(err).Msg("malformed frame from peer")
			default:
				c.log.Warn().Err(err).Msg("transport receive error")
			}
			c.fail(conn, err)
			return
		}

		switch f.Op {
		case ipc.OpPing:
			if err := conn.SendRaw(ipc.EncodeFrame(ipc.OpPong, f.Payload)); err != nil {
				c.fail(conn, err)
				return
			}
		case ipc.OpClose:
			c.log.Info().RawJSON("payload", safeJSON(f.Payload)).Msg("peer sent close")
			c.fail(conn, ErrPeerClosed)
			return
		case ipc.OpFrame:
			c.handleIncoming(f.Payload)
		default:
			c.log.Debug().Stringer("op", f.Op).Msg("ignoring frame")
		}

		if c.State() == Closed {
			return
		}
	}
}

type incoming struct {
	Cmd  string         `json:"cmd"`
	Evt  string         `json:"evt"`
	Data map[string]any `json:"data"`
}

func (c *Client) handleIncoming(payload []byte) {
	var doc incoming
	if err := codec.Unmarshal(payload, &doc); err != nil {
		c.log.Debug().Err(err).Msg("failed decode payload")
	}

	if bytes.Contains(payload, readyMarker) {
		c.mu.Lock()
		becameReady := c.state == HandshakeSent
		if becameReady {
			c.state = Ready
		}
		c.mu.Unlock()
		if becameReady {
			c.log.Info().Msg("rpc ready")
			if c.onReady != nil {
				c.onReady(doc.Data)
			}
		}
		return
	}

	if doc.Evt == "ERROR" {
		err := fmt.Errorf("peer error: %v", doc.Data["message"])
		c.log.Warn().Err(err).Str("cmd", doc.Cmd).Msg("peer reported an error")
		if c.onError != nil {
			c.onError(err)
		}
		return
	}
	c.log.Trace().Str("cmd", doc.Cmd).Str("evt", doc.Evt).Msg("incoming frame")
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// fail moves the client to Closed after a fatal transport error.
func (c *Client) fail(conn *ipc.Conn, err error) {
	c.mu.Lock()
	if c.state == Closed {
		c.mu.Unlock()
		return
	}
	c.state = Closed
	c.transport = nil
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	_ = conn.Close()
	if c.onError != nil && !errors.Is(err, io.EOF) && !errors.Is(err, ErrPeerClosed) {
		c.onError(err)
	}
	if c.onClose != nil {
		c.onClose()
	}
}

func safeJSON(b []byte) []byte {
	if len(b) == 0 {
		return []byte("null")
	}
	var v any
	if codec.Unmarshal(b, &v) != nil {
		return []byte("null")
	}
	return b
}
