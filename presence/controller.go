package presence

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/voxellabs/voxel-presence/client"
	"github.com/voxellabs/voxel-presence/internal/icon"
	"github.com/voxellabs/voxel-presence/internal/logging"
	"github.com/voxellabs/voxel-presence/internal/tasks"
	"github.com/voxellabs/voxel-presence/transport/ipc"
)

// Publisher is the connection the controller drives. *client.Client
// satisfies it.
type Publisher interface {
	Connect(ctx context.Context) error
	SetActivity(act client.Activity) error
	ClearActivity() error
	OnReady(fn func(info map[string]any))
	State() client.State
	StartedAt() time.Time
	Close() error
}

type IconResolver interface {
	Resolve(ctx context.Context, address string) (string, bool)
}

// Join describes the world or server the player just entered.
type Join struct {
	Singleplayer bool
	World        string
	ServerName   string
	Address      string
}

type Option func(*Controller)

func WithPublisher(p Publisher) Option { return func(c *Controller) { c.pub = p } }

func WithIconResolver(r IconResolver) Option { return func(c *Controller) { c.icons = r } }

func WithLogger(l zerolog.Logger) Option { return func(c *Controller) { c.log = l } }

func WithClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

// Controller owns the presence session. Every method is safe to call from
// host event handlers: nothing blocks on the network and no error escapes.
type Controller struct {
	cfg   Config
	pub   Publisher
	icons IconResolver
	pool  *tasks.Pool
	log   zerolog.Logger
	now   func() time.Time

	mu      sync.Mutex
	started bool
	stopped bool
	// gen counts publish requests; a multiplayer join publishes only if
	// nothing newer was requested while its icon resolved.
	gen       uint64
	pending   *multiplayerJoin
	resolving bool
}

type multiplayerJoin struct {
	name    string
	address string
	at      time.Time
	gen     uint64
}

func New(cfg Config, opts ...Option) *Controller {
	c := &Controller{
		cfg: cfg,
		log: logging.Component("presence"),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.pub == nil {
		c.pub = client.NewClient(cfg.ClientID, client.WithLogger(logging.Component("rpc")))
	}
	if c.icons == nil {
		l := logging.Component("icon")
		c.icons = icon.New(icon.Options{
			Endpoint: cfg.IconEndpoint,
			Timeout:  cfg.IconTimeout,
			Logger:   &l,
		})
	}
	c.pool = tasks.NewPool(cfg.MaxTasks, &c.log)
	return c
}

// Start connects in the background. Only the first call does anything.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.started || c.stopped {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	c.pub.OnReady(func(map[string]any) { c.ShowMainMenu() })

	c.pool.Go("connect", func(ctx context.Context) {
		err := c.pub.Connect(ctx)
		switch {
		case err == nil:
			c.log.Info().Msg("handshake sent")
		case errors.Is(err, ipc.ErrNotFound):
			c.log.Warn().Err(err).Msg("no presence peer running, rich presence disabled")
		default:
			c.log.Warn().Err(err).Msg("could not connect, rich presence disabled")
		}
	})
}

// SessionStart is the instant the connection attempt began, zero before
// Start.
func (c *Controller) SessionStart() time.Time {
	return c.pub.StartedAt()
}

func (c *Controller) ShowMainMenu() {
	c.bump()
	c.publish("main menu", MainMenuActivity(c.cfg, c.SessionStart()))
}

func (c *Controller) ShowSingleplayer(world string) {
	c.bump()
	c.publish("singleplayer", SingleplayerActivity(c.cfg, world, c.now()))
}

func (c *Controller) ShowRealms(name string) {
	c.bump()
	c.publish("realms", RealmsActivity(c.cfg, name, c.now()))
}

// ShowMultiplayer resolves the server icon in a pool task and publishes when
// it is done. The caller never waits. Joins arriving while an icon resolves
// replace each other; only the newest is resolved next and published.
func (c *Controller) ShowMultiplayer(name, address string) {
	if c.pub.State() != client.Ready {
		return
	}
	req := &multiplayerJoin{name: name, address: address, at: c.now()}

	c.mu.Lock()
	c.gen++
	req.gen = c.gen
	c.pending = req
	if c.resolving {
		c.mu.Unlock()
		return
	}
	c.resolving = true
	c.mu.Unlock()

	if !c.pool.Go("multiplayer", c.resolveMultiplayer) {
		c.mu.Lock()
		c.resolving = false
		c.pending = nil
		c.mu.Unlock()
	}
}

func (c *Controller) resolveMultiplayer(ctx context.Context) {
	for {
		c.mu.Lock()
		req := c.pending
		c.pending = nil
		if req == nil || ctx.Err() != nil {
			c.resolving = false
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()

		iconURL, _ := c.icons.Resolve(ctx, req.address)
		if ctx.Err() != nil {
			continue
		}
		if !c.current(req.gen) {
			c.log.Debug().Str("address", req.address).Msg("multiplayer join superseded")
			continue
		}
		c.publish("multiplayer", MultiplayerActivity(c.cfg, req.name, req.address, iconURL, req.at))
	}
}

func (c *Controller) bump() {
	c.mu.Lock()
	c.gen++
	c.mu.Unlock()
}

func (c *Controller) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen
}

// OnJoin routes a join to the matching preset.
func (c *Controller) OnJoin(j Join) {
	switch {
	case j.Singleplayer:
		c.ShowSingleplayer(j.World)
	case c.isRealm(j.Address):
		c.ShowRealms(j.ServerName)
	case j.Address != "" || j.ServerName != "":
		c.ShowMultiplayer(j.ServerName, j.Address)
	default:
		c.log.Debug().Msg("join without world or server, ignored")
	}
}

func (c *Controller) OnDisconnect() {
	c.ShowMainMenu()
}

func (c *Controller) Clear() {
	c.bump()
	if err := c.pub.ClearActivity(); err != nil {
		c.log.Warn().Err(err).Msg("clear activity failed")
	}
}

// Shutdown stops background work, clears the activity and closes the
// connection. Later calls are no-ops.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.mu.Unlock()

	// The publisher bounds its own close; once it is closed any task still in
	// the pool finds it inert and drops its publish.
	if err := c.pub.Close(); err != nil {
		c.log.Debug().Err(err).Msg("close")
	}
	c.pool.Close()
	c.log.Info().Msg("rich presence stopped")
}

func (c *Controller) isRealm(address string) bool {
	suffix := strings.ToLower(c.cfg.RealmsSuffix)
	return suffix != "" && address != "" && strings.HasSuffix(strings.ToLower(address), suffix)
}

func (c *Controller) publish(kind string, act client.Activity) {
	if err := c.pub.SetActivity(act); err != nil {
		c.log.Warn().Err(err).Str("activity", kind).Msg("publish failed")
		return
	}
	c.log.Debug().Str("activity", kind).Msg("activity published")
}
