package transport

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// State is the connection lifecycle position.
type State uint8

const (
	Disconnected State = iota
	Connecting
	Connected
	Backoff
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Backoff:
		return "backoff"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Config is the single-target session config.
type Config struct {
	Endpoint string
	UnitID   uint8
	Timeout  time.Duration

	// MinBackoff..MaxBackoff bound the reconnect delay. The delay
	// doubles on each consecutive failure and resets to MinBackoff
	// after one fully successful poll cycle.
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

func (c *Config) fill() {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.MinBackoff <= 0 {
		c.MinBackoff = time.Second
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = time.Minute
	}
}

// Manager owns exactly one session to the device and serializes every
// request through it. All reads and writes go through Do; the manager
// never retries a request, it only decides when dialing is allowed.
type Manager struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	cli     *client
	delay   time.Duration
	retryAt time.Time

	// pubState mirrors state for lock-free readers. Health probes read
	// it while a request holds mu across the wire.
	pubState atomic.Uint32

	// OnState observes every state transition. Set before first use.
	OnState func(State)

	now func() time.Time
}

// NewManager builds a manager in the Disconnected state. Nothing is
// dialed until the first Do.
func NewManager(cfg Config, logger *slog.Logger) *Manager {
	cfg.fill()
	return &Manager{
		cfg:    cfg,
		logger: logger,
		state:  Disconnected,
		now:    time.Now,
	}
}

// State returns the current connection state. It never blocks behind
// an in-flight request.
func (m *Manager) State() State {
	return State(m.pubState.Load())
}

func (m *Manager) setState(s State) {
	if m.state == s {
		return
	}
	m.state = s
	m.pubState.Store(uint32(s))
	if m.OnState != nil {
		m.OnState(s)
	}
}

// EnsureConnected dials if needed. Returns ErrBackoff while inside a
// backoff window, the dial error on a failed attempt (which also arms
// the next backoff window), nil when a session is open.
func (m *Manager) EnsureConnected() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureLocked()
}

func (m *Manager) ensureLocked() error {
	if m.cli != nil {
		return nil
	}
	if m.state == Backoff && m.now().Before(m.retryAt) {
		return ErrBackoff
	}

	m.setState(Connecting)
	cli, err := dial(m.cfg.Endpoint, m.cfg.UnitID, m.cfg.Timeout, m.logger)
	if err != nil {
		m.armBackoffLocked()
		m.logger.Warn("connect failed",
			"endpoint", m.cfg.Endpoint, "retry_in", m.delay, "error", err)
		return err
	}

	m.cli = cli
	m.setState(Connected)
	m.logger.Info("connected", "endpoint", m.cfg.Endpoint)
	return nil
}

func (m *Manager) armBackoffLocked() {
	if m.delay == 0 {
		m.delay = m.cfg.MinBackoff
	} else {
		m.delay *= 2
		if m.delay > m.cfg.MaxBackoff {
			m.delay = m.cfg.MaxBackoff
		}
	}
	m.retryAt = m.now().Add(m.delay)
	m.setState(Backoff)
}

// Do runs one wire operation against the open session, dialing first
// if allowed. A fatal error (socket failure, timeout) tears the
// session down and arms the backoff window; device exceptions and
// protocol mismatches are returned untouched with the session kept.
func (m *Manager) Do(op func(*client) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureLocked(); err != nil {
		return err
	}

	err := op(m.cli)
	if Fatal(err) {
		_ = m.cli.close()
		m.cli = nil
		m.armBackoffLocked()
		m.logger.Warn("session lost",
			"endpoint", m.cfg.Endpoint, "retry_in", m.delay, "error", err)
	}
	return err
}

// ReadHolding reads qty holding registers starting at addr (FC 3).
func (m *Manager) ReadHolding(addr, qty uint16) ([]uint16, error) {
	var regs []uint16
	err := m.Do(func(c *client) error {
		var err error
		regs, err = c.readRegisters(fcReadHolding, addr, qty)
		return err
	})
	return regs, err
}

// ReadInput reads qty input registers starting at addr (FC 4).
func (m *Manager) ReadInput(addr, qty uint16) ([]uint16, error) {
	var regs []uint16
	err := m.Do(func(c *client) error {
		var err error
		regs, err = c.readRegisters(fcReadInput, addr, qty)
		return err
	})
	return regs, err
}

// WriteSingle writes one holding register (FC 6).
func (m *Manager) WriteSingle(addr, value uint16) error {
	return m.Do(func(c *client) error {
		return c.writeSingle(addr, value)
	})
}

// WriteMultiple writes a contiguous run of holding registers in one
// request (FC 16), so multi-word values are never torn on the device.
func (m *Manager) WriteMultiple(addr uint16, values []uint16) error {
	return m.Do(func(c *client) error {
		return c.writeMultiple(addr, values)
	})
}

// ResetBackoff clears the failure streak. Called after a fully
// successful poll cycle.
func (m *Manager) ResetBackoff() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = 0
}

// Close tears the session down for shutdown.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	err := m.cli.close()
	m.cli = nil
	m.setState(Disconnected)
	return err
}
