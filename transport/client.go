// Package transport implements the reliable-ish UDP link to the actuator controller: every
// command is sent several times in a row, acknowledgements are matched back to the packets
// they echo, and the link is considered lost when nothing comes back for a while.
package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/time/rate"

	"go.viam.com/forcefeedback/logging"
	"go.viam.com/forcefeedback/packet"
	"go.viam.com/forcefeedback/utils"
)

var (
	// ErrNoRoute is returned when sending before the controller's address is known.
	ErrNoRoute = errors.New("controller address not resolved")
	// ErrClosed is returned when using a closed client.
	ErrClosed = errors.New("transport client closed")
)

// State is the connection state of a client.
type State int

// Connection states.
const (
	StateDisconnected State = iota
	StateResolving
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateResolving:
		return "resolving"
	case StateConnected:
		return "connected"
	}
	return "unknown"
}

// Stats summarizes the health of the link.
type Stats struct {
	PacketDropPercent     float64
	MessageFailurePercent float64
	AvgAckDelay           time.Duration
	// ResolvedAt is when the controller's address was last resolved, on the client's timebase.
	ResolvedAt    time.Duration
	Connected     bool
	ReceivingAcks bool
}

// Client talks to the actuator controller. SendCommand, CheckTimeout and UpdateVoltage are
// meant to be called from the control loop; replies are handled by background workers.
type Client struct {
	cfg       Config
	logger    logging.Logger
	tb        *utils.Timebase
	resolver  Resolver
	conn      net.PacketConn
	sessionID uuid.UUID
	workers   utils.StoppableWorkers
	inbound   chan inboundPacket
	badLog    rate.Sometimes
	staleLog  rate.Sometimes

	mu                    sync.Mutex
	state                 State
	addr                  net.Addr
	resolving             bool
	resolvedAt            time.Duration
	lastReconnectAttempt  time.Duration
	receivingAcks         bool
	lastReceivedTimestamp float32
	lastSentTimestamp     float32
	window                *ackWindow
	voltage               float32
	voltageAt             time.Duration
	hasVoltage            bool
	lastVoltageRequest    time.Duration
	hasRequestedVoltage   bool
	closed                bool
}

// NewClient binds the local port, starts resolving the controller's address in the background
// and starts the receive workers.
func NewClient(ctx context.Context, cfg Config, logger logging.Logger, opts ...Option) (*Client, error) {
	if err := cfg.Validate("transport"); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt.apply(&o)
	}
	if o.timebase == nil {
		o.timebase = utils.NewTimebase(nil)
	}
	if o.resolver == nil {
		o.resolver = net.DefaultResolver
	}
	if o.conn == nil {
		var lc net.ListenConfig
		conn, err := lc.ListenPacket(ctx, "udp4", fmt.Sprintf(":%d", cfg.ListenPort))
		if err != nil {
			return nil, errors.Wrapf(err, "cannot listen on port %d", cfg.ListenPort)
		}
		o.conn = conn
	}

	c := &Client{
		cfg:       cfg,
		tb:        o.timebase,
		resolver:  o.resolver,
		conn:      o.conn,
		sessionID: uuid.New(),
		inbound:   make(chan inboundPacket, 4*cfg.DuplicateSends),
		badLog:    rate.Sometimes{First: 3, Interval: 5 * time.Second},
		staleLog:  rate.Sometimes{First: 3, Interval: 5 * time.Second},
		state:     StateDisconnected,
		window:    newAckWindow(cfg.WindowSize, cfg.DuplicateSends),
	}
	c.logger = logger.With("session", c.sessionID.String())
	c.workers = utils.NewStoppableWorkers(c.readLoop, c.processLoop)
	c.logger.Infow("transport started", "local", c.conn.LocalAddr(), "host", cfg.Host)

	c.mu.Lock()
	c.startResolveLocked(c.tb.Now())
	c.mu.Unlock()
	return c, nil
}

// SessionID identifies this client in logs.
func (c *Client) SessionID() uuid.UUID {
	return c.sessionID
}

// LocalAddr is the address replies must be sent to.
func (c *Client) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// SendCommand writes a packet to the controller DuplicateSends times. New control packets are
// tracked for acknowledgement. It never blocks on the network beyond the socket writes.
func (c *Client) SendCommand(left, right int32, mt packet.MessageType, timestamp float32) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	addr := c.addr
	if addr == nil {
		c.mu.Unlock()
		return ErrNoRoute
	}
	if timestamp > c.lastSentTimestamp && mt.IsControl() {
		c.window.push(timestamp, c.tb.Now())
		c.lastSentTimestamp = timestamp
	}
	c.mu.Unlock()

	buf := packet.NewCommand(left, right, mt, timestamp).Marshal()
	var err error
	for i := 0; i < c.cfg.DuplicateSends; i++ {
		if _, writeErr := c.conn.WriteTo(buf, addr); writeErr != nil {
			err = multierr.Append(err, writeErr)
		}
	}
	return errors.Wrap(err, "send")
}

// CheckTimeout clears the receiving-acks flag when nothing has been acknowledged for the
// connection timeout, and starts a new resolution if the last attempt is old enough. It
// returns true while timed out.
func (c *Client) CheckTimeout() bool {
	now := c.tb.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if now-utils.FromSeconds(c.lastReceivedTimestamp) <= c.cfg.connectionTimeout() {
		return false
	}
	c.receivingAcks = false
	if now-c.lastReconnectAttempt > c.cfg.reconnectInterval() {
		c.logger.Infow("connection timeout detected")
		c.startResolveLocked(now)
	}
	return true
}

// UpdateVoltage sends a voltage request if the last one is older than the voltage interval.
func (c *Client) UpdateVoltage() error {
	now := c.tb.Now()
	c.mu.Lock()
	due := !c.hasRequestedVoltage || now-c.lastVoltageRequest > c.cfg.voltageInterval()
	routed := c.addr != nil
	if due && routed {
		c.lastVoltageRequest = now
		c.hasRequestedVoltage = true
	}
	c.mu.Unlock()
	if !due || !routed {
		return nil
	}
	return c.SendCommand(0, 0, packet.MessageVoltage, utils.Seconds(now))
}

// Voltage returns the last battery reading and whether one was received.
func (c *Client) Voltage() (float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.voltage, c.hasVoltage
}

// State returns the connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connected reports whether the controller's address is resolved and it is acknowledging.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateConnected && c.receivingAcks
}

// ReceivingAcks reports whether acknowledgements arrived within the connection timeout.
func (c *Client) ReceivingAcks() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.receivingAcks
}

// HasRoute reports whether sends have somewhere to go.
func (c *Client) HasRoute() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addr != nil
}

// LastReceivedTimestamp is the newest timestamp echoed by the controller.
func (c *Client) LastReceivedTimestamp() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastReceivedTimestamp
}

// Stats returns the link statistics.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		PacketDropPercent:     c.window.dropPercent,
		MessageFailurePercent: c.window.failurePercent,
		AvgAckDelay:           c.window.avgAckDelay,
		ResolvedAt:            c.resolvedAt,
		Connected:             c.state == StateConnected,
		ReceivingAcks:         c.receivingAcks,
	}
}

// Close releases the socket and waits for the workers to return.
func (c *Client) Close(context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.state = StateDisconnected
	c.mu.Unlock()

	// closing the socket unblocks the reader
	err := c.conn.Close()
	c.workers.Stop()
	c.logger.Infow("transport stopped")
	return errors.Wrap(err, "cannot close socket")
}

func (c *Client) startResolveLocked(now time.Duration) {
	c.lastReconnectAttempt = now
	if c.resolving || c.closed {
		return
	}
	c.resolving = true
	c.state = StateResolving
	c.workers.AddWorkers(c.resolve)
}

func (c *Client) resolve(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.reconnectInterval())
	defer cancel()

	addr, err := c.lookup(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolving = false
	if c.closed {
		return
	}
	if err != nil {
		c.logger.Warnw("cannot resolve controller", "host", c.cfg.Host, "error", err)
		return
	}
	if c.addr == nil || c.addr.String() != addr.String() {
		c.logger.Infow("controller resolved", "addr", addr)
	}
	c.addr = addr
	c.state = StateConnected
	c.resolvedAt = c.tb.Now()
}

func (c *Client) lookup(ctx context.Context) (net.Addr, error) {
	hosts, err := c.resolver.LookupHost(ctx, c.cfg.Host)
	if err != nil {
		return nil, err
	}
	var fallback net.IP
	for _, h := range hosts {
		ip := net.ParseIP(h)
		if ip == nil {
			continue
		}
		if ip4 := ip.To4(); ip4 != nil {
			return &net.UDPAddr{IP: ip4, Port: c.cfg.Port}, nil
		}
		if fallback == nil {
			fallback = ip
		}
	}
	if fallback == nil {
		return nil, errors.Errorf("host %q has no assigned IP address", c.cfg.Host)
	}
	return &net.UDPAddr{IP: fallback, Port: c.cfg.Port}, nil
}
