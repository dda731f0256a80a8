// Package fake implements a stand-in for the actuator controller that echoes every packet it
// receives. It does not drive any actuator.
package fake

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"go.viam.com/forcefeedback/logging"
	"go.viam.com/forcefeedback/packet"
	"go.viam.com/forcefeedback/utils"
)

// DefaultVoltage is the battery reading reported until another one is set.
const DefaultVoltage = 8.4

// Controller echoes packets back to their sender.
type Controller struct {
	conn    net.PacketConn
	logger  logging.Logger
	workers utils.StoppableWorkers

	voltage  atomic.Float32
	lossRate atomic.Float64
	received atomic.Int64
	echoed   atomic.Int64

	mu       sync.Mutex
	rng      *rand.Rand
	last     packet.Packet
	lastFrom net.Addr
}

// NewController listens on the given UDP address, for example "127.0.0.1:0".
func NewController(ctx context.Context, address string, logger logging.Logger) (*Controller, error) {
	var lc net.ListenConfig
	conn, err := lc.ListenPacket(ctx, "udp4", address)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot listen on %s", address)
	}
	c := &Controller{
		conn:   conn,
		logger: logger,
		rng:    rand.New(rand.NewSource(1)), //nolint:gosec
	}
	c.voltage.Store(DefaultVoltage)
	c.workers = utils.NewStoppableWorkers(c.serve)
	return c, nil
}

// Addr is the address the controller listens on.
func (c *Controller) Addr() *net.UDPAddr {
	//nolint:forcetypeassert
	return c.conn.LocalAddr().(*net.UDPAddr)
}

// Port is the port the controller listens on.
func (c *Controller) Port() int {
	return c.Addr().Port
}

// SetVoltage sets the reading sent back to voltage requests.
func (c *Controller) SetVoltage(volts float32) {
	c.voltage.Store(volts)
}

// SetLossRate drops the given fraction of replies, between 0 and 1.
func (c *Controller) SetLossRate(rate float64) {
	c.lossRate.Store(rate)
}

// Received is the number of valid packets received.
func (c *Controller) Received() int {
	return int(c.received.Load())
}

// Echoed is the number of replies sent.
func (c *Controller) Echoed() int {
	return int(c.echoed.Load())
}

// Last returns the last packet received and its sender.
func (c *Controller) Last() (packet.Packet, net.Addr) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.lastFrom
}

func (c *Controller) String() string {
	return fmt.Sprintf("fake controller on %s", c.conn.LocalAddr())
}

// Close stops the controller.
func (c *Controller) Close() error {
	err := c.conn.Close()
	c.workers.Stop()
	return err
}

func (c *Controller) serve(ctx context.Context) {
	buf := make([]byte, 2*packet.Size)
	out := make([]byte, packet.Size)
	for {
		n, from, err := c.conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return
			}
			c.logger.Warnw("receive failed", "error", err)
			continue
		}
		pkt, err := packet.Unmarshal(buf[:n])
		if err != nil {
			c.logger.Debugw("ignoring malformed packet", "from", from, "error", err)
			continue
		}
		c.received.Inc()

		c.mu.Lock()
		c.last = pkt
		c.lastFrom = from
		drop := c.rng.Float64() < c.lossRate.Load()
		c.mu.Unlock()
		if drop {
			continue
		}

		if pkt.MessageType == packet.MessageVoltage {
			pkt.Value = c.voltage.Load()
		}
		pkt.MarshalTo(out)
		if _, err := c.conn.WriteTo(out, from); err != nil {
			c.logger.Debugw("echo failed", "to", from, "error", err)
			continue
		}
		c.echoed.Inc()
	}
}
