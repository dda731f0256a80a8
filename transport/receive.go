package transport

import (
	"context"
	"net"
	"time"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/forcefeedback/packet"
)

type inboundPacket struct {
	pkt     packet.Packet
	arrival time.Duration
}

// readLoop decodes datagrams and hands them to processLoop. It returns once the socket is
// closed.
func (c *Client) readLoop(ctx context.Context) {
	buf := make([]byte, 2*packet.Size)
	for {
		n, from, err := c.conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return
			}
			c.logger.Warnw("receive failed", "error", err)
			if !goutils.SelectContextOrWait(ctx, 10*time.Millisecond) {
				return
			}
			continue
		}
		pkt, err := packet.Unmarshal(buf[:n])
		if err != nil {
			c.badLog.Do(func() {
				c.logger.Warnw("discarding malformed packet", "from", from, "error", err)
			})
			continue
		}

		select {
		case c.inbound <- inboundPacket{pkt: pkt, arrival: c.tb.Now()}:
		case <-ctx.Done():
			return
		default:
			c.badLog.Do(func() {
				c.logger.Warnw("inbound queue full, dropping packet", "timestamp", pkt.Value)
			})
		}
	}
}

// processLoop owns updates of the session state made on behalf of the controller.
func (c *Client) processLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case in := <-c.inbound:
			c.handle(in)
		}
	}
}

func (c *Client) handle(in inboundPacket) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pkt := in.pkt
	if pkt.MessageType == packet.MessageVoltage {
		if !c.hasVoltage || in.arrival > c.voltageAt {
			c.voltage = pkt.Value
			c.voltageAt = in.arrival
			c.hasVoltage = true
			c.logger.Debugw("voltage received", "volts", pkt.Value)
		}
		return
	}

	if pkt.Value > c.lastReceivedTimestamp {
		c.lastReceivedTimestamp = pkt.Value
	}
	c.receivingAcks = true
	if _, ok := c.window.ack(pkt.Value, in.arrival); !ok {
		c.staleLog.Do(func() {
			c.logger.Debugw("stale acknowledgement", "timestamp", pkt.Value)
		})
	}
}
