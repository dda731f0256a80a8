package transport

import (
	"context"
	"net"

	"github.com/benbjohnson/clock"

	"go.viam.com/forcefeedback/utils"
)

// A Resolver looks up the controller's addresses. *net.Resolver satisfies it.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// options configures a Client.
type options struct {
	timebase *utils.Timebase
	resolver Resolver
	conn     net.PacketConn
}

// Option configures how we set up the client.
// Cribbed from https://github.com/grpc/grpc-go/blob/aff571cc86e6e7e740130dbbb32a9741558db805/dialoptions.go#L41
type Option interface {
	apply(*options)
}

// funcOption wraps a function that modifies options into an
// implementation of the Option interface.
type funcOption struct {
	f func(*options)
}

func (fdo *funcOption) apply(do *options) {
	fdo.f(do)
}

func newFuncOption(f func(*options)) *funcOption {
	return &funcOption{
		f: f,
	}
}

// WithTimebase returns an Option which shares the control loop's timebase, so that ack
// latency and timeouts are measured on the same clock as the packet timestamps.
func WithTimebase(tb *utils.Timebase) Option {
	return newFuncOption(func(o *options) {
		o.timebase = tb
	})
}

// WithClock returns an Option which measures time with the given clock.
func WithClock(clk clock.Clock) Option {
	return newFuncOption(func(o *options) {
		o.timebase = utils.NewTimebase(clk)
	})
}

// WithResolver returns an Option which resolves the controller's hostname with r.
func WithResolver(r Resolver) Option {
	return newFuncOption(func(o *options) {
		o.resolver = r
	})
}

// WithPacketConn returns an Option which uses an already bound connection instead of listening
// on the configured port. The client takes ownership and closes it.
func WithPacketConn(conn net.PacketConn) Option {
	return newFuncOption(func(o *options) {
		o.conn = conn
	})
}
