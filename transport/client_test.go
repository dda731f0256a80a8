package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"go.viam.com/forcefeedback/logging"
	"go.viam.com/forcefeedback/packet"
	"go.viam.com/forcefeedback/transport/fake"
)

type countingResolver struct {
	calls atomic.Int32
	err   error
}

func (r *countingResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	r.calls.Inc()
	if r.err != nil {
		return nil, r.err
	}
	return net.DefaultResolver.LookupHost(ctx, host)
}

func testConfig(port int) Config {
	cfg := DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = port
	cfg.ListenPort = 0
	return cfg
}

func newConnectedClient(
	t *testing.T,
	cfg Config,
	logger logging.Logger,
	opts ...Option,
) (*Client, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	c, err := NewClient(context.Background(), cfg, logger, append([]Option{WithClock(mock)}, opts...)...)
	test.That(t, err, test.ShouldBeNil)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, c.State(), test.ShouldEqual, StateConnected)
	})
	return c, mock
}

func newController(t *testing.T) *fake.Controller {
	t.Helper()
	ctrl, err := fake.NewController(context.Background(), "127.0.0.1:0", logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return ctrl
}

func (c *Client) outstandingFor(ts float32) (outstanding, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.window.find(ts)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	test.That(t, cfg.Validate("transport"), test.ShouldBeNil)

	cfg.Host = ""
	err := cfg.Validate("transport")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "host")

	cfg = DefaultConfig()
	cfg.Port = 70000
	test.That(t, cfg.Validate("transport"), test.ShouldNotBeNil)

	cfg = DefaultConfig()
	cfg.DuplicateSends = 0
	test.That(t, cfg.Validate("transport"), test.ShouldNotBeNil)
}

func TestSendAndAcknowledge(t *testing.T) {
	ctrl := newController(t)
	defer ctrl.Close()
	c, mock := newConnectedClient(t, testConfig(ctrl.Port()), logging.NewTestLogger(t))
	defer func() {
		test.That(t, c.Close(context.Background()), test.ShouldBeNil)
	}()
	test.That(t, c.HasRoute(), test.ShouldBeTrue)
	test.That(t, c.SessionID().String(), test.ShouldNotBeEmpty)

	test.That(t, c.SendCommand(122, 106, packet.MessageNoneForced, 1), test.ShouldBeNil)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, ctrl.Received(), test.ShouldEqual, 5)
		e, ok := c.outstandingFor(1)
		test.That(tb, ok, test.ShouldBeTrue)
		test.That(tb, e.acks, test.ShouldEqual, 5)
	})
	last, _ := ctrl.Last()
	test.That(t, last, test.ShouldResemble, packet.NewCommand(122, 106, packet.MessageNoneForced, 1))
	test.That(t, c.ReceivingAcks(), test.ShouldBeTrue)
	test.That(t, c.Connected(), test.ShouldBeTrue)
	test.That(t, c.LastReceivedTimestamp(), test.ShouldEqual, float32(1))

	// a late duplicate counts but does not move the first ack
	first, _ := c.outstandingFor(1)
	mock.Add(time.Second)
	c.handle(inboundPacket{pkt: packet.NewCommand(122, 106, packet.MessageNoneForced, 1), arrival: time.Second})
	e, _ := c.outstandingFor(1)
	test.That(t, e.acks, test.ShouldEqual, 6)
	test.That(t, e.firstAck, test.ShouldEqual, first.firstAck)

	// resending an old timestamp is not tracked again
	test.That(t, c.SendCommand(122, 106, packet.MessageNoneForced, 1), test.ShouldBeNil)
	c.mu.Lock()
	test.That(t, len(c.window.entries), test.ShouldEqual, 1)
	c.mu.Unlock()
}

func TestDropStatistics(t *testing.T) {
	ctrl := newController(t)
	defer ctrl.Close()
	cfg := testConfig(ctrl.Port())
	cfg.WindowSize = 1
	c, _ := newConnectedClient(t, cfg, logging.NewTestLogger(t))
	defer c.Close(context.Background())

	sendAndWait := func(ts float32, received, acks int) {
		t.Helper()
		test.That(t, c.SendCommand(100, 100, packet.MessageNoneForced, ts), test.ShouldBeNil)
		testutils.WaitForAssertion(t, func(tb testing.TB) {
			tb.Helper()
			test.That(tb, ctrl.Received(), test.ShouldEqual, received)
			e, ok := c.outstandingFor(ts)
			test.That(tb, ok, test.ShouldBeTrue)
			test.That(tb, e.acks, test.ShouldEqual, acks)
		})
	}

	sendAndWait(1, 5, 5)
	sendAndWait(2, 10, 5)
	stats := c.Stats()
	test.That(t, stats.PacketDropPercent, test.ShouldEqual, 0)
	test.That(t, stats.MessageFailurePercent, test.ShouldEqual, 0)
	test.That(t, stats.Connected, test.ShouldBeTrue)

	ctrl.SetLossRate(1)
	sendAndWait(3, 15, 0)
	sendAndWait(4, 20, 0)
	stats = c.Stats()
	test.That(t, stats.PacketDropPercent, test.ShouldEqual, 100)
	test.That(t, stats.MessageFailurePercent, test.ShouldEqual, 100)
}

func TestStaleAcknowledgement(t *testing.T) {
	ctrl := newController(t)
	defer ctrl.Close()
	logger, logs := logging.NewObservedTestLogger(t)
	c, _ := newConnectedClient(t, testConfig(ctrl.Port()), logger)
	defer c.Close(context.Background())

	c.handle(inboundPacket{pkt: packet.NewCommand(0, 0, packet.MessageBothForced, 42)})
	stale := logs.FilterMessage("stale acknowledgement").All()
	test.That(t, stale, test.ShouldHaveLength, 1)
	test.That(t, stale[0].ContextMap()["session"], test.ShouldEqual, c.SessionID().String())
	test.That(t, c.LastReceivedTimestamp(), test.ShouldEqual, float32(42))
	test.That(t, c.ReceivingAcks(), test.ShouldBeTrue)
}

func TestTimeoutAndReconnect(t *testing.T) {
	ctrl := newController(t)
	defer ctrl.Close()
	resolver := &countingResolver{}
	c, mock := newConnectedClient(t, testConfig(ctrl.Port()), logging.NewTestLogger(t), WithResolver(resolver))
	defer c.Close(context.Background())
	test.That(t, resolver.calls.Load(), test.ShouldEqual, 1)
	test.That(t, c.Stats().ResolvedAt, test.ShouldEqual, time.Duration(0))

	test.That(t, c.CheckTimeout(), test.ShouldBeFalse)

	mock.Add(1500 * time.Millisecond)
	test.That(t, c.CheckTimeout(), test.ShouldBeTrue)
	test.That(t, c.ReceivingAcks(), test.ShouldBeFalse)
	test.That(t, resolver.calls.Load(), test.ShouldEqual, 1)

	mock.Add(4 * time.Second)
	test.That(t, c.CheckTimeout(), test.ShouldBeTrue)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, resolver.calls.Load(), test.ShouldEqual, 2)
		test.That(tb, c.State(), test.ShouldEqual, StateConnected)
	})
	test.That(t, c.Stats().ResolvedAt, test.ShouldEqual, 5500*time.Millisecond)

	// within the reconnect interval no new attempt is made
	mock.Add(time.Second)
	test.That(t, c.CheckTimeout(), test.ShouldBeTrue)
	test.That(t, resolver.calls.Load(), test.ShouldEqual, 2)

	test.That(t, c.SendCommand(90, 90, packet.MessageNoneForced, 6.5), test.ShouldBeNil)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, c.ReceivingAcks(), test.ShouldBeTrue)
	})
	test.That(t, c.CheckTimeout(), test.ShouldBeFalse)
	test.That(t, c.Connected(), test.ShouldBeTrue)
}

func TestVoltage(t *testing.T) {
	ctrl := newController(t)
	defer ctrl.Close()
	ctrl.SetVoltage(7.4)
	c, mock := newConnectedClient(t, testConfig(ctrl.Port()), logging.NewTestLogger(t))
	defer c.Close(context.Background())

	_, ok := c.Voltage()
	test.That(t, ok, test.ShouldBeFalse)

	test.That(t, c.UpdateVoltage(), test.ShouldBeNil)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		v, ok := c.Voltage()
		test.That(tb, ok, test.ShouldBeTrue)
		test.That(tb, v, test.ShouldEqual, float32(7.4))
		test.That(tb, ctrl.Received(), test.ShouldEqual, 5)
	})
	last, _ := ctrl.Last()
	test.That(t, last.MessageType, test.ShouldEqual, packet.MessageVoltage)

	// probes are not tracked and are not acknowledgements
	c.mu.Lock()
	test.That(t, len(c.window.entries), test.ShouldEqual, 0)
	c.mu.Unlock()
	test.That(t, c.ReceivingAcks(), test.ShouldBeFalse)

	test.That(t, c.UpdateVoltage(), test.ShouldBeNil)
	test.That(t, ctrl.Received(), test.ShouldEqual, 5)

	ctrl.SetVoltage(6.8)
	mock.Add(6 * time.Second)
	test.That(t, c.UpdateVoltage(), test.ShouldBeNil)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		v, _ := c.Voltage()
		test.That(tb, v, test.ShouldEqual, float32(6.8))
		test.That(tb, ctrl.Received(), test.ShouldEqual, 10)
	})

	// a reading that did not arrive later than the current one is ignored
	c.mu.Lock()
	at := c.voltageAt
	c.mu.Unlock()
	c.handle(inboundPacket{pkt: packet.NewCommand(0, 0, packet.MessageVoltage, 3), arrival: at})
	v, _ := c.Voltage()
	test.That(t, v, test.ShouldEqual, float32(6.8))
}

func TestNoRouteAndClose(t *testing.T) {
	resolver := &countingResolver{err: errors.New("no such host")}
	c, err := NewClient(
		context.Background(), testConfig(DefaultPort), logging.NewTestLogger(t),
		WithResolver(resolver), WithClock(clock.NewMock()),
	)
	test.That(t, err, test.ShouldBeNil)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, resolver.calls.Load(), test.ShouldEqual, 1)
	})
	test.That(t, c.State(), test.ShouldEqual, StateResolving)
	test.That(t, c.HasRoute(), test.ShouldBeFalse)

	err = c.SendCommand(1, 1, packet.MessageNoneForced, 1)
	test.That(t, errors.Is(err, ErrNoRoute), test.ShouldBeTrue)
	test.That(t, c.UpdateVoltage(), test.ShouldBeNil)

	test.That(t, c.Close(context.Background()), test.ShouldBeNil)
	test.That(t, c.Close(context.Background()), test.ShouldBeNil)
	test.That(t, c.State(), test.ShouldEqual, StateDisconnected)
	err = c.SendCommand(1, 1, packet.MessageNoneForced, 2)
	test.That(t, errors.Is(err, ErrClosed), test.ShouldBeTrue)
}

func TestLookupPrefersIPv4(t *testing.T) {
	c := &Client{cfg: testConfig(DefaultPort), resolver: staticResolver{"::1", "10.0.0.7"}}
	addr, err := c.lookup(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, addr.String(), test.ShouldEqual, "10.0.0.7:5005")

	c.resolver = staticResolver{"::1"}
	addr, err = c.lookup(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, addr.String(), test.ShouldEqual, "[::1]:5005")

	c.resolver = staticResolver{}
	_, err = c.lookup(context.Background())
	test.That(t, err, test.ShouldNotBeNil)
}

type staticResolver []string

func (r staticResolver) LookupHost(context.Context, string) ([]string, error) {
	return r, nil
}
