package fake

import (
	"sync"

	"go.viam.com/forcefeedback/packet"
	"go.viam.com/forcefeedback/transport"
)

// Link is an in-memory rig.Commander that records commands.
type Link struct {
	mu              sync.Mutex
	commands        []packet.Packet
	routed          bool
	connected       bool
	timedOut        bool
	voltage         float32
	voltageRequests int
	sendErr         error
}

// NewLink returns a routed and connected link.
func NewLink() *Link {
	return &Link{routed: true, connected: true}
}

// SendCommand records the command.
func (l *Link) SendCommand(left, right int32, mt packet.MessageType, timestamp float32) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sendErr != nil {
		return l.sendErr
	}
	l.commands = append(l.commands, packet.NewCommand(left, right, mt, timestamp))
	return nil
}

// CheckTimeout returns what SetTimedOut set.
func (l *Link) CheckTimeout() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.timedOut
}

// UpdateVoltage counts the request.
func (l *Link) UpdateVoltage() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.voltageRequests++
	return nil
}

// Voltage returns what SetVoltage set.
func (l *Link) Voltage() (float32, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.voltage, l.voltage != 0
}

// Connected returns what SetConnected set.
func (l *Link) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connected
}

// HasRoute returns what SetRouted set.
func (l *Link) HasRoute() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.routed
}

// Stats reports the connection flags only.
func (l *Link) Stats() transport.Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return transport.Stats{Connected: l.routed, ReceivingAcks: l.connected}
}

// SetConnected sets whether the controller is acknowledging.
func (l *Link) SetConnected(connected bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.connected = connected
}

// SetTimedOut sets the result of CheckTimeout.
func (l *Link) SetTimedOut(timedOut bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.timedOut = timedOut
}

// SetRouted sets whether commands are sent at all.
func (l *Link) SetRouted(routed bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.routed = routed
}

// SetVoltage sets the battery reading.
func (l *Link) SetVoltage(volts float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.voltage = volts
}

// SetSendError makes every send fail with err.
func (l *Link) SetSendError(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sendErr = err
}

// Commands returns the commands sent so far.
func (l *Link) Commands() []packet.Packet {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]packet.Packet(nil), l.commands...)
}

// VoltageRequests is the number of UpdateVoltage calls.
func (l *Link) VoltageRequests() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.voltageRequests
}
