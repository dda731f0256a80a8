package rig

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"go.viam.com/forcefeedback/force"
)

// String prints the per-hand forces followed by the link health.
func (s Snapshot) String() string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("tick %d at %.2fs (%s)", s.Tick, s.Time.Seconds(), s.Output.MessageType))
	t.AppendHeader(table.Row{"Hand", "Dominant", "Collision", "Boundary", "Ball", "Angle", "Near", "Retracting", "Holding"})
	for _, h := range force.Hands {
		d := s.Hands[h]
		t.AppendRow([]interface{}{
			h.String(),
			fmt.Sprintf("%.2f", d.DominantForce),
			fmt.Sprintf("%.2f", d.AvgCollisionForce),
			fmt.Sprintf("%.2f", d.BoundaryForce),
			fmt.Sprintf("%.2f", d.BallForce),
			d.Angle,
			fmt.Sprintf("%.2f", s.NearBoundary[h]),
			d.Retracting,
			d.Holding,
		})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{
		"link",
		fmt.Sprintf("drop %.1f%%", s.Link.PacketDropPercent),
		fmt.Sprintf("fail %.1f%%", s.Link.MessageFailurePercent),
		fmt.Sprintf("ack %v", s.Link.AvgAckDelay),
		fmt.Sprintf("%.2fV", s.Voltage),
		fmt.Sprintf("connected=%v", s.Link.Connected),
		fmt.Sprintf("acks=%v", s.Link.ReceivingAcks),
		fmt.Sprintf("timed out=%v", s.TimedOut),
		fmt.Sprintf("sent=%v", s.Sent),
	})
	return t.Render()
}
