package pad

import (
	"context"

	"github.com/robotalks/macropad.go/pkg/config"
	"github.com/robotalks/macropad.go/pkg/framework"
	"github.com/robotalks/macropad.go/pkg/protocol"
)

// Snapshot is a copy of the pad state safe to use outside the loop.
type Snapshot struct {
	Layer          int
	MaxLayers      int
	Keys           []config.ResolvedKey
	Knobs          map[string]config.KnobBinding
	DisplayMode    string
	DisplayEnabled bool
	DisplayText    string
	Protocol       protocol.State
	Degraded       bool
}

// SnapshotMsg asks the loop for a Snapshot.
type SnapshotMsg struct {
	Reply chan Snapshot
}

// Snapshot copies the current state. It must be called on the loop.
func (p *Pad) Snapshot() Snapshot {
	return Snapshot{
		Layer:          p.State.Layer(),
		MaxLayers:      p.State.MaxLayers(),
		Keys:           append([]config.ResolvedKey(nil), p.State.Keys()...),
		Knobs:          config.ResolveKnobs(p.State.Config(), p.State.Layer()),
		DisplayMode:    p.Display.Mode(),
		DisplayEnabled: p.Display.Enabled(),
		DisplayText:    p.Display.Shown(),
		Protocol:       p.Protocol.State(),
		Degraded:       p.Store.Degraded(),
	}
}

// QuerySnapshot requests a Snapshot through the loop and waits for it.
func QuerySnapshot(ctx context.Context, loop framework.LoopControl) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	loop.PostMessage(&SnapshotMsg{Reply: reply})
	loop.TriggerNext()
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}
