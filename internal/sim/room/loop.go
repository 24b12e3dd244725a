package room

import (
	"context"
	"time"

	"adrift.gg/internal/protocol"
)

// Run drives the room until the context is canceled or Stop is called.
// Joins, leaves, and actions are handled between ticks on the loop
// goroutine, so action replies are always consistent with the last step.
// The ticker pauses while the room is empty and resumes on the next join;
// an idle room burns no cycles and its clock does not drift.
func (r *Room) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(r.tun.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	if len(r.players) == 0 {
		ticker.Stop()
	}

	r.lastStep = r.now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.stop:
			return nil
		case req := <-r.join:
			wasEmpty := len(r.players) == 0
			r.handleJoin(req)
			if wasEmpty && len(r.players) > 0 {
				r.lastStep = r.now()
				ticker.Reset(interval)
			}
		case id := <-r.leave:
			r.handlePlayerLeave(id)
			if len(r.players) == 0 {
				ticker.Stop()
			}
		case env := <-r.inbox:
			res := r.applyAction(env)
			if env.Resp != nil {
				env.Resp <- res
			}
		case <-ticker.C:
			now := r.now()
			r.step(now.Sub(r.lastStep), now)
			r.lastStep = now
		}
	}
}

func (r *Room) Stop() { close(r.stop) }

func (r *Room) applyAction(env ActionEnvelope) protocol.Result {
	p, ok := r.players[env.PlayerID]
	if !ok {
		return protocol.FailResult(protocol.ErrRoomNotFound, "player not in room")
	}
	p.LastActivity = r.now()
	h, ok := actionDispatch[env.Act.Action]
	if !ok {
		return protocol.FailResult(protocol.ErrBadRequest, "unknown action: "+env.Act.Action)
	}
	return h(r, p, env.Act)
}

// sendLatest delivers the newest frame, dropping one stale frame if the
// client is slow.
func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
