package room

import (
	"encoding/json"

	"adrift.gg/internal/protocol"
)

func (p *Player) obs() protocol.PlayerObs {
	return protocol.PlayerObs{
		ID:         p.ID,
		Name:       p.Name,
		Position:   p.Pos,
		RaftHealth: p.Raft.Health,
		Survival: &protocol.SurvivalObs{
			Hunger:    p.Vitals.Hunger,
			Thirst:    p.Vitals.Thirst,
			Health:    p.Vitals.Health,
			Energy:    p.Vitals.Energy,
			IsHungry:  p.Vitals.Hunger <= 10,
			IsThirsty: p.Vitals.Thirst <= 10,
			IsInjured: p.Vitals.IsInjured(),
		},
	}
}

func (r *Room) sharkObs() []protocol.SharkObs {
	out := make([]protocol.SharkObs, 0, len(r.sharks))
	for _, s := range r.sharks {
		out = append(out, protocol.SharkObs{ID: s.ID, Position: s.Pos, State: s.State, Health: s.Health})
	}
	return out
}

func (r *Room) npcObs() []protocol.NPCObs {
	out := make([]protocol.NPCObs, 0, len(r.npcs))
	for _, n := range r.npcs {
		out = append(out, n.obs())
	}
	return out
}

func (r *Room) playerObs() []protocol.PlayerObs {
	out := make([]protocol.PlayerObs, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p.obs())
	}
	return out
}

func (r *Room) resourceObs() []protocol.ResourceObs {
	out := make([]protocol.ResourceObs, 0, len(r.resources))
	for _, res := range r.resources {
		out = append(out, protocol.ResourceObs{ID: res.ID, Kind: res.Type, Position: res.Position})
	}
	return out
}

func (r *Room) locationObs() []protocol.LocationObs {
	out := make([]protocol.LocationObs, 0, len(r.locations))
	for _, loc := range r.locations {
		out = append(out, loc.obs())
	}
	return out
}

func (r *Room) buildInit(p *Player) protocol.InitMsg {
	return protocol.InitMsg{
		Type:            protocol.TypeInit,
		ProtocolVersion: protocol.Version,
		RoomID:          r.cfg.ID,
		Player:          p.obs(),
		Players:         r.playerObs(),
		Sharks:          r.sharkObs(),
		NPCs:            r.npcObs(),
		Locations:       r.locationObs(),
		Resources:       r.resourceObs(),
		Weather:         r.weather.obs(),
	}
}

// broadcastState sends each client the shared snapshot plus its private
// event queue, then clears the queues.
func (r *Room) broadcastState(tick uint64) {
	base := protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		Tick:            tick,
		Sharks:          r.sharkObs(),
		NPCs:            r.npcObs(),
		Players:         r.playerObs(),
		Weather:         r.weather.obs(),
		Resources:       r.resourceObs(),
	}

	for id, p := range r.players {
		cl := r.clients[id]
		if cl == nil {
			p.events = nil
			continue
		}
		msg := base
		msg.Events = p.events
		b, err := json.Marshal(msg)
		if err != nil {
			p.events = nil
			continue
		}
		sendLatest(cl.Out, b)
		p.events = nil
	}
}
