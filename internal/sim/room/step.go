package room

import (
	"time"

	"adrift.gg/internal/protocol"
	"adrift.gg/internal/sim/resource"
	"adrift.gg/internal/sim/survival"
)

// step advances the simulation by one tick. Ordering is fixed: weather and
// clock, enemies, locations, survival, resource expiry, spawns, broadcast.
func (r *Room) step(dt time.Duration, now time.Time) {
	if len(r.players) == 0 {
		return
	}
	tick := r.tick.Add(1)
	dtSec := dt.Seconds()
	gameMinutes := dtSec * r.tun.MinutesPerRealSecond

	weatherChanged, phaseChanged, damageTicks := r.weather.advance(dt)
	if weatherChanged {
		r.broadcastEvent("weather.change", map[string]any{
			"weather": r.weather.current,
		}, "")
	}
	if phaseChanged {
		r.broadcastEvent("time.change", map[string]any{
			"phase":       r.weather.phase,
			"time_of_day": int(r.weather.timeOfDay),
			"visibility":  r.weather.phaseVisibility(),
		}, "")
	}
	for i := 0; i < damageTicks; i++ {
		for _, p := range r.players {
			dmg := r.weather.effects.RaftDamage - p.Raft.Props.Defense*0.1
			if dmg > 0 {
				r.damageRaft(p, dmg, "weather")
			}
		}
	}

	r.updateSharks(dtSec, now)
	r.updateNPCs(dtSec, now)
	r.updateLocations(gameMinutes)
	r.updateSurvival(gameMinutes, now)
	r.expireResources(now)
	r.runSpawns(now)

	r.broadcastState(tick)
}

func (r *Room) updateSurvival(gameMinutes float64, now time.Time) {
	for id, p := range r.players {
		wasAlive := p.Vitals.IsAlive()
		r.surv.Advance(&p.Vitals, gameMinutes, r.weather.current, r.weather.phase, now)
		if wasAlive && !p.Vitals.IsAlive() {
			r.handleDeath(id, p, "survival", now)
		}
	}
}

// handleDeath drops up to three inventory stacks at half quantity, resets
// vitals, and respawns the player at the origin.
func (r *Room) handleDeath(id string, p *Player, cause string, now time.Time) {
	p.Deaths++
	r.broadcastEvent("player.death", map[string]any{
		"player_id":   id,
		"player_name": p.Name,
		"cause":       cause,
	}, "")
	r.log.Printf("room %s: player %s died (%s)", r.cfg.ID, p.Name, cause)

	types := make([]string, 0, len(p.Inv))
	for t, n := range p.Inv {
		if n > 0 {
			types = append(types, t)
		}
	}
	r.rng.Shuffle(len(types), func(i, j int) { types[i], types[j] = types[j], types[i] })
	for i := 0; i < minInt(3, len(types)); i++ {
		t := types[i]
		amount := (p.Inv[t] + 1) / 2
		if amount <= 0 {
			continue
		}
		p.Inv[t] -= amount
		drop := r.res.DeathDrop(t, amount, p.Pos, now)
		r.resources[drop.ID] = &drop
		r.broadcastEvent("resource.deathDrop", map[string]any{
			"resource_id": drop.ID,
			"type":        drop.Type,
			"amount":      drop.Amount,
			"position":    drop.Position,
			"player_id":   id,
		}, "")
	}

	p.Vitals = survival.NewState()
	p.Pos = protocol.Vec2{}
	r.saveProgress(p)
}

func (r *Room) expireResources(now time.Time) {
	for id, res := range r.resources {
		if resource.IsExpired(*res, now) {
			delete(r.resources, id)
		}
	}
}

func (r *Room) runSpawns(now time.Time) {
	sp := r.tun.Spawns

	if now.Sub(r.lastResourceSpawn) >= time.Duration(sp.ResourceIntervalMs)*time.Millisecond {
		r.lastResourceSpawn = now
		res := r.res.Generate(r.weather.current, false, now)
		res.Position = r.randomEdgePosition(0)
		r.resources[res.ID] = &res
		r.broadcastEvent("resource.spawn", map[string]any{
			"resource_id": res.ID,
			"type":        res.Type,
			"position":    res.Position,
		}, "")

		if special := r.res.GenerateWeatherSpecific(r.weather.current, now); special != nil {
			special.Position = r.randomPositionInArea(300, 1000)
			r.resources[special.ID] = special
			r.broadcastEvent("resource.special", map[string]any{
				"resource_id": special.ID,
				"type":        special.Type,
				"position":    special.Position,
			}, "")
		}
		if r.weather.phase == "night" {
			if glow := r.res.GenerateNightGlow(now); glow != nil {
				glow.Position = r.randomPositionInArea(200, 0)
				r.resources[glow.ID] = glow
				r.broadcastEvent("resource.special", map[string]any{
					"resource_id": glow.ID,
					"type":        glow.Type,
					"position":    glow.Position,
					"glowing":     true,
				}, "")
			}
		}
	}

	if len(r.sharks) < sp.MaxSharks &&
		now.Sub(r.lastSharkSpawn) >= time.Duration(sp.SharkIntervalMs)*time.Millisecond {
		r.spawnShark(now)
	}
	if len(r.locations) < sp.MaxLocations &&
		now.Sub(r.lastLocationSpawn) >= time.Duration(sp.LocationIntervalMs)*time.Millisecond {
		r.spawnLocation(now)
	}
	if len(r.npcs) < sp.MaxNPCs &&
		now.Sub(r.lastNPCSpawn) >= time.Duration(sp.NPCIntervalMs)*time.Millisecond {
		r.spawnNPC(now)
	}
}

// damageRaft lowers a player's hull pool, clamped at zero. A destroyed raft
// counts as a death.
func (r *Room) damageRaft(p *Player, damage float64, source string) {
	if damage <= 0 {
		return
	}
	p.Raft.Health -= damage
	if p.Raft.Health < 0 {
		p.Raft.Health = 0
	}
	r.broadcastEvent("raft.damaged", map[string]any{
		"player_id":        p.ID,
		"damage":           damage,
		"source":           source,
		"remaining_health": p.Raft.Health,
	}, "")
	if p.Raft.Health <= 0 {
		r.broadcastEvent("raft.destroyed", map[string]any{
			"player_id":   p.ID,
			"player_name": p.Name,
		}, "")
		r.handleDeath(p.ID, p, "raft_destroyed", r.now())
		p.Raft.Health = p.Raft.Props.MaxHealth * 0.5
	}
}
