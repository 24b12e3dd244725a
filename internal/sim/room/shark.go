package room

import (
	"time"

	"adrift.gg/internal/protocol"
)

const (
	sharkSpeed        = 80.0
	sharkPursuitBoost = 1.5
	sharkDetectRange  = 800.0
	sharkBiteRange    = 50.0
	sharkGiveUpRange  = 1000.0
	sharkDamage       = 10.0
	sharkMaxHealth    = 100.0
	sharkBiteCooldown = 5 * time.Second
	sharkRetreatTime  = 3.0  // seconds
	sharkPatrolPeriod = 10.0 // seconds between direction changes
	sharkEdgeInset    = 300.0
)

const (
	sharkPatrolling = "patrolling"
	sharkAttacking  = "attacking"
	sharkRetreating = "retreating"
)

type Shark struct {
	ID       string
	Pos      protocol.Vec2
	Dir      protocol.Vec2
	State    string
	Health   float64
	TargetID string

	lastBite     time.Time
	patrolTimer  float64
	retreatTimer float64
}

func (r *Room) spawnShark(now time.Time) *Shark {
	s := &Shark{
		ID:     r.newID("shark", &r.nextSharkNum),
		Pos:    r.randomEdgePosition(sharkEdgeInset),
		Dir:    randomDirection(r.rng),
		State:  sharkPatrolling,
		Health: sharkMaxHealth,
	}
	r.sharks[s.ID] = s
	r.lastSharkSpawn = now
	r.broadcastEvent("shark.spawn", map[string]any{
		"shark_id": s.ID,
		"position": s.Pos,
	}, "")
	return s
}

func (r *Room) updateSharks(dtSec float64, now time.Time) {
	for _, s := range r.sharks {
		switch s.State {
		case sharkPatrolling:
			r.sharkPatrol(s, dtSec)
		case sharkAttacking:
			r.sharkAttack(s, dtSec, now)
		case sharkRetreating:
			r.sharkRetreat(s, dtSec)
		}
		if s.State == sharkPatrolling {
			r.sharkScan(s)
		}
	}
}

func (r *Room) sharkPatrol(s *Shark, dtSec float64) {
	s.patrolTimer += dtSec
	if s.patrolTimer > sharkPatrolPeriod {
		s.patrolTimer = 0
		s.Dir = randomDirection(r.rng)
	}
	s.Pos.X += s.Dir.X * sharkSpeed * dtSec
	s.Pos.Y += s.Dir.Y * sharkSpeed * dtSec
	r.bounceOffBounds(&s.Pos, &s.Dir, 0)
}

// sharkScan locks onto the nearest raft within detection range.
func (r *Room) sharkScan(s *Shark) {
	var closest *Player
	minDist := sharkDetectRange
	for _, p := range r.players {
		if d := dist(s.Pos, p.Pos); d < minDist {
			minDist = d
			closest = p
		}
	}
	if closest != nil {
		s.TargetID = closest.ID
		s.State = sharkAttacking
	}
}

func (r *Room) sharkAttack(s *Shark, dtSec float64, now time.Time) {
	target, ok := r.players[s.TargetID]
	if !ok {
		s.State = sharkPatrolling
		s.TargetID = ""
		return
	}

	d := dist(s.Pos, target.Pos)
	if d > 0 {
		s.Dir = protocol.Vec2{X: (target.Pos.X - s.Pos.X) / d, Y: (target.Pos.Y - s.Pos.Y) / d}
	}
	speed := sharkSpeed * sharkPursuitBoost
	s.Pos.X += s.Dir.X * speed * dtSec
	s.Pos.Y += s.Dir.Y * speed * dtSec

	if d < sharkBiteRange {
		r.sharkBite(s, target, now)
	}
	if d > sharkGiveUpRange {
		s.State = sharkPatrolling
		s.TargetID = ""
	}
}

func (r *Room) sharkBite(s *Shark, target *Player, now time.Time) {
	if now.Sub(s.lastBite) < sharkBiteCooldown {
		return
	}
	s.lastBite = now

	damage := sharkDamage - target.Raft.Props.SharkDefense
	if damage < 0 {
		damage = 0
	}
	r.damageRaft(target, damage, "shark")
	r.broadcastEvent("shark.attack", map[string]any{
		"shark_id":         s.ID,
		"target_id":        target.ID,
		"damage":           damage,
		"remaining_health": target.Raft.Health,
	}, "")

	s.State = sharkRetreating
	s.retreatTimer = 0
	if d := dist(s.Pos, target.Pos); d > 0 {
		s.Dir = protocol.Vec2{X: (s.Pos.X - target.Pos.X) / d, Y: (s.Pos.Y - target.Pos.Y) / d}
	} else {
		s.Dir = randomDirection(r.rng)
	}
}

func (r *Room) sharkRetreat(s *Shark, dtSec float64) {
	s.retreatTimer += dtSec
	s.Pos.X += s.Dir.X * sharkSpeed * dtSec
	s.Pos.Y += s.Dir.Y * sharkSpeed * dtSec
	if s.retreatTimer > sharkRetreatTime {
		s.State = sharkPatrolling
		s.retreatTimer = 0
	}
}

// damageShark applies player damage. Badly hurt sharks sometimes flee; a
// killed shark is removed exactly once.
func (r *Room) damageShark(s *Shark, amount float64) {
	s.Health -= amount
	if s.Health > 0 && s.Health < 30 && r.rng.Float64() < 0.3 {
		s.State = sharkRetreating
		s.retreatTimer = 0
		s.Dir = randomDirection(r.rng)
	}
	if s.Health <= 0 {
		delete(r.sharks, s.ID)
		r.broadcastEvent("shark.death", map[string]any{"shark_id": s.ID}, "")
	}
}

func (r *Room) bounceOffBounds(pos *protocol.Vec2, dir *protocol.Vec2, inset float64) {
	bound := r.tun.AreaHalfSize - inset
	if pos.X > bound {
		pos.X = bound
		dir.X *= -1
	} else if pos.X < -bound {
		pos.X = -bound
		dir.X *= -1
	}
	if pos.Y > bound {
		pos.Y = bound
		dir.Y *= -1
	} else if pos.Y < -bound {
		pos.Y = -bound
		dir.Y *= -1
	}
}
