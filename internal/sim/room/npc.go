package room

import (
	"time"

	"adrift.gg/internal/protocol"
)

const (
	npcKindTrader = "trader"
	npcKindPirate = "pirate"

	npcIdle     = "idle"
	npcMoving   = "moving"
	npcTrading  = "trading"
	npcFighting = "attacking"

	traderSpeed  = 40.0
	traderHealth = 50.0

	pirateSpeed        = 100.0
	pirateHealth       = 80.0
	piratePatrolFactor = 0.4
	piratePatrolPeriod = 8.0 // seconds
	pirateDetectRange  = 250.0
	pirateAttackRange  = 70.0
	pirateGiveUpRange  = 500.0
	pirateCooldown     = 3 * time.Second

	npcInteractRange    = 100.0
	npcInteractCooldown = time.Minute
	npcEdgeInset        = 200.0

	minimumBribe  = 5
	bribeDuration = 5 * time.Minute
)

type StockItem struct {
	Type     string  `json:"type"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	IsRare   bool    `json:"is_rare,omitempty"`
}

type Loot struct {
	Type   string `json:"type"`
	Amount int    `json:"amount"`
	IsRare bool   `json:"is_rare,omitempty"`
}

type NPC struct {
	ID     string
	Kind   string
	Pos    protocol.Vec2
	Dir    protocol.Vec2
	Speed  float64
	State  string
	Health float64

	// Trader.
	Stock        []StockItem
	CurrencyType string

	// Pirate.
	DropLoot   []Loot
	Damage     float64
	TargetID   string
	bribedBy   map[string]time.Time
	lastAttack time.Time

	lastInteraction time.Time
	patrolTimer     float64
	moveTimer       float64
}

func (r *Room) spawnNPC(now time.Time) *NPC {
	kind := npcKindTrader
	if r.rng.Float64() >= 0.7 {
		kind = npcKindPirate
	}
	n := &NPC{
		ID:    r.newID("npc_"+kind, &r.nextNPCNum),
		Kind:  kind,
		Pos:   r.randomEdgePosition(npcEdgeInset),
		State: npcIdle,
	}
	switch kind {
	case npcKindTrader:
		n.Speed = traderSpeed
		n.Health = traderHealth
		r.stockTrader(n)
	case npcKindPirate:
		n.Speed = pirateSpeed
		n.Health = pirateHealth
		n.Dir = randomDirection(r.rng)
		n.Damage = float64(r.rng.Intn(5) + 8)
		n.bribedBy = map[string]time.Time{}
		n.DropLoot = []Loot{
			{Type: "metal", Amount: r.rng.Intn(5) + 1},
			{Type: "rope", Amount: r.rng.Intn(3) + 1},
		}
		if r.rng.Float64() < 0.15 {
			n.DropLoot = append(n.DropLoot, Loot{Type: "pirate_treasure", Amount: 1, IsRare: true})
		}
	}
	r.npcs[n.ID] = n
	r.lastNPCSpawn = now
	r.broadcastEvent("npc.spawn", map[string]any{
		"npc_id":   n.ID,
		"kind":     n.Kind,
		"position": n.Pos,
	}, "")
	return n
}

// stockTrader draws 5 to 8 catalog stock lines with randomized quantities,
// plus one rare line a quarter of the time.
func (r *Room) stockTrader(n *NPC) {
	pool := make([]int, len(r.cat.TraderStock))
	for i := range pool {
		pool[i] = i
	}
	r.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	count := minInt(r.rng.Intn(4)+5, len(pool))
	for _, idx := range pool[:count] {
		def := r.cat.TraderStock[idx]
		qty := def.MinQty
		if def.MaxQty > def.MinQty {
			qty += r.rng.Intn(def.MaxQty - def.MinQty + 1)
		}
		n.Stock = append(n.Stock, StockItem{Type: def.Type, Price: def.Price, Quantity: qty})
	}
	if r.rng.Float64() < 0.25 && len(r.cat.TraderRareStock) > 0 {
		def := r.cat.TraderRareStock[r.rng.Intn(len(r.cat.TraderRareStock))]
		n.Stock = append(n.Stock, StockItem{Type: def.Type, Price: def.Price, Quantity: 1, IsRare: true})
	}
	n.CurrencyType = "metal"
	if r.rng.Float64() < 0.3 {
		n.CurrencyType = "valuable_item"
	}
}

func (r *Room) updateNPCs(dtSec float64, now time.Time) {
	for _, n := range r.npcs {
		switch n.Kind {
		case npcKindTrader:
			r.updateTrader(n, dtSec)
		case npcKindPirate:
			r.updatePirate(n, dtSec, now)
		}
	}
}

func (r *Room) updateTrader(n *NPC, dtSec float64) {
	switch n.State {
	case npcIdle:
		if r.rng.Float64() < 0.01 {
			n.State = npcMoving
			n.Dir = randomDirection(r.rng)
			n.moveTimer = float64(r.rng.Intn(10) + 5)
		}
	case npcMoving:
		n.Pos.X += n.Dir.X * n.Speed * dtSec
		n.Pos.Y += n.Dir.Y * n.Speed * dtSec
		r.bounceOffBounds(&n.Pos, &n.Dir, npcEdgeInset/2)
		n.moveTimer -= dtSec
		if n.moveTimer <= 0 {
			n.State = npcIdle
		}
	case npcTrading:
		// Parked while a trade window is open.
	}
}

func (r *Room) updatePirate(n *NPC, dtSec float64, now time.Time) {
	switch n.State {
	case npcIdle:
		n.patrolTimer += dtSec
		if n.patrolTimer >= piratePatrolPeriod {
			n.patrolTimer = 0
			n.Dir = randomDirection(r.rng)
		}
		speed := n.Speed * piratePatrolFactor
		n.Pos.X += n.Dir.X * speed * dtSec
		n.Pos.Y += n.Dir.Y * speed * dtSec
		r.bounceOffBounds(&n.Pos, &n.Dir, npcEdgeInset/2)
		r.pirateScan(n, now)

	case npcFighting:
		target, ok := r.players[n.TargetID]
		if !ok {
			n.State = npcIdle
			n.TargetID = ""
			return
		}
		d := dist(n.Pos, target.Pos)
		if d > 0 {
			n.Dir = protocol.Vec2{X: (target.Pos.X - n.Pos.X) / d, Y: (target.Pos.Y - n.Pos.Y) / d}
		}
		n.Pos.X += n.Dir.X * n.Speed * dtSec
		n.Pos.Y += n.Dir.Y * n.Speed * dtSec

		if d < pirateAttackRange {
			r.pirateAttack(n, target, now)
		}
		if d > pirateGiveUpRange {
			n.State = npcIdle
			n.TargetID = ""
		}
	}
}

func (r *Room) pirateScan(n *NPC, now time.Time) {
	var closest *Player
	minDist := pirateDetectRange
	for _, p := range r.players {
		if until, ok := n.bribedBy[p.ID]; ok && now.Before(until) {
			continue
		}
		if d := dist(n.Pos, p.Pos); d < minDist {
			minDist = d
			closest = p
		}
	}
	if closest != nil {
		n.TargetID = closest.ID
		n.State = npcFighting
		r.broadcastEvent("pirate.spotted", map[string]any{
			"pirate_id":   n.ID,
			"target_id":   closest.ID,
			"target_name": closest.Name,
		}, "")
	}
}

func (r *Room) pirateAttack(n *NPC, target *Player, now time.Time) {
	if now.Sub(n.lastAttack) < pirateCooldown {
		return
	}
	n.lastAttack = now

	damage := n.Damage - target.Raft.Props.Defense
	if damage < 0 {
		damage = 0
	}
	r.damageRaft(target, damage, "pirate")
	r.broadcastEvent("pirate.attack", map[string]any{
		"pirate_id":        n.ID,
		"target_id":        target.ID,
		"damage":           damage,
		"remaining_health": target.Raft.Health,
	}, "")
}

// damagePirate applies player damage and returns the loot on a kill, nil
// otherwise. Defeated pirates are removed from the room.
func (r *Room) damagePirate(n *NPC, amount float64) []Loot {
	n.Health -= amount
	r.broadcastEvent("pirate.damaged", map[string]any{
		"pirate_id":        n.ID,
		"damage":           amount,
		"remaining_health": n.Health,
	}, "")
	if n.Health > 0 {
		return nil
	}
	delete(r.npcs, n.ID)
	r.broadcastEvent("pirate.defeated", map[string]any{
		"pirate_id": n.ID,
		"position":  n.Pos,
	}, "")
	return n.DropLoot
}

func (n *NPC) obs() protocol.NPCObs {
	o := protocol.NPCObs{
		ID:       n.ID,
		Kind:     n.Kind,
		Position: n.Pos,
		State:    n.State,
	}
	if n.Kind == npcKindPirate {
		h := n.Health
		o.Health = &h
	}
	return o
}
