package room

import (
	"time"

	"adrift.gg/internal/protocol"
)

const (
	locationCooldownMinutes = 15.0
	locationDurabilityHit   = 5.0
)

type LocationLoot struct {
	Type       string `json:"type"`
	Amount     int    `json:"amount"`
	IsRare     bool   `json:"is_rare,omitempty"`
	QuestItem  bool   `json:"quest_item,omitempty"`
	RequiresKey bool  `json:"requires_key,omitempty"`
	Randomized bool   `json:"randomized,omitempty"`
}

// Location is one explorable point of interest. Loot is rolled at spawn;
// rare and quest items grant once.
type Location struct {
	ID           string
	Kind         string
	Pos          protocol.Vec2
	Size         float64
	Durability   float64
	HasPuzzle    bool
	PuzzleSolved bool

	Loot       []LocationLoot
	PuzzleLoot []LocationLoot

	visited  map[string]bool
	cooldown float64 // game minutes until the next grant
}

var locationWeights = []struct {
	Kind   string
	Weight float64
}{
	{"island", 0.30},
	{"shipwreck", 0.25},
	{"floatingcrate", 0.25},
	{"abandonedraft", 0.15},
	{"researchstation", 0.05},
}

func (r *Room) spawnLocation(now time.Time) *Location {
	v := r.rng.Float64()
	acc := 0.0
	kind := locationWeights[0].Kind
	for _, lw := range locationWeights {
		acc += lw.Weight
		if v <= acc {
			kind = lw.Kind
			break
		}
	}

	loc := &Location{
		ID:         r.newID("loc_"+kind, &r.nextLocNum),
		Kind:       kind,
		Pos:        r.randomPositionInArea(600, 1500),
		Size:       100,
		Durability: 100,
		visited:    map[string]bool{},
	}
	r.rollLoot(loc)
	r.locations[loc.ID] = loc
	r.lastLocationSpawn = now
	r.broadcastEvent("location.spawn", map[string]any{
		"location_id": loc.ID,
		"kind":        loc.Kind,
		"position":    loc.Pos,
		"size":        loc.Size,
	}, "")
	return loc
}

func (r *Room) rollLoot(loc *Location) {
	roll := func(base, spread int) int { return r.rng.Intn(spread) + base }

	switch loc.Kind {
	case "island":
		loc.Size = 200
		loc.Loot = []LocationLoot{
			{Type: "wood", Amount: roll(10, 15)},
			{Type: "food", Amount: roll(2, 6)},
			{Type: "fabric", Amount: roll(1, 4)},
		}
		if r.rng.Float64() < 0.3 {
			loc.Loot = append(loc.Loot, LocationLoot{Type: "rare_seed", Amount: 1, IsRare: true})
		}
		if r.rng.Float64() < 0.2 {
			loc.Loot = append(loc.Loot, LocationLoot{Type: "valuable_item", Amount: 1, IsRare: true, RequiresKey: r.rng.Float64() < 0.5})
		}

	case "shipwreck":
		loc.Size = 150
		loc.Loot = []LocationLoot{
			{Type: "metal", Amount: roll(8, 10)},
			{Type: "plastic", Amount: roll(5, 8)},
			{Type: "rope", Amount: roll(2, 4)},
			{Type: "battery", Amount: roll(1, 2)},
		}
		if r.rng.Float64() < 0.4 {
			loc.Loot = append(loc.Loot, LocationLoot{Type: "blueprint", Amount: 1, IsRare: true})
		}

	case "floatingcrate":
		loc.Size = 50
		loc.Durability = 20
		pool := []string{"wood", "metal", "plastic", "rope", "food", "water", "tool_parts"}
		count := r.rng.Intn(3) + 1
		for i := 0; i < count; i++ {
			loc.Loot = append(loc.Loot, LocationLoot{
				Type:   pool[r.rng.Intn(len(pool))],
				Amount: r.rng.Intn(5) + 1,
			})
		}
		if r.rng.Float64() < 0.15 {
			loc.Loot = append(loc.Loot, LocationLoot{Type: "valuable_item", Amount: 1, IsRare: true})
		}

	case "abandonedraft":
		loc.Size = 100
		loc.Loot = []LocationLoot{
			{Type: "wood", Amount: roll(5, 8)},
			{Type: "rope", Amount: roll(1, 3)},
			{Type: "plastic", Amount: roll(2, 4), Randomized: true},
		}

	case "researchstation":
		loc.Size = 180
		loc.HasPuzzle = true
		loc.Loot = []LocationLoot{
			{Type: "battery", Amount: roll(1, 2)},
			{Type: "tool_parts", Amount: roll(2, 3)},
		}
		loc.PuzzleLoot = []LocationLoot{
			{Type: "blueprint", Amount: 1, IsRare: true},
			{Type: "tech_components", Amount: roll(3, 2), IsRare: true},
		}
	}
}

func (r *Room) updateLocations(gameMinutes float64) {
	for _, loc := range r.locations {
		if loc.cooldown > 0 {
			loc.cooldown -= gameMinutes
			if loc.cooldown < 0 {
				loc.cooldown = 0
			}
		}
	}
}

// interactLocation grants the location's loot to the player. Each grant costs
// durability; crates vanish when depleted.
func (r *Room) interactLocation(p *Player, loc *Location) protocol.Result {
	if dist(p.Pos, loc.Pos) > loc.Size {
		return protocol.FailResult(protocol.ErrOutOfRange, "too far from location")
	}
	if loc.Durability <= 0 {
		return protocol.FailResult(protocol.ErrConflict, "location is depleted")
	}
	if loc.visited[p.ID] && loc.cooldown > 0 {
		return protocol.FailResult(protocol.ErrCooldown, "location is still recovering")
	}

	collected := r.collectLoot(p, loc)
	if !loc.visited[p.ID] {
		r.broadcastEvent("location.discovered", map[string]any{
			"player_id":   p.ID,
			"player_name": p.Name,
			"location_id": loc.ID,
			"kind":        loc.Kind,
		}, "")
	}
	loc.visited[p.ID] = true
	loc.cooldown = locationCooldownMinutes

	if len(collected) > 0 {
		loc.Durability -= locationDurabilityHit
	}
	if loc.Durability <= 0 {
		r.broadcastEvent("location.depleted", map[string]any{
			"location_id": loc.ID,
			"kind":        loc.Kind,
		}, "")
		if loc.Kind == "floatingcrate" {
			delete(r.locations, loc.ID)
		}
	}

	// Exploration tasks advance per visit.
	r.tasks.AdvanceByType("island_exploration", p.ID, 10)

	lootData := make([]map[string]any, 0, len(collected))
	for _, it := range collected {
		lootData = append(lootData, map[string]any{"type": it.Type, "amount": it.Amount, "is_rare": it.IsRare})
	}
	return protocol.OKResult("collected from "+loc.Kind, map[string]any{
		"loot":       lootData,
		"durability": loc.Durability,
	})
}

func (r *Room) collectLoot(p *Player, loc *Location) []LocationLoot {
	var collected []LocationLoot
	remaining := loc.Loot[:0]
	for _, item := range loc.Loot {
		if item.RequiresKey && p.Items["key"] == 0 {
			remaining = append(remaining, item)
			continue
		}
		amount := item.Amount
		if item.Randomized && amount > 0 {
			amount = r.rng.Intn(amount) + 1
		}
		got := item
		got.Amount = amount
		collected = append(collected, got)
		p.Inv[item.Type] += amount

		// Rare and quest items grant once; everything else restocks after
		// the cooldown.
		if !item.IsRare && !item.QuestItem {
			remaining = append(remaining, item)
		}
	}
	loc.Loot = remaining
	return collected
}

// solvePuzzle checks the player's answer against the location's key, which
// is the trailing four characters of its id.
func (r *Room) solvePuzzle(p *Player, loc *Location, solution string) protocol.Result {
	if !loc.HasPuzzle || loc.PuzzleSolved {
		return protocol.FailResult(protocol.ErrConflict, "no unsolved puzzle here")
	}
	if dist(p.Pos, loc.Pos) > loc.Size {
		return protocol.FailResult(protocol.ErrOutOfRange, "too far from location")
	}
	if solution != loc.puzzleKey() {
		return protocol.FailResult(protocol.ErrBadRequest, "wrong answer")
	}
	loc.PuzzleSolved = true
	loc.Loot = append(loc.Loot, loc.PuzzleLoot...)
	r.broadcastEvent("location.puzzleSolved", map[string]any{
		"location_id": loc.ID,
		"player_id":   p.ID,
	}, "")
	return protocol.OKResult("puzzle solved, new loot unlocked", map[string]any{
		"reward_count": len(loc.PuzzleLoot),
	})
}

func (l *Location) puzzleKey() string {
	if len(l.ID) < 4 {
		return l.ID
	}
	return l.ID[len(l.ID)-4:]
}

func (l *Location) obs() protocol.LocationObs {
	return protocol.LocationObs{
		ID:           l.ID,
		Kind:         l.Kind,
		Position:     l.Pos,
		Size:         l.Size,
		Depleted:     l.Durability <= 0,
		PuzzleSolved: l.PuzzleSolved,
	}
}
