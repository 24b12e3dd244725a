// Package resource implements weighted random resource generation and the
// bookkeeping around floating-resource expiry and trade value.
package resource

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"adrift.gg/internal/protocol"
	"adrift.gg/internal/sim/catalog"
)

// Floating is a drifting resource waiting in the water to be collected.
type Floating struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	Name      string        `json:"name"`
	Amount    int           `json:"amount"`
	Position  protocol.Vec2 `json:"position"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"` // zero means never expires
	IsRare    bool          `json:"is_rare,omitempty"`

	FromWeather string `json:"from_weather,omitempty"`
	FromDeath   bool   `json:"from_death,omitempty"`
	Glowing     bool   `json:"glowing,omitempty"`
}

// Manager generates resources for a single room. It is not safe for
// concurrent use; the owning room loop is its only caller.
type Manager struct {
	cat *catalog.Catalog
	rng *rand.Rand

	nextNum uint64
}

func NewManager(cat *catalog.Catalog, rng *rand.Rand) *Manager {
	return &Manager{cat: cat, rng: rng}
}

func (m *Manager) newID(kind string) string {
	m.nextNum++
	return fmt.Sprintf("res_%s_%06d", kind, m.nextNum)
}

// Generate performs a weighted draw over the base pool (or the rare pool when
// isRare is set). Types linked to the current weather draw at double weight.
func (m *Manager) Generate(weatherType string, isRare bool, now time.Time) Floating {
	pool := m.cat.Resources
	if isRare {
		pool = m.cat.RareResources
	}

	weatherLinked := map[string]bool{}
	if !isRare {
		for _, t := range m.cat.WeatherResources[weatherType] {
			weatherLinked[t] = true
		}
	}

	type entry struct {
		kind   string
		weight float64
	}
	var entries []entry
	total := 0.0
	for kind, def := range pool {
		w := def.SpawnWeight
		if weatherLinked[kind] {
			w *= 2
		}
		entries = append(entries, entry{kind, w})
		total += w
	}

	r := m.rng.Float64() * total
	cum := 0.0
	selected := entries[0].kind
	for _, e := range entries {
		cum += e.weight
		if r <= cum {
			selected = e.kind
			break
		}
	}

	def, _ := m.cat.Lookup(selected)
	amount := 1
	if !isRare {
		switch selected {
		case "wood", "plastic", "food", "water":
			amount = m.rng.Intn(3) + 1
		}
	}

	return Floating{
		ID:        m.newID(selected),
		Type:      selected,
		Name:      def.Name,
		Amount:    amount,
		CreatedAt: now,
		ExpiresAt: now.Add(def.FloatTime),
		IsRare:    isRare,
	}
}

// GenerateWeatherSpecific rolls a flat chance (higher under heavy storms) for
// a bonus item drawn only from the weather's specific list. Returns nil when
// the roll fails or the weather has no specific list.
func (m *Manager) GenerateWeatherSpecific(weatherType string, now time.Time) *Floating {
	candidates := m.cat.WeatherResources[weatherType]
	if len(candidates) == 0 {
		return nil
	}

	chance := 0.2
	if weatherType == "heavyStorm" {
		chance = 0.4
	}
	if m.rng.Float64() > chance {
		return nil
	}

	selected := candidates[m.rng.Intn(len(candidates))]
	def, _ := m.cat.Lookup(selected)
	_, isRare := m.cat.RareResources[selected]

	res := Floating{
		ID:          m.newID(selected),
		Type:        selected,
		Name:        def.Name,
		Amount:      1,
		CreatedAt:   now,
		ExpiresAt:   now.Add(def.FloatTime),
		IsRare:      isRare,
		FromWeather: weatherType,
	}
	return &res
}

// GenerateNightGlow rolls the nighttime bioluminescent drop (15%).
// Night drops never expire.
func (m *Manager) GenerateNightGlow(now time.Time) *Floating {
	if len(m.cat.NightResources) == 0 || m.rng.Float64() > 0.15 {
		return nil
	}
	selected := m.cat.NightResources[m.rng.Intn(len(m.cat.NightResources))]
	return &Floating{
		ID:        m.newID(selected),
		Type:      selected,
		Name:      selected,
		Amount:    1,
		CreatedAt: now,
		IsRare:    true,
		Glowing:   true,
	}
}

// DeathDrop builds the resource dropped at a dead player's position. The
// drop floats for five minutes.
func (m *Manager) DeathDrop(resourceType string, amount int, pos protocol.Vec2, now time.Time) Floating {
	name := resourceType
	if def, ok := m.cat.Lookup(resourceType); ok {
		name = def.Name
	}
	return Floating{
		ID:        m.newID(resourceType),
		Type:      resourceType,
		Name:      name,
		Amount:    amount,
		Position:  pos,
		CreatedAt: now,
		ExpiresAt: now.Add(5 * time.Minute),
		FromDeath: true,
	}
}

// IsExpired reports whether the resource has an expiry and it has passed.
func IsExpired(r Floating, now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}

// TradeValue is the linear base value times amount, with a 1.5x premium for
// rare or valuable types, rounded to the nearest whole unit.
func (m *Manager) TradeValue(resourceType string, amount int) float64 {
	def, ok := m.cat.Lookup(resourceType)
	if !ok {
		return 0
	}
	value := def.BaseValue * float64(amount)
	if def.IsRare || def.IsValuable {
		value *= 1.5
	}
	return math.Round(value)
}

// ConsumeResources debits costs from the inventory, or returns false and
// leaves the inventory untouched when any resource falls short.
func ConsumeResources(inventory map[string]int, costs map[string]int) bool {
	for kind, amount := range costs {
		if inventory[kind] < amount {
			return false
		}
	}
	for kind, amount := range costs {
		inventory[kind] -= amount
	}
	return true
}
