// Package survival tracks per-player vitals (hunger, thirst, energy, body
// temperature, health) and their decay over simulated time.
package survival

import (
	"fmt"
	"math"
	"time"

	"adrift.gg/internal/sim/catalog"
)

// Decay rates per game minute.
const (
	hungerRate = 1.5
	thirstRate = 2.0
	energyRate = 1.0

	baseTemperature = 37.0
	minTemperature  = 30.0
	maxTemperature  = 42.0

	injuredBelow = 70.0
)

// energyDrainMult scales energy decay by weather severity.
var energyDrainMult = map[string]float64{
	"clear":      1.0,
	"cloudy":     1.0,
	"foggy":      1.2,
	"storm":      1.5,
	"heavyStorm": 2.0,
}

// weatherTempMod and phaseTempMod shift the temperature the body drifts
// toward. The drift closes 10% of the gap per game minute.
var weatherTempMod = map[string]float64{
	"clear":      0,
	"cloudy":     -0.5,
	"foggy":      -1,
	"storm":      -2,
	"heavyStorm": -3,
}

var phaseTempMod = map[string]float64{
	"day":   0,
	"dawn":  -1,
	"dusk":  -1,
	"night": -2,
}

type Effect struct {
	Kind      string    `json:"kind"`
	ExpiresAt time.Time `json:"expires_at"`
}

// State holds one player's vitals. All values are clamped to their ranges by
// the methods below.
type State struct {
	Hunger      float64  `json:"hunger"`
	Thirst      float64  `json:"thirst"`
	Energy      float64  `json:"energy"`
	Health      float64  `json:"health"`
	Temperature float64  `json:"temperature"`
	Effects     []Effect `json:"effects,omitempty"`
}

func NewState() State {
	return State{
		Hunger:      100,
		Thirst:      100,
		Energy:      100,
		Health:      100,
		Temperature: baseTemperature,
	}
}

func (st *State) IsAlive() bool   { return st.Health > 0 }
func (st *State) IsInjured() bool { return st.Health < injuredBelow }

// System applies decay and consumption against a shared catalog.
type System struct {
	cat *catalog.Catalog
}

func NewSystem(cat *catalog.Catalog) *System {
	return &System{cat: cat}
}

// Advance decays vitals for elapsed game minutes under the given weather type
// and day phase, then applies health penalties for critical vitals.
func (s *System) Advance(st *State, gameMinutes float64, weatherType, phase string, now time.Time) {
	if gameMinutes <= 0 || !st.IsAlive() {
		return
	}

	st.Hunger = clamp(st.Hunger-hungerRate*gameMinutes, 0, 100)
	st.Thirst = clamp(st.Thirst-thirstRate*gameMinutes, 0, 100)

	mult := energyDrainMult[weatherType]
	if mult == 0 {
		mult = 1
	}
	st.Energy = clamp(st.Energy-energyRate*mult*gameMinutes, 0, 100)

	target := baseTemperature + weatherTempMod[weatherType] + phaseTempMod[phase]
	st.Temperature += (target - st.Temperature) * 0.1 * gameMinutes
	st.Temperature = clamp(st.Temperature, minTemperature, maxTemperature)

	penalty := 0.0
	if st.Hunger <= 10 {
		penalty += 0.5
	}
	if st.Thirst <= 10 {
		penalty += 1.0
	}
	if st.Temperature <= 35 || st.Temperature >= 39 {
		penalty += 0.8
	}
	if st.Energy <= 20 {
		penalty += 0.3
	}
	if penalty > 0 {
		st.Health = clamp(st.Health-penalty*gameMinutes, 0, 100)
	}

	st.pruneEffects(now)
}

// TakeDamage lowers health. Source is informational only.
func (st *State) TakeDamage(amount float64, source string) {
	_ = source
	st.Health = clamp(st.Health-amount, 0, 100)
}

// Heal restores health up to full.
func (st *State) Heal(amount float64) {
	st.Health = clamp(st.Health+amount, 0, 100)
}

// Rest restores energy at 5 points and health at 1 point per game minute.
func (st *State) Rest(gameMinutes float64) {
	st.Energy = clamp(st.Energy+5*gameMinutes, 0, 100)
	st.Health = clamp(st.Health+1*gameMinutes, 0, 100)
}

// SpendEnergy debits energy for an action; returns false when exhausted.
func (st *State) SpendEnergy(amount float64) bool {
	if st.Energy < amount {
		return false
	}
	st.Energy -= amount
	return true
}

type ConsumeResult struct {
	OK      bool
	Message string
}

// Consume applies a consumable resource's restore values. Non-consumables and
// unknown types fail.
func (s *System) Consume(st *State, resourceType string, now time.Time) ConsumeResult {
	def, ok := s.cat.Lookup(resourceType)
	if !ok {
		return ConsumeResult{Message: "unknown resource type"}
	}
	if !def.Consumable {
		return ConsumeResult{Message: fmt.Sprintf("%s is not consumable", def.Name)}
	}
	st.Hunger = clamp(st.Hunger+def.HungerRestore, 0, 100)
	st.Thirst = clamp(st.Thirst+def.ThirstRestore, 0, 100)
	if def.HealthRestore > 0 {
		st.Heal(def.HealthRestore)
		st.Effects = append(st.Effects, Effect{Kind: "treated", ExpiresAt: now.Add(2 * time.Minute)})
	}
	return ConsumeResult{OK: true, Message: fmt.Sprintf("consumed %s", def.Name)}
}

// Status summarizes the most pressing condition for client display.
func (st *State) Status() string {
	switch {
	case !st.IsAlive():
		return "dead"
	case st.Health < 30:
		return "critical"
	case st.Thirst <= 10:
		return "dehydrated"
	case st.Hunger <= 10:
		return "starving"
	case st.Temperature <= 35:
		return "hypothermic"
	case st.Temperature >= 39:
		return "feverish"
	case st.Energy <= 20:
		return "exhausted"
	case st.IsInjured():
		return "injured"
	default:
		return "healthy"
	}
}

func (st *State) pruneEffects(now time.Time) {
	if len(st.Effects) == 0 {
		return
	}
	kept := st.Effects[:0]
	for _, e := range st.Effects {
		if e.ExpiresAt.After(now) {
			kept = append(kept, e)
		}
	}
	st.Effects = kept
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
