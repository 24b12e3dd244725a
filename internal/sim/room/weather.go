package room

import (
	"math/rand"
	"time"

	"adrift.gg/internal/protocol"
)

type weatherEffects struct {
	Visibility      float64
	SpawnModifier   float64
	RareItemChance  float64
	MovementPenalty float64
	RaftDamage      float64
}

type weatherKind struct {
	Name        string
	MinDuration float64 // game minutes
	MaxDuration float64
	Probability float64
	Effects     weatherEffects
}

// weatherKinds is ordered; selection walks cumulative probabilities.
var weatherKinds = []weatherKind{
	{Name: "clear", MinDuration: 15, MaxDuration: 30, Probability: 0.6,
		Effects: weatherEffects{Visibility: 1, SpawnModifier: 1, MovementPenalty: 1}},
	{Name: "cloudy", MinDuration: 10, MaxDuration: 20, Probability: 0.2,
		Effects: weatherEffects{Visibility: 0.9, SpawnModifier: 1, MovementPenalty: 1}},
	{Name: "foggy", MinDuration: 8, MaxDuration: 15, Probability: 0.1,
		Effects: weatherEffects{Visibility: 0.5, SpawnModifier: 0.8, MovementPenalty: 1}},
	{Name: "storm", MinDuration: 5, MaxDuration: 12, Probability: 0.07,
		Effects: weatherEffects{Visibility: 0.4, SpawnModifier: 1.5, RareItemChance: 0.3, MovementPenalty: 0.7}},
	{Name: "heavyStorm", MinDuration: 3, MaxDuration: 8, Probability: 0.03,
		Effects: weatherEffects{Visibility: 0.2, SpawnModifier: 2, RareItemChance: 0.5, MovementPenalty: 0.5, RaftDamage: 2}},
}

type dayPhase struct {
	Name       string
	Start, End float64 // minutes of day; Start > End wraps midnight
	Visibility float64
}

var dayPhases = []dayPhase{
	{Name: "dawn", Start: 360, End: 480, Visibility: 0.7},
	{Name: "day", Start: 480, End: 1080, Visibility: 1.0},
	{Name: "dusk", Start: 1080, End: 1200, Visibility: 0.7},
	{Name: "night", Start: 1200, End: 360, Visibility: 0.4},
}

// weatherSystem runs two coupled clocks: a randomized weather state machine
// and a 1440-minute day cycle.
type weatherSystem struct {
	rng *rand.Rand

	current   string
	remaining float64 // game minutes
	effects   weatherEffects

	timeOfDay     float64 // minutes, 0..1440
	phase         string
	minutesPerSec float64

	damageAcc float64
}

func newWeatherSystem(rng *rand.Rand, minutesPerRealSecond float64) *weatherSystem {
	w := &weatherSystem{
		rng:           rng,
		minutesPerSec: minutesPerRealSecond,
		timeOfDay:     540, // 9:00
	}
	w.roll()
	w.phase = phaseAt(w.timeOfDay)
	return w
}

func phaseAt(minute float64) string {
	for _, p := range dayPhases {
		if p.Start < p.End {
			if minute >= p.Start && minute < p.End {
				return p.Name
			}
		} else if minute >= p.Start || minute < p.End {
			return p.Name
		}
	}
	return "day"
}

func (w *weatherSystem) phaseVisibility() float64 {
	for _, p := range dayPhases {
		if p.Name == w.phase {
			return p.Visibility
		}
	}
	return 1
}

func (w *weatherSystem) roll() {
	v := w.rng.Float64()
	acc := 0.0
	for _, k := range weatherKinds {
		acc += k.Probability
		if v <= acc {
			w.set(k, 0)
			return
		}
	}
	w.set(weatherKinds[0], 0)
}

func (w *weatherSystem) set(k weatherKind, duration float64) {
	if duration <= 0 {
		duration = w.rng.Float64()*(k.MaxDuration-k.MinDuration) + k.MinDuration
	}
	w.current = k.Name
	w.remaining = duration
	w.effects = k.Effects
}

// Set forces a weather type, for events or tests. Unknown types are ignored.
func (w *weatherSystem) Set(name string, duration float64) bool {
	for _, k := range weatherKinds {
		if k.Name == name {
			w.set(k, duration)
			return true
		}
	}
	return false
}

// advance moves both clocks by elapsed real time. It reports whether the
// weather or phase changed and how many whole game minutes of storm hull
// damage accrued.
func (w *weatherSystem) advance(dt time.Duration) (weatherChanged, phaseChanged bool, damageTicks int) {
	gameMinutes := dt.Seconds() * w.minutesPerSec
	if gameMinutes <= 0 {
		return false, false, 0
	}

	w.timeOfDay += gameMinutes
	for w.timeOfDay >= 1440 {
		w.timeOfDay -= 1440
	}
	if p := phaseAt(w.timeOfDay); p != w.phase {
		w.phase = p
		phaseChanged = true
	}

	w.remaining -= gameMinutes
	if w.remaining <= 0 {
		w.roll()
		weatherChanged = true
	}

	if w.effects.RaftDamage > 0 {
		w.damageAcc += gameMinutes
		for w.damageAcc >= 1 {
			w.damageAcc--
			damageTicks++
		}
	} else {
		w.damageAcc = 0
	}
	return weatherChanged, phaseChanged, damageTicks
}

func (w *weatherSystem) obs() protocol.WeatherObs {
	fx := map[string]float64{
		"visibility":     w.effects.Visibility * w.phaseVisibility(),
		"spawn_modifier": w.effects.SpawnModifier,
	}
	if w.effects.RareItemChance > 0 {
		fx["rare_item_chance"] = w.effects.RareItemChance
	}
	if w.effects.MovementPenalty != 1 {
		fx["movement_penalty"] = w.effects.MovementPenalty
	}
	if w.effects.RaftDamage > 0 {
		fx["raft_damage"] = w.effects.RaftDamage
	}
	return protocol.WeatherObs{
		Weather:   w.current,
		Time:      w.phase,
		TimeOfDay: int(w.timeOfDay),
		Effects:   fx,
	}
}
