package room

import (
	"math/rand"
	"testing"
	"time"
)

func TestPhaseAt(t *testing.T) {
	cases := []struct {
		minute float64
		phase  string
	}{
		{0, "night"},
		{360, "dawn"},
		{479, "dawn"},
		{540, "day"},
		{1079, "day"},
		{1100, "dusk"},
		{1200, "night"},
		{1439, "night"},
	}
	for _, c := range cases {
		if got := phaseAt(c.minute); got != c.phase {
			t.Fatalf("phaseAt(%v) = %s, want %s", c.minute, got, c.phase)
		}
	}
}

func TestWeatherStartsAtMorning(t *testing.T) {
	w := newWeatherSystem(rand.New(rand.NewSource(1)), 1)
	if w.timeOfDay != 540 || w.phase != "day" {
		t.Fatalf("start = %v %s, want 540 day", w.timeOfDay, w.phase)
	}
	if w.current == "" || w.remaining <= 0 {
		t.Fatalf("initial weather not rolled: %q %v", w.current, w.remaining)
	}
}

func TestWeatherAdvanceRollsAndWraps(t *testing.T) {
	w := newWeatherSystem(rand.New(rand.NewSource(2)), 1)
	w.Set("clear", 5)

	changed, _, _ := w.advance(4 * time.Second) // 4 game minutes
	if changed {
		t.Fatalf("weather changed too early")
	}
	changed, _, _ = w.advance(2 * time.Second)
	if !changed {
		t.Fatalf("weather should re-roll when duration runs out")
	}

	// A full day wraps the clock back around.
	w.timeOfDay = 1439
	w.advance(2 * time.Second)
	if w.timeOfDay >= 1440 {
		t.Fatalf("timeOfDay did not wrap: %v", w.timeOfDay)
	}
}

func TestWeatherPhaseTransition(t *testing.T) {
	w := newWeatherSystem(rand.New(rand.NewSource(3)), 1)
	w.Set("clear", 10000)
	w.timeOfDay = 1079
	_, phaseChanged, _ := w.advance(2 * time.Second)
	if !phaseChanged || w.phase != "dusk" {
		t.Fatalf("expected dusk transition, got changed=%v phase=%s", phaseChanged, w.phase)
	}
}

func TestHeavyStormDamageTicks(t *testing.T) {
	w := newWeatherSystem(rand.New(rand.NewSource(4)), 1)
	w.Set("heavyStorm", 10000)

	_, _, ticks := w.advance(30 * time.Second)
	if ticks != 30 {
		t.Fatalf("damage ticks = %d, want 30 for 30 game minutes", ticks)
	}

	// Fractional minutes accrue across calls.
	_, _, ticks = w.advance(500 * time.Millisecond)
	if ticks != 0 {
		t.Fatalf("half a minute should not tick, got %d", ticks)
	}
	_, _, ticks = w.advance(500 * time.Millisecond)
	if ticks != 1 {
		t.Fatalf("accrued minute should tick once, got %d", ticks)
	}
}

func TestClearWeatherNeverDamages(t *testing.T) {
	w := newWeatherSystem(rand.New(rand.NewSource(5)), 1)
	w.Set("clear", 10000)
	if _, _, ticks := w.advance(time.Hour); ticks != 0 {
		t.Fatalf("clear weather dealt %d damage ticks", ticks)
	}
}

func TestStormDamagesRaftsInStep(t *testing.T) {
	r := newTestRoom(9)
	p := joinPlayer(t, r, "sailor")
	r.weather.Set("heavyStorm", 10000)

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	r.SetClock(func() time.Time { return now })

	before := p.Raft.Health
	r.step(2*time.Second, now) // 2 game minutes of heavy storm
	want := before - 2*r.weather.effects.RaftDamage
	if p.Raft.Health != want {
		t.Fatalf("raft health = %v, want %v", p.Raft.Health, want)
	}
}

func TestRaftDefenseSoftensStorm(t *testing.T) {
	r := newTestRoom(9)
	p := joinPlayer(t, r, "builder")
	p.Raft.Props.Defense = 20 // 2.0 mitigation cancels the storm entirely
	r.weather.Set("heavyStorm", 10000)

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	r.SetClock(func() time.Time { return now })

	before := p.Raft.Health
	r.step(5*time.Second, now)
	if p.Raft.Health != before {
		t.Fatalf("fully defended raft took damage: %v -> %v", before, p.Raft.Health)
	}
}

func TestWeatherObsVisibilityCombinesPhase(t *testing.T) {
	w := newWeatherSystem(rand.New(rand.NewSource(6)), 1)
	w.Set("foggy", 10000)
	w.timeOfDay = 1300 // night
	w.phase = phaseAt(w.timeOfDay)

	obs := w.obs()
	if got := obs.Effects["visibility"]; got != 0.5*0.4 {
		t.Fatalf("visibility = %v, want %v", got, 0.5*0.4)
	}
	if obs.Weather != "foggy" || obs.Time != "night" {
		t.Fatalf("obs = %+v", obs)
	}
}
