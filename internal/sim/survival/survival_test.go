package survival

import (
	"testing"
	"time"

	"adrift.gg/internal/sim/catalog"
)

func TestAdvanceDecaysVitals(t *testing.T) {
	sys := NewSystem(catalog.Defaults())
	st := NewState()

	sys.Advance(&st, 10, "clear", "day", time.Now())
	if st.Hunger != 85 {
		t.Fatalf("hunger = %v, want 85 after 10 min", st.Hunger)
	}
	if st.Thirst != 80 {
		t.Fatalf("thirst = %v, want 80 after 10 min", st.Thirst)
	}
	if st.Energy != 90 {
		t.Fatalf("energy = %v, want 90 after 10 min", st.Energy)
	}
	if st.Health != 100 {
		t.Fatalf("health should not drop while vitals are fine, got %v", st.Health)
	}
}

func TestAdvanceWeatherEnergyMultiplier(t *testing.T) {
	sys := NewSystem(catalog.Defaults())
	st := NewState()

	sys.Advance(&st, 10, "heavyStorm", "day", time.Now())
	if st.Energy != 80 {
		t.Fatalf("energy = %v, want 80 with 2x storm drain", st.Energy)
	}
}

func TestAdvanceHealthPenalties(t *testing.T) {
	sys := NewSystem(catalog.Defaults())
	st := NewState()
	st.Hunger = 5
	st.Thirst = 5
	st.Energy = 10

	sys.Advance(&st, 1, "clear", "day", time.Now())
	// 0.5 hunger + 1.0 thirst + 0.3 energy per minute.
	if got := st.Health; got < 98.1 || got > 98.3 {
		t.Fatalf("health = %v, want ~98.2", got)
	}
	if !st.IsAlive() {
		t.Fatalf("player should still be alive")
	}
}

func TestAdvanceTemperatureDriftsAndPenalizes(t *testing.T) {
	sys := NewSystem(catalog.Defaults())
	st := NewState()

	// heavyStorm at night targets 37-3-2 = 32.
	for i := 0; i < 60; i++ {
		sys.Advance(&st, 1, "heavyStorm", "night", time.Now())
	}
	if st.Temperature > 33 {
		t.Fatalf("temperature = %v, want drift toward 32", st.Temperature)
	}
	if st.Health >= 100 {
		t.Fatalf("hypothermia should cost health")
	}
	if st.Temperature < 30 {
		t.Fatalf("temperature must clamp at 30, got %v", st.Temperature)
	}
}

func TestConsume(t *testing.T) {
	sys := NewSystem(catalog.Defaults())
	st := NewState()
	st.Hunger = 50
	st.Thirst = 50
	st.Health = 40

	if res := sys.Consume(&st, "food", time.Now()); !res.OK {
		t.Fatalf("consume food failed: %s", res.Message)
	}
	if st.Hunger != 70 {
		t.Fatalf("hunger = %v, want 70 after food", st.Hunger)
	}

	if res := sys.Consume(&st, "water", time.Now()); !res.OK {
		t.Fatalf("consume water failed: %s", res.Message)
	}
	if st.Thirst != 70 {
		t.Fatalf("thirst = %v, want 70 after water", st.Thirst)
	}

	if res := sys.Consume(&st, "medical_kit", time.Now()); !res.OK {
		t.Fatalf("consume medical_kit failed: %s", res.Message)
	}
	if st.Health != 90 {
		t.Fatalf("health = %v, want 90 after medical kit", st.Health)
	}

	if res := sys.Consume(&st, "wood", time.Now()); res.OK {
		t.Fatalf("wood must not be consumable")
	}
}

func TestEffectsExpire(t *testing.T) {
	sys := NewSystem(catalog.Defaults())
	st := NewState()
	st.Health = 10

	now := time.Now()
	sys.Consume(&st, "medical_kit", now)
	if len(st.Effects) != 1 {
		t.Fatalf("expected one active effect, got %d", len(st.Effects))
	}

	sys.Advance(&st, 1, "clear", "day", now.Add(3*time.Minute))
	if len(st.Effects) != 0 {
		t.Fatalf("effect should have expired")
	}
}

func TestDamageAndStatus(t *testing.T) {
	st := NewState()

	st.TakeDamage(40, "shark")
	if st.Health != 60 || !st.IsInjured() {
		t.Fatalf("health = %v injured = %v, want 60/true", st.Health, st.IsInjured())
	}
	if st.Status() != "injured" {
		t.Fatalf("status = %q, want injured", st.Status())
	}

	st.TakeDamage(100, "shark")
	if st.IsAlive() || st.Status() != "dead" {
		t.Fatalf("health = %v status = %q, want dead", st.Health, st.Status())
	}
}

func TestRestAndSpendEnergy(t *testing.T) {
	st := NewState()
	st.Energy = 10

	if st.SpendEnergy(20) {
		t.Fatalf("spend must fail without energy")
	}
	if !st.SpendEnergy(5) || st.Energy != 5 {
		t.Fatalf("energy = %v, want 5 after spend", st.Energy)
	}

	st.Health = 80
	st.Rest(10)
	if st.Energy != 55 {
		t.Fatalf("energy = %v, want 55 after 10 min rest", st.Energy)
	}
	if st.Health != 90 {
		t.Fatalf("health = %v, want 90 after 10 min rest", st.Health)
	}
}
