package raft

import (
	"testing"

	"adrift.gg/internal/sim/catalog"
)

func newTestBuilder() *Builder {
	return NewBuilder(catalog.Defaults())
}

func TestComponentCostScalesWithQuantity(t *testing.T) {
	b := newTestBuilder()

	cost, ok := b.ComponentCost("foundation", 1)
	if !ok {
		t.Fatalf("foundation should be a known component")
	}
	if cost["wood"] != 4 || cost["plastic"] != 2 {
		t.Fatalf("foundation cost = %v, want wood:4 plastic:2", cost)
	}

	cost, _ = b.ComponentCost("foundation", 3)
	if cost["wood"] != 12 || cost["plastic"] != 6 {
		t.Fatalf("foundation x3 cost = %v, want wood:12 plastic:6", cost)
	}

	if _, ok := b.ComponentCost("jacuzzi", 1); ok {
		t.Fatalf("unknown component type should not have a cost")
	}
}

func TestConsumeResourcesDebitsInventory(t *testing.T) {
	b := newTestBuilder()
	inv := map[string]int{"wood": 50, "plastic": 30}

	if !b.ConsumeResources(inv, "foundation", 1) {
		t.Fatalf("consume should succeed with sufficient inventory")
	}
	if inv["wood"] != 46 || inv["plastic"] != 28 {
		t.Fatalf("inventory after consume = %v, want wood:46 plastic:28", inv)
	}

	poor := map[string]int{"wood": 3}
	if b.ConsumeResources(poor, "foundation", 1) {
		t.Fatalf("consume should fail with insufficient inventory")
	}
	if poor["wood"] != 3 {
		t.Fatalf("failed consume must not debit, got %v", poor)
	}
}

func TestCreateComponentStartsAtFullHealth(t *testing.T) {
	b := newTestBuilder()
	c, ok := b.CreateComponent("wall")
	if !ok {
		t.Fatalf("wall should be a known component")
	}
	if c.Health != c.Durability || c.Durability != 80 {
		t.Fatalf("wall health=%v durability=%v, want both 80", c.Health, c.Durability)
	}
}

func TestCalculatePropertiesAggregation(t *testing.T) {
	b := newTestBuilder()
	var comps []*Component
	for _, typ := range []string{"wall", "wall", "sail", "storage", "purifier"} {
		c, _ := b.CreateComponent(typ)
		comps = append(comps, c)
	}

	props := b.CalculateProperties(comps, "medium")
	if props.MaxHealth != 150 || props.Size != 3 {
		t.Fatalf("medium layout base = %+v", props)
	}
	if props.Defense != 4 {
		t.Fatalf("defense = %v, want 4 from two walls", props.Defense)
	}
	if props.Speed != 1.5 {
		t.Fatalf("speed = %v, want 1.5 from one sail", props.Speed)
	}
	if props.Storage != 30 {
		t.Fatalf("storage = %v, want 20 base + 10 crate", props.Storage)
	}
	if props.WaterProduction != 1 {
		t.Fatalf("water production = %v, want 1", props.WaterProduction)
	}
}

func TestRepairComponent(t *testing.T) {
	b := newTestBuilder()
	c, _ := b.CreateComponent("foundation")

	inv := map[string]int{"wood": 10, "plastic": 10}
	if res := b.Repair(c, inv, 50); res.OK {
		t.Fatalf("repairing a full-health component must fail, got %+v", res)
	}
	if inv["wood"] != 10 {
		t.Fatalf("failed repair must not debit inventory")
	}

	c.Health = 30
	res := b.Repair(c, inv, 50)
	if !res.OK {
		t.Fatalf("repair failed: %s", res.Message)
	}
	if res.Restored != 50 || c.Health != 80 {
		t.Fatalf("restored=%v health=%v, want 50 and 80", res.Restored, c.Health)
	}
	// ceil(4*0.5*0.5)=1 wood, ceil(2*0.5*0.5)=1 plastic
	if inv["wood"] != 9 || inv["plastic"] != 9 {
		t.Fatalf("inventory after repair = %v, want wood:9 plastic:9", inv)
	}

	c.Health = c.Durability - 10
	res = b.Repair(c, inv, 50)
	if !res.OK || res.Restored != 10 {
		t.Fatalf("repair past durability should clamp, got %+v", res)
	}
}

func TestUpgradeLayout(t *testing.T) {
	b := newTestBuilder()

	inv := map[string]int{"wood": 100, "plastic": 100, "metal": 100, "rope": 100}
	res := b.UpgradeLayout("small", inv)
	if !res.OK || res.NewLayout != "medium" {
		t.Fatalf("small upgrade = %+v, want medium", res)
	}
	// small is tier 0, scale 2: wood 40, plastic 20, metal 10, rope 16.
	if inv["wood"] != 60 || inv["plastic"] != 80 || inv["metal"] != 90 || inv["rope"] != 84 {
		t.Fatalf("inventory after upgrade = %v", inv)
	}

	if res := b.UpgradeLayout("huge", inv); res.OK {
		t.Fatalf("top tier must not upgrade")
	}
	if res := b.UpgradeLayout("medium", map[string]int{}); res.OK {
		t.Fatalf("upgrade without resources must fail")
	}
}

func TestCraftItems(t *testing.T) {
	b := newTestBuilder()
	inv := map[string]int{"wood": 30, "plastic": 20, "metal": 20}
	owned := map[string]int{}

	res := b.Craft("spear", inv, owned)
	if !res.OK {
		t.Fatalf("craft spear failed: %s", res.Message)
	}
	if inv["wood"] != 17 || inv["metal"] != 18 {
		t.Fatalf("inventory after craft = %v", inv)
	}
	if res := b.Craft("spear", inv, owned); res.OK {
		t.Fatalf("non-repeatable item must not craft twice")
	}

	if res := b.Craft("raft_upgrade", inv, owned); !res.OK {
		t.Fatalf("craft raft_upgrade failed: %s", res.Message)
	}
	if res := b.Craft("raft_upgrade", inv, owned); !res.OK {
		t.Fatalf("raft_upgrade is repeatable, second craft failed: %s", res.Message)
	}
}
