// Package raft implements the construction math for a player's raft:
// component costs, aggregate properties, repair, and layout upgrades.
package raft

import (
	"fmt"
	"math"
	"time"

	"adrift.gg/internal/protocol"
	"adrift.gg/internal/sim/catalog"
	"adrift.gg/internal/sim/resource"
)

// Component is one installed raft component. Health never exceeds Durability.
type Component struct {
	ID         string        `json:"id"`
	Type       string        `json:"type"`
	Name       string        `json:"name"`
	Position   protocol.Vec2 `json:"position"`
	Durability float64       `json:"durability"`
	Health     float64       `json:"health"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Properties are the aggregate stats derived from a layout tier plus every
// installed component. Recomputed on every structural change.
type Properties struct {
	Size            int     `json:"size"`
	MaxHealth       float64 `json:"max_health"`
	Defense         float64 `json:"defense"`
	Speed           float64 `json:"speed"`
	Storage         float64 `json:"storage"`
	WaterProduction float64 `json:"water_production"`
	FoodBoost       float64 `json:"food_boost"`
	DetectionRange  float64 `json:"detection_range"`
	SharkDefense    float64 `json:"shark_defense"`
}

type Builder struct {
	cat *catalog.Catalog
}

func NewBuilder(cat *catalog.Catalog) *Builder {
	return &Builder{cat: cat}
}

// ComponentCost scales a component's resource cost by quantity. The second
// return is false for unknown component types.
func (b *Builder) ComponentCost(componentType string, quantity int) (map[string]int, bool) {
	def, ok := b.cat.Components[componentType]
	if !ok {
		return nil, false
	}
	cost := make(map[string]int, len(def.Cost))
	for kind, amount := range def.Cost {
		cost[kind] = amount * quantity
	}
	return cost, true
}

func (b *Builder) CanBuild(inventory map[string]int, componentType string, quantity int) bool {
	cost, ok := b.ComponentCost(componentType, quantity)
	if !ok {
		return false
	}
	for kind, amount := range cost {
		if inventory[kind] < amount {
			return false
		}
	}
	return true
}

// ConsumeResources debits the build cost, or returns false without touching
// the inventory.
func (b *Builder) ConsumeResources(inventory map[string]int, componentType string, quantity int) bool {
	cost, ok := b.ComponentCost(componentType, quantity)
	if !ok {
		return false
	}
	return resource.ConsumeResources(inventory, cost)
}

// CreateComponent instantiates a component at full health. The caller assigns
// the id and position.
func (b *Builder) CreateComponent(componentType string) (*Component, bool) {
	def, ok := b.cat.Components[componentType]
	if !ok {
		return nil, false
	}
	return &Component{
		Type:       componentType,
		Name:       def.Name,
		Durability: def.Durability,
		Health:     def.Durability,
	}, true
}

// CalculateProperties folds every component's contribution into the layout
// tier's base stats: additive defense/storage/production, multiplicative
// speed/food-boost/detection.
func (b *Builder) CalculateProperties(components []*Component, layoutID string) Properties {
	layout := b.layoutOrSmallest(layoutID)
	props := Properties{
		Size:           layout.Size,
		MaxHealth:      layout.BaseHealth,
		Speed:          1,
		Storage:        20,
		FoodBoost:      1,
		DetectionRange: 1,
	}
	for _, c := range components {
		def, ok := b.cat.Components[c.Type]
		if !ok {
			continue
		}
		props.Defense += def.Defense
		props.Storage += def.StorageBoost
		props.WaterProduction += def.WaterProduction
		props.SharkDefense += def.SharkDefense
		if def.SpeedBoost > 0 {
			props.Speed *= def.SpeedBoost
		}
		if def.FoodBoost > 0 {
			props.FoodBoost *= def.FoodBoost
		}
		if def.DetectionRange > 0 {
			props.DetectionRange *= def.DetectionRange
		}
	}
	return props
}

type RepairResult struct {
	OK       bool
	Message  string
	Restored float64
}

// Repair raises the component's health by up to amount, charging
// ceil(baseCost * 0.5 * amount/100) of each build resource. Full-health
// components and shortfalls fail without debiting.
func (b *Builder) Repair(c *Component, inventory map[string]int, amount float64) RepairResult {
	def, ok := b.cat.Components[c.Type]
	if !ok {
		return RepairResult{Message: "unknown component type"}
	}
	if c.Health >= c.Durability {
		return RepairResult{Message: "component does not need repair"}
	}

	cost := make(map[string]int, len(def.Cost))
	for kind, base := range def.Cost {
		cost[kind] = int(math.Ceil(float64(base) * 0.5 * (amount / 100)))
	}
	if !resource.ConsumeResources(inventory, cost) {
		return RepairResult{Message: "not enough resources to repair"}
	}

	before := c.Health
	c.Health = math.Min(c.Durability, c.Health+amount)
	return RepairResult{
		OK:       true,
		Message:  fmt.Sprintf("repaired %s", c.Name),
		Restored: c.Health - before,
	}
}

type UpgradeResult struct {
	OK        bool
	Message   string
	NewLayout string
	Layout    catalog.LayoutDef
}

// UpgradeLayout advances to the next layout tier, charging an escalating
// multi-resource cost. Fails at the top tier or on insufficient resources.
func (b *Builder) UpgradeLayout(currentLayout string, inventory map[string]int) UpgradeResult {
	idx := -1
	for i, l := range b.cat.Layouts {
		if l.ID == currentLayout {
			idx = i
			break
		}
	}
	if idx == -1 || idx == len(b.cat.Layouts)-1 {
		return UpgradeResult{Message: "raft layout cannot be upgraded"}
	}

	scale := idx + 2
	cost := map[string]int{
		"wood":    20 * scale,
		"plastic": 10 * scale,
		"metal":   5 * scale,
		"rope":    8 * scale,
	}
	if !resource.ConsumeResources(inventory, cost) {
		return UpgradeResult{Message: "not enough resources to upgrade"}
	}

	next := b.cat.Layouts[idx+1]
	return UpgradeResult{
		OK:        true,
		Message:   fmt.Sprintf("raft layout upgraded to %s", next.ID),
		NewLayout: next.ID,
		Layout:    next,
	}
}

// LayoutInfo returns the layout definition for a tier id.
func (b *Builder) LayoutInfo(layoutID string) (catalog.LayoutDef, bool) {
	for _, l := range b.cat.Layouts {
		if l.ID == layoutID {
			return l, true
		}
	}
	return catalog.LayoutDef{}, false
}

func (b *Builder) layoutOrSmallest(layoutID string) catalog.LayoutDef {
	if l, ok := b.LayoutInfo(layoutID); ok {
		return l
	}
	return b.cat.Layouts[0]
}
