package raft

import (
	"fmt"

	"adrift.gg/internal/sim/catalog"
	"adrift.gg/internal/sim/resource"
)

type CraftResult struct {
	OK      bool
	Message string
	Item    catalog.ItemDef
}

// Craft debits an item's cost and records ownership. Non-repeatable items can
// be owned at most once; owned counts per item type are tracked by the caller.
func (b *Builder) Craft(itemType string, inventory map[string]int, owned map[string]int) CraftResult {
	def, ok := b.cat.Items[itemType]
	if !ok {
		return CraftResult{Message: "unknown item type"}
	}
	if !def.Repeatable && owned[itemType] > 0 {
		return CraftResult{Message: fmt.Sprintf("%s already crafted", def.Name)}
	}
	if !resource.ConsumeResources(inventory, def.Cost) {
		return CraftResult{Message: "not enough resources to craft"}
	}
	owned[itemType]++
	return CraftResult{OK: true, Message: fmt.Sprintf("crafted %s", def.Name), Item: def}
}
