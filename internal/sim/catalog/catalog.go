// Package catalog holds the immutable gameplay tables: resource and item
// definitions, raft component stats, cooperation task types, trader stock.
// A Catalog is built once at startup and injected into every room; nothing
// in it is mutated after construction.
package catalog

import "time"

type Catalog struct {
	Resources     map[string]ResourceDef
	RareResources map[string]ResourceDef

	// Resource types whose spawn weight doubles under the given weather.
	WeatherResources map[string][]string

	NightResources []string

	Components map[string]ComponentDef
	Layouts    []LayoutDef // ordered upgrade path

	Items map[string]ItemDef

	TaskTypes map[string]TaskTypeDef
	Roles     map[string]RoleDef

	TraderStock     []StockDef
	TraderRareStock []StockDef
}

type ResourceDef struct {
	Name        string
	BaseValue   float64
	Weight      float64
	StackSize   int
	FloatTime   time.Duration
	SpawnWeight float64

	Consumable    bool
	HungerRestore float64
	ThirstRestore float64
	HealthRestore float64

	IsValuable bool
	IsRare     bool
}

type ComponentDef struct {
	Name       string
	Cost       map[string]int
	Durability float64

	Defense         float64
	SpeedBoost      float64 // multiplicative; 0 means none
	StorageBoost    float64
	WaterProduction float64
	FoodBoost       float64 // multiplicative; 0 means none
	DetectionRange  float64 // multiplicative; 0 means none
	SharkDefense    float64
	Required        bool
}

type LayoutDef struct {
	ID            string
	Size          int
	MaxComponents int
	BaseHealth    float64
}

// ItemDef covers one-off craftables (tools, stations, weapons) distinct from
// raft components.
type ItemDef struct {
	Name string
	Kind string // "structure","tool","station","weapon","armor"
	Cost map[string]int

	// Raft upgrades are repeatable; everything else is owned at most once.
	Repeatable bool
}

type TaskTypeDef struct {
	Name           string
	MinPlayers     int
	OptimalPlayers int

	// Per-extra-participant increment and its cap. BonusKind names which
	// property the bonus applies to.
	BonusKind      string
	PerParticipant float64
	MaxBonus       float64
}

type RoleDef struct {
	Name string
	// Bonus contributed when a participant with this role is on a task of the
	// keyed type.
	TaskBonuses map[string]float64
}

type StockDef struct {
	Type   string
	Price  float64
	MinQty int
	MaxQty int
	IsRare bool
}

// Lookup returns the definition for a base or rare resource type.
func (c *Catalog) Lookup(resourceType string) (ResourceDef, bool) {
	if def, ok := c.Resources[resourceType]; ok {
		return def, ok
	}
	def, ok := c.RareResources[resourceType]
	return def, ok
}

func Defaults() *Catalog {
	return &Catalog{
		Resources: map[string]ResourceDef{
			"wood":         {Name: "Wood", BaseValue: 1, Weight: 1, StackSize: 20, FloatTime: 300 * time.Second, SpawnWeight: 30},
			"plastic":      {Name: "Plastic", BaseValue: 1, Weight: 0.5, StackSize: 20, FloatTime: 240 * time.Second, SpawnWeight: 25},
			"metal":        {Name: "Metal", BaseValue: 2, Weight: 2, StackSize: 15, FloatTime: 180 * time.Second, SpawnWeight: 15},
			"rope":         {Name: "Rope", BaseValue: 2, Weight: 0.8, StackSize: 10, FloatTime: 210 * time.Second, SpawnWeight: 15},
			"fabric":       {Name: "Fabric", BaseValue: 2, Weight: 0.5, StackSize: 10, FloatTime: 150 * time.Second, SpawnWeight: 10},
			"food":         {Name: "Food", BaseValue: 3, Weight: 1, StackSize: 10, FloatTime: 120 * time.Second, SpawnWeight: 10, Consumable: true, HungerRestore: 20},
			"water":        {Name: "Fresh water", BaseValue: 3, Weight: 1, StackSize: 10, FloatTime: 90 * time.Second, SpawnWeight: 10, Consumable: true, ThirstRestore: 20},
			"battery":      {Name: "Battery", BaseValue: 4, Weight: 0.5, StackSize: 5, FloatTime: 120 * time.Second, SpawnWeight: 5},
			"tool_parts":   {Name: "Tool parts", BaseValue: 3, Weight: 0.8, StackSize: 8, FloatTime: 150 * time.Second, SpawnWeight: 8},
			"medical_kit":  {Name: "Medical kit", BaseValue: 5, Weight: 1, StackSize: 3, FloatTime: 180 * time.Second, SpawnWeight: 3, Consumable: true, HealthRestore: 50},
			"valuable_item": {Name: "Valuables", BaseValue: 10, Weight: 0.5, StackSize: 5, FloatTime: 300 * time.Second, SpawnWeight: 2, IsValuable: true},
		},
		RareResources: map[string]ResourceDef{
			"rare_seed":       {Name: "Rare seed", BaseValue: 8, Weight: 0.2, StackSize: 3, FloatTime: 120 * time.Second, SpawnWeight: 1, IsRare: true},
			"blueprint":       {Name: "Blueprint", BaseValue: 15, Weight: 0.3, StackSize: 1, FloatTime: 180 * time.Second, SpawnWeight: 1, IsRare: true},
			"tech_components": {Name: "Tech components", BaseValue: 12, Weight: 0.5, StackSize: 3, FloatTime: 150 * time.Second, SpawnWeight: 1, IsRare: true},
			"pirate_treasure": {Name: "Pirate treasure", BaseValue: 20, Weight: 2, StackSize: 1, FloatTime: 300 * time.Second, SpawnWeight: 0.5, IsRare: true, IsValuable: true},
		},
		WeatherResources: map[string][]string{
			"storm":      {"metal", "rope", "tech_components"},
			"heavyStorm": {"metal", "tech_components", "valuable_item", "blueprint"},
			"foggy":      {"wood", "plastic"},
		},
		NightResources: []string{"glowing_algae", "bioluminescent_fish", "moon_jellyfish"},
		Components: map[string]ComponentDef{
			"foundation":  {Name: "Foundation", Cost: map[string]int{"wood": 4, "plastic": 2}, Durability: 100, Required: true},
			"wall":        {Name: "Wall", Cost: map[string]int{"wood": 3, "plastic": 1}, Durability: 80, Defense: 2},
			"sail":        {Name: "Sail", Cost: map[string]int{"wood": 2, "fabric": 4}, Durability: 60, SpeedBoost: 1.5},
			"storage":     {Name: "Storage crate", Cost: map[string]int{"wood": 5, "rope": 2}, Durability: 70, StorageBoost: 10},
			"purifier":    {Name: "Water purifier", Cost: map[string]int{"plastic": 6, "metal": 3}, Durability: 50, WaterProduction: 1},
			"grill":       {Name: "Grill", Cost: map[string]int{"metal": 4, "wood": 2}, Durability: 60, FoodBoost: 1.5},
			"anchor":      {Name: "Anchor", Cost: map[string]int{"metal": 5, "rope": 3}, Durability: 90},
			"radar":       {Name: "Radar", Cost: map[string]int{"metal": 6, "battery": 2, "tool_parts": 1}, Durability: 40, DetectionRange: 1.5},
			"defense_net": {Name: "Defense net", Cost: map[string]int{"rope": 6, "plastic": 3}, Durability: 50, SharkDefense: 3},
			"engine":      {Name: "Engine", Cost: map[string]int{"metal": 8, "battery": 1, "tool_parts": 2}, Durability: 70, SpeedBoost: 2},
		},
		Layouts: []LayoutDef{
			{ID: "small", Size: 2, MaxComponents: 4, BaseHealth: 100},
			{ID: "medium", Size: 3, MaxComponents: 8, BaseHealth: 150},
			{ID: "large", Size: 4, MaxComponents: 12, BaseHealth: 200},
			{ID: "huge", Size: 5, MaxComponents: 16, BaseHealth: 250},
		},
		Items: map[string]ItemDef{
			"raft_upgrade":   {Name: "Raft extension", Kind: "structure", Cost: map[string]int{"wood": 10, "plastic": 5}, Repeatable: true},
			"fishing_rod":    {Name: "Fishing rod", Kind: "tool", Cost: map[string]int{"wood": 4, "plastic": 2}},
			"spear":          {Name: "Spear", Kind: "weapon", Cost: map[string]int{"wood": 3, "metal": 2}},
			"metal_spear":    {Name: "Metal spear", Kind: "weapon", Cost: map[string]int{"metal": 8}},
			"wooden_shield":  {Name: "Wooden shield", Kind: "armor", Cost: map[string]int{"wood": 8}},
			"water_purifier": {Name: "Water purifier", Kind: "station", Cost: map[string]int{"plastic": 6, "metal": 4}},
			"grill":          {Name: "Grill", Kind: "station", Cost: map[string]int{"metal": 5, "wood": 3}},
		},
		TaskTypes: map[string]TaskTypeDef{
			"raft_building":      {Name: "Raft building", MinPlayers: 1, OptimalPlayers: 2, BonusKind: "timeReduction", PerParticipant: 0.3, MaxBonus: 0.7},
			"resource_gathering": {Name: "Resource gathering", MinPlayers: 1, OptimalPlayers: 3, BonusKind: "efficiencyBoost", PerParticipant: 0.2, MaxBonus: 0.6},
			"shark_defense":      {Name: "Shark defense", MinPlayers: 1, OptimalPlayers: 2, BonusKind: "damageReduction", PerParticipant: 0.25, MaxBonus: 0.75},
			"island_exploration": {Name: "Island exploration", MinPlayers: 1, OptimalPlayers: 3, BonusKind: "discoveryBoost", PerParticipant: 0.2, MaxBonus: 0.6},
			"cooking":            {Name: "Cooking", MinPlayers: 1, OptimalPlayers: 2, BonusKind: "qualityBoost", PerParticipant: 0.15, MaxBonus: 0.45},
		},
		Roles: map[string]RoleDef{
			"builder":  {Name: "Builder", TaskBonuses: map[string]float64{"raft_building": 0.2}},
			"gatherer": {Name: "Gatherer", TaskBonuses: map[string]float64{"resource_gathering": 0.25}},
			"hunter":   {Name: "Hunter", TaskBonuses: map[string]float64{"shark_defense": 0.3}},
			"explorer": {Name: "Explorer", TaskBonuses: map[string]float64{"island_exploration": 0.3}},
			"cook":     {Name: "Cook", TaskBonuses: map[string]float64{"cooking": 0.3}},
		},
		TraderStock: []StockDef{
			{Type: "wood", Price: 2, MinQty: 10, MaxQty: 24},
			{Type: "plastic", Price: 2, MinQty: 5, MaxQty: 14},
			{Type: "metal", Price: 3, MinQty: 3, MaxQty: 10},
			{Type: "rope", Price: 4, MinQty: 3, MaxQty: 7},
			{Type: "fabric", Price: 4, MinQty: 2, MaxQty: 6},
			{Type: "battery", Price: 6, MinQty: 1, MaxQty: 3},
			{Type: "food", Price: 3, MinQty: 5, MaxQty: 12},
			{Type: "water", Price: 3, MinQty: 5, MaxQty: 12},
			{Type: "medical_kit", Price: 8, MinQty: 1, MaxQty: 2},
			{Type: "tool_parts", Price: 5, MinQty: 2, MaxQty: 5},
		},
		TraderRareStock: []StockDef{
			{Type: "metal_purifier_parts", Price: 15, MinQty: 1, MaxQty: 1, IsRare: true},
			{Type: "engine_component", Price: 20, MinQty: 1, MaxQty: 1, IsRare: true},
			{Type: "navigation_chart", Price: 12, MinQty: 1, MaxQty: 1, IsRare: true},
			{Type: "diving_equipment", Price: 18, MinQty: 1, MaxQty: 1, IsRare: true},
			{Type: "special_weapon", Price: 25, MinQty: 1, MaxQty: 1, IsRare: true},
		},
	}
}
