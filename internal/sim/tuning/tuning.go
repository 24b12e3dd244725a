package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	TickRateHz   int     `yaml:"tick_rate_hz"`
	AreaHalfSize float64 `yaml:"area_half_size"`
	MaxPlayers   int     `yaml:"max_players"`

	// Game clock: game minutes elapsing per real second.
	MinutesPerRealSecond float64 `yaml:"minutes_per_real_second"`

	Spawns SpawnPacing `yaml:"spawns"`

	// Room reaping policy.
	RoomSweepIntervalSec int `yaml:"room_sweep_interval_sec"`
	RoomGracePeriodSec   int `yaml:"room_grace_period_sec"`
}

type SpawnPacing struct {
	ResourceIntervalMs int `yaml:"resource_interval_ms"`
	SharkIntervalMs    int `yaml:"shark_interval_ms"`
	MaxSharks          int `yaml:"max_sharks"`
	LocationIntervalMs int `yaml:"location_interval_ms"`
	MaxLocations       int `yaml:"max_locations"`
	NPCIntervalMs      int `yaml:"npc_interval_ms"`
	MaxNPCs            int `yaml:"max_npcs"`
}

func Defaults() Tuning {
	return Tuning{
		TickRateHz:           60,
		AreaHalfSize:         2000,
		MaxPlayers:           4,
		MinutesPerRealSecond: 1,
		Spawns: SpawnPacing{
			ResourceIntervalMs: 10_000,
			SharkIntervalMs:    60_000,
			MaxSharks:          3,
			LocationIntervalMs: 180_000,
			MaxLocations:       5,
			NPCIntervalMs:      300_000,
			MaxNPCs:            3,
		},
		RoomSweepIntervalSec: 600,
		RoomGracePeriodSec:   1800,
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}
