package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Host           HostConfig           `toml:"host"`
	Vortex         VortexConfig         `toml:"vortex"`
	VortexAdvanced VortexAdvancedConfig `toml:"vortex_advanced"`
	Other          OtherConfig          `toml:"other"`
	Logging        LoggingConfig        `toml:"logging"`
}

type HostConfig struct {
	TickRate           time.Duration `toml:"tick_rate"`
	Seed               int64         `toml:"seed"` // 0 = seed from the clock
	Scene              string        `toml:"scene"`
	Presets            string        `toml:"presets"`
	ScriptsDir         string        `toml:"scripts_dir"`
	ConsoleQueue       int           `toml:"console_queue"`
	MaxCommandsPerTick int           `toml:"max_commands_per_tick"`
	ConsoleAddr        string        `toml:"console_addr"` // TCP remote console; empty = disabled
}

type VortexConfig struct {
	MovementEnabled      bool    `toml:"movement_enabled"`
	MoveSpeedScale       float32 `toml:"move_speed_scale"`
	MaxEntitySpeed       float32 `toml:"max_entity_speed"`
	MaxEntityDistance    float32 `toml:"max_entity_distance"`
	HorizontalForceScale float32 `toml:"horizontal_force_scale"`
	VerticalForceScale   float32 `toml:"vertical_force_scale"`
	RotationSpeed        float32 `toml:"rotation_speed"`
	VortexRadius         float32 `toml:"vortex_radius"`
	ReverseRotation      bool    `toml:"reverse_rotation"`
	NeverDespawn         bool    `toml:"never_despawn"`
}

type VortexAdvancedConfig struct {
	MultiVortex           bool    `toml:"multi_vortex"`
	MaxParticleLayers     int     `toml:"max_particle_layers"`
	ParticlesPerLayer     int     `toml:"particles_per_layer"`
	LayerSeparationAmount float32 `toml:"layer_separation_amount"`
	ParticleName          string  `toml:"particle_name"`
	ParticleAsset         string  `toml:"particle_asset"`
	CloudTopEnabled       bool    `toml:"cloud_top_enabled"`
	MaxEntityCount        int     `toml:"max_entity_count"`
	EntityScanInterval    int     `toml:"entity_scan_interval"` // ms between nearby-entity scans
	ReleaseMargin         float32 `toml:"release_margin"`
}

type OtherConfig struct {
	Notifications bool `toml:"notifications"`
	SpawnInStorm  bool `toml:"spawn_in_storm"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes TOML bytes over the defaults. name is only used in errors.
func Parse(data []byte, name string) (*Config, error) {
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", name, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", name, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Host.TickRate <= 0 {
		return fmt.Errorf("host.tick_rate must be positive")
	}
	if c.VortexAdvanced.ParticlesPerLayer < 1 {
		return fmt.Errorf("vortex_advanced.particles_per_layer must be at least 1")
	}
	if c.VortexAdvanced.MaxParticleLayers < 1 {
		return fmt.Errorf("vortex_advanced.max_particle_layers must be at least 1")
	}
	return nil
}

func Defaults() *Config {
	return &Config{
		Host: HostConfig{
			TickRate:           16 * time.Millisecond,
			Scene:              "data/yaml/scene.yaml",
			Presets:            "data/yaml/particles.yaml",
			ScriptsDir:         "scripts",
			ConsoleQueue:       64,
			MaxCommandsPerTick: 4,
		},
		Vortex: VortexConfig{
			MovementEnabled:      true,
			MoveSpeedScale:       1.0,
			MaxEntitySpeed:       40.0,
			MaxEntityDistance:    57.0,
			HorizontalForceScale: 1.7,
			VerticalForceScale:   2.29,
			RotationSpeed:        2.4,
			VortexRadius:         9.40,
		},
		VortexAdvanced: VortexAdvancedConfig{
			MultiVortex:           true,
			MaxParticleLayers:     48,
			ParticlesPerLayer:     9,
			LayerSeparationAmount: 22.0,
			ParticleName:          "ent_amb_smoke_foundry",
			ParticleAsset:         "core",
			CloudTopEnabled:       true,
			MaxEntityCount:        300,
			EntityScanInterval:    600,
			ReleaseMargin:         13.0,
		},
		Other: OtherConfig{
			Notifications: true,
			SpawnInStorm:  true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
