package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server     ServerConfig     `toml:"server"`
	Simulation SimulationConfig `toml:"simulation"`
	AI         AIConfig         `toml:"ai"`
	Data       DataConfig       `toml:"data"`
	Scripting  ScriptingConfig  `toml:"scripting"`
	Database   DatabaseConfig   `toml:"database"`
	Record     RecordConfig     `toml:"record"`
	Logging    LoggingConfig    `toml:"logging"`
}

type ServerConfig struct {
	Name      string `toml:"name"`
	ID        int    `toml:"id"`
	StartTime int64  // set at boot, not from config
}

type SimulationConfig struct {
	TickRate    time.Duration `toml:"tick_rate"`
	MailboxSize int           `toml:"mailbox_size"` // per-partition job queue
	Seed        int64         `toml:"seed"`         // 0 = seed from clock
	Dummies     []DummyConfig `toml:"dummy"`
}

// DummyConfig places a stationary player for monsters to react to.
type DummyConfig struct {
	ID      int32  `toml:"id"`
	Name    string `toml:"name"`
	MapID   int16  `toml:"map_id"`
	X       int32  `toml:"x"`
	Y       int32  `toml:"y"`
	Level   int16  `toml:"level"`
	HP      int32  `toml:"hp"`
	Lawful  int32  `toml:"lawful"`
	PKCount int32  `toml:"pk_count"`
	Wanted  bool   `toml:"wanted"`
}

// AIConfig tunes the monster decision engine.
type AIConfig struct {
	WanderPercent     int           `toml:"wander_percent"`      // idle wander chance per eligible tick
	ReturnPercent     int           `toml:"return_percent"`      // chance an ordinary mob heads home when outside its region
	LeashDistance     int32         `toml:"leash_distance"`      // guard/pk-killer/fast-return give-up distance
	DeathTimeout      time.Duration `toml:"death_timeout"`       // corpse stays this long before despawn
	DefaultWalkSpeed  time.Duration `toml:"default_walk_speed"`  // when a template leaves walk_speed at 0
	DefaultAttackRate time.Duration `toml:"default_attack_rate"` // when a template leaves attack_speed at 0
}

type DataConfig struct {
	MobList      string `toml:"mob_list"`
	MobSkillList string `toml:"mob_skill_list"`
	SpawnList    string `toml:"spawn_list"`
	MapList      string `toml:"map_list"`
	TileDir      string `toml:"tile_dir"`
}

type ScriptingConfig struct {
	Dir string `toml:"dir"` // empty disables Lua taunts
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty disables the spawn ledger
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	FlushInterval   time.Duration `toml:"flush_interval"` // how often the spawn ledger is written
	FlushTimeout    time.Duration `toml:"flush_timeout"`
}

// RecordConfig controls the intent frame recorder.
type RecordConfig struct {
	Path    string `toml:"path"`    // empty disables recording
	Charset string `toml:"charset"` // big5, gbk, shift_jis, euc-kr or utf-8
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
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Simulation.TickRate <= 0 {
		return fmt.Errorf("simulation.tick_rate must be positive")
	}
	if c.AI.WanderPercent < 0 || c.AI.WanderPercent > 100 {
		return fmt.Errorf("ai.wander_percent out of range: %d", c.AI.WanderPercent)
	}
	if c.AI.ReturnPercent < 0 || c.AI.ReturnPercent > 100 {
		return fmt.Errorf("ai.return_percent out of range: %d", c.AI.ReturnPercent)
	}
	if c.Database.FlushInterval < c.Simulation.TickRate {
		return fmt.Errorf("database.flush_interval must be at least one tick")
	}
	for _, d := range c.Simulation.Dummies {
		if d.ID <= 0 || d.ID >= 100_000_000 {
			return fmt.Errorf("simulation.dummy id %d outside the player range", d.ID)
		}
	}
	if c.AI.LeashDistance <= 0 {
		return fmt.Errorf("ai.leash_distance must be positive")
	}
	return nil
}

// Defaults returns the compiled-in configuration.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "mobsim",
			ID:   1,
		},
		Simulation: SimulationConfig{
			TickRate:    200 * time.Millisecond,
			MailboxSize: 4096,
		},
		AI: AIConfig{
			WanderPercent:     10,
			ReturnPercent:     25,
			LeashDistance:     48,
			DeathTimeout:      5 * time.Second,
			DefaultWalkSpeed:  800 * time.Millisecond,
			DefaultAttackRate: time.Second,
		},
		Data: DataConfig{
			MobList:      "data/yaml/mob_list.yaml",
			MobSkillList: "data/yaml/mob_skill_list.yaml",
			SpawnList:    "data/yaml/spawn_list.yaml",
			MapList:      "data/yaml/map_list.yaml",
			TileDir:      "map",
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
			FlushInterval:   5 * time.Second,
			FlushTimeout:    5 * time.Second,
		},
		Record: RecordConfig{
			Charset: "big5",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
