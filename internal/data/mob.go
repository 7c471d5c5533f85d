package data

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MobTemplate holds the static data shared by every monster of one species.
// Never mutated after load.
type MobTemplate struct {
	MobID        int32       `yaml:"mob_id"`
	Name         string      `yaml:"name"`
	Level        int16       `yaml:"level"`
	Life         int32       `yaml:"life"`
	Mana         int32       `yaml:"mana"`
	AttackRange  int32       `yaml:"attack_range"` // tiles, 1 = melee
	ViewRange    int32       `yaml:"view_range"`   // tiles
	Size         int         `yaml:"size"`         // footprint edge in tiles
	Climb        int         `yaml:"climb"`        // 0 = cannot cross ledges
	WalkSpeed    int         `yaml:"walk_speed"`   // ms per step while walking
	RunSpeed     int         `yaml:"run_speed"`    // ms per step while chasing
	AttackSpeed  int         `yaml:"attack_speed"` // ms between attacks
	EscapeLife   int         `yaml:"escape_life"`  // flee below this life percent, 0 = never
	Flying       bool        `yaml:"flying"`
	Flags        AttackFlags `yaml:"attack_user"`
	MagicType    int32       `yaml:"magic_type"`     // exclusive elemental skill, 0 = none
	MagicHitRate int         `yaml:"magic_hit_rate"` // percent
	Skills       []int32     `yaml:"skills"`
	Drops        []DropItem  `yaml:"drops"`
}

// DropItem is one entry of a template's drop table. Drops are resolved by
// the loot collaborator, not by the AI.
type DropItem struct {
	ItemID int32 `yaml:"item_id"`
	Min    int   `yaml:"min"`
	Max    int   `yaml:"max"`
	Chance int   `yaml:"chance"` // out of 1,000,000
}

// Walk returns the step interval while walking, falling back to def.
func (t *MobTemplate) Walk(def time.Duration) time.Duration {
	if t.WalkSpeed > 0 {
		return time.Duration(t.WalkSpeed) * time.Millisecond
	}
	return def
}

// Run returns the step interval while chasing: run_speed, or half the walk interval.
func (t *MobTemplate) Run(def time.Duration) time.Duration {
	if t.RunSpeed > 0 {
		return time.Duration(t.RunSpeed) * time.Millisecond
	}
	return t.Walk(def) / 2
}

// AttackRate returns the interval between attacks, falling back to def.
func (t *MobTemplate) AttackRate(def time.Duration) time.Duration {
	if t.AttackSpeed > 0 {
		return time.Duration(t.AttackSpeed) * time.Millisecond
	}
	return def
}

// Reach returns the attack range, never below 1.
func (t *MobTemplate) Reach() int32 {
	if t.AttackRange < 1 {
		return 1
	}
	return t.AttackRange
}

// Footprint returns the template size, never below 1.
func (t *MobTemplate) Footprint() int {
	if t.Size < 1 {
		return 1
	}
	return t.Size
}

type mobListFile struct {
	Mobs []MobTemplate `yaml:"mobs"`
}

// MobTable holds all monster templates indexed by MobID.
type MobTable struct {
	templates map[int32]*MobTemplate
}

func NewMobTable(templates ...*MobTemplate) *MobTable {
	t := &MobTable{templates: make(map[int32]*MobTemplate, len(templates))}
	for _, m := range templates {
		t.templates[m.MobID] = m
	}
	return t
}

// MaxViewRange bounds view_range. The world's area-of-interest cells are
// this many tiles wide, so a 3x3 cell scan sees every role within it.
const MaxViewRange = 20

// LoadMobTable loads monster templates from a YAML file.
func LoadMobTable(path string) (*MobTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mob_list: %w", err)
	}
	var f mobListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse mob_list: %w", err)
	}
	t := &MobTable{templates: make(map[int32]*MobTemplate, len(f.Mobs))}
	for i := range f.Mobs {
		m := &f.Mobs[i]
		if m.Life <= 0 {
			return nil, fmt.Errorf("mob_list: mob %d (%s) has no life", m.MobID, m.Name)
		}
		if m.ViewRange <= 0 {
			m.ViewRange = 8
		}
		if m.ViewRange > MaxViewRange {
			return nil, fmt.Errorf("mob_list: mob %d (%s) view_range %d exceeds %d", m.MobID, m.Name, m.ViewRange, MaxViewRange)
		}
		t.templates[m.MobID] = m
	}
	return t, nil
}

// Get returns a template by ID, or nil if not found.
func (t *MobTable) Get(mobID int32) *MobTemplate {
	return t.templates[mobID]
}

// Count returns the number of loaded templates.
func (t *MobTable) Count() int {
	return len(t.templates)
}
