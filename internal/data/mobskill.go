package data

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MobSkill is one ability a monster can learn.
type MobSkill struct {
	SkillID   int32  `yaml:"skill_id"`
	Name      string `yaml:"name"`
	Level     int    `yaml:"level"`
	Cooldown  int    `yaml:"cooldown"` // ms
	Range     int32  `yaml:"range"`    // tiles, 0 = same as the monster's attack range
	MpConsume int32  `yaml:"mp_consume"`
	Element   string `yaml:"element"`
}

// CooldownDuration returns the skill cooldown as a duration.
func (s *MobSkill) CooldownDuration() time.Duration {
	return time.Duration(s.Cooldown) * time.Millisecond
}

type mobSkillFile struct {
	Skills []MobSkill `yaml:"mob_skills"`
}

// MobSkillTable holds mob skill data indexed by skill ID.
type MobSkillTable struct {
	skills map[int32]*MobSkill
}

func NewMobSkillTable(skills ...*MobSkill) *MobSkillTable {
	t := &MobSkillTable{skills: make(map[int32]*MobSkill, len(skills))}
	for _, s := range skills {
		t.skills[s.SkillID] = s
	}
	return t
}

// Get returns a skill, or nil if none defined.
func (t *MobSkillTable) Get(skillID int32) *MobSkill {
	if t == nil {
		return nil
	}
	return t.skills[skillID]
}

// Count returns the number of loaded skills.
func (t *MobSkillTable) Count() int {
	return len(t.skills)
}

// LoadMobSkillTable loads mob skill data from a YAML file.
func LoadMobSkillTable(path string) (*MobSkillTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mob_skill_list: %w", err)
	}
	var f mobSkillFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse mob_skill_list: %w", err)
	}
	t := &MobSkillTable{skills: make(map[int32]*MobSkill, len(f.Skills))}
	for i := range f.Skills {
		s := &f.Skills[i]
		t.skills[s.SkillID] = s
	}
	return t, nil
}
