package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SpawnGroup defines one generator: a population of one species kept alive
// inside a rectangle centred on (X, Y).
type SpawnGroup struct {
	GroupID      int32 `yaml:"group_id"`
	MobID        int32 `yaml:"mob_id"`
	MapID        int16 `yaml:"map_id"`
	X            int32 `yaml:"x"`
	Y            int32 `yaml:"y"`
	RandomX      int32 `yaml:"randomx"`
	RandomY      int32 `yaml:"randomy"`
	Count        int   `yaml:"count"`
	RespawnDelay int   `yaml:"respawn_delay"` // seconds
	BonusSkill   int32 `yaml:"bonus_skill"`   // innate skill added to every member, 0 = none
}

type spawnListFile struct {
	Spawns []SpawnGroup `yaml:"spawns"`
}

// LoadSpawnList loads spawn groups from a YAML file.
func LoadSpawnList(path string) ([]SpawnGroup, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawn_list: %w", err)
	}
	var f spawnListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse spawn_list: %w", err)
	}
	seen := make(map[int32]bool, len(f.Spawns))
	for i := range f.Spawns {
		g := &f.Spawns[i]
		if g.GroupID == 0 {
			g.GroupID = int32(i + 1)
		}
		if seen[g.GroupID] {
			return nil, fmt.Errorf("spawn_list: duplicate group_id %d", g.GroupID)
		}
		seen[g.GroupID] = true
		if g.RandomX < 0 || g.RandomY < 0 {
			return nil, fmt.Errorf("spawn_list: group %d has negative extent", g.GroupID)
		}
	}
	return f.Spawns, nil
}
