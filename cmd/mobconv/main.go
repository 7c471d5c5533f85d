// mobconv converts L1J MySQL dump files into mobsim YAML data files.
//
// Usage:
//
//	go run ./cmd/mobconv <command> [-sqldir path] [-outdir path]
//
// Commands: mobs, spawn, mobskill, mapids, all
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/l1jgo/mobsim/internal/data"
)

type mobListYAML struct {
	Mobs []data.MobTemplate `yaml:"mobs"`
}

type spawnListYAML struct {
	Spawns []data.SpawnGroup `yaml:"spawns"`
}

type mobSkillListYAML struct {
	Skills []data.MobSkill `yaml:"mob_skills"`
}

type mapListYAML struct {
	Maps []data.MapInfo `yaml:"maps"`
}

// defaultSkillCooldown is used for every converted skill; the dumps carry none.
const defaultSkillCooldown = 3000 // ms

// npcFlags maps an npc.sql impl/agro pair to behaviour flags. ok is false
// for non-combat npcs.
func npcFlags(impl string, agro bool, lawful int32) (data.AttackFlags, bool) {
	switch impl {
	case "L1Guard":
		return data.AtkGuard | data.AtkPkKiller | data.AtkNoEscape, true
	case "L1Monster":
		f := data.AtkPassive
		if agro {
			f = data.AtkActive
		}
		if lawful > 0 {
			f |= data.AtkRighteous
		}
		return f, true
	}
	return 0, false
}

// mobSkillIDs reads mobskill.sql and returns the distinct skill ids per mob.
// A missing file yields an empty map.
func mobSkillIDs(sqlDir string) (map[int32][]int32, [][]string, error) {
	rows, err := parseAllInserts(filepath.Join(sqlDir, "mobskill.sql"))
	if os.IsNotExist(err) {
		return map[int32][]int32{}, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	// mobskill columns (0-indexed):
	// 0:mobid 1:actNo 2:mobname 3:Type 4:mpConsume ... 11:Range ... 15:SkillId
	out := make(map[int32][]int32)
	seen := make(map[[2]int32]bool)
	for _, r := range rows {
		if len(r) < 23 {
			continue
		}
		mobID, skillID := parseInt32(r[0]), parseInt32(r[15])
		if skillID == 0 || seen[[2]int32{mobID, skillID}] {
			continue
		}
		seen[[2]int32{mobID, skillID}] = true
		out[mobID] = append(out[mobID], skillID)
	}
	return out, rows, nil
}

// ---------------------------------------------------------------------------
// Converters
// ---------------------------------------------------------------------------

func convertMobs(sqlDir, outDir string) error {
	rows, err := parseAllInserts(filepath.Join(sqlDir, "npc.sql"))
	if err != nil {
		return err
	}
	skills, _, err := mobSkillIDs(sqlDir)
	if err != nil {
		return fmt.Errorf("mobskill: %w", err)
	}

	var mobs []data.MobTemplate
	for _, r := range rows {
		if len(r) < 31 {
			continue
		}
		lawful := parseInt32(r[17])
		flags, ok := npcFlags(r[4], parseBool01(r[30]), lawful)
		life := parseInt32(r[7])
		if !ok || life <= 0 {
			continue
		}
		reach := parseInt32(r[20])
		if reach < 1 {
			reach = 1
		}
		size := 1
		if strings.EqualFold(r[18], "large") {
			size = 2
		}
		id := parseInt32(r[0])
		mobs = append(mobs, data.MobTemplate{
			MobID:       id,
			Name:        r[1],
			Level:       parseInt16(r[6]),
			Life:        life,
			Mana:        parseInt32(r[8]),
			AttackRange: reach,
			ViewRange:   min(data.MaxViewRange, max(8, reach+4)),
			Size:        size,
			WalkSpeed:   parseInt(r[22]),
			AttackSpeed: parseInt(r[23]),
			Flags:       flags,
			Skills:      skills[id],
		})
	}
	sort.Slice(mobs, func(i, j int) bool { return mobs[i].MobID < mobs[j].MobID })
	fmt.Printf("  mobs: %d templates (from %d npc rows)\n", len(mobs), len(rows))
	return writeYAML(filepath.Join(outDir, "mob_list.yaml"),
		mobListYAML{Mobs: mobs},
		"# Monster templates - converted from npc.sql (L1Monster and L1Guard)")
}

func convertSpawn(sqlDir, outDir string) error {
	rows, err := parseAllInserts(filepath.Join(sqlDir, "spawnlist.sql"))
	if err != nil {
		return err
	}
	var spawns []data.SpawnGroup
	for _, r := range rows {
		if len(r) < 17 {
			continue
		}
		count := parseInt(r[2])
		if count == 0 {
			continue
		}
		minDelay := parseInt(r[14])
		maxDelay := parseInt(r[15])
		delay := maxDelay
		if minDelay > maxDelay {
			delay = minDelay
		}
		spawns = append(spawns, data.SpawnGroup{
			MobID:        parseInt32(r[3]),
			MapID:        parseInt16(r[16]),
			X:            parseInt32(r[5]),
			Y:            parseInt32(r[6]),
			Count:        count,
			RandomX:      parseInt32(r[7]),
			RandomY:      parseInt32(r[8]),
			RespawnDelay: delay,
		})
	}
	sort.SliceStable(spawns, func(i, j int) bool {
		if spawns[i].MapID != spawns[j].MapID {
			return spawns[i].MapID < spawns[j].MapID
		}
		return spawns[i].MobID < spawns[j].MobID
	})
	for i := range spawns {
		spawns[i].GroupID = int32(i + 1)
	}
	fmt.Printf("  spawn: %d groups (from %d rows)\n", len(spawns), len(rows))
	return writeYAML(filepath.Join(outDir, "spawn_list.yaml"),
		spawnListYAML{Spawns: spawns},
		"# Monster spawn groups - converted from spawnlist.sql")
}

func convertMobSkill(sqlDir, outDir string) error {
	_, rows, err := mobSkillIDs(sqlDir)
	if err != nil {
		return err
	}
	if rows == nil {
		return fmt.Errorf("mobskill.sql not found in %s", sqlDir)
	}
	byID := make(map[int32]data.MobSkill)
	for _, r := range rows {
		if len(r) < 23 {
			continue
		}
		id := parseInt32(r[15])
		if id == 0 {
			continue
		}
		if _, ok := byID[id]; ok {
			continue
		}
		byID[id] = data.MobSkill{
			SkillID:   id,
			Name:      fmt.Sprintf("%s #%s", r[2], r[1]),
			Level:     1,
			Cooldown:  defaultSkillCooldown,
			Range:     parseInt32(r[11]),
			MpConsume: parseInt32(r[4]),
		}
	}
	skills := make([]data.MobSkill, 0, len(byID))
	for _, s := range byID {
		skills = append(skills, s)
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i].SkillID < skills[j].SkillID })
	fmt.Printf("  mobskill: %d skills (from %d rows)\n", len(skills), len(rows))
	return writeYAML(filepath.Join(outDir, "mob_skill_list.yaml"),
		mobSkillListYAML{Skills: skills},
		"# Monster skills - converted from mobskill.sql")
}

func convertMapIDs(sqlDir, outDir string) error {
	rows, err := parseAllInserts(filepath.Join(sqlDir, "mapids.sql"))
	if err != nil {
		return err
	}
	var maps []data.MapInfo
	for _, r := range rows {
		if len(r) < 6 {
			continue
		}
		maps = append(maps, data.MapInfo{
			MapID:  parseInt16(r[0]),
			Name:   r[1],
			StartX: parseInt32(r[2]),
			EndX:   parseInt32(r[3]),
			StartY: parseInt32(r[4]),
			EndY:   parseInt32(r[5]),
		})
	}
	sort.Slice(maps, func(i, j int) bool { return maps[i].MapID < maps[j].MapID })
	fmt.Printf("  mapids: %d maps\n", len(maps))
	return writeYAML(filepath.Join(outDir, "map_list.yaml"),
		mapListYAML{Maps: maps},
		"# Map bounds - converted from mapids.sql")
}

// ---------------------------------------------------------------------------
// main
// ---------------------------------------------------------------------------

func printUsage() {
	fmt.Println("Usage: mobconv <command> [-sqldir path] [-outdir path]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  mobs      Convert npc.sql (+ mobskill.sql) -> mob_list.yaml")
	fmt.Println("  spawn     Convert spawnlist.sql -> spawn_list.yaml")
	fmt.Println("  mobskill  Convert mobskill.sql -> mob_skill_list.yaml")
	fmt.Println("  mapids    Convert mapids.sql -> map_list.yaml")
	fmt.Println("  all       Run all conversions")
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		printUsage()
		return
	}

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	sqlDir := fs.String("sqldir", filepath.Join("..", "l1j_java", "db", "Taiwan"), "SQL source directory")
	outDir := fs.String("outdir", filepath.Join("data", "yaml"), "YAML output directory")
	_ = fs.Parse(os.Args[2:])

	converters := map[string]func(string, string) error{
		"mobs":     convertMobs,
		"spawn":    convertSpawn,
		"mobskill": convertMobSkill,
		"mapids":   convertMapIDs,
	}
	allOrder := []string{"mobs", "spawn", "mobskill", "mapids"}

	if cmd == "all" {
		fmt.Println("Converting all SQL -> YAML...")
		for _, name := range allOrder {
			if err := converters[name](*sqlDir, *outDir); err != nil {
				fmt.Fprintf(os.Stderr, "ERROR [%s]: %v\n", name, err)
				os.Exit(1)
			}
		}
		fmt.Println("Done!")
		return
	}

	fn, ok := converters[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err := fn(*sqlDir, *outDir); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Done!")
}
