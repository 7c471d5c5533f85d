package data

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// MapInfo holds metadata for a single map, loaded from map_list.yaml.
type MapInfo struct {
	MapID  int16  `yaml:"map_id"`
	Name   string `yaml:"name"`
	StartX int32  `yaml:"start_x"`
	EndX   int32  `yaml:"end_x"`
	StartY int32  `yaml:"start_y"`
	EndY   int32  `yaml:"end_y"`
}

// mapEntry stores loaded tile data + metadata for one map.
type mapEntry struct {
	info   MapInfo
	tiles  []byte // flat array [x * height + y], row-major by X
	width  int32
	height int32
}

// MapDataTable provides map tile data and metadata lookups.
// Tile bytes are read-only after load, so lookups are safe from any partition.
type MapDataTable struct {
	maps map[int16]*mapEntry
}

// Tile flag bits.
const (
	TilePassableEast  byte = 0x01
	TilePassableNorth byte = 0x02
	TileArrowEast     byte = 0x04
	TileArrowNorth    byte = 0x08
	tileZoneMask      byte = 0x30
	tileZoneNormal    byte = 0x00
	TileZoneSafety    byte = 0x10
	TileZoneCombat    byte = 0x20
	TileLedge         byte = 0x40 // only climbers may enter
	TileOpen               = TilePassableEast | TilePassableNorth
)

// HeadingDX and HeadingDY are the unit steps for headings 0..7,
// clockwise from north.
var HeadingDX = [8]int32{0, 1, 1, 1, 0, -1, -1, -1}
var HeadingDY = [8]int32{-1, -1, 0, 1, 1, 1, 0, -1}

type mapListFile struct {
	Maps []MapInfo `yaml:"maps"`
}

// NewMapDataTable returns an empty table; maps are added with AddMap.
func NewMapDataTable() *MapDataTable {
	return &MapDataTable{maps: make(map[int16]*mapEntry)}
}

// AddMap registers a map whose tiles all carry fill.
func (t *MapDataTable) AddMap(info MapInfo, fill byte) error {
	width := info.EndX - info.StartX + 1
	height := info.EndY - info.StartY + 1
	if width <= 0 || height <= 0 {
		return fmt.Errorf("map %d: empty bounds", info.MapID)
	}
	tiles := make([]byte, int(width)*int(height))
	if fill != 0 {
		for i := range tiles {
			tiles[i] = fill
		}
	}
	t.maps[info.MapID] = &mapEntry{info: info, tiles: tiles, width: width, height: height}
	return nil
}

// LoadMapData loads map metadata from YAML and tile data from text files.
// yamlPath: path to map_list.yaml
// tileDir: directory containing {mapid}.txt tile files
func LoadMapData(yamlPath, tileDir string) (*MapDataTable, error) {
	raw, err := os.ReadFile(yamlPath)
	if err != nil {
		return nil, fmt.Errorf("read map list %s: %w", yamlPath, err)
	}
	var file mapListFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse map list: %w", err)
	}

	table := NewMapDataTable()
	for _, info := range file.Maps {
		width := info.EndX - info.StartX + 1
		height := info.EndY - info.StartY + 1
		if width <= 0 || height <= 0 {
			return nil, fmt.Errorf("map %d: empty bounds", info.MapID)
		}
		tiles, err := loadTileFile(tileDir, int(info.MapID), int(width), int(height))
		if err != nil {
			return nil, fmt.Errorf("map %d tiles: %w", info.MapID, err)
		}
		table.maps[info.MapID] = &mapEntry{
			info:   info,
			tiles:  tiles,
			width:  width,
			height: height,
		}
	}
	return table, nil
}

// loadTileFile reads a CSV tile file: file rows are Y lines, columns are X values.
func loadTileFile(dir string, mapID, xSize, ySize int) ([]byte, error) {
	path := filepath.Join(dir, strconv.Itoa(mapID)+".txt")
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tiles := make([]byte, xSize*ySize)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)

	y := 0
	for scanner.Scan() && y < ySize {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		x := 0
		for _, tok := range strings.Split(line, ",") {
			if x >= xSize {
				break
			}
			val, err := strconv.ParseInt(strings.TrimSpace(tok), 10, 16)
			if err != nil {
				val = 0
			}
			tiles[x*ySize+y] = byte(val)
			x++
		}
		y++
	}

	return tiles, scanner.Err()
}

// Count returns the number of maps loaded with tile data.
func (t *MapDataTable) Count() int {
	return len(t.maps)
}

// MapIDs returns every loaded map id in ascending order.
func (t *MapDataTable) MapIDs() []int16 {
	ids := make([]int16, 0, len(t.maps))
	for id := range t.maps {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// GetInfo returns metadata for a map, or nil if not found.
func (t *MapDataTable) GetInfo(mapID int16) *MapInfo {
	e := t.maps[mapID]
	if e == nil {
		return nil
	}
	return &e.info
}

func (t *MapDataTable) index(mapID int16, x, y int32) (*mapEntry, int) {
	e := t.maps[mapID]
	if e == nil {
		return nil, -1
	}
	lx := x - e.info.StartX
	ly := y - e.info.StartY
	if lx < 0 || lx >= e.width || ly < 0 || ly >= e.height {
		return e, -1
	}
	return e, int(lx)*int(e.height) + int(ly)
}

// Tile returns the tile byte at world coordinates, or 0 if out of bounds.
func (t *MapDataTable) Tile(mapID int16, x, y int32) byte {
	e, i := t.index(mapID, x, y)
	if i < 0 {
		return 0
	}
	return e.tiles[i]
}

// SetTile overwrites one tile. Only call during setup, before partitions run.
func (t *MapDataTable) SetTile(mapID int16, x, y int32, tile byte) {
	e, i := t.index(mapID, x, y)
	if i < 0 {
		return
	}
	e.tiles[i] = tile
}

// IsInMap checks if world coordinates are within the map bounds.
func (t *MapDataTable) IsInMap(mapID int16, x, y int32) bool {
	e := t.maps[mapID]
	if e == nil {
		return false
	}
	return e.info.StartX <= x && x <= e.info.EndX &&
		e.info.StartY <= y && y <= e.info.EndY
}

// IsPassable checks if movement from (x,y) in the given heading direction is allowed.
// heading: 0=N, 1=NE, 2=E, 3=SE, 4=S, 5=SW, 6=W, 7=NW
func (t *MapDataTable) IsPassable(mapID int16, x, y int32, heading int) bool {
	if heading < 0 || heading > 7 {
		return false
	}

	tile1 := t.Tile(mapID, x, y)
	nx := x + HeadingDX[heading]
	ny := y + HeadingDY[heading]
	tile2 := t.Tile(mapID, nx, ny)

	if tile2&TileOpen == 0 {
		return false
	}

	switch heading {
	case 0: // North
		return tile1&TilePassableNorth != 0
	case 1: // NE
		tile3 := t.Tile(mapID, x, y-1)
		tile4 := t.Tile(mapID, x+1, y)
		return (tile3&TilePassableEast != 0) || (tile4&TilePassableNorth != 0)
	case 2: // East
		return tile1&TilePassableEast != 0
	case 3: // SE
		tile3 := t.Tile(mapID, x, y+1)
		return tile3&TilePassableEast != 0
	case 4: // South
		return tile2&TilePassableNorth != 0
	case 5: // SW
		return (tile2&TilePassableEast != 0) || (tile2&TilePassableNorth != 0)
	case 6: // West
		return tile2&TilePassableEast != 0
	case 7: // NW
		tile3 := t.Tile(mapID, x-1, y)
		return tile3&TilePassableNorth != 0
	}
	return false
}

// IsPassablePoint checks if (x,y) can be stood on, i.e. reached from any side.
func (t *MapDataTable) IsPassablePoint(mapID int16, x, y int32) bool {
	return t.Tile(mapID, x, y)&TileOpen != 0
}

// IsLedge reports whether (x,y) needs climbing ability to enter.
func (t *MapDataTable) IsLedge(mapID int16, x, y int32) bool {
	return t.Tile(mapID, x, y)&TileLedge != 0
}

// IsSafetyZone checks if the tile at (x,y) is a safety zone.
func (t *MapDataTable) IsSafetyZone(mapID int16, x, y int32) bool {
	return t.Tile(mapID, x, y)&tileZoneMask == TileZoneSafety
}

// IsCombatZone checks if the tile at (x,y) is a combat zone.
func (t *MapDataTable) IsCombatZone(mapID int16, x, y int32) bool {
	return t.Tile(mapID, x, y)&tileZoneMask == TileZoneCombat
}

// IsNormalZone checks if the tile at (x,y) is a normal zone.
func (t *MapDataTable) IsNormalZone(mapID int16, x, y int32) bool {
	return t.Tile(mapID, x, y)&tileZoneMask == tileZoneNormal
}
