package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/mobsim/internal/world"
)

// Engine wraps a single gopher-lua VM. Each map partition owns one, so a
// VM is only ever touched from its partition goroutine.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	// Shared helpers first, then feature scripts
	for _, sub := range []string{"core", "ai", "combat"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Taunt calls the Lua mob_taunt(ctx) function and returns the line m
// shouts at target. Any failure yields "" so the monster stays silent.
func (e *Engine) Taunt(m *world.Monster, target world.Role) string {
	fn := e.vm.GetGlobal("mob_taunt")
	if fn == lua.LNil {
		return ""
	}

	t := e.vm.NewTable()

	mob := e.vm.NewTable()
	mob.RawSetString("id", lua.LNumber(m.ID()))
	mob.RawSetString("mob_id", lua.LNumber(m.Template.MobID))
	mob.RawSetString("name", lua.LString(m.Template.Name))
	mob.RawSetString("level", lua.LNumber(m.Level()))
	mob.RawSetString("map_id", lua.LNumber(m.MapID()))
	mob.RawSetString("x", lua.LNumber(m.X))
	mob.RawSetString("y", lua.LNumber(m.Y))
	mob.RawSetString("flags", lua.LString(m.Flags().String()))
	t.RawSetString("mob", mob)

	tgt := e.vm.NewTable()
	tx, ty := target.Pos()
	tgt.RawSetString("id", lua.LNumber(target.ID()))
	tgt.RawSetString("kind", lua.LString(world.KindOf(target.ID()).String()))
	tgt.RawSetString("level", lua.LNumber(target.Level()))
	tgt.RawSetString("x", lua.LNumber(tx))
	tgt.RawSetString("y", lua.LNumber(ty))
	if p, ok := target.(*world.Player); ok {
		tgt.RawSetString("name", lua.LString(p.Name))
		tgt.RawSetString("lawful", lua.LNumber(p.Lawful))
		tgt.RawSetString("pk_count", lua.LNumber(p.PKCount))
		tgt.RawSetString("criminal", lua.LBool(p.Criminal()))
		tgt.RawSetString("player_killer", lua.LBool(p.PlayerKiller()))
	}
	t.RawSetString("target", tgt)

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua mob_taunt error", zap.Error(err), zap.Int32("mob", m.Template.MobID))
		return ""
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	if s, ok := result.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// DamageContext holds pre-packed data for one monster hit.
type DamageContext struct {
	AttackerLevel int
	AttackerReach int
	SkillID       int // 0 = plain attack
	TargetLevel   int
	TargetLife    int
	TargetMaxLife int
}

// DamageResult is returned by the Lua damage function.
type DamageResult struct {
	IsHit  bool
	Damage int
}

// fallbackDamage is used whenever the script is missing or misbehaves.
var fallbackDamage = DamageResult{IsHit: true, Damage: 1}

// CalcMobDamage calls the Lua calc_mob_damage(ctx) function.
func (e *Engine) CalcMobDamage(ctx DamageContext) DamageResult {
	fn := e.vm.GetGlobal("calc_mob_damage")
	if fn == lua.LNil {
		return fallbackDamage
	}

	t := e.vm.NewTable()

	atk := e.vm.NewTable()
	atk.RawSetString("level", lua.LNumber(ctx.AttackerLevel))
	atk.RawSetString("reach", lua.LNumber(ctx.AttackerReach))
	t.RawSetString("attacker", atk)
	t.RawSetString("skill_id", lua.LNumber(ctx.SkillID))

	tgt := e.vm.NewTable()
	tgt.RawSetString("level", lua.LNumber(ctx.TargetLevel))
	tgt.RawSetString("hp", lua.LNumber(ctx.TargetLife))
	tgt.RawSetString("max_hp", lua.LNumber(ctx.TargetMaxLife))
	t.RawSetString("target", tgt)

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua calc_mob_damage error", zap.Error(err))
		return fallbackDamage
	}

	res := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := res.(*lua.LTable)
	if !ok {
		e.log.Error("lua calc_mob_damage returned non-table")
		return fallbackDamage
	}

	out := DamageResult{
		IsHit:  rt.RawGetString("is_hit") == lua.LTrue,
		Damage: lInt(rt, "damage"),
	}
	if out.Damage < 0 {
		out.Damage = 0
	}
	return out
}

// --- Lua helpers ---

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
