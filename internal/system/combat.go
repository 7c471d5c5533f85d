package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/mobsim/internal/core/cooldown"
	coresys "github.com/l1jgo/mobsim/internal/core/system"
	"github.com/l1jgo/mobsim/internal/intent"
	"github.com/l1jgo/mobsim/internal/scripting"
	"github.com/l1jgo/mobsim/internal/world"
)

// CombatSystem resolves the attack intents emitted this tick. Each shard's
// hits are applied on its own partition, where the victim's OnAttacked
// reaction runs too. Phase 1 (Update), after MonsterAISystem.
type CombatSystem struct {
	world  *world.State
	shards *Shards
	sched  barrier
	clock  cooldown.Clock
	log    *zap.Logger
}

func NewCombatSystem(ws *world.State, shards *Shards, sched barrier, clock cooldown.Clock, log *zap.Logger) *CombatSystem {
	return &CombatSystem{world: ws, shards: shards, sched: sched, clock: clock, log: log}
}

func (s *CombatSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *CombatSystem) Update(_ time.Duration) {
	now := s.clock.Now()
	posted := false
	for _, sh := range s.shards.All() {
		hits := sh.Hits.drain()
		if len(hits) == 0 {
			continue
		}
		sh := sh
		posted = sh.Part.Post(func() {
			for _, h := range hits {
				s.resolve(sh, h, now)
			}
		}) || posted
	}
	if posted {
		s.sched.Barrier()
	}
}

func (s *CombatSystem) resolve(sh *Shard, hit intent.Intent, now time.Time) {
	var targetID world.ObjectID
	var skillID int32
	switch h := hit.(type) {
	case intent.Attack:
		targetID = h.TargetID
	case intent.SkillAttack:
		targetID, skillID = h.TargetID, h.SkillID
	default:
		return
	}
	attacker := s.world.Resolve(hit.Actor())
	victim := s.world.Resolve(targetID)
	if attacker == nil || victim == nil || attacker.Dead() || victim.Dead() || victim.MapID() != sh.MapID {
		return
	}

	res := s.damage(sh, attacker, victim, skillID)
	switch v := victim.(type) {
	case *world.Monster:
		if res.IsHit && v.Damage(int32(res.Damage), now) {
			s.log.Debug("monster killed",
				zap.Int32("victim", int32(v.ID())),
				zap.Int32("killer", int32(attacker.ID())),
			)
			return
		}
		sh.Brain.OnAttacked(v, attacker)
	case *world.Player:
		if res.IsHit {
			v.HP = max(0, v.HP-int32(res.Damage))
		}
	}
}

func (s *CombatSystem) damage(sh *Shard, attacker, victim world.Role, skillID int32) scripting.DamageResult {
	if sh.Scripts == nil {
		return scripting.DamageResult{IsHit: true, Damage: 1}
	}
	ctx := scripting.DamageContext{
		AttackerLevel: int(attacker.Level()),
		SkillID:       int(skillID),
		TargetLevel:   int(victim.Level()),
		TargetLife:    int(victim.Life()),
		TargetMaxLife: int(victim.MaxLife()),
	}
	if m, ok := attacker.(*world.Monster); ok {
		ctx.AttackerReach = int(m.Template.Reach())
	}
	return sh.Scripts.CalcMobDamage(ctx)
}
