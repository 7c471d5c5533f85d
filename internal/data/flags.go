package data

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// AttackFlags describes who a monster fights and how it behaves.
// Loaded from the attack_user list in mob_list.yaml.
type AttackFlags uint32

const (
	AtkPassive    AttackFlags = 1 << iota // fights back only
	AtkActive                             // attacks eligible players on sight
	AtkRighteous                          // fights evil monsters
	AtkGuard                              // hunts criminals
	AtkPkKiller                           // hunts player killers
	AtkEvilKiller                         // hunts players whose lawful is negative
	AtkFixed                              // never moves
	AtkFastBack                           // walks home eagerly, leashed like a guard
	AtkLockUser                           // keeps a valid target without rescanning
	AtkLockOne                            // like lock_user, and ignores new attackers
	AtkWing                               // may engage flying targets
	AtkNoEscape                           // never flees
)

var flagNames = map[string]AttackFlags{
	"passive":     AtkPassive,
	"active":      AtkActive,
	"righteous":   AtkRighteous,
	"guard":       AtkGuard,
	"pk_killer":   AtkPkKiller,
	"evil_killer": AtkEvilKiller,
	"fixed":       AtkFixed,
	"fast_back":   AtkFastBack,
	"lock_user":   AtkLockUser,
	"lock_one":    AtkLockOne,
	"wing":        AtkWing,
	"no_escape":   AtkNoEscape,
}

// ParseAttackFlags converts flag names into a set.
func ParseAttackFlags(names []string) (AttackFlags, error) {
	var f AttackFlags
	for _, n := range names {
		v, ok := flagNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return 0, fmt.Errorf("unknown attack flag %q", n)
		}
		f |= v
	}
	return f, nil
}

func (f *AttackFlags) UnmarshalYAML(node *yaml.Node) error {
	var names []string
	if err := node.Decode(&names); err != nil {
		return fmt.Errorf("attack_user: %w", err)
	}
	v, err := ParseAttackFlags(names)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Names returns the flag names in the set, sorted.
func (f AttackFlags) Names() []string {
	var names []string
	for n, v := range flagNames {
		if f&v != 0 {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

func (f AttackFlags) MarshalYAML() (interface{}, error) {
	return f.Names(), nil
}

func (f AttackFlags) Hostile() bool { return f&AtkActive != 0 }
func (f AttackFlags) Guard() bool { return f&AtkGuard != 0 }
func (f AttackFlags) PkKiller() bool { return f&AtkPkKiller != 0 }
func (f AttackFlags) EvilKiller() bool { return f&AtkEvilKiller != 0 }
func (f AttackFlags) Righteous() bool { return f&AtkRighteous != 0 }
func (f AttackFlags) Mobile() bool { return f&AtkFixed == 0 }
func (f AttackFlags) CanEscape() bool { return f&AtkNoEscape == 0 }
func (f AttackFlags) Wing() bool { return f&AtkWing != 0 }
func (f AttackFlags) LockUser() bool { return f&(AtkLockUser|AtkLockOne) != 0 }
func (f AttackFlags) LockOne() bool { return f&AtkLockOne != 0 }

// Hunter is true for the classes that search for prey regardless of the
// attack cadence: guards, pk killers and evil killers.
func (f AttackFlags) Hunter() bool {
	return f&(AtkGuard|AtkPkKiller|AtkEvilKiller) != 0
}

// Leashed classes give up a chase once they stray too far from home.
func (f AttackFlags) Leashed() bool {
	return f&(AtkGuard|AtkPkKiller|AtkFastBack) != 0
}

// Evil monsters are hostile ones that are not on the side of the law.
func (f AttackFlags) Evil() bool {
	return f&AtkActive != 0 && f&(AtkRighteous|AtkGuard) == 0
}

func (f AttackFlags) String() string {
	if f == 0 {
		return "none"
	}
	return strings.Join(f.Names(), "|")
}
