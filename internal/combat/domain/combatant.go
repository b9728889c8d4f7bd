package domain

import (
	"fmt"
	"slices"
	"strings"

	domainerrors "github.com/moderncanvas/dmsecretweapon-backend/internal/platform/errors"
	"github.com/moderncanvas/dmsecretweapon-backend/internal/platform/id"
)

// CombatantKind categorizes a combatant in the initiative order.
type CombatantKind string

const (
	// KindPlayer marks a player character.
	KindPlayer CombatantKind = "player"
	// KindNPC marks a non-player character.
	KindNPC CombatantKind = "npc"
	// KindMonster marks a monster, usually linked to a catalog entry.
	KindMonster CombatantKind = "monster"
)

// ParseCombatantKind validates a kind string. An empty value defaults to npc.
func ParseCombatantKind(value string) (CombatantKind, error) {
	switch CombatantKind(strings.TrimSpace(value)) {
	case "":
		return KindNPC, nil
	case KindPlayer:
		return KindPlayer, nil
	case KindNPC:
		return KindNPC, nil
	case KindMonster:
		return KindMonster, nil
	default:
		return "", domainerrors.WithMetadata(
			domainerrors.CodeCombatantInvalidKind,
			fmt.Sprintf("invalid combatant kind: %s", value),
			map[string]string{"Kind": value},
		)
	}
}

// Combatant is one participant in an encounter's initiative order.
type Combatant struct {
	ID           string
	Name         string
	Initiative   int
	HPCurrent    int
	HPMax        int
	ArmorClass   *int // nil when unknown
	Kind         CombatantKind
	Conditions   []string
	Notes        string
	MonsterIndex string // optional catalog reference
}

// CombatantInput describes the attributes needed to create a combatant.
type CombatantInput struct {
	Name         string
	Initiative   int
	HPCurrent    int
	HPMax        int
	ArmorClass   *int
	Kind         string
	Notes        string
	MonsterIndex string
}

// NewCombatant creates a combatant with a generated ID. The current hit
// points are clamped into [0, HPMax] rather than rejected.
func NewCombatant(input CombatantInput, idGenerator func() (string, error)) (Combatant, error) {
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Combatant{}, domainerrors.New(domainerrors.CodeCombatantNameEmpty, "combatant name is required")
	}

	kind, err := ParseCombatantKind(input.Kind)
	if err != nil {
		return Combatant{}, err
	}

	if input.HPMax < 1 {
		return Combatant{}, domainerrors.WithMetadata(
			domainerrors.CodeCombatantInvalidHPMax,
			fmt.Sprintf("hp max must be at least 1, got %d", input.HPMax),
			map[string]string{"HPMax": fmt.Sprintf("%d", input.HPMax)},
		)
	}

	combatantID, err := idGenerator()
	if err != nil {
		return Combatant{}, fmt.Errorf("generate combatant id: %w", err)
	}

	return Combatant{
		ID:           combatantID,
		Name:         name,
		Initiative:   input.Initiative,
		HPCurrent:    clamp(input.HPCurrent, 0, input.HPMax),
		HPMax:        input.HPMax,
		ArmorClass:   input.ArmorClass,
		Kind:         kind,
		Conditions:   nil,
		Notes:        strings.TrimSpace(input.Notes),
		MonsterIndex: strings.TrimSpace(input.MonsterIndex),
	}, nil
}

// ApplyHP adjusts the current hit points by delta, clamping to [0, HPMax].
// Reaching 0 is purely numeric; no condition or state change is derived.
func (c *Combatant) ApplyHP(delta int) {
	c.HPCurrent = clamp(c.HPCurrent+delta, 0, c.HPMax)
}

// AddCondition adds a condition label if not already present.
func (c *Combatant) AddCondition(condition string) {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return
	}
	if slices.Contains(c.Conditions, condition) {
		return
	}
	c.Conditions = append(c.Conditions, condition)
}

// RemoveCondition removes a condition label; absent labels are a no-op.
func (c *Combatant) RemoveCondition(condition string) {
	condition = strings.TrimSpace(condition)
	c.Conditions = slices.DeleteFunc(c.Conditions, func(label string) bool {
		return label == condition
	})
}

// clone returns a deep copy of the combatant.
func (c Combatant) clone() Combatant {
	copied := c
	if c.ArmorClass != nil {
		ac := *c.ArmorClass
		copied.ArmorClass = &ac
	}
	if c.Conditions != nil {
		copied.Conditions = slices.Clone(c.Conditions)
	}
	return copied
}

func clamp(value, minValue, maxValue int) int {
	if minValue > maxValue {
		return minValue
	}
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}
	return value
}
