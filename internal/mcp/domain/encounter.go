// Package domain defines the MCP tool schemas and handlers for the combat
// tracker. Each tool pairs a typed input/result with a Tool definition and a
// Handler constructor; handlers call the combat service in-process.
package domain

import (
	"time"

	combatdomain "github.com/moderncanvas/dmsecretweapon-backend/internal/combat/domain"
)

// CombatantResult represents a combatant inside a tool result.
type CombatantResult struct {
	ID           string   `json:"id" jsonschema:"combatant identifier"`
	Name         string   `json:"name" jsonschema:"combatant name"`
	Initiative   int      `json:"initiative" jsonschema:"initiative score"`
	HPCurrent    int      `json:"hp_current" jsonschema:"current hit points"`
	HPMax        int      `json:"hp_max" jsonschema:"maximum hit points"`
	AC           *int     `json:"ac,omitempty" jsonschema:"armor class, if known"`
	Type         string   `json:"type" jsonschema:"combatant type (player, npc, or monster)"`
	Conditions   []string `json:"conditions" jsonschema:"active condition labels"`
	Notes        string   `json:"notes,omitempty" jsonschema:"free-form notes"`
	MonsterIndex string   `json:"monster_index,omitempty" jsonschema:"SRD monster index, if linked"`
}

// EncounterResult represents the full encounter state returned by combat tools.
type EncounterResult struct {
	ID          string            `json:"id" jsonschema:"encounter identifier"`
	Name        string            `json:"name" jsonschema:"encounter name"`
	Combatants  []CombatantResult `json:"combatants" jsonschema:"initiative order, highest initiative first"`
	CurrentTurn int               `json:"current_turn" jsonschema:"index of the active combatant"`
	RoundNumber int               `json:"round_number" jsonschema:"current round, starting at 1"`
	IsActive    bool              `json:"is_active" jsonschema:"whether the encounter is running"`
	CreatedAt   string            `json:"created_at" jsonschema:"RFC3339 timestamp when the encounter was created"`
	UpdatedAt   string            `json:"updated_at" jsonschema:"RFC3339 timestamp of the last change"`
}

func newEncounterResult(encounter combatdomain.Encounter) EncounterResult {
	combatants := make([]CombatantResult, 0, len(encounter.Combatants))
	for _, combatant := range encounter.Combatants {
		conditions := combatant.Conditions
		if conditions == nil {
			conditions = []string{}
		}
		combatants = append(combatants, CombatantResult{
			ID:           combatant.ID,
			Name:         combatant.Name,
			Initiative:   combatant.Initiative,
			HPCurrent:    combatant.HPCurrent,
			HPMax:        combatant.HPMax,
			AC:           combatant.ArmorClass,
			Type:         string(combatant.Kind),
			Conditions:   conditions,
			Notes:        combatant.Notes,
			MonsterIndex: combatant.MonsterIndex,
		})
	}
	return EncounterResult{
		ID:          encounter.ID,
		Name:        encounter.Name,
		Combatants:  combatants,
		CurrentTurn: encounter.CurrentTurn,
		RoundNumber: encounter.RoundNumber,
		IsActive:    encounter.IsActive,
		CreatedAt:   encounter.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   encounter.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
