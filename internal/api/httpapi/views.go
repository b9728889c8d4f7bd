package httpapi

import (
	"time"

	"github.com/moderncanvas/dmsecretweapon-backend/internal/combat/domain"
)

// combatantView is the wire representation of a combatant.
type combatantView struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Initiative   int      `json:"initiative"`
	HPCurrent    int      `json:"hp_current"`
	HPMax        int      `json:"hp_max"`
	AC           *int     `json:"ac,omitempty"`
	Type         string   `json:"type"`
	Conditions   []string `json:"conditions"`
	Notes        string   `json:"notes"`
	MonsterIndex string   `json:"monster_index,omitempty"`
}

// encounterView is the wire representation of an encounter snapshot.
type encounterView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Combatants  []combatantView `json:"combatants"`
	CurrentTurn int             `json:"current_turn"`
	RoundNumber int             `json:"round_number"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

func toEncounterView(encounter domain.Encounter) encounterView {
	combatants := make([]combatantView, 0, len(encounter.Combatants))
	for _, combatant := range encounter.Combatants {
		combatants = append(combatants, toCombatantView(combatant))
	}
	return encounterView{
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

func toCombatantView(combatant domain.Combatant) combatantView {
	conditions := combatant.Conditions
	if conditions == nil {
		conditions = []string{}
	}
	return combatantView{
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
	}
}
