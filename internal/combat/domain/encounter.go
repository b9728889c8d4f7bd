// Package domain defines the combat encounter entities and the pure state
// transitions of the initiative tracker.
package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	domainerrors "github.com/moderncanvas/dmsecretweapon-backend/internal/platform/errors"
	"github.com/moderncanvas/dmsecretweapon-backend/internal/platform/id"
)

// DefaultEncounterName is used when an encounter is created without a name.
const DefaultEncounterName = "Combat Encounter"

// Encounter is one combat encounter's full tracked state: an initiative-ordered
// list of combatants plus the turn cursor and round counter.
type Encounter struct {
	ID          string
	Name        string
	Combatants  []Combatant
	CurrentTurn int // zero-based index into Combatants
	RoundNumber int // starts at 1, advances only via turn wraparound
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewEncounter creates an encounter with a generated ID and timestamps.
// The turn cursor starts at (round 1, turn 0).
func NewEncounter(name string, now func() time.Time, idGenerator func() (string, error)) (Encounter, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultEncounterName
	}

	encounterID, err := idGenerator()
	if err != nil {
		return Encounter{}, fmt.Errorf("generate encounter id: %w", err)
	}

	createdAt := now().UTC()
	return Encounter{
		ID:          encounterID,
		Name:        name,
		Combatants:  nil,
		CurrentTurn: 0,
		RoundNumber: 1,
		IsActive:    true,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}

// AddCombatant appends the combatant and re-sorts the initiative order.
// The sort is stable: combatants with equal initiative keep their relative
// insertion order. The turn cursor is deliberately left untouched, so an
// insertion mid-combat can change which combatant the cursor points at.
func (e *Encounter) AddCombatant(combatant Combatant) {
	e.Combatants = append(e.Combatants, combatant)
	sortByInitiative(e.Combatants)
}

// RemoveCombatant removes the combatant with the given id, reporting whether
// it was present. An unknown id is a silent no-op. When the removal leaves
// the cursor out of range it resets to 0 rather than decrementing.
func (e *Encounter) RemoveCombatant(combatantID string) bool {
	for i, combatant := range e.Combatants {
		if combatant.ID != combatantID {
			continue
		}
		e.Combatants = append(e.Combatants[:i], e.Combatants[i+1:]...)
		if e.CurrentTurn >= len(e.Combatants) {
			e.CurrentTurn = 0
		}
		return true
	}
	return false
}

// AdvanceTurn moves the cursor to the next combatant. Reaching the end of the
// order wraps to 0 and increments the round. This is the sole mechanism of
// round progression.
func (e *Encounter) AdvanceTurn() error {
	if len(e.Combatants) == 0 {
		return domainerrors.New(domainerrors.CodeEncounterNoCombatants, "no combatants in initiative")
	}

	e.CurrentTurn++
	if e.CurrentTurn >= len(e.Combatants) {
		e.CurrentTurn = 0
		e.RoundNumber++
	}
	return nil
}

// FindCombatant returns the combatant with the given id, or an error carrying
// CodeCombatantNotFound.
func (e *Encounter) FindCombatant(combatantID string) (*Combatant, error) {
	for i := range e.Combatants {
		if e.Combatants[i].ID == combatantID {
			return &e.Combatants[i], nil
		}
	}
	return nil, domainerrors.WithMetadata(
		domainerrors.CodeCombatantNotFound,
		fmt.Sprintf("combatant %s not found in encounter %s", combatantID, e.ID),
		map[string]string{"CombatantID": combatantID},
	)
}

// Touch records a mutation time.
func (e *Encounter) Touch(now time.Time) {
	e.UpdatedAt = now.UTC()
}

// Clone returns a deep copy of the encounter, safe to hand to callers while
// the original remains shared mutable state.
func (e Encounter) Clone() Encounter {
	copied := e
	if e.Combatants != nil {
		copied.Combatants = make([]Combatant, len(e.Combatants))
		for i, combatant := range e.Combatants {
			copied.Combatants[i] = combatant.clone()
		}
	}
	return copied
}

// sortByInitiative orders combatants by initiative score descending. The sort
// is stable so equal scores preserve insertion order, which is the tracker's
// tie-break policy.
func sortByInitiative(combatants []Combatant) {
	sort.SliceStable(combatants, func(i, j int) bool {
		return combatants[i].Initiative > combatants[j].Initiative
	})
}
