// Package service implements the combat encounter registry: a process-wide
// collection of encounters with per-encounter serialization so concurrent
// requests against different encounters never block each other.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/moderncanvas/dmsecretweapon-backend/internal/combat/domain"
	domainerrors "github.com/moderncanvas/dmsecretweapon-backend/internal/platform/errors"
	"github.com/moderncanvas/dmsecretweapon-backend/internal/platform/id"
	"github.com/moderncanvas/dmsecretweapon-backend/internal/rules/catalog"
)

// Service owns the registry of combat encounters. The hub mutex guards only
// the id map; each entry carries its own mutex for the duration of one
// read-modify-write operation.
type Service struct {
	mu         sync.Mutex
	encounters map[string]*entry

	clock       func() time.Time
	idGenerator func() (string, error)
	monsters    catalog.MonsterStore // nil disables catalog prefill
}

// entry pairs an encounter with its exclusive-access guard.
type entry struct {
	mu        sync.Mutex
	deleted   bool // set under mu when the encounter is removed mid-flight
	encounter *domain.Encounter
}

// New creates a Service. The monster store is optional; when nil, combatants
// referencing a monster index get no stat prefill.
func New(monsters catalog.MonsterStore) *Service {
	return &Service{
		encounters:  make(map[string]*entry),
		clock:       time.Now,
		idGenerator: id.NewID,
		monsters:    monsters,
	}
}

// CreateEncounter creates a new empty encounter. Always succeeds.
func (s *Service) CreateEncounter(ctx context.Context, name string) (domain.Encounter, error) {
	if err := ctx.Err(); err != nil {
		return domain.Encounter{}, err
	}

	encounter, err := domain.NewEncounter(name, s.clock, s.idGenerator)
	if err != nil {
		return domain.Encounter{}, err
	}

	s.mu.Lock()
	s.encounters[encounter.ID] = &entry{encounter: &encounter}
	s.mu.Unlock()

	return encounter.Clone(), nil
}

// GetEncounter returns a snapshot of the encounter.
func (s *Service) GetEncounter(ctx context.Context, encounterID string) (domain.Encounter, error) {
	return s.withEncounter(ctx, encounterID, func(*domain.Encounter) error { return nil })
}

// ListEncounters returns snapshots of all encounters matching the optional
// AIP-160 filter expression (fields: name, is_active, round_number). The
// result is materialized under the registry lock and ordered by creation
// time, so it is stable for the lifetime of the call; a fresh call
// re-enumerates current state.
func (s *Service) ListEncounters(ctx context.Context, filter string) ([]domain.Encounter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matches, err := ParseEncounterFilter(filter)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	entries := make([]*entry, 0, len(s.encounters))
	for _, e := range s.encounters {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	snapshots := make([]domain.Encounter, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.deleted {
			snapshots = append(snapshots, e.encounter.Clone())
		}
		e.mu.Unlock()
	}

	filtered := snapshots[:0]
	for _, snapshot := range snapshots {
		if matches(snapshot) {
			filtered = append(filtered, snapshot)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		if !filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
		}
		return filtered[i].ID < filtered[j].ID
	})
	return filtered, nil
}

// DeleteEncounter removes the encounter and all owned combatants.
func (s *Service) DeleteEncounter(ctx context.Context, encounterID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	e, ok := s.encounters[encounterID]
	if ok {
		delete(s.encounters, encounterID)
	}
	s.mu.Unlock()

	if !ok {
		return encounterNotFound(encounterID)
	}

	// Mark deleted under the entry lock so an operation that resolved the
	// entry before the map removal observes the deletion.
	e.mu.Lock()
	e.deleted = true
	e.mu.Unlock()
	return nil
}

// AddCombatant creates a combatant and inserts it into the initiative order,
// re-sorting by initiative descending. Catalog prefill happens before the
// encounter lock is taken; no operation holds a lock across I/O.
func (s *Service) AddCombatant(ctx context.Context, encounterID string, input domain.CombatantInput) (domain.Encounter, error) {
	input, err := s.prefillFromCatalog(ctx, input)
	if err != nil {
		return domain.Encounter{}, err
	}

	combatant, err := domain.NewCombatant(input, s.idGenerator)
	if err != nil {
		return domain.Encounter{}, err
	}

	return s.withEncounter(ctx, encounterID, func(encounter *domain.Encounter) error {
		encounter.AddCombatant(combatant)
		return nil
	})
}

// RemoveCombatant removes a combatant from the encounter. An unknown
// combatant id is a silent no-op.
func (s *Service) RemoveCombatant(ctx context.Context, encounterID, combatantID string) (domain.Encounter, error) {
	return s.withEncounter(ctx, encounterID, func(encounter *domain.Encounter) error {
		encounter.RemoveCombatant(combatantID)
		return nil
	})
}

// AdvanceTurn moves the encounter to the next turn, wrapping into a new round.
func (s *Service) AdvanceTurn(ctx context.Context, encounterID string) (domain.Encounter, error) {
	return s.withEncounter(ctx, encounterID, func(encounter *domain.Encounter) error {
		return encounter.AdvanceTurn()
	})
}

// UpdateHP applies a hit point delta (negative for damage, positive for
// healing), clamped to [0, hp max].
func (s *Service) UpdateHP(ctx context.Context, encounterID, combatantID string, delta int) (domain.Encounter, error) {
	return s.withEncounter(ctx, encounterID, func(encounter *domain.Encounter) error {
		combatant, err := encounter.FindCombatant(combatantID)
		if err != nil {
			return err
		}
		combatant.ApplyHP(delta)
		return nil
	})
}

// AddCondition adds a condition label to a combatant; idempotent.
func (s *Service) AddCondition(ctx context.Context, encounterID, combatantID, condition string) (domain.Encounter, error) {
	return s.withEncounter(ctx, encounterID, func(encounter *domain.Encounter) error {
		combatant, err := encounter.FindCombatant(combatantID)
		if err != nil {
			return err
		}
		combatant.AddCondition(condition)
		return nil
	})
}

// RemoveCondition removes a condition label from a combatant; removing an
// absent label is a no-op.
func (s *Service) RemoveCondition(ctx context.Context, encounterID, combatantID, condition string) (domain.Encounter, error) {
	return s.withEncounter(ctx, encounterID, func(encounter *domain.Encounter) error {
		combatant, err := encounter.FindCombatant(combatantID)
		if err != nil {
			return err
		}
		combatant.RemoveCondition(condition)
		return nil
	})
}

// withEncounter runs fn with exclusive access to the encounter, stamps the
// update time on success, and returns a deep snapshot. The lock is released
// on every exit path.
func (s *Service) withEncounter(ctx context.Context, encounterID string, fn func(*domain.Encounter) error) (domain.Encounter, error) {
	if err := ctx.Err(); err != nil {
		return domain.Encounter{}, err
	}

	s.mu.Lock()
	e, ok := s.encounters[encounterID]
	s.mu.Unlock()
	if !ok {
		return domain.Encounter{}, encounterNotFound(encounterID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return domain.Encounter{}, encounterNotFound(encounterID)
	}

	if err := fn(e.encounter); err != nil {
		return domain.Encounter{}, err
	}

	e.encounter.Touch(s.clock())
	return e.encounter.Clone(), nil
}

// prefillFromCatalog fills missing hit points and armor class from the
// monster catalog when the input references a monster index and provides no
// explicit hit points. Explicit values always win.
func (s *Service) prefillFromCatalog(ctx context.Context, input domain.CombatantInput) (domain.CombatantInput, error) {
	if input.MonsterIndex == "" || input.HPMax != 0 || s.monsters == nil {
		return input, nil
	}

	monster, err := s.monsters.GetMonster(ctx, input.MonsterIndex)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return domain.CombatantInput{}, domainerrors.WithMetadata(
				domainerrors.CodeMonsterNotFound,
				fmt.Sprintf("monster %s not found", input.MonsterIndex),
				map[string]string{"Index": input.MonsterIndex},
			)
		}
		return domain.CombatantInput{}, fmt.Errorf("lookup monster %s: %w", input.MonsterIndex, err)
	}

	input.HPMax = monster.HitPoints
	if input.HPCurrent == 0 {
		input.HPCurrent = monster.HitPoints
	}
	if input.ArmorClass == nil {
		ac := monster.ArmorClass
		input.ArmorClass = &ac
	}
	if input.Kind == "" {
		input.Kind = string(domain.KindMonster)
	}
	return input, nil
}

func encounterNotFound(encounterID string) error {
	return domainerrors.WithMetadata(
		domainerrors.CodeEncounterNotFound,
		fmt.Sprintf("encounter %s not found", encounterID),
		map[string]string{"EncounterID": encounterID},
	)
}
