// Package catalog defines the read-only monster reference store consumed by
// the combat tracker for stat prefill and by the API for lookups.
package catalog

import (
	"context"
	"errors"
)

// ErrNotFound indicates a requested catalog record is missing.
var ErrNotFound = errors.New("record not found")

// Monster is a reference entry from the SRD monster catalog. It carries the
// defaults used when a combatant is created from a monster index.
type Monster struct {
	Index           string // stable lookup key, e.g. "goblin"
	Name            string
	HitPoints       int
	ArmorClass      int
	ChallengeRating string
}

// MonsterStore serves read-only monster reference data.
type MonsterStore interface {
	GetMonster(ctx context.Context, index string) (Monster, error)
	ListMonsters(ctx context.Context) ([]Monster, error)
}
