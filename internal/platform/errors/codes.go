// Package errors provides structured error handling with i18n support.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Encounter errors
	CodeEncounterNotFound     Code = "ENCOUNTER_NOT_FOUND"
	CodeEncounterNoCombatants Code = "ENCOUNTER_NO_COMBATANTS"

	// Combatant errors
	CodeCombatantNotFound     Code = "COMBATANT_NOT_FOUND"
	CodeCombatantNameEmpty    Code = "COMBATANT_NAME_EMPTY"
	CodeCombatantInvalidKind  Code = "COMBATANT_INVALID_KIND"
	CodeCombatantInvalidHPMax Code = "COMBATANT_INVALID_HP_MAX"

	// Catalog errors
	CodeMonsterNotFound Code = "MONSTER_NOT_FOUND"

	// Listing errors
	CodeListFilterInvalid Code = "LIST_FILTER_INVALID"
)

// HTTPStatus maps domain codes to HTTP response status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Not found - referenced resource doesn't exist
	case CodeEncounterNotFound,
		CodeCombatantNotFound,
		CodeMonsterNotFound:
		return http.StatusNotFound

	// Bad request - validation failures and precondition violations
	case CodeEncounterNoCombatants,
		CodeCombatantNameEmpty,
		CodeCombatantInvalidKind,
		CodeCombatantInvalidHPMax,
		CodeListFilterInvalid:
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
