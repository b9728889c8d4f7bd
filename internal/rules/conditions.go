// Package rules holds static 5e reference data consumed by the tracker's
// boundaries: the condition vocabulary and the monster catalog contracts.
package rules

import "slices"

// conditionNames is the fixed vocabulary of condition labels the application
// recognizes. It is static configuration, not tracker state.
var conditionNames = []string{
	"Blinded",
	"Charmed",
	"Deafened",
	"Frightened",
	"Grappled",
	"Incapacitated",
	"Invisible",
	"Paralyzed",
	"Petrified",
	"Poisoned",
	"Prone",
	"Restrained",
	"Stunned",
	"Unconscious",
	"Exhaustion",
}

// Conditions returns the condition vocabulary. The returned slice is a copy.
func Conditions() []string {
	return slices.Clone(conditionNames)
}
