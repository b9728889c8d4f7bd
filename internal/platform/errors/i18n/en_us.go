package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeEncounterNotFound     = "ENCOUNTER_NOT_FOUND"
	CodeEncounterNoCombatants = "ENCOUNTER_NO_COMBATANTS"
	CodeCombatantNotFound     = "COMBATANT_NOT_FOUND"
	CodeCombatantNameEmpty    = "COMBATANT_NAME_EMPTY"
	CodeCombatantInvalidKind  = "COMBATANT_INVALID_KIND"
	CodeCombatantInvalidHPMax = "COMBATANT_INVALID_HP_MAX"
	CodeMonsterNotFound       = "MONSTER_NOT_FOUND"
	CodeListFilterInvalid     = "LIST_FILTER_INVALID"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		CodeEncounterNotFound:     "Combat encounter not found",
		CodeEncounterNoCombatants: "No combatants in initiative",
		CodeCombatantNotFound:     "Combatant not found",
		CodeCombatantNameEmpty:    "Combatant name cannot be empty",
		CodeCombatantInvalidKind:  "Combatant type must be player, npc, or monster",
		CodeCombatantInvalidHPMax: "Maximum hit points must be at least 1",
		CodeMonsterNotFound:       "Monster {{.Index}} not found in the catalog",
		CodeListFilterInvalid:     "Invalid list filter expression",
	},
}
