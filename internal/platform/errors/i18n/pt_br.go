package i18n

var ptBRCatalog = &Catalog{
	locale: "pt-BR",
	messages: map[Code]string{
		CodeEncounterNotFound:     "Encontro de combate não encontrado",
		CodeEncounterNoCombatants: "Nenhum combatente na iniciativa",
		CodeCombatantNotFound:     "Combatente não encontrado",
		CodeCombatantNameEmpty:    "O nome do combatente não pode ficar vazio",
		CodeCombatantInvalidKind:  "O tipo do combatente deve ser player, npc ou monster",
		CodeCombatantInvalidHPMax: "Os pontos de vida máximos devem ser pelo menos 1",
		CodeMonsterNotFound:       "Monstro {{.Index}} não encontrado no catálogo",
		CodeListFilterInvalid:     "Expressão de filtro inválida",
	},
}
