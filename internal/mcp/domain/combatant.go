package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	combatdomain "github.com/moderncanvas/dmsecretweapon-backend/internal/combat/domain"
	"github.com/moderncanvas/dmsecretweapon-backend/internal/combat/service"
)

// CombatAddCombatantInput represents the MCP tool input for adding a combatant.
type CombatAddCombatantInput struct {
	CombatID     string `json:"combat_id" jsonschema:"encounter identifier"`
	Name         string `json:"name" jsonschema:"combatant name"`
	Initiative   int    `json:"initiative" jsonschema:"initiative score, higher acts first"`
	HPCurrent    int    `json:"hp_current,omitempty" jsonschema:"current hit points, defaults to hp_max"`
	HPMax        int    `json:"hp_max,omitempty" jsonschema:"maximum hit points; may be omitted when monster_index is set"`
	AC           *int   `json:"ac,omitempty" jsonschema:"armor class"`
	Type         string `json:"type,omitempty" jsonschema:"combatant type: player, npc, or monster (defaults to npc)"`
	Notes        string `json:"notes,omitempty" jsonschema:"free-form notes"`
	MonsterIndex string `json:"monster_index,omitempty" jsonschema:"SRD monster index used to prefill hit points and armor class"`
}

// CombatAddCombatantTool defines the MCP tool schema for adding a combatant.
func CombatAddCombatantTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_add_combatant",
		Description: "Adds a combatant to an encounter's initiative order. With a monster_index and no hit points, stats are prefilled from the SRD catalog.",
	}
}

// CombatAddCombatantHandler executes an add combatant request.
func CombatAddCombatantHandler(combat *service.Service) mcp.ToolHandlerFor[CombatAddCombatantInput, EncounterResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CombatAddCombatantInput) (*mcp.CallToolResult, EncounterResult, error) {
		hpCurrent := input.HPCurrent
		if hpCurrent == 0 && input.HPMax > 0 {
			hpCurrent = input.HPMax
		}

		encounter, err := combat.AddCombatant(ctx, input.CombatID, combatdomain.CombatantInput{
			Name:         input.Name,
			Initiative:   input.Initiative,
			HPCurrent:    hpCurrent,
			HPMax:        input.HPMax,
			ArmorClass:   input.AC,
			Kind:         input.Type,
			Notes:        input.Notes,
			MonsterIndex: input.MonsterIndex,
		})
		if err != nil {
			return nil, EncounterResult{}, fmt.Errorf("add combatant failed: %w", err)
		}
		return nil, newEncounterResult(encounter), nil
	}
}

// CombatRemoveCombatantInput represents the MCP tool input for removing a combatant.
type CombatRemoveCombatantInput struct {
	CombatID    string `json:"combat_id" jsonschema:"encounter identifier"`
	CombatantID string `json:"combatant_id" jsonschema:"combatant identifier"`
}

// CombatRemoveCombatantTool defines the MCP tool schema for removing a combatant.
func CombatRemoveCombatantTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_remove_combatant",
		Description: "Removes a combatant from an encounter. Removing an unknown combatant leaves the encounter unchanged.",
	}
}

// CombatRemoveCombatantHandler executes a remove combatant request.
func CombatRemoveCombatantHandler(combat *service.Service) mcp.ToolHandlerFor[CombatRemoveCombatantInput, EncounterResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CombatRemoveCombatantInput) (*mcp.CallToolResult, EncounterResult, error) {
		encounter, err := combat.RemoveCombatant(ctx, input.CombatID, input.CombatantID)
		if err != nil {
			return nil, EncounterResult{}, fmt.Errorf("remove combatant failed: %w", err)
		}
		return nil, newEncounterResult(encounter), nil
	}
}

// CombatNextTurnInput represents the MCP tool input for advancing the turn.
type CombatNextTurnInput struct {
	CombatID string `json:"combat_id" jsonschema:"encounter identifier"`
}

// CombatNextTurnTool defines the MCP tool schema for advancing the turn.
func CombatNextTurnTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_next_turn",
		Description: "Advances the encounter to the next combatant in initiative, incrementing the round when the order wraps.",
	}
}

// CombatNextTurnHandler executes a next turn request.
func CombatNextTurnHandler(combat *service.Service) mcp.ToolHandlerFor[CombatNextTurnInput, EncounterResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CombatNextTurnInput) (*mcp.CallToolResult, EncounterResult, error) {
		encounter, err := combat.AdvanceTurn(ctx, input.CombatID)
		if err != nil {
			return nil, EncounterResult{}, fmt.Errorf("next turn failed: %w", err)
		}
		return nil, newEncounterResult(encounter), nil
	}
}

// CombatUpdateHPInput represents the MCP tool input for adjusting hit points.
type CombatUpdateHPInput struct {
	CombatID    string `json:"combat_id" jsonschema:"encounter identifier"`
	CombatantID string `json:"combatant_id" jsonschema:"combatant identifier"`
	HPChange    int    `json:"hp_change" jsonschema:"hit point delta, negative for damage and positive for healing"`
}

// CombatUpdateHPTool defines the MCP tool schema for adjusting hit points.
func CombatUpdateHPTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_update_hp",
		Description: "Applies damage or healing to a combatant. Hit points clamp between 0 and the maximum.",
	}
}

// CombatUpdateHPHandler executes an update HP request.
func CombatUpdateHPHandler(combat *service.Service) mcp.ToolHandlerFor[CombatUpdateHPInput, EncounterResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CombatUpdateHPInput) (*mcp.CallToolResult, EncounterResult, error) {
		encounter, err := combat.UpdateHP(ctx, input.CombatID, input.CombatantID, input.HPChange)
		if err != nil {
			return nil, EncounterResult{}, fmt.Errorf("update hp failed: %w", err)
		}
		return nil, newEncounterResult(encounter), nil
	}
}
