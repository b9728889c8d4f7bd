package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/moderncanvas/dmsecretweapon-backend/internal/combat/service"
	"github.com/moderncanvas/dmsecretweapon-backend/internal/rules"
)

// CombatAddConditionInput represents the MCP tool input for adding a condition.
type CombatAddConditionInput struct {
	CombatID    string `json:"combat_id" jsonschema:"encounter identifier"`
	CombatantID string `json:"combatant_id" jsonschema:"combatant identifier"`
	Condition   string `json:"condition" jsonschema:"condition label, e.g. Poisoned"`
}

// CombatAddConditionTool defines the MCP tool schema for adding a condition.
func CombatAddConditionTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_add_condition",
		Description: "Adds a condition to a combatant. Adding a condition that is already present has no effect.",
	}
}

// CombatAddConditionHandler executes an add condition request.
func CombatAddConditionHandler(combat *service.Service) mcp.ToolHandlerFor[CombatAddConditionInput, EncounterResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CombatAddConditionInput) (*mcp.CallToolResult, EncounterResult, error) {
		encounter, err := combat.AddCondition(ctx, input.CombatID, input.CombatantID, input.Condition)
		if err != nil {
			return nil, EncounterResult{}, fmt.Errorf("add condition failed: %w", err)
		}
		return nil, newEncounterResult(encounter), nil
	}
}

// CombatRemoveConditionInput represents the MCP tool input for removing a condition.
type CombatRemoveConditionInput struct {
	CombatID    string `json:"combat_id" jsonschema:"encounter identifier"`
	CombatantID string `json:"combatant_id" jsonschema:"combatant identifier"`
	Condition   string `json:"condition" jsonschema:"condition label to remove"`
}

// CombatRemoveConditionTool defines the MCP tool schema for removing a condition.
func CombatRemoveConditionTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_remove_condition",
		Description: "Removes a condition from a combatant. Removing an absent condition has no effect.",
	}
}

// CombatRemoveConditionHandler executes a remove condition request.
func CombatRemoveConditionHandler(combat *service.Service) mcp.ToolHandlerFor[CombatRemoveConditionInput, EncounterResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CombatRemoveConditionInput) (*mcp.CallToolResult, EncounterResult, error) {
		encounter, err := combat.RemoveCondition(ctx, input.CombatID, input.CombatantID, input.Condition)
		if err != nil {
			return nil, EncounterResult{}, fmt.Errorf("remove condition failed: %w", err)
		}
		return nil, newEncounterResult(encounter), nil
	}
}

// ConditionsListInput represents the MCP tool input for listing conditions.
type ConditionsListInput struct{}

// ConditionsListResult represents the MCP tool output for listing conditions.
type ConditionsListResult struct {
	Conditions []string `json:"conditions" jsonschema:"the standard condition labels"`
}

// ConditionsListTool defines the MCP tool schema for listing conditions.
func ConditionsListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "conditions_list",
		Description: "Lists the standard D&D 5e condition labels that can be applied to combatants.",
	}
}

// ConditionsListHandler executes a conditions list request.
func ConditionsListHandler() mcp.ToolHandlerFor[ConditionsListInput, ConditionsListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ConditionsListInput) (*mcp.CallToolResult, ConditionsListResult, error) {
		return nil, ConditionsListResult{Conditions: rules.Conditions()}, nil
	}
}
