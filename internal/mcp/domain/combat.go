package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/moderncanvas/dmsecretweapon-backend/internal/combat/service"
)

// CombatCreateInput represents the MCP tool input for creating an encounter.
type CombatCreateInput struct {
	Name string `json:"name,omitempty" jsonschema:"optional encounter name, defaults to Combat Encounter"`
}

// CombatCreateTool defines the MCP tool schema for creating an encounter.
func CombatCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_create",
		Description: "Creates a new combat encounter with an empty initiative order.",
	}
}

// CombatCreateHandler executes a combat create request.
func CombatCreateHandler(combat *service.Service) mcp.ToolHandlerFor[CombatCreateInput, EncounterResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CombatCreateInput) (*mcp.CallToolResult, EncounterResult, error) {
		encounter, err := combat.CreateEncounter(ctx, input.Name)
		if err != nil {
			return nil, EncounterResult{}, fmt.Errorf("combat create failed: %w", err)
		}
		return nil, newEncounterResult(encounter), nil
	}
}

// CombatGetInput represents the MCP tool input for fetching an encounter.
type CombatGetInput struct {
	CombatID string `json:"combat_id" jsonschema:"encounter identifier"`
}

// CombatGetTool defines the MCP tool schema for fetching an encounter.
func CombatGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_get",
		Description: "Returns the current state of a combat encounter, including initiative order, turn, and round.",
	}
}

// CombatGetHandler executes a combat get request.
func CombatGetHandler(combat *service.Service) mcp.ToolHandlerFor[CombatGetInput, EncounterResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CombatGetInput) (*mcp.CallToolResult, EncounterResult, error) {
		encounter, err := combat.GetEncounter(ctx, input.CombatID)
		if err != nil {
			return nil, EncounterResult{}, fmt.Errorf("combat get failed: %w", err)
		}
		return nil, newEncounterResult(encounter), nil
	}
}

// CombatListInput represents the MCP tool input for listing encounters.
type CombatListInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"optional AIP-160 filter over name, is_active, and round_number"`
}

// CombatListResult represents the MCP tool output for listing encounters.
type CombatListResult struct {
	Encounters []EncounterResult `json:"encounters" jsonschema:"matching encounters, oldest first"`
}

// CombatListTool defines the MCP tool schema for listing encounters.
func CombatListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_list",
		Description: "Lists combat encounters, optionally filtered with an AIP-160 expression such as is_active = true.",
	}
}

// CombatListHandler executes a combat list request.
func CombatListHandler(combat *service.Service) mcp.ToolHandlerFor[CombatListInput, CombatListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CombatListInput) (*mcp.CallToolResult, CombatListResult, error) {
		encounters, err := combat.ListEncounters(ctx, input.Filter)
		if err != nil {
			return nil, CombatListResult{}, fmt.Errorf("combat list failed: %w", err)
		}

		results := make([]EncounterResult, 0, len(encounters))
		for _, encounter := range encounters {
			results = append(results, newEncounterResult(encounter))
		}
		return nil, CombatListResult{Encounters: results}, nil
	}
}

// CombatEndInput represents the MCP tool input for ending an encounter.
type CombatEndInput struct {
	CombatID string `json:"combat_id" jsonschema:"encounter identifier"`
}

// CombatEndResult represents the MCP tool output for ending an encounter.
type CombatEndResult struct {
	CombatID string `json:"combat_id" jsonschema:"identifier of the deleted encounter"`
	Message  string `json:"message" jsonschema:"confirmation message"`
}

// CombatEndTool defines the MCP tool schema for ending an encounter.
func CombatEndTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "combat_end",
		Description: "Ends a combat encounter and deletes it together with all of its combatants.",
	}
}

// CombatEndHandler executes a combat end request.
func CombatEndHandler(combat *service.Service) mcp.ToolHandlerFor[CombatEndInput, CombatEndResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CombatEndInput) (*mcp.CallToolResult, CombatEndResult, error) {
		if err := combat.DeleteEncounter(ctx, input.CombatID); err != nil {
			return nil, CombatEndResult{}, fmt.Errorf("combat end failed: %w", err)
		}
		return nil, CombatEndResult{
			CombatID: input.CombatID,
			Message:  "Combat deleted successfully",
		}, nil
	}
}
