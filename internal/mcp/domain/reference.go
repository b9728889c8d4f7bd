package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/moderncanvas/dmsecretweapon-backend/internal/rules/catalog"
)

// MonsterLookupInput represents the MCP tool input for a monster lookup.
type MonsterLookupInput struct {
	Index string `json:"index,omitempty" jsonschema:"SRD monster index, e.g. goblin; omit to list the whole catalog"`
}

// MonsterResult represents one monster in a lookup result.
type MonsterResult struct {
	Index           string `json:"index" jsonschema:"SRD monster index"`
	Name            string `json:"name" jsonschema:"monster name"`
	HitPoints       int    `json:"hit_points" jsonschema:"average hit points"`
	ArmorClass      int    `json:"armor_class" jsonschema:"armor class"`
	ChallengeRating string `json:"challenge_rating" jsonschema:"challenge rating, e.g. 1/4"`
}

// MonsterLookupResult represents the MCP tool output for a monster lookup.
type MonsterLookupResult struct {
	Monsters []MonsterResult `json:"monsters" jsonschema:"matching catalog entries"`
}

// MonsterLookupTool defines the MCP tool schema for looking up monsters.
func MonsterLookupTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "monster_lookup",
		Description: "Looks up SRD monster reference stats by index, or lists the whole catalog when no index is given.",
	}
}

// MonsterLookupHandler executes a monster lookup request.
func MonsterLookupHandler(monsters catalog.MonsterStore) mcp.ToolHandlerFor[MonsterLookupInput, MonsterLookupResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input MonsterLookupInput) (*mcp.CallToolResult, MonsterLookupResult, error) {
		if monsters == nil {
			return nil, MonsterLookupResult{Monsters: []MonsterResult{}}, nil
		}

		if input.Index != "" {
			monster, err := monsters.GetMonster(ctx, input.Index)
			if err != nil {
				return nil, MonsterLookupResult{}, fmt.Errorf("monster lookup failed: %w", err)
			}
			return nil, MonsterLookupResult{Monsters: []MonsterResult{newMonsterResult(monster)}}, nil
		}

		all, err := monsters.ListMonsters(ctx)
		if err != nil {
			return nil, MonsterLookupResult{}, fmt.Errorf("monster list failed: %w", err)
		}
		results := make([]MonsterResult, 0, len(all))
		for _, monster := range all {
			results = append(results, newMonsterResult(monster))
		}
		return nil, MonsterLookupResult{Monsters: results}, nil
	}
}

func newMonsterResult(monster catalog.Monster) MonsterResult {
	return MonsterResult{
		Index:           monster.Index,
		Name:            monster.Name,
		HitPoints:       monster.HitPoints,
		ArmorClass:      monster.ArmorClass,
		ChallengeRating: monster.ChallengeRating,
	}
}
