package service

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	combatservice "github.com/moderncanvas/dmsecretweapon-backend/internal/combat/service"
	mcpdomain "github.com/moderncanvas/dmsecretweapon-backend/internal/mcp/domain"
	"github.com/moderncanvas/dmsecretweapon-backend/internal/rules/catalog"
)

type mapMonsterStore map[string]catalog.Monster

func (m mapMonsterStore) GetMonster(ctx context.Context, index string) (catalog.Monster, error) {
	monster, ok := m[index]
	if !ok {
		return catalog.Monster{}, catalog.ErrNotFound
	}
	return monster, nil
}

func (m mapMonsterStore) ListMonsters(ctx context.Context) ([]catalog.Monster, error) {
	var monsters []catalog.Monster
	for _, monster := range m {
		monsters = append(monsters, monster)
	}
	return monsters, nil
}

func connectTestClient(t *testing.T) *mcp.ClientSession {
	t.Helper()

	monsters := mapMonsterStore{
		"goblin": {Index: "goblin", Name: "Goblin", HitPoints: 7, ArmorClass: 15, ChallengeRating: "1/4"},
	}
	server := NewServer(combatservice.New(monsters), monsters, log.New(io.Discard, "", 0))

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serverCtx, serverCancel := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.MCPServer().Run(serverCtx, serverTransport)
	}()
	t.Cleanup(func() {
		serverCancel()
		select {
		case <-serveErr:
		case <-time.After(2 * time.Second):
			t.Error("server did not stop after cancel")
		}
	})

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool[T any](t *testing.T, session *mcp.ClientSession, name string, args map[string]any) T {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("call %s: %v", name, err)
	}
	if result.IsError {
		t.Fatalf("call %s returned a tool error: %+v", name, result.Content)
	}

	payload, err := json.Marshal(result.StructuredContent)
	if err != nil {
		t.Fatalf("marshal %s result: %v", name, err)
	}
	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		t.Fatalf("unmarshal %s result: %v", name, err)
	}
	return out
}

func TestServerRegistersAllTools(t *testing.T) {
	session := connectTestClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	listed, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}

	want := map[string]bool{
		"combat_create":           false,
		"combat_get":              false,
		"combat_list":             false,
		"combat_end":              false,
		"combat_add_combatant":    false,
		"combat_remove_combatant": false,
		"combat_next_turn":        false,
		"combat_update_hp":        false,
		"combat_add_condition":    false,
		"combat_remove_condition": false,
		"conditions_list":         false,
		"monster_lookup":          false,
	}
	for _, tool := range listed.Tools {
		if _, ok := want[tool.Name]; ok {
			want[tool.Name] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("tool %s is not registered", name)
		}
	}
}

func TestCombatLifecycleOverMCP(t *testing.T) {
	session := connectTestClient(t)

	created := callTool[mcpdomain.EncounterResult](t, session, "combat_create",
		map[string]any{"name": "Goblin Ambush"})
	if created.Name != "Goblin Ambush" || created.RoundNumber != 1 {
		t.Fatalf("unexpected created encounter: %+v", created)
	}

	encounter := callTool[mcpdomain.EncounterResult](t, session, "combat_add_combatant", map[string]any{
		"combat_id":  created.ID,
		"name":       "Rogue",
		"initiative": 18,
		"hp_current": 20,
		"hp_max":     20,
		"type":       "player",
	})
	encounter = callTool[mcpdomain.EncounterResult](t, session, "combat_add_combatant", map[string]any{
		"combat_id":     created.ID,
		"name":          "Goblin 1",
		"initiative":    12,
		"monster_index": "goblin",
	})
	if len(encounter.Combatants) != 2 {
		t.Fatalf("expected 2 combatants, got %d", len(encounter.Combatants))
	}
	goblin := encounter.Combatants[1]
	if goblin.HPMax != 7 || goblin.Type != "monster" {
		t.Fatalf("expected catalog prefill for goblin, got %+v", goblin)
	}

	encounter = callTool[mcpdomain.EncounterResult](t, session, "combat_update_hp", map[string]any{
		"combat_id":    created.ID,
		"combatant_id": goblin.ID,
		"hp_change":    -10,
	})
	if encounter.Combatants[1].HPCurrent != 0 {
		t.Fatalf("expected hp clamped to 0, got %d", encounter.Combatants[1].HPCurrent)
	}

	encounter = callTool[mcpdomain.EncounterResult](t, session, "combat_add_condition", map[string]any{
		"combat_id":    created.ID,
		"combatant_id": goblin.ID,
		"condition":    "Unconscious",
	})
	if got := encounter.Combatants[1].Conditions; len(got) != 1 || got[0] != "Unconscious" {
		t.Fatalf("unexpected conditions: %v", got)
	}

	encounter = callTool[mcpdomain.EncounterResult](t, session, "combat_next_turn",
		map[string]any{"combat_id": created.ID})
	if encounter.CurrentTurn != 1 {
		t.Fatalf("expected turn 1, got %d", encounter.CurrentTurn)
	}

	ended := callTool[mcpdomain.CombatEndResult](t, session, "combat_end",
		map[string]any{"combat_id": created.ID})
	if ended.CombatID != created.ID {
		t.Fatalf("unexpected end result: %+v", ended)
	}
}

func TestAddCombatantDefaultsCurrentHPToMax(t *testing.T) {
	session := connectTestClient(t)

	created := callTool[mcpdomain.EncounterResult](t, session, "combat_create", map[string]any{})
	encounter := callTool[mcpdomain.EncounterResult](t, session, "combat_add_combatant", map[string]any{
		"combat_id":  created.ID,
		"name":       "Fighter",
		"initiative": 15,
		"hp_max":     30,
	})

	combatant := encounter.Combatants[0]
	if combatant.HPCurrent != 30 || combatant.HPMax != 30 {
		t.Fatalf("expected omitted hp_current to default to hp_max, got %d/%d",
			combatant.HPCurrent, combatant.HPMax)
	}
}

func TestCombatListOverMCP(t *testing.T) {
	session := connectTestClient(t)

	callTool[mcpdomain.EncounterResult](t, session, "combat_create", map[string]any{"name": "one"})
	callTool[mcpdomain.EncounterResult](t, session, "combat_create", map[string]any{"name": "two"})

	listed := callTool[mcpdomain.CombatListResult](t, session, "combat_list",
		map[string]any{"filter": `name = "one"`})
	if len(listed.Encounters) != 1 || listed.Encounters[0].Name != "one" {
		t.Fatalf("unexpected filtered list: %+v", listed.Encounters)
	}
}

func TestToolErrorsSurfaceAsToolFailures(t *testing.T) {
	session := connectTestClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "combat_get",
		Arguments: map[string]any{"combat_id": "missing"},
	})
	if err != nil {
		t.Fatalf("call combat_get: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected a tool error for an unknown encounter")
	}
}

func TestConditionsListAndMonsterLookup(t *testing.T) {
	session := connectTestClient(t)

	conditions := callTool[mcpdomain.ConditionsListResult](t, session, "conditions_list", map[string]any{})
	if len(conditions.Conditions) != 15 {
		t.Fatalf("expected 15 conditions, got %d", len(conditions.Conditions))
	}

	lookup := callTool[mcpdomain.MonsterLookupResult](t, session, "monster_lookup",
		map[string]any{"index": "goblin"})
	if len(lookup.Monsters) != 1 || lookup.Monsters[0].HitPoints != 7 {
		t.Fatalf("unexpected lookup result: %+v", lookup.Monsters)
	}
}

func TestRunUnsupportedTransport(t *testing.T) {
	server := NewServer(combatservice.New(nil), nil, log.New(io.Discard, "", 0))

	err := server.Run(context.Background(), "websocket", "")
	if err == nil {
		t.Fatal("expected error for unsupported transport")
	}
	if !strings.Contains(err.Error(), "not supported") {
		t.Errorf("expected 'not supported' in error, got: %v", err)
	}
}
