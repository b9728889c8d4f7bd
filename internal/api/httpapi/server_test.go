package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/moderncanvas/dmsecretweapon-backend/internal/combat/service"
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

func newTestServer(t *testing.T) (*httptest.Server, *service.Service) {
	t.Helper()
	monsters := mapMonsterStore{
		"goblin": {Index: "goblin", Name: "Goblin", HitPoints: 7, ArmorClass: 15, ChallengeRating: "1/4"},
	}
	combat := service.New(monsters)
	srv := httptest.NewServer(NewServer(combat, monsters, log.New(io.Discard, "", 0)).Handler())
	t.Cleanup(srv.Close)
	return srv, combat
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func createEncounter(t *testing.T, srv *httptest.Server, name string) encounterView {
	t.Helper()
	resp := postJSON(t, srv.URL+"/api/combat/create", map[string]string{"name": name})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create combat: status %d", resp.StatusCode)
	}
	return decodeBody[encounterView](t, resp)
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody[map[string]string](t, resp)
	if body["status"] != "ok" {
		t.Fatalf("unexpected health body: %v", body)
	}
}

func TestCreateAndFetchCombat(t *testing.T) {
	srv, _ := newTestServer(t)

	created := createEncounter(t, srv, "Goblin Ambush")
	if created.Name != "Goblin Ambush" || created.RoundNumber != 1 || !created.IsActive {
		t.Fatalf("unexpected created encounter: %+v", created)
	}

	resp, err := http.Get(srv.URL + "/api/combat/" + created.ID)
	if err != nil {
		t.Fatalf("get combat: %v", err)
	}
	fetched := decodeBody[encounterView](t, resp)
	if fetched.ID != created.ID {
		t.Fatalf("expected id %s, got %s", created.ID, fetched.ID)
	}
	if fetched.Combatants == nil {
		t.Fatal("combatants must serialize as an empty array, not null")
	}
}

func TestGetCombatNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/combat/missing")
	if err != nil {
		t.Fatalf("get combat: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	body := decodeBody[errorResponse](t, resp)
	if body.Error.Code != "ENCOUNTER_NOT_FOUND" {
		t.Fatalf("unexpected error code: %s", body.Error.Code)
	}
	if body.Error.Message != "Combat encounter not found" {
		t.Fatalf("unexpected error message: %q", body.Error.Message)
	}
}

func TestErrorMessageLocalization(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/combat/missing", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Accept-Language", "pt-BR")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get combat: %v", err)
	}
	body := decodeBody[errorResponse](t, resp)
	if body.Error.Message == "Combat encounter not found" {
		t.Fatal("expected a localized message for pt-BR")
	}
}

func TestAddCombatantFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	created := createEncounter(t, srv, "")

	resp := postJSON(t, srv.URL+"/api/combat/add-combatant", map[string]any{
		"combat_id":  created.ID,
		"name":       "Rogue",
		"initiative": 18,
		"hp_current": 20,
		"hp_max":     20,
		"type":       "player",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add combatant: status %d", resp.StatusCode)
	}
	encounter := decodeBody[encounterView](t, resp)
	if len(encounter.Combatants) != 1 || encounter.Combatants[0].Name != "Rogue" {
		t.Fatalf("unexpected combatants: %+v", encounter.Combatants)
	}
	if encounter.Combatants[0].Type != "player" {
		t.Fatalf("expected type player, got %s", encounter.Combatants[0].Type)
	}
}

func TestAddCombatantCatalogPrefill(t *testing.T) {
	srv, _ := newTestServer(t)
	created := createEncounter(t, srv, "")

	resp := postJSON(t, srv.URL+"/api/combat/add-combatant", map[string]any{
		"combat_id":     created.ID,
		"name":          "Goblin 1",
		"initiative":    12,
		"monster_index": "goblin",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add combatant: status %d", resp.StatusCode)
	}
	encounter := decodeBody[encounterView](t, resp)
	combatant := encounter.Combatants[0]
	if combatant.HPMax != 7 || combatant.HPCurrent != 7 {
		t.Fatalf("expected catalog hp 7/7, got %d/%d", combatant.HPCurrent, combatant.HPMax)
	}
	if combatant.AC == nil || *combatant.AC != 15 {
		t.Fatalf("expected catalog ac 15, got %v", combatant.AC)
	}
	if combatant.Type != "monster" {
		t.Fatalf("expected type monster, got %s", combatant.Type)
	}
}

func TestAddCombatantValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	created := createEncounter(t, srv, "")

	resp := postJSON(t, srv.URL+"/api/combat/add-combatant", map[string]any{
		"combat_id":  created.ID,
		"name":       "",
		"initiative": 10,
		"hp_max":     5,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeBody[errorResponse](t, resp)
	if body.Error.Code != "COMBATANT_NAME_EMPTY" {
		t.Fatalf("unexpected error code: %s", body.Error.Code)
	}
}

func TestMalformedBody(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/combat/create", "application/json", bytes.NewReader([]byte("{nope")))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeBody[errorResponse](t, resp)
	if body.Error.Code != "MALFORMED_REQUEST" {
		t.Fatalf("unexpected error code: %s", body.Error.Code)
	}
}

func TestUpdateHPAndConditions(t *testing.T) {
	srv, _ := newTestServer(t)
	created := createEncounter(t, srv, "")

	resp := postJSON(t, srv.URL+"/api/combat/add-combatant", map[string]any{
		"combat_id":  created.ID,
		"name":       "Cleric",
		"initiative": 10,
		"hp_current": 5,
		"hp_max":     20,
	})
	encounter := decodeBody[encounterView](t, resp)
	combatantID := encounter.Combatants[0].ID

	resp = postJSON(t, srv.URL+"/api/combat/update-hp", map[string]any{
		"combat_id":    created.ID,
		"combatant_id": combatantID,
		"hp_change":    -10,
	})
	encounter = decodeBody[encounterView](t, resp)
	if encounter.Combatants[0].HPCurrent != 0 {
		t.Fatalf("expected hp clamped to 0, got %d", encounter.Combatants[0].HPCurrent)
	}

	resp = postJSON(t, srv.URL+"/api/combat/add-condition", map[string]any{
		"combat_id":    created.ID,
		"combatant_id": combatantID,
		"condition":    "Unconscious",
	})
	encounter = decodeBody[encounterView](t, resp)
	if got := encounter.Combatants[0].Conditions; len(got) != 1 || got[0] != "Unconscious" {
		t.Fatalf("unexpected conditions: %v", got)
	}

	resp = postJSON(t, srv.URL+"/api/combat/remove-condition", map[string]any{
		"combat_id":    created.ID,
		"combatant_id": combatantID,
		"condition":    "Unconscious",
	})
	encounter = decodeBody[encounterView](t, resp)
	if len(encounter.Combatants[0].Conditions) != 0 {
		t.Fatalf("expected conditions removed, got %v", encounter.Combatants[0].Conditions)
	}
}

func TestNextTurnEmptyEncounter(t *testing.T) {
	srv, _ := newTestServer(t)
	created := createEncounter(t, srv, "")

	resp := postJSON(t, srv.URL+"/api/combat/next-turn", map[string]string{"combat_id": created.ID})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeBody[errorResponse](t, resp)
	if body.Error.Code != "ENCOUNTER_NO_COMBATANTS" {
		t.Fatalf("unexpected error code: %s", body.Error.Code)
	}
	if body.Error.Message != "No combatants in initiative" {
		t.Fatalf("unexpected error message: %q", body.Error.Message)
	}
}

func TestNextTurnWrapsRound(t *testing.T) {
	srv, _ := newTestServer(t)
	created := createEncounter(t, srv, "")

	for i, name := range []string{"a", "b"} {
		resp := postJSON(t, srv.URL+"/api/combat/add-combatant", map[string]any{
			"combat_id":  created.ID,
			"name":       name,
			"initiative": 20 - i,
			"hp_current": 10,
			"hp_max":     10,
		})
		resp.Body.Close()
	}

	var encounter encounterView
	for range 2 {
		resp := postJSON(t, srv.URL+"/api/combat/next-turn", map[string]string{"combat_id": created.ID})
		encounter = decodeBody[encounterView](t, resp)
	}
	if encounter.CurrentTurn != 0 || encounter.RoundNumber != 2 {
		t.Fatalf("expected (round 2, turn 0), got (round %d, turn %d)", encounter.RoundNumber, encounter.CurrentTurn)
	}
}

func TestRemoveCombatantAndDelete(t *testing.T) {
	srv, _ := newTestServer(t)
	created := createEncounter(t, srv, "")

	resp := postJSON(t, srv.URL+"/api/combat/add-combatant", map[string]any{
		"combat_id":  created.ID,
		"name":       "Goner",
		"initiative": 5,
		"hp_current": 1,
		"hp_max":     1,
	})
	encounter := decodeBody[encounterView](t, resp)
	combatantID := encounter.Combatants[0].ID

	req, err := http.NewRequest(http.MethodDelete,
		fmt.Sprintf("%s/api/combat/%s/combatant/%s", srv.URL, created.ID, combatantID), nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete combatant: %v", err)
	}
	encounter = decodeBody[encounterView](t, resp2)
	if len(encounter.Combatants) != 0 {
		t.Fatalf("expected combatant removed, got %+v", encounter.Combatants)
	}

	req, err = http.NewRequest(http.MethodDelete, srv.URL+"/api/combat/"+created.ID, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp3, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete combat: %v", err)
	}
	if resp3.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp3.StatusCode)
	}
	resp3.Body.Close()

	resp4, err := http.Get(srv.URL + "/api/combat/" + created.ID)
	if err != nil {
		t.Fatalf("get combat: %v", err)
	}
	if resp4.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp4.StatusCode)
	}
	resp4.Body.Close()
}

func TestListCombatsWithFilter(t *testing.T) {
	srv, _ := newTestServer(t)
	createEncounter(t, srv, "Goblin Ambush")
	createEncounter(t, srv, "Dragon Lair")

	resp, err := http.Get(srv.URL + "/api/combat/")
	if err != nil {
		t.Fatalf("list combats: %v", err)
	}
	all := decodeBody[[]encounterView](t, resp)
	if len(all) != 2 {
		t.Fatalf("expected 2 encounters, got %d", len(all))
	}

	resp, err = http.Get(srv.URL + `/api/combat/?filter=` + "name%20%3D%20%22Goblin%20Ambush%22")
	if err != nil {
		t.Fatalf("list with filter: %v", err)
	}
	filtered := decodeBody[[]encounterView](t, resp)
	if len(filtered) != 1 || filtered[0].Name != "Goblin Ambush" {
		t.Fatalf("unexpected filtered result: %+v", filtered)
	}

	resp, err = http.Get(srv.URL + "/api/combat/?filter=bogus%20%3D%3D")
	if err != nil {
		t.Fatalf("list with bad filter: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid filter, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestConditionsList(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/combat/conditions/list")
	if err != nil {
		t.Fatalf("list conditions: %v", err)
	}
	body := decodeBody[map[string][]string](t, resp)
	conditions := body["conditions"]
	if len(conditions) != 15 {
		t.Fatalf("expected 15 conditions, got %d", len(conditions))
	}
	if conditions[0] != "Blinded" || conditions[len(conditions)-1] != "Exhaustion" {
		t.Fatalf("unexpected ordering: %v", conditions)
	}
}

func TestMonsterEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/monsters/goblin")
	if err != nil {
		t.Fatalf("get monster: %v", err)
	}
	monster := decodeBody[monsterView](t, resp)
	if monster.Name != "Goblin" || monster.HitPoints != 7 {
		t.Fatalf("unexpected monster: %+v", monster)
	}

	resp, err = http.Get(srv.URL + "/api/monsters/tarrasque")
	if err != nil {
		t.Fatalf("get missing monster: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	body := decodeBody[errorResponse](t, resp)
	if body.Error.Code != "MONSTER_NOT_FOUND" {
		t.Fatalf("unexpected error code: %s", body.Error.Code)
	}

	resp, err = http.Get(srv.URL + "/api/monsters")
	if err != nil {
		t.Fatalf("list monsters: %v", err)
	}
	monsters := decodeBody[[]monsterView](t, resp)
	if len(monsters) != 1 {
		t.Fatalf("expected 1 monster, got %d", len(monsters))
	}
}

func TestCORSHeaders(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/combat/create", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 preflight, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("unexpected allow-origin: %q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Private-Network"); got != "true" {
		t.Fatalf("unexpected allow-private-network: %q", got)
	}
}
