// Package httpapi exposes the combat tracker as a JSON-over-HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/moderncanvas/dmsecretweapon-backend/internal/combat/domain"
	"github.com/moderncanvas/dmsecretweapon-backend/internal/combat/service"
	domainerrors "github.com/moderncanvas/dmsecretweapon-backend/internal/platform/errors"
	"github.com/moderncanvas/dmsecretweapon-backend/internal/platform/errors/i18n"
	"github.com/moderncanvas/dmsecretweapon-backend/internal/rules"
	"github.com/moderncanvas/dmsecretweapon-backend/internal/rules/catalog"
)

const shutdownTimeout = 10 * time.Second

// Server handles HTTP requests for the combat tracker and monster catalog.
type Server struct {
	combat   *service.Service
	monsters catalog.MonsterStore // nil when no catalog is configured
	logger   *log.Logger
}

// NewServer creates an HTTP server over the combat service. The monster store
// is optional.
func NewServer(combat *service.Service, monsters catalog.MonsterStore, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{combat: combat, monsters: monsters, logger: logger}
}

// Handler returns the full route tree wrapped with CORS and tracing.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHealth)

	mux.HandleFunc("POST /api/combat/create", s.handleCreateCombat)
	mux.HandleFunc("GET /api/combat/{$}", s.handleListCombats)
	mux.HandleFunc("POST /api/combat/add-combatant", s.handleAddCombatant)
	mux.HandleFunc("POST /api/combat/update-hp", s.handleUpdateHP)
	mux.HandleFunc("POST /api/combat/add-condition", s.handleAddCondition)
	mux.HandleFunc("POST /api/combat/remove-condition", s.handleRemoveCondition)
	mux.HandleFunc("POST /api/combat/next-turn", s.handleNextTurn)
	mux.HandleFunc("GET /api/combat/conditions/list", s.handleListConditions)
	mux.HandleFunc("GET /api/combat/{combat_id}", s.handleGetCombat)
	mux.HandleFunc("DELETE /api/combat/{combat_id}", s.handleDeleteCombat)
	mux.HandleFunc("DELETE /api/combat/{combat_id}/combatant/{combatant_id}", s.handleRemoveCombatant)

	mux.HandleFunc("GET /api/monsters", s.handleListMonsters)
	mux.HandleFunc("GET /api/monsters/{index}", s.handleGetMonster)

	return withCORS(otelhttp.NewHandler(mux, "httpapi"))
}

// withCORS allows any origin, including requests from private-network clients
// such as a local VTT overlay talking to this backend on localhost.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Private-Network", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "dm-command-center",
	})
}

type createCombatRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateCombat(w http.ResponseWriter, r *http.Request) {
	var req createCombatRequest
	if !s.decode(w, r, &req) {
		return
	}

	encounter, err := s.combat.CreateEncounter(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toEncounterView(encounter))
}

func (s *Server) handleGetCombat(w http.ResponseWriter, r *http.Request) {
	encounter, err := s.combat.GetEncounter(r.Context(), r.PathValue("combat_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toEncounterView(encounter))
}

func (s *Server) handleListCombats(w http.ResponseWriter, r *http.Request) {
	encounters, err := s.combat.ListEncounters(r.Context(), r.URL.Query().Get("filter"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	views := make([]encounterView, 0, len(encounters))
	for _, encounter := range encounters {
		views = append(views, toEncounterView(encounter))
	}
	s.writeJSON(w, http.StatusOK, views)
}

type addCombatantRequest struct {
	CombatID     string `json:"combat_id"`
	Name         string `json:"name"`
	Initiative   int    `json:"initiative"`
	HPCurrent    int    `json:"hp_current"`
	HPMax        int    `json:"hp_max"`
	AC           *int   `json:"ac"`
	Type         string `json:"type"`
	Notes        string `json:"notes"`
	MonsterIndex string `json:"monster_index"`
}

func (s *Server) handleAddCombatant(w http.ResponseWriter, r *http.Request) {
	var req addCombatantRequest
	if !s.decode(w, r, &req) {
		return
	}

	encounter, err := s.combat.AddCombatant(r.Context(), req.CombatID, domain.CombatantInput{
		Name:         req.Name,
		Initiative:   req.Initiative,
		HPCurrent:    req.HPCurrent,
		HPMax:        req.HPMax,
		ArmorClass:   req.AC,
		Kind:         req.Type,
		Notes:        req.Notes,
		MonsterIndex: req.MonsterIndex,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toEncounterView(encounter))
}

func (s *Server) handleRemoveCombatant(w http.ResponseWriter, r *http.Request) {
	encounter, err := s.combat.RemoveCombatant(r.Context(), r.PathValue("combat_id"), r.PathValue("combatant_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toEncounterView(encounter))
}

type updateHPRequest struct {
	CombatID    string `json:"combat_id"`
	CombatantID string `json:"combatant_id"`
	HPChange    int    `json:"hp_change"`
}

func (s *Server) handleUpdateHP(w http.ResponseWriter, r *http.Request) {
	var req updateHPRequest
	if !s.decode(w, r, &req) {
		return
	}

	encounter, err := s.combat.UpdateHP(r.Context(), req.CombatID, req.CombatantID, req.HPChange)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toEncounterView(encounter))
}

type conditionRequest struct {
	CombatID    string `json:"combat_id"`
	CombatantID string `json:"combatant_id"`
	Condition   string `json:"condition"`
}

func (s *Server) handleAddCondition(w http.ResponseWriter, r *http.Request) {
	var req conditionRequest
	if !s.decode(w, r, &req) {
		return
	}

	encounter, err := s.combat.AddCondition(r.Context(), req.CombatID, req.CombatantID, req.Condition)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toEncounterView(encounter))
}

func (s *Server) handleRemoveCondition(w http.ResponseWriter, r *http.Request) {
	var req conditionRequest
	if !s.decode(w, r, &req) {
		return
	}

	encounter, err := s.combat.RemoveCondition(r.Context(), req.CombatID, req.CombatantID, req.Condition)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toEncounterView(encounter))
}

type nextTurnRequest struct {
	CombatID string `json:"combat_id"`
}

func (s *Server) handleNextTurn(w http.ResponseWriter, r *http.Request) {
	var req nextTurnRequest
	if !s.decode(w, r, &req) {
		return
	}

	encounter, err := s.combat.AdvanceTurn(r.Context(), req.CombatID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toEncounterView(encounter))
}

func (s *Server) handleDeleteCombat(w http.ResponseWriter, r *http.Request) {
	if err := s.combat.DeleteEncounter(r.Context(), r.PathValue("combat_id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Combat deleted successfully"})
}

func (s *Server) handleListConditions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"conditions": rules.Conditions()})
}

type monsterView struct {
	Index           string `json:"index"`
	Name            string `json:"name"`
	HitPoints       int    `json:"hit_points"`
	ArmorClass      int    `json:"armor_class"`
	ChallengeRating string `json:"challenge_rating"`
}

func toMonsterView(monster catalog.Monster) monsterView {
	return monsterView{
		Index:           monster.Index,
		Name:            monster.Name,
		HitPoints:       monster.HitPoints,
		ArmorClass:      monster.ArmorClass,
		ChallengeRating: monster.ChallengeRating,
	}
}

func (s *Server) handleListMonsters(w http.ResponseWriter, r *http.Request) {
	if s.monsters == nil {
		s.writeJSON(w, http.StatusOK, []monsterView{})
		return
	}

	monsters, err := s.monsters.ListMonsters(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	views := make([]monsterView, 0, len(monsters))
	for _, monster := range monsters {
		views = append(views, toMonsterView(monster))
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetMonster(w http.ResponseWriter, r *http.Request) {
	index := r.PathValue("index")
	if s.monsters == nil {
		s.writeError(w, r, monsterNotFound(index))
		return
	}

	monster, err := s.monsters.GetMonster(r.Context(), index)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			err = monsterNotFound(index)
		}
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toMonsterView(monster))
}

func monsterNotFound(index string) error {
	return domainerrors.WithMetadata(
		domainerrors.CodeMonsterNotFound,
		"monster "+index+" not found",
		map[string]string{"Index": index},
	)
}

// decode reads the JSON request body into dst, answering 400 on malformed input.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{errorBody{
			Code:    "MALFORMED_REQUEST",
			Message: "request body must be valid JSON",
		}})
		return false
	}
	return true
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := domainerrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Printf("internal error serving %s %s: %v", r.Method, r.URL.Path, err)
	}

	locale := i18n.MatchLocale(r.Header.Get("Accept-Language"))
	s.writeJSON(w, status, errorResponse{errorBody{
		Code:    string(domainerrors.GetCode(err)),
		Message: domainerrors.UserMessage(err, locale),
	}})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("write response: %v", err)
	}
}

// Run serves the API until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
