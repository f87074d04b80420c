package rest

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

type gameManager interface {
	CreateSession(ctx context.Context, ai *entity.AIConfig) (*entity.Snapshot, error)
	Join(ctx context.Context, sessionID, name string) (*entity.Player, *entity.Snapshot, error)
	Move(ctx context.Context, sessionID, playerID string, position int) (*entity.Snapshot, error)
	Leave(ctx context.Context, sessionID, playerID string) error
	RequestRematch(ctx context.Context, sessionID, playerID string) (entity.RematchResult, *entity.Snapshot, error)
	Snapshot(ctx context.Context, sessionID, playerID string) (*entity.Snapshot, error)
	DeleteSession(ctx context.Context, sessionID string) error
	Count(ctx context.Context) (int, error)
}

type sessionHandler struct {
	games gameManager
}

func newSessionHandler(games gameManager) *sessionHandler {
	return &sessionHandler{
		games: games,
	}
}

// Create handles POST /api/sessions.
func (that *sessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeError(w, err)
		return
	}

	var ai *entity.AIConfig
	if req.AI != nil {
		difficulty, err := entity.ParseDifficulty(req.AI.Difficulty)
		if err != nil {
			writeError(w, err)
			return
		}
		ai = &entity.AIConfig{Difficulty: difficulty}
	}

	snapshot, err := that.games.CreateSession(r.Context(), ai)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, snapshot)
}

// Get handles GET /api/sessions/{id}. The optional player_id query scopes the view.
func (that *sessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.games.Snapshot(r.Context(), mux.Vars(r)["id"], r.URL.Query().Get("player_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (that *sessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := that.games.DeleteSession(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *sessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	player, snapshot, err := that.games.Join(r.Context(), mux.Vars(r)["id"], req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, JoinResponse{PlayerID: player.ID, Symbol: player.Symbol, State: snapshot})
}

func (that *sessionHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	snapshot, err := that.games.Move(r.Context(), mux.Vars(r)["id"], req.PlayerID, *req.Position)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (that *sessionHandler) Leave(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	if err := that.games.Leave(r.Context(), mux.Vars(r)["id"], req.PlayerID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *sessionHandler) Rematch(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	result, snapshot, err := that.games.RequestRematch(r.Context(), mux.Vars(r)["id"], req.PlayerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RematchResponse{Started: result.Started, WaitingFor: result.WaitingFor, State: snapshot})
}
