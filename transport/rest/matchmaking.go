package rest

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

type matchmaker interface {
	Enqueue(ctx context.Context, name string) (*entity.QueueEntry, error)
	TryMatch(ctx context.Context, playerID string) (*entity.MatchResult, error)
	Status(ctx context.Context, playerID string) (entity.QueueStatus, error)
	Leave(ctx context.Context, playerID string) error
	Waiting(ctx context.Context) (int, error)
}

type matchmakingHandler struct {
	matchmaker matchmaker
}

func newMatchmakingHandler(matchmaker matchmaker) *matchmakingHandler {
	return &matchmakingHandler{
		matchmaker: matchmaker,
	}
}

// Enqueue handles POST /api/matchmaking.
func (that *matchmakingHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	entry, err := that.matchmaker.Enqueue(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, EnqueueResponse{PlayerID: entry.PlayerID})
}

// Match handles POST /api/matchmaking/{player_id}/match. Clients poll it
// until matched is true.
func (that *matchmakingHandler) Match(w http.ResponseWriter, r *http.Request) {
	result, err := that.matchmaker.TryMatch(r.Context(), mux.Vars(r)["player_id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (that *matchmakingHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := that.matchmaker.Status(r.Context(), mux.Vars(r)["player_id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func (that *matchmakingHandler) Leave(w http.ResponseWriter, r *http.Request) {
	if err := that.matchmaker.Leave(r.Context(), mux.Vars(r)["player_id"]); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
