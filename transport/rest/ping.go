package rest

import (
	"context"
	"net/http"
)

type healthSource interface {
	Count(ctx context.Context) (int, error)
}

type waitingSource interface {
	Waiting(ctx context.Context) (int, error)
}

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
	Waiting  int    `json:"waiting"`
}

type pingHandler struct {
	sessions healthSource
	queue    waitingSource
}

func newPingHandler(sessions healthSource, queue waitingSource) *pingHandler {
	return &pingHandler{
		sessions: sessions,
		queue:    queue,
	}
}

func (that *pingHandler) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// Health reports whether storage answers and how busy the server is.
func (that *pingHandler) Health(w http.ResponseWriter, r *http.Request) {
	sessions, err := that.sessions.Count(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	waiting, err := that.queue.Waiting(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Sessions: sessions, Waiting: waiting})
}
