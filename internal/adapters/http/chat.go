package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"
)

const maxChatBodyBytes = 1 << 20

type chatRequest struct {
	ProjectID string `json:"project_id"`
	Prompt    string `json:"prompt"`
	// Temperature is accepted for client compatibility and not forwarded.
	Temperature *float64 `json:"temperature,omitempty"`
	Token       string   `json:"token"`
}

func (rt *Router) chatWithProject(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	user, err := rt.authenticate(r.Context(), r, req.Token)
	if err != nil {
		writeError(w, r, err)
		return
	}

	start := time.Now()
	result, err := rt.chat.Chat(r.Context(), user, req.ProjectID, req.Prompt)
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordChat(serviceName, "error", "", 0, time.Since(start))
		}
		writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordChat(serviceName, "ok", string(result.Kind), result.ContextLen, time.Since(start))
		rt.metrics.RecordTokenUsage(serviceName, result.Model, result.Usage.InputTokens, result.Usage.OutputTokens)
	}

	writeJSON(w, http.StatusOK, result)
}
