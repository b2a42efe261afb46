package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/knowdistrict/knowdistrict/internal/ai"
	"github.com/knowdistrict/knowdistrict/internal/auth"
	"github.com/knowdistrict/knowdistrict/internal/middleware"
)

// AIService defines the operations required by the AI handlers.
type AIService interface {
	// Suggest returns editing suggestions; requires UseAIFeatures.
	Suggest(ctx context.Context, role auth.Role, content string) (*ai.Suggestions, error)
	// Chat relays a conversation; requires UseAIFeatures.
	Chat(ctx context.Context, role auth.Role, messages []ai.Message) (string, error)
	// AnswerFromDocuments answers from the stored corpus only;
	// requires ViewDocuments.
	AnswerFromDocuments(ctx context.Context, role auth.Role, query string) (string, error)
}

// AIHandler handles HTTP requests for AI-backed features.
type AIHandler struct {
	AI AIService
}

// Suggest handles POST /api/ai/suggest.
func (h *AIHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRoleFromContext(r.Context())

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid content")
		return
	}

	suggestions, err := h.AI.Suggest(r.Context(), role, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestions)
}

// Chat handles POST /api/ai/chat.
func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRoleFromContext(r.Context())

	var req struct {
		Messages []ai.Message `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid chat messages")
		return
	}

	reply, err := h.AI.Chat(r.Context(), role, req.Messages)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": reply})
}

// ChatInternal handles POST /api/ai/chat/internal: questions answered
// only from the stored documents.
func (h *AIHandler) ChatInternal(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRoleFromContext(r.Context())

	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid query")
		return
	}

	answer, err := h.AI.AnswerFromDocuments(r.Context(), role, req.Query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": answer})
}
