package ask

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/z-tavern/chat/internal/model/chat"
	"github.com/zhouzirui/z-tavern/chat/internal/service/ai"
	"github.com/zhouzirui/z-tavern/chat/pkg/utils"
)

const maxRequestBytes = 1 << 20

// Answerer produces answers for the ask endpoint.
type Answerer interface {
	Answer(ctx context.Context, history []chat.Message) (string, error)
	AnswerQuestion(ctx context.Context, question string) (string, error)
}

// Handler 问答接口的HTTP处理器
type Handler struct {
	answerer Answerer
}

// New 创建问答处理器；answerer 为 nil 时接口返回 503。
func New(answerer Answerer) *Handler {
	return &Handler{answerer: answerer}
}

// RegisterRoutes 注册问答相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/ask", h.handleAsk)
}

// askRequest accepts either the full history or a single question.
type askRequest struct {
	Messages []chat.Message `json:"messages"`
	Question *string        `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

// handleAsk 生成回答
func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	var payload askRequest
	if err := utils.DecodeJSON(w, r, maxRequestBytes, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	for _, msg := range payload.Messages {
		if !msg.Role.Valid() {
			utils.RespondError(w, http.StatusBadRequest, "invalid message role")
			return
		}
	}

	hasQuestion := payload.Question != nil && strings.TrimSpace(*payload.Question) != ""
	if len(payload.Messages) == 0 && !hasQuestion {
		utils.RespondError(w, http.StatusBadRequest, "messages or question is required")
		return
	}

	if h.answerer == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "ai service unavailable")
		return
	}

	var (
		answer string
		err    error
	)
	if len(payload.Messages) > 0 {
		answer, err = h.answerer.Answer(r.Context(), payload.Messages)
	} else {
		answer, err = h.answerer.AnswerQuestion(r.Context(), *payload.Question)
	}

	switch {
	case errors.Is(err, ai.ErrNoQuestion):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Printf("[ask] failed to generate answer: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "failed to generate answer")
		return
	}

	utils.RespondJSON(w, http.StatusOK, askResponse{Answer: answer})
}
