package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/z-tavern/chat/internal/config"
	"github.com/zhouzirui/z-tavern/chat/internal/model/chat"
)

// ErrNoQuestion is returned when the conversation does not end with a user
// message.
var ErrNoQuestion = errors.New("conversation has no pending user question")

// Service answers chat conversations through an eino chain.
type Service struct {
	chatModel model.ChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates a new AI service instance backed by the Ark model.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, chatModel, cfg)
}

// NewServiceWithModel builds the answer chain around an existing model.
func NewServiceWithModel(ctx context.Context, chatModel model.ChatModel, cfg config.AIConfig) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		cfg:       cfg,
		chain:     runnable,
	}, nil
}

// Answer replies to the last user message of history, using the earlier
// messages as context.
func (s *Service) Answer(ctx context.Context, history []chat.Message) (string, error) {
	if len(history) == 0 {
		return "", ErrNoQuestion
	}
	last := history[len(history)-1]
	if !last.IsUser() || strings.TrimSpace(last.Content) == "" {
		return "", ErrNoQuestion
	}

	response, err := s.chain.Invoke(ctx, s.buildChainInput(history[:len(history)-1], last.Content))
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	log.Printf("[ai] generated answer, history=%d, length=%d", len(history)-1, len(response.Content))
	return response.Content, nil
}

// AnswerQuestion replies to a single question without context.
func (s *Service) AnswerQuestion(ctx context.Context, question string) (string, error) {
	return s.Answer(ctx, []chat.Message{chat.UserMessage(question)})
}

func (s *Service) buildChainInput(messages []chat.Message, query string) map[string]any {
	return map[string]any{
		"system":  s.cfg.SystemPrompt,
		"history": s.buildHistoryMessages(messages),
		"query":   query,
	}
}

// buildHistoryMessages keeps the most recent HistoryLimit messages.
func (s *Service) buildHistoryMessages(messages []chat.Message) []*schema.Message {
	limit := s.cfg.HistoryLimit
	if len(messages) == 0 || limit <= 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > limit {
		startIdx = len(messages) - limit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return history
}
