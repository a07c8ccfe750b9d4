package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/z-tavern/chat/internal/config"
	"github.com/zhouzirui/z-tavern/chat/internal/model/chat"
)

type recordingModel struct {
	input []*schema.Message
	reply string
	err   error
}

func (m *recordingModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.input = input
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *recordingModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *recordingModel) BindTools([]*schema.ToolInfo) error { return nil }

func newTestService(t *testing.T, m *recordingModel, limit int) *Service {
	t.Helper()
	svc, err := NewServiceWithModel(context.Background(), m, config.AIConfig{
		SystemPrompt: "be brief",
		HistoryLimit: limit,
	})
	if err != nil {
		t.Fatalf("NewServiceWithModel: %v", err)
	}
	return svc
}

func TestAnswerBuildsPrompt(t *testing.T) {
	m := &recordingModel{reply: "pong"}
	svc := newTestService(t, m, 10)

	history := []chat.Message{
		chat.AssistantMessage("Hello"),
		chat.UserMessage("ping"),
	}
	answer, err := svc.Answer(context.Background(), history)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer != "pong" {
		t.Fatalf("expected pong, got %q", answer)
	}

	if len(m.input) != 3 {
		t.Fatalf("expected system, history and query, got %d messages", len(m.input))
	}
	if m.input[0].Role != schema.System || m.input[0].Content != "be brief" {
		t.Fatalf("unexpected system message: %+v", m.input[0])
	}
	if m.input[1].Role != schema.Assistant || m.input[1].Content != "Hello" {
		t.Fatalf("unexpected history message: %+v", m.input[1])
	}
	if m.input[2].Role != schema.User || m.input[2].Content != "ping" {
		t.Fatalf("unexpected query message: %+v", m.input[2])
	}
}

func TestAnswerTrimsHistory(t *testing.T) {
	m := &recordingModel{reply: "ok"}
	svc := newTestService(t, m, 2)

	var history []chat.Message
	for i := 0; i < 5; i++ {
		history = append(history, chat.UserMessage(fmt.Sprintf("q%d", i)), chat.AssistantMessage(fmt.Sprintf("a%d", i)))
	}
	history = append(history, chat.UserMessage("last"))

	if _, err := svc.Answer(context.Background(), history); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	// system + 2 history + query
	if len(m.input) != 4 {
		t.Fatalf("expected 4 prompt messages, got %d", len(m.input))
	}
	if m.input[1].Content != "q4" || m.input[2].Content != "a4" {
		t.Fatalf("expected the most recent history, got %q %q", m.input[1].Content, m.input[2].Content)
	}
}

func TestAnswerQuestion(t *testing.T) {
	m := &recordingModel{reply: "42"}
	svc := newTestService(t, m, 10)

	answer, err := svc.AnswerQuestion(context.Background(), "meaning of life?")
	if err != nil || answer != "42" {
		t.Fatalf("unexpected answer %q err=%v", answer, err)
	}
	if len(m.input) != 2 {
		t.Fatalf("expected system and query only, got %d", len(m.input))
	}
}

func TestAnswerRequiresUserQuestion(t *testing.T) {
	svc := newTestService(t, &recordingModel{}, 10)

	cases := [][]chat.Message{
		nil,
		{chat.AssistantMessage("hi")},
		{chat.UserMessage("   ")},
	}
	for _, history := range cases {
		if _, err := svc.Answer(context.Background(), history); !errors.Is(err, ErrNoQuestion) {
			t.Fatalf("expected ErrNoQuestion for %+v, got %v", history, err)
		}
	}
}

func TestAnswerPropagatesModelError(t *testing.T) {
	svc := newTestService(t, &recordingModel{err: errors.New("quota")}, 10)
	if _, err := svc.Answer(context.Background(), []chat.Message{chat.UserMessage("hi")}); err == nil {
		t.Fatalf("expected model error")
	}
}
