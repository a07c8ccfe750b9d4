package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zhouzirui/z-tavern/chat/internal/model/chat"
)

func TestNormalizeServerURL(t *testing.T) {
	cases := map[string]string{
		"localhost:8000":           "http://localhost:8000",
		"http://localhost:8000/":   "http://localhost:8000",
		"https://chat.example.com": "https://chat.example.com",
		"http://host:9000/app/":    "http://host:9000/app",
	}
	for in, want := range cases {
		got, err := normalizeServerURL(in)
		if err != nil {
			t.Fatalf("normalizeServerURL(%q) err: %v", in, err)
		}
		if got != want {
			t.Fatalf("normalizeServerURL(%q) = %q, want %q", in, got, want)
		}
	}

	for _, bad := range []string{"", "ftp://host", "http://"} {
		if _, err := normalizeServerURL(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestAskSendsHistory(t *testing.T) {
	var got HistoryRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/ask" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]string{"answer": "Use a LEFT JOIN."})
	}))
	defer srv.Close()

	c, err := NewAskClient(srv.URL, 0)
	if err != nil {
		t.Fatalf("NewAskClient err: %v", err)
	}

	history := []chat.Message{chat.AssistantMessage(chat.Greeting), chat.UserMessage("joins?")}
	if answer := c.Ask(context.Background(), history); answer != "Use a LEFT JOIN." {
		t.Fatalf("unexpected answer %q", answer)
	}
	if len(got.Messages) != 2 || got.Messages[1] != chat.UserMessage("joins?") {
		t.Fatalf("server saw %+v", got.Messages)
	}
}

func TestAskQuestionUsesRelativePath(t *testing.T) {
	var question QuestionRequest
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		json.NewDecoder(r.Body).Decode(&question)
		w.Write([]byte(`{"answer":"42"}`))
	}))
	defer srv.Close()

	c, _ := NewAskClient(srv.URL+"/chat/", 0)
	if answer := c.AskQuestion(context.Background(), "meaning?"); answer != "42" {
		t.Fatalf("unexpected answer %q", answer)
	}
	if path != "/ask" {
		t.Fatalf("expected root-relative /ask, got %q", path)
	}
	if question.Question != "meaning?" {
		t.Fatalf("unexpected question %+v", question)
	}
}

func TestAskFailuresCollapseToFallback(t *testing.T) {
	handlers := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
		"malformed body": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>`))
		},
		"missing answer": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"reply":"wrong field"}`))
		},
	}

	for name, h := range handlers {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			c, _ := NewAskClient(srv.URL, 0)
			if got := c.Ask(context.Background(), nil); got != FallbackHistoryAnswer {
				t.Fatalf("Ask: got %q", got)
			}
			if got := c.AskQuestion(context.Background(), "q"); got != FallbackQuestionAnswer {
				t.Fatalf("AskQuestion: got %q", got)
			}
		})
	}
}

func TestAskUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c, _ := NewAskClient(addr, time.Second)
	if got := c.Ask(context.Background(), []chat.Message{chat.UserMessage("hi")}); got != FallbackHistoryAnswer {
		t.Fatalf("unexpected answer %q", got)
	}
}

func TestAskEmptyAnswerIsNotAFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer":""}`))
	}))
	defer srv.Close()

	c, _ := NewAskClient(srv.URL, 0)
	if got := c.Ask(context.Background(), nil); got != "" {
		t.Fatalf("expected empty answer, got %q", got)
	}
}

func TestAskHonoursTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(5 * time.Second):
		}
		w.Write([]byte(`{"answer":"late"}`))
	}))
	defer srv.Close()
	defer close(release)

	c, _ := NewAskClient(srv.URL, 100*time.Millisecond)
	start := time.Now()
	if got := c.AskQuestion(context.Background(), "slow?"); got != FallbackQuestionAnswer {
		t.Fatalf("expected fallback on timeout, got %q", got)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("timeout not applied, request took %v", elapsed)
	}
}

func TestAskCancelledContext(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"answer":"ok"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, _ := NewAskClient(srv.URL, 0)
	if got := c.Ask(ctx, nil); got != FallbackHistoryAnswer {
		t.Fatalf("expected fallback for cancelled context, got %q", got)
	}
	if calls != 0 {
		t.Fatalf("cancelled request must not be sent")
	}
}
