package client

import "github.com/zhouzirui/z-tavern/chat/internal/model/chat"

// HistoryRequest carries the full conversation to the ask endpoint.
type HistoryRequest struct {
	Messages []chat.Message `json:"messages"`
}

// QuestionRequest carries a single question to the ask endpoint.
type QuestionRequest struct {
	Question string `json:"question"`
}

// AskResponse is the ask endpoint reply. Answer is a pointer so a missing
// field can be told apart from an empty answer.
type AskResponse struct {
	Answer *string `json:"answer"`
}
