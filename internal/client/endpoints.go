package client

import "time"

const (
	// endpointAsk is the answer endpoint. The history variant posts to it as
	// an absolute URL, the question variant resolves it relative to the base.
	endpointAsk = "/ask"

	// FallbackHistoryAnswer replaces the answer when a history request fails.
	FallbackHistoryAnswer = "⚠️ Something went wrong."
	// FallbackQuestionAnswer replaces the answer when a question request fails.
	FallbackQuestionAnswer = "⚠️ Server Error"

	maxResponseBytes = 4 << 20
	dialTimeout      = 10 * time.Second
)
