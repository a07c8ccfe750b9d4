package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	hclient "github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/app/client/retry"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/zhouzirui/z-tavern/chat/internal/model/chat"
)

// AskClient talks to the remote ask endpoint. It never returns transport
// errors to callers: every failure collapses into a fixed fallback answer.
type AskClient struct {
	client  *hclient.Client
	timeout time.Duration
	server  string
	base    *url.URL
}

// NewAskClient creates a client for server. A zero timeout disables the
// per-request deadline.
func NewAskClient(server string, timeout time.Duration) (*AskClient, error) {
	normalized, err := normalizeServerURL(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	base, err := url.Parse(normalized + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	// standard dialer: netpoll is not available on every platform
	c, err := hclient.NewClient(
		hclient.WithDialTimeout(dialTimeout),
		hclient.WithMaxIdleConnDuration(60*time.Second),
		hclient.WithDialer(standard.NewDialer()),
		hclient.WithRetryConfig(retry.WithMaxAttemptTimes(1)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &AskClient{
		client:  c,
		timeout: timeout,
		server:  normalized,
		base:    base,
	}, nil
}

// Server returns the normalized server address.
func (c *AskClient) Server() string {
	return c.server
}

// normalizeServerURL ensures a scheme is present and strips any trailing slash
func normalizeServerURL(server string) (string, error) {
	server = strings.TrimSpace(server)
	if server == "" {
		return "", errors.New("empty server URL")
	}
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}

	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("cannot parse %q", server)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	return strings.TrimRight(fmt.Sprintf("%s://%s%s", u.Scheme, u.Host, u.Path), "/"), nil
}

// Ask sends the whole history to the absolute ask URL and returns the answer,
// or FallbackHistoryAnswer on any failure.
func (c *AskClient) Ask(ctx context.Context, history []chat.Message) string {
	if history == nil {
		history = []chat.Message{}
	}
	answer, err := c.post(ctx, c.server+endpointAsk, HistoryRequest{Messages: history})
	if err != nil {
		log.Printf("[ask] history request failed: %v", err)
		return FallbackHistoryAnswer
	}
	return answer
}

// AskQuestion sends a single question to the ask path relative to the base
// address and returns the answer, or FallbackQuestionAnswer on any failure.
func (c *AskClient) AskQuestion(ctx context.Context, question string) string {
	ref, _ := url.Parse(endpointAsk)
	answer, err := c.post(ctx, c.base.ResolveReference(ref).String(), QuestionRequest{Question: question})
	if err != nil {
		log.Printf("[ask] question request failed: %v", err)
		return FallbackQuestionAnswer
	}
	return answer
}

func (c *AskClient) post(ctx context.Context, target string, payload any) (string, error) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(target)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.Header.Set("Accept", "application/json")
	req.SetBody(body)

	if err := c.do(ctx, req, resp); err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}

	if status := resp.StatusCode(); status < 200 || status > 299 {
		return "", fmt.Errorf("ask endpoint returned HTTP %d", status)
	}

	data := resp.Body()
	if len(data) > maxResponseBytes {
		return "", fmt.Errorf("response exceeds %d bytes", maxResponseBytes)
	}

	var parsed AskResponse
	if err := sonic.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if parsed.Answer == nil {
		return "", errors.New("response has no answer field")
	}
	return *parsed.Answer, nil
}

// do sends req with the earlier of the configured timeout and the context
// deadline.
func (c *AskClient) do(ctx context.Context, req *protocol.Request, resp *protocol.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	deadline, hasDeadline := ctx.Deadline()
	if c.timeout > 0 {
		if limit := time.Now().Add(c.timeout); !hasDeadline || limit.Before(deadline) {
			deadline, hasDeadline = limit, true
		}
	}

	if hasDeadline {
		return c.client.DoDeadline(ctx, req, resp, deadline)
	}
	return c.client.Do(ctx, req, resp)
}
