// Package botpress talks to the Botpress Cloud chat API: the paginated
// conversation index and the per-conversation message endpoint.
package botpress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/csheth/convoscout/internal/config"
	"github.com/csheth/convoscout/internal/transcript"
)

// DefaultBaseURL is the hosted Botpress Cloud endpoint.
const DefaultBaseURL = "https://api.botpress.cloud"

const (
	defaultHTTPTimeout = 30 * time.Second
	maxErrorBody       = 200
)

// ConversationRef identifies one conversation in the index listing. It is
// consumed once to schedule a message fetch and not retained afterward.
type ConversationRef struct {
	ID        string
	CreatedAt string
	UpdatedAt string
}

// ListPage is one page of the conversation index plus the continuation token
// for the next page, empty when the index is exhausted.
type ListPage struct {
	Conversations []ConversationRef
	NextToken     string
}

// FetchResult carries everything the orchestrator needs to accept or reject a
// conversation. Failures travel in Err rather than a separate error return so
// that worker results flow through one channel regardless of outcome.
type FetchResult struct {
	ConversationID string
	CreatedAt      string
	UpdatedAt      string
	Messages       []transcript.Message
	HasIncoming    bool
	Err            string
}

// StatusError is a non-success HTTP response, keeping a bounded slice of the
// body for diagnostics.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP error: %s", e.Status)
	}
	return fmt.Sprintf("HTTP error: %s - body: %s", e.Status, e.Body)
}

// Client issues authenticated requests against one workspace and bot.
type Client struct {
	httpClient *http.Client
	baseURL    string
	creds      config.Credentials
}

// NewClient builds a client for the given base URL, falling back to the hosted
// endpoint when the URL is empty.
func NewClient(baseURL string, creds config.Credentials) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
	}
}

type pageMeta struct {
	NextToken string `json:"nextToken"`
}

type listResponse struct {
	Conversations []struct {
		ID        string `json:"id"`
		CreatedAt string `json:"createdAt"`
		UpdatedAt string `json:"updatedAt"`
	} `json:"conversations"`
	Meta pageMeta `json:"meta"`
}

type messagesResponse struct {
	Messages []rawMessage `json:"messages"`
	Meta     pageMeta     `json:"meta"`
}

type rawMessage struct {
	Type      string `json:"type"`
	Direction string `json:"direction"`
	UpdatedAt string `json:"updatedAt"`
	Payload   *struct {
		Text *string `json:"text"`
	} `json:"payload"`
}

// ListConversations fetches one page of the conversation index, newest-updated
// first. Pass the token from the previous page, or the empty string for the
// first page.
func (c *Client) ListConversations(ctx context.Context, limit int, nextToken string) (ListPage, error) {
	endpoint := fmt.Sprintf("%s/v1/chat/conversations?sortField=updatedAt&sortDirection=desc&limit=%d", c.baseURL, limit)
	if nextToken != "" {
		endpoint += "&nextToken=" + url.QueryEscape(nextToken)
	}

	var payload listResponse
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return ListPage{}, err
	}

	refs := make([]ConversationRef, 0, len(payload.Conversations))
	for _, conv := range payload.Conversations {
		if conv.ID == "" {
			continue
		}
		refs = append(refs, ConversationRef{ID: conv.ID, CreatedAt: conv.CreatedAt, UpdatedAt: conv.UpdatedAt})
	}
	return ListPage{Conversations: refs, NextToken: payload.Meta.NextToken}, nil
}

// FetchMessages retrieves and normalizes every message for one conversation,
// following continuation tokens until the endpoint stops returning them. Any
// failure aborts pagination for this conversation only and is reported in the
// result's Err field; no retry is attempted here.
func (c *Client) FetchMessages(ctx context.Context, ref ConversationRef) FetchResult {
	result := FetchResult{ConversationID: ref.ID, CreatedAt: ref.CreatedAt, UpdatedAt: ref.UpdatedAt}
	if err := c.creds.Validate(); err != nil {
		result.Err = err.Error()
		return result
	}

	base := fmt.Sprintf("%s/v1/chat/messages?conversationId=%s", c.baseURL, url.QueryEscape(ref.ID))
	var messages []transcript.Message
	nextToken := ""
	for page := 0; page == 0 || nextToken != ""; page++ {
		endpoint := base
		if nextToken != "" {
			endpoint += "&nextToken=" + url.QueryEscape(nextToken)
		}
		var payload messagesResponse
		if err := c.getJSON(ctx, endpoint, &payload); err != nil {
			result.Err = err.Error()
			return result
		}
		// Pages arrive oldest first, so appending keeps chronological order.
		for _, raw := range payload.Messages {
			messages = append(messages, normalizeMessage(raw))
		}
		nextToken = payload.Meta.NextToken
	}

	// Final guard against out-of-order pages; a missing timestamp is the
	// empty string and sorts first.
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp < messages[j].Timestamp
	})

	result.Messages = messages
	for _, msg := range messages {
		if msg.Direction == transcript.DirectionIncoming {
			result.HasIncoming = true
			break
		}
	}
	return result
}

func normalizeMessage(raw rawMessage) transcript.Message {
	msg := transcript.Message{Type: raw.Type, Direction: raw.Direction, Timestamp: raw.UpdatedAt}
	if raw.Type == "text" && raw.Payload != nil && raw.Payload.Text != nil {
		msg.Text = *raw.Payload.Text
	} else {
		kind := raw.Type
		if kind == "" {
			kind = "unknown"
		}
		msg.Text = fmt.Sprintf("[%s message]", kind)
	}
	return msg
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.creds.Token)
	req.Header.Set("x-bot-id", c.creds.BotID)
	req.Header.Set("x-workspace-id", c.creds.WorkspaceID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
