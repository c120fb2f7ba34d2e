package client

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// User is the public view of an account (also the user-search result).
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// LastMessage is the preview embedded in a conversation list entry.
type LastMessage struct {
	ID        int64  `json:"id"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

// Conversation is one entry of GET /conversations/. OtherUser is nil when the
// server could not resolve the counterpart; LastMessage is nil for an empty
// conversation.
type Conversation struct {
	ID            int64        `json:"id"`
	OtherUser     *User        `json:"other_user"`
	LastMessage   *LastMessage `json:"last_message"`
	UnreadCount   int          `json:"unread_count"`
	CreatedAt     string       `json:"created_at,omitempty"`
	UpdatedAt     string       `json:"updated_at,omitempty"`
	LastMessageAt *string      `json:"last_message_at,omitempty"`
}

// Message is a single message. CreatedAt is the server's ordering key and is
// kept verbatim.
type Message struct {
	ID           int64  `json:"id"`
	Conversation int64  `json:"conversation"`
	Sender       *User  `json:"sender"`
	Body         string `json:"body"`
	CreatedAt    string `json:"created_at"`
}

// MessagePage is the cursor-paginated envelope of GET .../messages/.
// Results are newest-first.
type MessagePage struct {
	Next     *string   `json:"next"`
	Previous *string   `json:"previous"`
	Results  []Message `json:"results"`
}

// SendMessageRequest is the request body for POST .../messages/.
type SendMessageRequest struct {
	Body string `json:"body"`
}

// MarkReadRequest is the request body for PATCH .../read/. An empty ReadAt
// lets the server use its current time.
type MarkReadRequest struct {
	ReadAt *time.Time `json:"read_at,omitempty"`
}

// MarkReadResponse is the response from PATCH .../read/.
type MarkReadResponse struct {
	OK     bool   `json:"ok"`
	ReadAt string `json:"read_at"`
}

// CreateConversationRequest is the request body for POST /conversations/.
type CreateConversationRequest struct {
	OtherUserID int64 `json:"other_user_id"`
}

// CreateConversationResponse is the response from POST /conversations/.
// Created is false when an existing conversation was reused.
type CreateConversationResponse struct {
	ID      int64 `json:"id"`
	Created bool  `json:"created"`
}

// HealthResponse is the response from GET /health/.
type HealthResponse struct {
	OK bool `json:"ok"`
}

// ListConversations fetches every conversation of the current user in server
// order.
func (c *Client) ListConversations(ctx context.Context) ([]Conversation, error) {
	var resp []Conversation
	if err := c.get(ctx, "/conversations/", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ListMessages fetches the newest page of a conversation's messages.
func (c *Client) ListMessages(ctx context.Context, conversationID int64) (*MessagePage, error) {
	var resp MessagePage
	if err := c.get(ctx, messagesPath(conversationID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendMessage posts a message to a conversation.
func (c *Client) SendMessage(ctx context.Context, conversationID int64, body string) (*Message, error) {
	var resp Message
	if err := c.post(ctx, messagesPath(conversationID), &SendMessageRequest{Body: body}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MarkRead marks a conversation read up to readAt (nil: now, per the server).
func (c *Client) MarkRead(ctx context.Context, conversationID int64, readAt *time.Time) (*MarkReadResponse, error) {
	var resp MarkReadResponse
	path := fmt.Sprintf("/conversations/%d/read/", conversationID)
	if err := c.patch(ctx, path, &MarkReadRequest{ReadAt: readAt}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateConversation gets or creates the two-party conversation with a user.
func (c *Client) CreateConversation(ctx context.Context, otherUserID int64) (*CreateConversationResponse, error) {
	var resp CreateConversationResponse
	if err := c.post(ctx, "/conversations/", &CreateConversationRequest{OtherUserID: otherUserID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchUsers searches other users by username or email.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]User, error) {
	var resp []User
	if err := c.get(ctx, "/users/", url.Values{"query": {query}}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Health probes the unauthenticated health endpoint.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.get(ctx, "/health/", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func messagesPath(conversationID int64) string {
	return fmt.Sprintf("/conversations/%d/messages/", conversationID)
}
