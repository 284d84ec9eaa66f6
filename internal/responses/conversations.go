package responses

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// conversation is the create-conversation result; only the identifier
// matters locally, the service owns everything else.
type conversation struct {
	ID string `json:"id"`
}

// CreateConversation creates a server-side conversation and returns its
// opaque identifier.
func (c *Client) CreateConversation(ctx context.Context, metadata map[string]string) (string, error) {
	body := map[string]any{}
	if len(metadata) > 0 {
		body["metadata"] = metadata
	}
	var conv conversation
	if err := c.doJSON(ctx, "POST", "/conversations", body, &conv); err != nil {
		return "", err
	}
	if conv.ID == "" {
		return "", fmt.Errorf("conversation create returned no id")
	}
	c.logger.Debug("conversation created", "id", conv.ID)
	return conv.ID, nil
}

type itemList struct {
	Data []Item `json:"data"`
}

// ListItems fetches up to limit history entries for a conversation.
// order is "asc" or "desc".
func (c *Client) ListItems(ctx context.Context, conversationID string, limit int, order string) ([]Item, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("conversation id is required")
	}
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if order != "" {
		q.Set("order", order)
	}
	path := "/conversations/" + url.PathEscape(conversationID) + "/items"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}
	var list itemList
	if err := c.doJSON(ctx, "GET", path, nil, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}
