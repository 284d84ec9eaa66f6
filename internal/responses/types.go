// Package responses implements a minimal client for the remote model
// service's Responses and Conversations APIs.
//
// Item is a closed union over the wire item shapes the orchestration
// loop cares about. Items with types we do not model keep their raw
// payload and round-trip unchanged, so echoing a response's output back
// into the next request never loses information.
package responses

import (
	"encoding/json"
	"log/slog"
)

// LevelTrace is below Debug, used for wire-level payload logging.
const LevelTrace = slog.Level(-8)

// ItemType tags the shape of an Item.
type ItemType string

const (
	ItemTypeMessage            ItemType = "message"
	ItemTypeFunctionCall       ItemType = "function_call"
	ItemTypeFunctionCallOutput ItemType = "function_call_output"
	ItemTypeWebSearchCall      ItemType = "web_search_call"
)

// Item is a single conversation input or output unit. Which fields are
// meaningful depends on Type:
//
//   - message: Role, Content
//   - function_call: Name, CallID, Arguments
//   - function_call_output: CallID, Output
//   - web_search_call: Action, Status
//
// A plain user input item has Role and Content set and no Type; the API
// treats it as a message.
type Item struct {
	Type      ItemType     `json:"type,omitempty"`
	Role      string       `json:"role,omitempty"`
	Content   ContentParts `json:"content,omitempty"`
	Name      string       `json:"name,omitempty"`
	CallID    string       `json:"call_id,omitempty"`
	Arguments string       `json:"arguments,omitempty"`
	Output    string       `json:"output,omitempty"`
	Action    *SearchAction `json:"action,omitempty"`
	Status    string       `json:"status,omitempty"`

	// raw preserves the original wire bytes for item types we do not
	// model, so they pass through request building untouched.
	raw json.RawMessage
}

type itemAlias Item

// UnmarshalJSON decodes the known fields and keeps the raw payload for
// pass-through when the type tag is unrecognised.
func (it *Item) UnmarshalJSON(b []byte) error {
	var a itemAlias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*it = Item(a)
	switch it.Type {
	case "", ItemTypeMessage, ItemTypeFunctionCall, ItemTypeFunctionCallOutput, ItemTypeWebSearchCall:
	default:
		it.raw = append(json.RawMessage(nil), b...)
	}
	return nil
}

// MarshalJSON re-emits unrecognised items verbatim.
func (it Item) MarshalJSON() ([]byte, error) {
	if it.raw != nil {
		return it.raw, nil
	}
	return json.Marshal(itemAlias(it))
}

// ContentPart is one block of message content.
type ContentPart struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text,omitempty"`
}

// ContentParts is message content. On the wire it is either a bare
// string (user input shorthand) or an array of typed parts (model
// output); both decode into the same slice form.
type ContentParts []ContentPart

func (c *ContentParts) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = ContentParts{{Text: s}}
		return nil
	}
	var parts []ContentPart
	if err := json.Unmarshal(b, &parts); err != nil {
		return err
	}
	*c = parts
	return nil
}

func (c ContentParts) MarshalJSON() ([]byte, error) {
	// A single untyped part marshals back to the string shorthand.
	if len(c) == 1 && c[0].Type == "" {
		return json.Marshal(c[0].Text)
	}
	return json.Marshal([]ContentPart(c))
}

// Text returns the first non-empty text block, or "".
func (c ContentParts) Text() string {
	for _, p := range c {
		if p.Text != "" {
			return p.Text
		}
	}
	return ""
}

// UserMessage wraps text as a user input item.
func UserMessage(text string) Item {
	return Item{Role: "user", Content: ContentParts{{Text: text}}}
}

// FunctionCallOutput builds the result item answering a function call.
func FunctionCallOutput(callID, output string) Item {
	return Item{Type: ItemTypeFunctionCallOutput, CallID: callID, Output: output}
}

// Source is one citation attached to a web search invocation.
type Source struct {
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
}

// SearchAction carries search provenance when the request asked for it
// via include=["web_search_call.action.sources"].
type SearchAction struct {
	Sources []Source `json:"sources,omitempty"`
}

// Tool is one entry of the tool advertisement list. Type "function"
// entries describe a locally dispatched tool; hosted capabilities such
// as "web_search" carry only the type tag.
type Tool struct {
	Type        string `json:"type"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters,omitempty"`
}

// Request is the body of a Responses API call.
type Request struct {
	Model        string   `json:"model"`
	Input        []Item   `json:"input"`
	Tools        []Tool   `json:"tools,omitempty"`
	Include      []string `json:"include,omitempty"`
	Conversation string   `json:"conversation,omitempty"`
}

// Usage is the token accounting attached to a response.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Response is a Responses API result.
type Response struct {
	ID         string `json:"id"`
	Output     []Item `json:"output"`
	OutputText string `json:"output_text,omitempty"`
	Usage      *Usage `json:"usage,omitempty"`
}

// Text extracts the assistant's plain-text message. It prefers the
// top-level convenience field, then scans output for the first message
// item with a text block. Missing text resolves to "", never an error.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	if r.OutputText != "" {
		return r.OutputText
	}
	for _, it := range r.Output {
		if it.Type == ItemTypeMessage {
			if t := it.Content.Text(); t != "" {
				return t
			}
		}
	}
	return ""
}

// FunctionCalls returns the tool-call requests in this response, in
// output order.
func (r *Response) FunctionCalls() []Item {
	var calls []Item
	for _, it := range r.Output {
		if it.Type == ItemTypeFunctionCall {
			calls = append(calls, it)
		}
	}
	return calls
}

// SearchSources collects citations from any web search invocations in
// this response.
func (r *Response) SearchSources() []Source {
	var srcs []Source
	for _, it := range r.Output {
		if it.Type == ItemTypeWebSearchCall && it.Action != nil {
			srcs = append(srcs, it.Action.Sources...)
		}
	}
	return srcs
}
