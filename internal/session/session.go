// Package session holds the top-level chat session state and
// orchestrates one user turn: file-reference expansion, lazy remote
// conversation creation, the tool invocation loop, and usage
// accounting. One turn runs start-to-finish before the next begins;
// nothing here needs locking.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/petasbytes/chat-cli/internal/expand"
	"github.com/petasbytes/chat-cli/internal/responses"
	"github.com/petasbytes/chat-cli/internal/runner"
	"github.com/petasbytes/chat-cli/internal/telemetry"
	"github.com/petasbytes/chat-cli/internal/usage"
	"github.com/petasbytes/chat-cli/tools"
)

// ErrNoConversation is returned by History before any turn has run.
var ErrNoConversation = errors.New("no conversation active yet")

// ConversationStore is the remote service's conversation surface. It is
// used for lazy conversation creation and history display only; the
// orchestration loop itself never touches it.
type ConversationStore interface {
	CreateConversation(ctx context.Context, metadata map[string]string) (string, error)
	ListItems(ctx context.Context, conversationID string, limit int, order string) ([]responses.Item, error)
}

// RemoteClient joins the two remote surfaces a session needs.
type RemoteClient interface {
	runner.ModelClient
	ConversationStore
}

// Observer extends the runner's narration points with session-level
// ones. All callbacks are synchronous and display-only.
type Observer interface {
	runner.Observer
	// ExpandWarning fires once per file reference that could not be
	// expanded.
	ExpandWarning(w expand.Warning)
	// SearchSources fires when a response carries web search citations.
	SearchSources(srcs []responses.Source)
}

// NopObserver ignores all notifications.
type NopObserver struct{ runner.NopObserver }

func (NopObserver) ExpandWarning(expand.Warning)     {}
func (NopObserver) SearchSources([]responses.Source) {}

// Stats is a read-only snapshot of session counters.
type Stats struct {
	Turns          int
	InputTokens    int
	OutputTokens   int
	TotalTokens    int
	ConversationID string
	SearchEnabled  bool
	Model          string
}

// ToolInfo describes one advertised tool for display.
type ToolInfo struct {
	Name        string
	Description string
	Required    []string
}

// ToolListing is the display view of the session's tool surface.
type ToolListing struct {
	Tools         []ToolInfo
	SearchEnabled bool
}

// HistoryEntry is one displayable line of remote conversation history.
type HistoryEntry struct {
	Role string
	Text string
}

// Session is the top-level state holder for one interactive chat.
type Session struct {
	model        string
	client       RemoteClient
	run          *runner.Runner
	defs         []tools.ToolDefinition
	obs          Observer
	logger       *slog.Logger
	historyLimit int

	conversationID string
	usage          usage.Accumulator
	searchEnabled  bool
}

// Options configures a new Session.
type Options struct {
	Model         string
	Client        RemoteClient
	Tools         []tools.ToolDefinition
	Observer      Observer
	Logger        *slog.Logger
	SearchEnabled bool
	HistoryLimit  int
}

// New creates a session with zeroed counters and no remote conversation.
func New(opts Options) *Session {
	obs := opts.Observer
	if obs == nil {
		obs = NopObserver{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	historyLimit := opts.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = 100
	}
	return &Session{
		model:         opts.Model,
		client:        opts.Client,
		run:           runner.New(opts.Client, opts.Tools, obs, logger),
		defs:          opts.Tools,
		obs:           obs,
		logger:        logger.With("component", "session"),
		historyLimit:  historyLimit,
		searchEnabled: opts.SearchEnabled,
	}
}

// Submit processes one user turn and returns the assistant's text.
// On error the session's counters are left untouched; the remote
// conversation id, once created, persists either way.
func (s *Session) Submit(ctx context.Context, userText string) (string, error) {
	expanded, warns := expand.Expand(userText)
	for _, w := range warns {
		s.obs.ExpandWarning(w)
	}

	if s.conversationID == "" {
		id, err := s.client.CreateConversation(ctx, map[string]string{
			"session": "chat-cli",
			"model":   s.model,
		})
		if err != nil {
			return "", fmt.Errorf("create conversation: %w", err)
		}
		s.conversationID = id
		s.logger.Debug("conversation created", "id", id)
	}

	turnID := telemetry.NewTurnID()
	ctx = telemetry.WithTurnID(ctx, turnID)
	telemetry.Emit("turn_started", map[string]any{
		"turn_id":         turnID,
		"model":           s.model,
		"conversation_id": s.conversationID,
		"search_enabled":  s.searchEnabled,
		"input_bytes":     len(expanded),
	})

	input := []responses.Item{responses.UserMessage(expanded)}
	resp, err := s.run.Run(ctx, s.model, input, s.conversationID, s.searchEnabled)
	if err != nil {
		return "", err
	}

	if srcs := resp.SearchSources(); len(srcs) > 0 {
		s.obs.SearchSources(srcs)
	}

	if resp.Usage != nil {
		s.usage.AddTokens(resp.Usage.InputTokens, resp.Usage.OutputTokens)
	} else {
		// Counted as zero rather than guessed; flagged for observability.
		s.logger.Debug("response carried no usage record", "turn_id", turnID)
		telemetry.Emit("usage_missing", map[string]any{"turn_id": turnID})
	}
	s.usage.AddTurn()

	return resp.Text(), nil
}

// Reset starts a new conversation: the conversation id and turn counter
// return to their initial state while cumulative token totals survive.
func (s *Session) Reset() {
	s.conversationID = ""
	s.usage.Turns = 0
}

// ToggleSearch flips the web search capability and returns the new
// state. The change takes effect starting with the next turn.
func (s *Session) ToggleSearch() bool {
	s.searchEnabled = !s.searchEnabled
	return s.searchEnabled
}

// Stats returns a read-only snapshot of the session counters.
func (s *Session) Stats() Stats {
	return Stats{
		Turns:          s.usage.Turns,
		InputTokens:    s.usage.InputTokens,
		OutputTokens:   s.usage.OutputTokens,
		TotalTokens:    s.usage.TotalTokens(),
		ConversationID: s.conversationID,
		SearchEnabled:  s.searchEnabled,
		Model:          s.model,
	}
}

// ListTools returns the static tool definitions plus the current search
// status, for display purposes only.
func (s *Session) ListTools() ToolListing {
	infos := make([]ToolInfo, 0, len(s.defs))
	for _, d := range s.defs {
		info := ToolInfo{Name: d.Name, Description: d.Description}
		if d.Parameters != nil {
			info.Required = append(info.Required, d.Parameters.Required...)
		}
		infos = append(infos, info)
	}
	return ToolListing{Tools: infos, SearchEnabled: s.searchEnabled}
}

// History replays the remote conversation's message items in ascending
// order. It returns ErrNoConversation before the first turn.
func (s *Session) History(ctx context.Context) ([]HistoryEntry, error) {
	if s.conversationID == "" {
		return nil, ErrNoConversation
	}
	items, err := s.client.ListItems(ctx, s.conversationID, s.historyLimit, "asc")
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	var entries []HistoryEntry
	for _, it := range items {
		if it.Type != responses.ItemTypeMessage {
			continue
		}
		entries = append(entries, HistoryEntry{Role: it.Role, Text: it.Content.Text()})
	}
	return entries, nil
}
