package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/petasbytes/chat-cli/internal/expand"
	"github.com/petasbytes/chat-cli/internal/responses"
)

// consoleObserver narrates turn progress to the terminal: tool
// dispatches in green, failures and warnings in yellow, search
// citations dimmed. Output is display-only and never feeds back into
// the turn.
type consoleObserver struct {
	w io.Writer
}

func newConsoleObserver(w io.Writer) *consoleObserver {
	return &consoleObserver{w: w}
}

func (o *consoleObserver) ToolDispatch(name string, args map[string]any) {
	summary, err := json.Marshal(args)
	if err != nil {
		summary = []byte("{}")
	}
	fmt.Fprintf(o.w, "\u001b[92mtool\u001b[0m: %s(%s)\n", name, summary)
}

func (o *consoleObserver) ToolResult(name, output string, isErr bool) {
	if isErr {
		fmt.Fprintf(o.w, "\u001b[93mtool failed\u001b[0m: %s: %s\n", name, output)
	}
}

func (o *consoleObserver) LoopCapExceeded(iterations int) {
	fmt.Fprintf(o.w, "\u001b[93mwarning\u001b[0m: stopped after %d tool rounds; showing the model's last message\n", iterations)
}

func (o *consoleObserver) ExpandWarning(w expand.Warning) {
	fmt.Fprintf(o.w, "\u001b[93mwarning\u001b[0m: could not expand @%s (%s)\n", w.Ref, w.Reason)
}

func (o *consoleObserver) SearchSources(srcs []responses.Source) {
	fmt.Fprintf(o.w, "\u001b[90msources:\u001b[0m\n")
	for _, s := range srcs {
		if s.Title != "" {
			fmt.Fprintf(o.w, "\u001b[90m  - %s (%s)\u001b[0m\n", s.Title, s.URL)
		} else {
			fmt.Fprintf(o.w, "\u001b[90m  - %s\u001b[0m\n", s.URL)
		}
	}
}
