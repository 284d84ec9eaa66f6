package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/petasbytes/chat-cli/internal/session"
)

const welcome = `Chat session started. Type /help for commands, /exit to quit.
Reference files inline with @path to include their contents.`

const helpText = `Commands:
  /help       show this help
  /history    replay the conversation so far
  /stats      show token usage and turn counts
  /new        start a fresh conversation (token totals carry over)
  /websearch  toggle web search for upcoming turns
  /tools      list available tools
  /clear      clear the screen
  /exit       quit (also /quit)`

// promptEvent is the outcome of waiting for one line at the prompt.
type promptEvent int

const (
	eventLine promptEvent = iota
	eventEOF
	eventInterrupt
	eventDone
)

// awaitLine blocks on the next prompt input. Ctrl-C only abandons the
// pending read; it never tears the session down.
func awaitLine(ctx context.Context, inputCh <-chan string, sigch <-chan os.Signal) (string, promptEvent) {
	select {
	case <-ctx.Done():
		return "", eventDone
	case <-sigch:
		return "", eventInterrupt
	case line, ok := <-inputCh:
		if !ok {
			return "", eventEOF
		}
		return line, eventLine
	}
}

// runREPL drives the interactive loop until EOF or /exit.
func runREPL(ctx context.Context, sess *session.Session) error {
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt)
	defer signal.Stop(sigch)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	fmt.Println(welcome)

	inputCh := make(chan string)
	go func() {
		for scanner.Scan() {
			inputCh <- scanner.Text()
		}
		close(inputCh)
	}()

	for {
		fmt.Print("\u001b[94mYou\u001b[0m: ")
		line, ev := awaitLine(ctx, inputCh, sigch)
		switch ev {
		case eventDone:
			return nil
		case eventEOF:
			fmt.Println()
			return scanner.Err()
		case eventInterrupt:
			fmt.Println("\nUse /exit to quit")
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := runCommand(ctx, sess, line); quit {
				return nil
			}
			continue
		}

		reply, err := sess.Submit(ctx, line)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Printf("\u001b[95mAssistant\u001b[0m: %s\n", reply)
	}
}

// runCommand handles one slash command; it reports whether to quit.
func runCommand(ctx context.Context, sess *session.Session, line string) bool {
	switch strings.ToLower(line) {
	case "/exit", "/quit":
		return true
	case "/help":
		fmt.Println(helpText)
	case "/clear":
		fmt.Print("\u001b[2J\u001b[H")
	case "/new":
		sess.Reset()
		fmt.Println("Started a new conversation.")
	case "/websearch":
		if sess.ToggleSearch() {
			fmt.Println("Web search enabled for upcoming turns.")
		} else {
			fmt.Println("Web search disabled.")
		}
	case "/stats":
		printStats(sess.Stats())
	case "/tools":
		printTools(sess.ListTools())
	case "/history":
		printHistory(ctx, sess)
	default:
		fmt.Printf("Unknown command %s; try /help\n", line)
	}
	return false
}

func printStats(st session.Stats) {
	fmt.Printf("model:          %s\n", st.Model)
	fmt.Printf("turns:          %d\n", st.Turns)
	fmt.Printf("input tokens:   %d\n", st.InputTokens)
	fmt.Printf("output tokens:  %d\n", st.OutputTokens)
	fmt.Printf("total tokens:   %d\n", st.TotalTokens)
	fmt.Printf("web search:     %v\n", st.SearchEnabled)
	if st.ConversationID != "" {
		fmt.Printf("conversation:   %s\n", st.ConversationID)
	}
}

func printTools(listing session.ToolListing) {
	for _, tl := range listing.Tools {
		fmt.Printf("  %s - %s\n", tl.Name, tl.Description)
		if len(tl.Required) > 0 {
			fmt.Printf("      required: %s\n", strings.Join(tl.Required, ", "))
		}
	}
	if listing.SearchEnabled {
		fmt.Println("  web_search - hosted search (enabled)")
	} else {
		fmt.Println("  web_search - hosted search (disabled; /websearch to enable)")
	}
}

func printHistory(ctx context.Context, sess *session.Session) {
	entries, err := sess.History(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNoConversation) {
			fmt.Println("No conversation yet.")
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	for _, e := range entries {
		switch e.Role {
		case "user":
			fmt.Printf("\u001b[94mYou\u001b[0m: %s\n", e.Text)
		default:
			fmt.Printf("\u001b[95mAssistant\u001b[0m: %s\n", e.Text)
		}
	}
}
