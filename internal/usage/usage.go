// Package usage tracks cumulative token counts and turns for a session.
package usage

// Accumulator holds running token and turn counters. Counters only ever
// grow; Reset-style semantics live in the session layer, which decides
// what survives a new conversation.
type Accumulator struct {
	InputTokens  int
	OutputTokens int
	Turns        int
}

// AddTokens adds a response's token counts to the running totals.
func (a *Accumulator) AddTokens(input, output int) {
	a.InputTokens += input
	a.OutputTokens += output
}

// AddTurn increments the completed-turn counter.
func (a *Accumulator) AddTurn() {
	a.Turns++
}

// TotalTokens returns input plus output tokens.
func (a *Accumulator) TotalTokens() int {
	return a.InputTokens + a.OutputTokens
}
