// Package runner drives message exchange with the Responses API and
// dispatches tool calls.
//
// Invariants:
//   - the call_ids of the results fed back to the model are exactly the
//     call_ids of the function_call items just received, one result per
//     request, even when a handler fails.
//   - a response's own output items are echoed back into the input list
//     before any results follow, preserving order.
//   - at most 5 model calls happen per Run, regardless of how many tool
//     calls the model keeps requesting.
//
// Flow:
//
//	user(text) -> model(function_call...) -> function_call_output... -> model(message)
package runner
