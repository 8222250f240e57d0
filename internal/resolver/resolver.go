// Package resolver turns a raw agent result (free text plus an ordered
// list of tool invocations) into the single user-safe response string the
// endpoint returns, along with the projected tool lists.
//
// The model's own reply is authoritative unless it is empty or degenerate
// (an internal identifier echoed as text, a literal "None"). In that case
// tool metadata or a fixed fallback substitutes, so the user never sees an
// empty message or an internal tool name.
package resolver

import (
	"github.com/smaro-ai/agent-backend/internal/tools"
	"github.com/smaro-ai/agent-backend/internal/types"
)

// Fixed user-facing sentences. These are product copy; exact spelling,
// punctuation and whitespace matter because the endpoint compares and
// returns them verbatim.
const (
	// HandoffSentence replaces the handoff tool identifier when the model
	// echoes it as its whole reply.
	HandoffSentence = "Tell user we are connecting you to a human agent."
	// ThankYouAck is the canonical reply to "thank you" and is already
	// well-formed; it passes through untouched.
	ThankYouAck = "Welcome"
	// GreetingSentence is the full canonical greeting; like ThankYouAck it
	// is terminal.
	GreetingSentence = "Hello I am Smaro. I can help you with answering frequently asked question, and assist with talking to human agent. "
	// FallbackSentence advertises the assistant's two capabilities and is
	// substituted whenever the reply would otherwise be empty or degenerate.
	FallbackSentence = "Hello. I am Smaro. I can help you with answering frequently asked question, and assist with talking to human agent"

	noneLiteral = "None"
)

// isHandoffEcho reports whether the model returned the handoff tool's
// internal identifier as its user-facing text.
func isHandoffEcho(text string) bool {
	return text == tools.TalkToHumanAgent
}

// isTerminal reports whether the text is one of the fixed sentences that
// need no further normalization.
func isTerminal(text string) bool {
	return text == ThankYouAck || text == GreetingSentence
}

// isDegenerate reports whether the text must be replaced by the fallback:
// empty, the skip sentinel, or a stringified nil leaking from the model
// layer.
func isDegenerate(text string) bool {
	return text == "" || text == tools.SkipResponse || text == noneLiteral
}

type Resolver struct {
	catalog *tools.Catalog
}

func New(catalog *tools.Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve normalizes a raw agent result. The checks run in a fixed order
// and each short-circuits:
//
//  1. project the invocations into the action and detail lists, in call
//     order (always succeeds, even for zero invocations)
//  2. empty text: scan the actions in order and append the canned response
//     of every handoff/greeting invocation (multiple matches concatenate;
//     call order is the only tie-break)
//  3. replace an echoed handoff identifier with the handoff sentence
//  4. terminal sentences pass through unchanged
//  5. anything still empty or degenerate becomes the fallback sentence
func (r *Resolver) Resolve(rawText string, invocations []types.ToolInvocation) (string, []types.ToolAction, []types.ToolDetail) {
	actions, details := project(invocations)

	text := rawText
	if text == "" {
		for _, a := range actions {
			if canned := r.catalog.CannedResponse(a.Action); canned != "" {
				text += canned
			}
		}
	}

	if isHandoffEcho(text) {
		text = HandoffSentence
	}

	if isTerminal(text) {
		return text, actions, details
	}

	if isDegenerate(text) {
		text = FallbackSentence
	}

	return text, actions, details
}

// project maps the ordered invocation list onto the two wire lists. Both
// are non-nil so they serialize as [] rather than null.
func project(invocations []types.ToolInvocation) ([]types.ToolAction, []types.ToolDetail) {
	actions := make([]types.ToolAction, 0, len(invocations))
	details := make([]types.ToolDetail, 0, len(invocations))
	for _, inv := range invocations {
		actions = append(actions, types.ToolAction{Action: inv.ToolName})
		details = append(details, types.ToolDetail{
			Thought:   inv.Thought,
			ToolName:  inv.ToolName,
			RawInput:  inv.RawInput,
			RawOutput: inv.RawOutput,
		})
	}
	return actions, details
}
