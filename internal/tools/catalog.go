// Package tools holds the closed catalog of capabilities the intent
// resolver may invoke. The set is fixed for this product: four entries,
// built once at startup, never mutated.
package tools

const (
	AnswerFAQ        = "answer_frequently_asked_question"
	TalkToHumanAgent = "talk_to_human_agent"
	SkipResponse     = "skip_response_to_the_user"
	Greetings        = "greetings"
)

// Canned responses substituted when the model returns an empty reply but
// the matching tool was invoked. The trailing spaces are part of the
// product copy and are load-bearing when several canned responses are
// concatenated.
const (
	HandoffCanned  = "Tell user we are connecting you to a human agent. "
	GreetingCanned = "Hello, I am Smaro. I can help you with user scheduling, uploading images, and assist with talking to a human agent. "
)

// Fixed tool execution results for the tools that do not consult the
// knowledge base.
const (
	HandoffResult  = "Tell user we are connecting you to a human agent. "
	SkipResult     = "SUCCESS. No response will be sent to the user."
	GreetingResult = "Hello I am Smaro. I can help you with answering frequently asked question, and assist with talking to human agent."
)

// Descriptor describes one catalog entry: the menu item handed to the
// intent resolver plus the resolution metadata the pipeline needs.
type Descriptor struct {
	Name        string
	Description string
	// Parameters is the JSON schema for the tool's arguments, in the shape
	// the chat-completions tools API expects.
	Parameters map[string]any
	// CannedResponse is appended to an empty model reply when this tool was
	// invoked. Empty means no substitution.
	CannedResponse string
	// FixedResult is the tool's execution output when it does not delegate
	// to the knowledge base. Empty means the tool is executed externally.
	FixedResult string
	// SuppressesReply marks the designated no-op tool: invoking it means no
	// reply should reach the user.
	SuppressesReply bool
}

type Catalog struct {
	entries []Descriptor
	byName  map[string]Descriptor
}

// NewCatalog builds the static catalog. No dynamic registration: the tool
// set is closed for this domain.
func NewCatalog() *Catalog {
	entries := []Descriptor{
		{
			Name: AnswerFAQ,
			Description: "Answers a frequently asked question from the user. " +
				"Remember you should not use Markdown formatting in your response to the user, just plain text.",
			Parameters: map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"question": map[string]any{
						"type":        "string",
						"description": "The question that the user asked",
					},
				},
				"required": []any{"question"},
			},
		},
		{
			Name: TalkToHumanAgent,
			Description: "Use this when user wants to talk to a human agent. " +
				"User message examples: I can't log into Smaro app. Unable to raise tickets in Smaro app. " +
				"Profile updates not reflecting in Smaro. Patient reports not showing in panel after adding. " +
				"The DICOM viewer is showing errors. This case is urgent, provide feedback within the next hour.",
			Parameters:     emptyObjectSchema(),
			CannedResponse: HandoffCanned,
			FixedResult:    HandoffResult,
		},
		{
			Name: SkipResponse,
			Description: "Skip the response to the user. Use this function when you want to skip responding to the user. " +
				"This is useful when you don't want to sound repetetive or annoying, when the user sends a message " +
				"that is not relevant to the conversation, or when the message is not actionable. " +
				"If you execute this function no message will be sent to the user in response.",
			Parameters:      emptyObjectSchema(),
			FixedResult:     SkipResult,
			SuppressesReply: true,
		},
		{
			Name: Greetings,
			Description: "Use this function when the user greets by saying hello, hi, hey, howdy etc. " +
				"Never call this function if user is not greeting.",
			Parameters:     emptyObjectSchema(),
			CannedResponse: GreetingCanned,
			FixedResult:    GreetingResult,
		},
	}

	byName := make(map[string]Descriptor, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}
	return &Catalog{entries: entries, byName: byName}
}

// Get looks up a descriptor by tool name.
func (c *Catalog) Get(name string) (Descriptor, bool) {
	d, ok := c.byName[name]
	return d, ok
}

// Descriptors returns the catalog entries in menu order.
func (c *Catalog) Descriptors() []Descriptor {
	out := make([]Descriptor, len(c.entries))
	copy(out, c.entries)
	return out
}

// CannedResponse returns the canned text for a tool, or "" when the tool
// has none (or is unknown).
func (c *Catalog) CannedResponse(name string) string {
	d, ok := c.byName[name]
	if !ok {
		return ""
	}
	return d.CannedResponse
}

func emptyObjectSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           map[string]any{},
		"required":             []any{},
	}
}
