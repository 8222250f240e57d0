package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/smaro-ai/agent-backend/internal/logger"
	"github.com/smaro-ai/agent-backend/internal/prompts"
	"github.com/smaro-ai/agent-backend/internal/tools"
	"github.com/smaro-ai/agent-backend/internal/types"
)

// AgentResult is the raw outcome of one intent-resolution call: the
// model's free-text reply (possibly empty) and the ordered tool
// invocations it made along the way.
type AgentResult struct {
	Text        string
	Invocations []types.ToolInvocation
}

// IntentResolver maps one user prompt plus its conversation window to an
// AgentResult. The response-resolution pipeline treats it as an external
// capability.
type IntentResolver interface {
	Chat(ctx context.Context, prompt string, window []types.Turn) (*AgentResult, error)
}

// maxToolRounds bounds the tool-call loop. One round is the normal case;
// the cap only guards against a model that keeps requesting tools.
const maxToolRounds = 5

type agentService struct {
	log       *logger.Logger
	ai        AIClient
	catalog   *tools.Catalog
	knowledge KnowledgeBase
}

func NewAgentService(log *logger.Logger, ai AIClient, catalog *tools.Catalog, knowledge KnowledgeBase) IntentResolver {
	return &agentService{
		log:       log.With("service", "AgentService"),
		ai:        ai,
		catalog:   catalog,
		knowledge: knowledge,
	}
}

func (s *agentService) Chat(ctx context.Context, prompt string, window []types.Turn) (*AgentResult, error) {
	messages := make([]ChatMessage, 0, len(window)+2)
	messages = append(messages, ChatMessage{Role: "system", Content: prompts.SystemPrompt})
	messages = append(messages, windowMessages(window)...)
	messages = append(messages, ChatMessage{Role: "user", Content: prompt})

	specs := s.toolSpecs()
	result := &AgentResult{Invocations: []types.ToolInvocation{}}

	for round := 0; round < maxToolRounds; round++ {
		msg, err := s.ai.ChatCompletion(ctx, messages, specs)
		if err != nil {
			return nil, fmt.Errorf("chat completion: %w", err)
		}

		if len(msg.ToolCalls) == 0 {
			result.Text = msg.Content
			return result, nil
		}

		messages = append(messages, *msg)
		for _, call := range msg.ToolCalls {
			output, err := s.execute(ctx, call)
			if err != nil {
				return nil, err
			}
			result.Invocations = append(result.Invocations, types.ToolInvocation{
				ToolName:  call.Function.Name,
				Thought:   output,
				RawInput:  call.Function.Arguments,
				RawOutput: output,
			})
			messages = append(messages, ChatMessage{
				Role:       "tool",
				Content:    output,
				ToolCallID: call.ID,
			})
		}
	}

	s.log.Warn("tool round cap reached, returning empty reply", "rounds", maxToolRounds)
	return result, nil
}

// execute runs a single tool call. The FAQ tool delegates to the
// knowledge base; the other three return their fixed results.
func (s *agentService) execute(ctx context.Context, call ToolCall) (string, error) {
	name := call.Function.Name
	desc, ok := s.catalog.Get(name)
	if !ok {
		return "", fmt.Errorf("model requested unknown tool %q", name)
	}

	if name == tools.AnswerFAQ {
		question := questionFromArguments(call.Function.Arguments)
		if question == "" {
			question = strings.TrimSpace(call.Function.Arguments)
		}
		answer, err := s.knowledge.Lookup(ctx, question)
		if err != nil {
			return "", fmt.Errorf("knowledge lookup: %w", err)
		}
		return answer, nil
	}

	return desc.FixedResult, nil
}

func (s *agentService) toolSpecs() []ToolSpec {
	descs := s.catalog.Descriptors()
	specs := make([]ToolSpec, 0, len(descs))
	for _, d := range descs {
		specs = append(specs, ToolSpec{
			Type: "function",
			Function: ToolFunction{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Parameters,
			},
		})
	}
	return specs
}

// windowMessages renders prior turns for the model. Historical tool turns
// are sent as function-role messages carrying the tool name, the same way
// they were produced.
func windowMessages(window []types.Turn) []ChatMessage {
	messages := make([]ChatMessage, 0, len(window))
	for _, turn := range window {
		switch turn.Role {
		case types.RoleUser:
			messages = append(messages, ChatMessage{Role: "user", Content: turn.Content})
		case types.RoleTool:
			messages = append(messages, ChatMessage{Role: "function", Name: turn.ToolName, Content: turn.Content})
		default:
			messages = append(messages, ChatMessage{Role: "assistant", Content: turn.Content})
		}
	}
	return messages
}

func questionFromArguments(raw string) string {
	var args struct {
		Question string `json:"question"`
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return ""
	}
	return strings.TrimSpace(args.Question)
}
