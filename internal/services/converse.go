package services

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/smaro-ai/agent-backend/internal/history"
	"github.com/smaro-ai/agent-backend/internal/logger"
	"github.com/smaro-ai/agent-backend/internal/resolver"
	"github.com/smaro-ai/agent-backend/internal/types"
)

// ConverseService runs one conversational turn end to end: load the
// prior-context window, resolve the intent, normalize the response,
// persist the turn. The pipeline is strictly sequential; there are no
// concurrent sub-calls.
type ConverseService interface {
	HandleMessage(ctx context.Context, conversationID, prompt string) (string, []types.ToolAction, []types.ToolDetail, error)
}

type converseService struct {
	log        *logger.Logger
	agent      IntentResolver
	resolver   *resolver.Resolver
	relational *history.Relational
	flat       *history.FlatLog
	tracer     trace.Tracer
}

func NewConverseService(
	baseLog *logger.Logger,
	agent IntentResolver,
	res *resolver.Resolver,
	relational *history.Relational,
	flat *history.FlatLog,
) ConverseService {
	return &converseService{
		log:        baseLog.With("service", "ConverseService"),
		agent:      agent,
		resolver:   res,
		relational: relational,
		flat:       flat,
		tracer:     otel.Tracer("converse"),
	}
}

func (s *converseService) HandleMessage(ctx context.Context, conversationID, prompt string) (string, []types.ToolAction, []types.ToolDetail, error) {
	ctx, span := s.tracer.Start(ctx, "converse.handle_message",
		trace.WithAttributes(attribute.String("conversation_id", conversationID)))
	defer span.End()

	window := s.loadWindow(ctx, conversationID)

	result, err := s.agent.Chat(ctx, prompt, window)
	if err != nil {
		return "", nil, nil, fmt.Errorf("intent resolution: %w", err)
	}

	response, actions, details := s.resolver.Resolve(result.Text, result.Invocations)
	s.log.Info("turn resolved",
		"conversation_id", conversationID,
		"tool_calls", len(details),
		"raw_empty", result.Text == "",
	)

	if err := s.flat.Append(prompt, response, details); err != nil {
		return "", nil, nil, fmt.Errorf("persist turn: %w", err)
	}

	return response, actions, details, nil
}

// loadWindow picks the context source: the relational window for a known
// conversation, the flat log otherwise. Either source degrades to an
// empty window on failure; a missing history never fails the turn.
func (s *converseService) loadWindow(ctx context.Context, conversationID string) []types.Turn {
	if strings.TrimSpace(conversationID) != "" {
		return s.relational.Load(ctx, conversationID)
	}
	return s.flat.Load()
}
