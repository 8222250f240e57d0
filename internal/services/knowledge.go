package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/smaro-ai/agent-backend/internal/clients/pinecone"
	"github.com/smaro-ai/agent-backend/internal/clients/redis"
	"github.com/smaro-ai/agent-backend/internal/logger"
	"github.com/smaro-ai/agent-backend/internal/utils"
)

// KnowledgeBase answers FAQ questions from the retrieval index. The
// answer is a short natural-language sentence, or DontKnowAnswer when the
// index has nothing relevant.
type KnowledgeBase interface {
	Lookup(ctx context.Context, question string) (string, error)
}

// DontKnowAnswer is the explicit no-context sentinel the lookup returns
// instead of hallucinating an answer.
const DontKnowAnswer = "I don't know."

const answerSystemTemplate = `Use the following pieces of context to answer the user's question in maximum 40 words.
If you don't find the answer in the provided context, just respond "I don't know."
---------------
Context: ` + "```%s```"

type knowledgeService struct {
	log   *logger.Logger
	ai    AIClient
	vec   pinecone.Client
	cache redis.AnswerCache

	host      string
	namespace string
	topK      int
}

// NewKnowledgeService resolves the index host once at startup and serves
// lookups from embed → similarity query → bounded answer synthesis, with
// an optional redis answer cache in front (pass nil to disable).
func NewKnowledgeService(log *logger.Logger, ai AIClient, vec pinecone.Client, cache redis.AnswerCache) (KnowledgeBase, error) {
	if ai == nil {
		return nil, fmt.Errorf("ai client required")
	}
	if vec == nil {
		return nil, fmt.Errorf("pinecone client required")
	}

	indexName := utils.GetEnv("PINECONE_INDEX", "smaro-faq", log)
	namespace := utils.GetEnv("PINECONE_NAMESPACE", "", log)
	topK := utils.GetEnvAsInt("FAQ_TOP_K", 5, log)

	host := utils.GetEnv("PINECONE_INDEX_HOST", "", log)
	if host == "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		desc, err := vec.DescribeIndex(ctx, indexName)
		if err != nil {
			return nil, fmt.Errorf("resolve pinecone index host: %w", err)
		}
		host = desc.Host
	}

	return &knowledgeService{
		log:       log.With("service", "KnowledgeService"),
		ai:        ai,
		vec:       vec,
		cache:     cache,
		host:      host,
		namespace: namespace,
		topK:      topK,
	}, nil
}

func (s *knowledgeService) Lookup(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return DontKnowAnswer, nil
	}

	if s.cache != nil {
		if answer, ok := s.cache.Get(ctx, question); ok {
			s.log.Debug("answer cache hit", "question", question)
			return answer, nil
		}
	}

	vectors, err := s.ai.Embed(ctx, []string{question})
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}

	resp, err := s.vec.Query(ctx, s.host, pinecone.QueryRequest{
		Namespace:       s.namespace,
		Vector:          vectors[0],
		TopK:            s.topK,
		IncludeMetadata: true,
	})
	if err != nil {
		return "", fmt.Errorf("query knowledge index: %w", err)
	}

	contextText := contextFromMatches(resp.Matches)
	if contextText == "" {
		return DontKnowAnswer, nil
	}

	msg, err := s.ai.ChatCompletion(ctx, []ChatMessage{
		{Role: "system", Content: fmt.Sprintf(answerSystemTemplate, contextText)},
		{Role: "user", Content: fmt.Sprintf("Question: ```%s```", question)},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("synthesize answer: %w", err)
	}

	answer := strings.TrimSpace(msg.Content)
	if answer == "" {
		return DontKnowAnswer, nil
	}

	if s.cache != nil && answer != DontKnowAnswer {
		s.cache.Set(ctx, question, answer)
	}
	return answer, nil
}

func contextFromMatches(matches []pinecone.QueryMatch) string {
	chunks := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Metadata == nil {
			continue
		}
		if text, ok := m.Metadata["text"].(string); ok && strings.TrimSpace(text) != "" {
			chunks = append(chunks, strings.TrimSpace(text))
		}
	}
	return strings.Join(chunks, "\n\n")
}
