package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/knowdistrict/knowdistrict/internal/ai"
	"github.com/knowdistrict/knowdistrict/internal/auth"
)

// corpusSystemPrompt constrains corpus answers to internal documents only.
const corpusSystemPrompt = `You are an AI assistant for 'know | District', a knowledge management platform.
You must ONLY answer questions using information from the internal documents provided.
If you cannot find relevant information in the provided documents, respond with:
"I'm sorry, there isn't any information in 'know | District' about your query at the moment."
Never make up information or use external knowledge.`

// noAnswer is returned when the corpus has nothing matching the query.
const noAnswer = "I'm sorry, there isn't any information in 'know | District' about your query at the moment."

// Provider is the external AI completion collaborator.
type Provider interface {
	// Suggest returns structured editing suggestions for the content.
	Suggest(ctx context.Context, content string) (*ai.Suggestions, error)
	// Chat sends a conversation and returns the reply text.
	Chat(ctx context.Context, messages []ai.Message) (string, error)
}

// AIService gates AI-backed operations behind the guard and grounds
// corpus answers in search results.
type AIService struct {
	provider Provider
	searcher Searcher
}

// NewAIService constructs an AIService with the given provider and
// searcher.
func NewAIService(provider Provider, searcher Searcher) *AIService {
	return &AIService{provider: provider, searcher: searcher}
}

// Suggest returns editing suggestions for the content.
// Requires UseAIFeatures.
func (s *AIService) Suggest(ctx context.Context, role auth.Role, content string) (*ai.Suggestions, error) {
	if err := authorize(role, auth.UseAIFeatures); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, validationError("content must not be empty")
	}
	return s.provider.Suggest(ctx, content)
}

// Chat relays a conversation to the provider. Requires UseAIFeatures.
func (s *AIService) Chat(ctx context.Context, role auth.Role, messages []ai.Message) (string, error) {
	if err := authorize(role, auth.UseAIFeatures); err != nil {
		return "", err
	}
	if len(messages) == 0 {
		return "", validationError("messages must not be empty")
	}
	for _, m := range messages {
		switch m.Role {
		case "user", "assistant", "system":
		default:
			return "", validationError("unknown message role")
		}
	}
	return s.provider.Chat(ctx, messages)
}

// AnswerFromDocuments answers a question using only the stored corpus.
// It searches first and feeds matching documents to the provider; when
// nothing matches, the canned no-information reply is returned without a
// provider call. Requires ViewDocuments.
func (s *AIService) AnswerFromDocuments(ctx context.Context, role auth.Role, query string) (string, error) {
	if err := authorize(role, auth.ViewDocuments); err != nil {
		return "", err
	}

	docs, err := s.searcher.Search(ctx, query)
	if err != nil {
		return "", err
	}
	if len(docs) == 0 {
		return noAnswer, nil
	}

	var b strings.Builder
	for i, doc := range docs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Document: %s\nContent: %s", doc.Title, doc.Content)
	}

	question := fmt.Sprintf(
		"Here are the relevant internal documents:\n\n%s\n\nUser question: %s\n\nPlease answer based ONLY on the information provided in these documents. If the documents don't contain relevant information, say so.",
		b.String(), query)

	return s.provider.Chat(ctx, []ai.Message{
		{Role: "system", Content: corpusSystemPrompt},
		{Role: "user", Content: question},
	})
}
