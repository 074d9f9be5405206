// Package rag orchestrates one question-answering request: history-aware
// rewrite, passage retrieval, grounded generation, and interaction logging.
package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/sagarzanwar92/rag-story-research/internal/composer"
	"github.com/sagarzanwar92/rag-story-research/internal/engine"
	"github.com/sagarzanwar92/rag-story-research/internal/logstore"
	"github.com/sagarzanwar92/rag-story-research/internal/retrieval"
)

// Turn is one prior message of the conversation, as supplied by the client.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chatter is the single generation call the service needs.
// Implemented by engine.Engine.
type Chatter interface {
	Chat(ctx context.Context, model string, messages []engine.Message) (string, error)
}

// PassageSource finds the corpus passages most relevant to a question.
// Implemented by retrieval.Retriever.
type PassageSource interface {
	Retrieve(ctx context.Context, query string, topK int) ([]retrieval.Passage, error)
}

// InteractionLog records answered queries. Implemented by logstore.Store.
type InteractionLog interface {
	Append(rec logstore.InteractionRecord) error
}

// Service answers questions grounded in the document corpus.
type Service struct {
	chatter   Chatter
	retriever PassageSource
	log       InteractionLog
	chatModel string
	topK      int
}

// NewService wires a Service. topK <= 0 falls back to 3.
func NewService(chatter Chatter, retriever PassageSource, log InteractionLog, chatModel string, topK int) *Service {
	if topK <= 0 {
		topK = 3
	}
	return &Service{
		chatter:   chatter,
		retriever: retriever,
		log:       log,
		chatModel: chatModel,
		topK:      topK,
	}
}

// Ask answers prompt in the context of history. The returned answer has
// already been logged; a logging failure fails the whole call even though
// the answer was computed.
func (s *Service) Ask(ctx context.Context, prompt string, history []Turn) (string, error) {
	msgs := historyMessages(history)

	// An elliptical follow-up ("What about him?") retrieves badly as-is,
	// so with history present the question is first made self-contained.
	searchQuery := prompt
	if len(msgs) > 0 {
		rewritten, err := s.chatter.Chat(ctx, s.chatModel, composer.RewriteMessages(msgs, prompt))
		if err != nil {
			return "", fmt.Errorf("rewriting question: %w", err)
		}
		if q := strings.TrimSpace(rewritten); q != "" {
			searchQuery = q
		}
	}

	passages, err := s.retriever.Retrieve(ctx, searchQuery, s.topK)
	if err != nil {
		return "", fmt.Errorf("retrieving context: %w", err)
	}
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}

	answer, err := s.chatter.Chat(ctx, s.chatModel, composer.AnswerMessages(texts, msgs, prompt))
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}

	if err := s.log.Append(logstore.NewRecord(prompt, texts, answer)); err != nil {
		return "", fmt.Errorf("logging interaction: %w", err)
	}
	return answer, nil
}

// historyMessages maps client turns to model messages. Any role other than
// "user" counts as an assistant turn; unknown roles are accepted rather
// than rejected.
func historyMessages(history []Turn) []engine.Message {
	if len(history) == 0 {
		return nil
	}
	msgs := make([]engine.Message, len(history))
	for i, t := range history {
		role := "assistant"
		if t.Role == "user" {
			role = "user"
		}
		msgs[i] = engine.Message{Role: role, Content: t.Content}
	}
	return msgs
}
