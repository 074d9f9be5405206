package composer

import (
	"strings"
	"testing"

	"github.com/sagarzanwar92/rag-story-research/internal/engine"
)

func TestRewriteMessages(t *testing.T) {
	history := []engine.Message{
		{Role: "user", Content: "Who wrote the letters?"},
		{Role: "assistant", Content: "Captain Wentworth."},
	}

	msgs := RewriteMessages(history, "What about him?")
	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want 4", len(msgs))
	}
	if msgs[0].Role != "system" || !strings.Contains(msgs[0].Content, "standalone question") {
		t.Errorf("unexpected system message: %+v", msgs[0])
	}
	if msgs[1] != history[0] || msgs[2] != history[1] {
		t.Errorf("history not preserved in order: %+v", msgs[1:3])
	}
	if msgs[3].Role != "user" || msgs[3].Content != "What about him?" {
		t.Errorf("unexpected final message: %+v", msgs[3])
	}
}

func TestAnswerMessages_ContextBlock(t *testing.T) {
	msgs := AnswerMessages([]string{"first passage", "second passage"}, nil, "When is the story set?")
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}

	system := msgs[0].Content
	for _, step := range []string{"1. ANALYZE", "2. TIMELINE", "3. VERIFY", "4. ANSWER"} {
		if !strings.Contains(system, step) {
			t.Errorf("system prompt missing %q", step)
		}
	}
	if !strings.Contains(system, "CONTEXT:\nfirst passage\n\nsecond passage") {
		t.Errorf("passages not inlined in rank order:\n%s", system)
	}
	if msgs[1].Role != "user" || msgs[1].Content != "When is the story set?" {
		t.Errorf("unexpected user message: %+v", msgs[1])
	}
}

func TestAnswerMessages_KeepsHistoryBetweenSystemAndPrompt(t *testing.T) {
	history := []engine.Message{{Role: "user", Content: "earlier"}}
	msgs := AnswerMessages([]string{"ctx"}, history, "now")
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	if msgs[1].Content != "earlier" || msgs[2].Content != "now" {
		t.Errorf("message order wrong: %+v", msgs)
	}
}

func TestJudgePrompt(t *testing.T) {
	p := JudgePrompt("the war ended in 1815", "the story is set in 1790")

	if !strings.Contains(p, "CONTEXT: the war ended in 1815") {
		t.Errorf("context slot not filled:\n%s", p)
	}
	if !strings.Contains(p, "ANSWER: the story is set in 1790") {
		t.Errorf("answer slot not filled:\n%s", p)
	}
	for _, section := range []string{"### STEP 1: EXTRACT DATES", "### STEP 2: LOGICAL CHECK", "### STEP 3: VERDICT", "VERDICT:", "REASONING:"} {
		if !strings.Contains(p, section) {
			t.Errorf("prompt missing %q", section)
		}
	}
}
