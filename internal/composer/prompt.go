// Package composer assembles the message sequences sent to the language
// model: the history-aware question rewrite, the grounded answer prompt,
// and the audit judge protocol.
package composer

import (
	"fmt"
	"strings"

	"github.com/sagarzanwar92/rag-story-research/internal/engine"
)

const rewriteSystemPrompt = "Formulate a standalone question based on history."

const answerSystemPrompt = "You are a meticulous Story Research Assistant. Your goal is to provide logically " +
	"consistent answers based ONLY on the provided context.\n\n" +
	"Follow these steps to answer:\n" +
	"1. ANALYZE: Identify all specific dates, historical events, and names in the context.\n" +
	"2. TIMELINE: Determine the chronological order of these events.\n" +
	"3. VERIFY: Ensure your conclusion (like the setting) does not contradict the latest date mentioned.\n" +
	"4. ANSWER: Provide a concise conclusion based on the timeline.\n\n" +
	"CONTEXT:\n%s"

const judgePromptTemplate = `### STEP 1: EXTRACT DATES
List every date or year mentioned in the CONTEXT.
List every date or year mentioned in the ANSWER.

### STEP 2: LOGICAL CHECK
Does any date in the ANSWER happen BEFORE the dates in the CONTEXT?
Is the setting mentioned in the ANSWER consistent with the dates in the CONTEXT?

### STEP 3: VERDICT
If any date or historical setting is wrong, label as 'HALLUCINATION'.
Otherwise, if it matches exactly, label as 'FAITHFUL'.

CONTEXT: %s
ANSWER: %s

VERDICT:
REASONING:`

// RewriteMessages builds the conversation that asks the model to rephrase
// an elliptical follow-up into a self-contained question.
func RewriteMessages(history []engine.Message, prompt string) []engine.Message {
	msgs := make([]engine.Message, 0, len(history)+2)
	msgs = append(msgs, engine.Message{Role: "system", Content: rewriteSystemPrompt})
	msgs = append(msgs, history...)
	msgs = append(msgs, engine.Message{Role: "user", Content: prompt})
	return msgs
}

// AnswerMessages builds the answer-generation conversation: the reasoning
// system prompt with the retrieved passages inlined, then the history, then
// the user's original question.
func AnswerMessages(passages []string, history []engine.Message, prompt string) []engine.Message {
	system := fmt.Sprintf(answerSystemPrompt, strings.Join(passages, "\n\n"))
	msgs := make([]engine.Message, 0, len(history)+2)
	msgs = append(msgs, engine.Message{Role: "system", Content: system})
	msgs = append(msgs, history...)
	msgs = append(msgs, engine.Message{Role: "user", Content: prompt})
	return msgs
}

// JudgePrompt fills the verdict protocol with the context blob and the
// answer under audit. The model is expected to respond with a VERDICT line
// containing FAITHFUL or HALLUCINATION followed by its reasoning.
func JudgePrompt(contextBlob, answer string) string {
	return fmt.Sprintf(judgePromptTemplate, contextBlob, answer)
}
