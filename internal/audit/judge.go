// Package audit replays logged interactions through a judge model and
// writes a verdict report screening answers for temporal hallucination.
package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sagarzanwar92/rag-story-research/internal/composer"
	"github.com/sagarzanwar92/rag-story-research/internal/engine"
	"github.com/sagarzanwar92/rag-story-research/internal/logstore"
)

// Classification values derived from the judge's raw verdict text.
const (
	ClassFaithful      = "FAITHFUL"
	ClassHallucination = "HALLUCINATION"
	ClassUnparseable   = "UNPARSEABLE"
	ClassFailed        = "FAILED"
)

// LogReader supplies the interactions under audit.
// Implemented by logstore.Store.
type LogReader interface {
	ReadAll() ([]logstore.InteractionRecord, error)
}

// ReportWriter persists the finished report. Implemented by ReportStore.
type ReportWriter interface {
	Write(records []Record) error
}

// Chatter is the judge-model call. Implemented by engine.Engine.
type Chatter interface {
	Chat(ctx context.Context, model string, messages []engine.Message) (string, error)
}

// Progress is invoked once per judged record, in log order. i is 1-based.
type Progress func(i, total int, rec Record)

// Summary reports the outcome of one audit run.
type Summary struct {
	Total          int
	Faithful       int
	Hallucinations int
	Unparseable    int
	Failed         int
}

// Judge runs the audit batch.
type Judge struct {
	chatter  Chatter
	log      LogReader
	report   ReportWriter
	model    string
	progress Progress
	now      func() time.Time
}

// NewJudge wires a Judge. progress may be nil.
func NewJudge(chatter Chatter, log LogReader, report ReportWriter, model string, progress Progress) *Judge {
	return &Judge{
		chatter:  chatter,
		log:      log,
		report:   report,
		model:    model,
		progress: progress,
		now:      time.Now,
	}
}

// Run judges every logged interaction, strictly in log order, and replaces
// the audit report with the results. An empty or missing log is not an
// error; it yields a zero Summary and leaves any existing report untouched.
// A failed judge call marks that record FAILED and the run continues;
// cancellation aborts the run without touching the existing report.
func (j *Judge) Run(ctx context.Context) (Summary, error) {
	interactions, err := j.log.ReadAll()
	if err != nil {
		return Summary{}, fmt.Errorf("loading interaction log: %w", err)
	}
	if len(interactions) == 0 {
		return Summary{}, nil
	}

	var summary Summary
	records := make([]Record, 0, len(interactions))
	for i, entry := range interactions {
		contextBlob := strings.Join(entry.RetrievedContext, " ")
		prompt := composer.JudgePrompt(contextBlob, entry.Answer)

		rec := Record{
			Timestamp:      j.now().UTC().Format(time.RFC3339),
			Query:          entry.Query,
			OriginalAnswer: entry.Answer,
		}
		verdict, err := j.chatter.Chat(ctx, j.model, []engine.Message{{Role: "user", Content: prompt}})
		if err != nil {
			// Cancellation aborts the batch; the previous report must survive.
			if ctx.Err() != nil {
				return summary, fmt.Errorf("audit interrupted after %d of %d records: %w",
					i, len(interactions), ctx.Err())
			}
			rec.Classification = ClassFailed
			rec.Verdict = ""
		} else {
			rec.Verdict = strings.TrimSpace(verdict)
			rec.Classification = Classify(rec.Verdict)
		}

		switch rec.Classification {
		case ClassFaithful:
			summary.Faithful++
		case ClassHallucination:
			summary.Hallucinations++
		case ClassUnparseable:
			summary.Unparseable++
		case ClassFailed:
			summary.Failed++
		}
		summary.Total++

		records = append(records, rec)
		if j.progress != nil {
			j.progress(i+1, len(interactions), rec)
		}
	}

	if err := j.report.Write(records); err != nil {
		return summary, fmt.Errorf("writing audit report: %w", err)
	}
	return summary, nil
}

// Classify reduces raw verdict text to one token. The judge is instructed
// to label wrong answers HALLUCINATION, so that token wins when the text
// mentions both; text with neither token is UNPARSEABLE.
func Classify(verdict string) string {
	upper := strings.ToUpper(verdict)
	switch {
	case strings.Contains(upper, ClassHallucination):
		return ClassHallucination
	case strings.Contains(upper, ClassFaithful):
		return ClassFaithful
	default:
		return ClassUnparseable
	}
}
