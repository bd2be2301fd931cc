package analysis

import (
	"context"
	"encoding/json"
	"fmt"

	"packwright/internal/config"
	"packwright/internal/content"
	"packwright/internal/research"
	"packwright/internal/run"
	"packwright/internal/services"
)

// Task names used as merge keys. Downstream phases look results up by these.
const (
	TaskTranscriptSummary = "transcript_summary"
	TaskTrendResearch     = "trend_research"
	TaskTitleGeneration   = "title_generation"
)

// Payload size bounds, in bytes. Results are digests, never raw source; a
// payload anywhere near these limits indicates a task echoing its input.
const (
	summaryPayloadBound  = 8 * 1024
	researchPayloadBound = 16 * 1024
	titlesPayloadBound   = 8 * 1024
)

// SummaryPayload is the transcript_summary result.
type SummaryPayload struct {
	Summary content.Summary `json:"summary"`
}

// ResearchPayload is the trend_research result.
type ResearchPayload struct {
	Findings []research.Finding `json:"findings"`
}

// TitlesPayload is the title_generation result.
type TitlesPayload struct {
	Options []run.TitleOption `json:"options"`
}

// Inputs carries everything the built-in task set consumes. The transcript
// is read from the store exactly once, by the caller; individual tasks never
// touch the store themselves.
type Inputs struct {
	GuestName  string
	Transcript string
}

// BuiltinTasks assembles the standard three-task fan-out round.
//
// transcript_summary digests the full transcript. trend_research consumes
// none of it, only the guest name. title_generation is the load-bearing task:
// the approval gate cannot open without its options.
func BuiltinTasks(in Inputs, provider research.Provider, cfg config.Research) []Task {
	return []Task{
		{
			Name:            TaskTranscriptSummary,
			MaxPayloadBytes: summaryPayloadBound,
			Run: func(ctx context.Context) (json.RawMessage, error) {
				summary := content.Summarize(in.Transcript, 5)
				if summary.WordCount == 0 {
					return nil, services.Wrap(services.ErrValidation, "analysis", TaskTranscriptSummary,
						"transcript is empty", nil)
				}
				return json.Marshal(SummaryPayload{Summary: summary})
			},
		},
		{
			Name:            TaskTrendResearch,
			MaxPayloadBytes: researchPayloadBound,
			Run: func(ctx context.Context) (json.RawMessage, error) {
				findings, err := runResearch(ctx, provider, in.GuestName, cfg.MaxQueries)
				if err != nil {
					return nil, err
				}
				return json.Marshal(ResearchPayload{Findings: findings})
			},
		},
		{
			Name:            TaskTitleGeneration,
			Critical:        true,
			MaxPayloadBytes: titlesPayloadBound,
			Run: func(ctx context.Context) (json.RawMessage, error) {
				summary := content.Summarize(in.Transcript, 5)
				options := content.GenerateTitleOptions(in.GuestName, summary, nil)
				if len(options) == 0 {
					return nil, services.Wrap(services.ErrExternal, "analysis", TaskTitleGeneration,
						"no title options produced", nil)
				}
				return json.Marshal(TitlesPayload{Options: options})
			},
		},
	}
}

func runResearch(ctx context.Context, provider research.Provider, guest string, maxQueries int) ([]research.Finding, error) {
	if maxQueries <= 0 {
		maxQueries = 8
	}
	queries := []string{
		fmt.Sprintf("%s podcast interview", guest),
		fmt.Sprintf("%s trending topics", guest),
	}
	if len(queries) > maxQueries {
		queries = queries[:maxQueries]
	}

	var findings []research.Finding
	for _, query := range queries {
		results, err := provider.Search(ctx, query)
		if err != nil {
			return nil, err
		}
		findings = append(findings, results...)
	}
	return findings, nil
}

// DecodeSummary extracts the transcript summary from a merged outcome.
func DecodeSummary(outcome *run.AnalysisOutcome) (content.Summary, bool) {
	result, ok := outcome.Result(TaskTranscriptSummary)
	if !ok {
		return content.Summary{}, false
	}
	var payload SummaryPayload
	if err := json.Unmarshal(result.Payload, &payload); err != nil {
		return content.Summary{}, false
	}
	return payload.Summary, true
}

// DecodeFindings extracts research findings from a merged outcome.
func DecodeFindings(outcome *run.AnalysisOutcome) ([]research.Finding, bool) {
	result, ok := outcome.Result(TaskTrendResearch)
	if !ok {
		return nil, false
	}
	var payload ResearchPayload
	if err := json.Unmarshal(result.Payload, &payload); err != nil {
		return nil, false
	}
	return payload.Findings, true
}

// RefineTitles regenerates the title options with the trending terms the
// research task contributed. Fan-out tasks run independently, so the
// trend-informed set can only be assembled after the merge; without findings
// or a summary the options generated during the round stand.
func RefineTitles(guest string, outcome *run.AnalysisOutcome) ([]run.TitleOption, bool) {
	findings, ok := DecodeFindings(outcome)
	if !ok || len(findings) == 0 {
		return nil, false
	}
	summary, ok := DecodeSummary(outcome)
	if !ok {
		return nil, false
	}
	options := content.GenerateTitleOptions(guest, summary, research.Terms(findings))
	return options, len(options) > 0
}

// DecodeTitles extracts the generated title options from a merged outcome.
func DecodeTitles(outcome *run.AnalysisOutcome) ([]run.TitleOption, bool) {
	result, ok := outcome.Result(TaskTitleGeneration)
	if !ok {
		return nil, false
	}
	var payload TitlesPayload
	if err := json.Unmarshal(result.Payload, &payload); err != nil {
		return nil, false
	}
	return payload.Options, len(payload.Options) > 0
}
