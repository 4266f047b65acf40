package pipeline

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Column names handed to report publishers.
const (
	ColCreatedOn     = "createdOn"
	ColEmail         = "email"
	ColLocation      = "location"
	ColChatDuration  = "chatDuration"
	ColConversation  = "conversation"
	ColType          = "type"
	ColSummarization = "summarization"
)

// EnrichedRecord is one output row: a transcript plus its category and title.
type EnrichedRecord struct {
	Email         string      `json:"email"`
	Location      string      `json:"location"`
	ChatDuration  json.Number `json:"chatDuration"`
	CreatedOn     string      `json:"createdOn"`
	Conversation  string      `json:"conversation"`
	Type          string      `json:"type"`
	Summarization string      `json:"summarization"`

	// Stages that failed under a best-effort policy.
	Degraded []Stage `json:"degraded,omitempty"`
}

// Columns returns the record keyed by column name.
func (r EnrichedRecord) Columns() map[string]any {
	return map[string]any{
		ColCreatedOn:     r.CreatedOn,
		ColEmail:         r.Email,
		ColLocation:      r.Location,
		ColChatDuration:  r.ChatDuration,
		ColConversation:  r.Conversation,
		ColType:          r.Type,
		ColSummarization: r.Summarization,
	}
}

// Stage names a step that calls an external service.
type Stage string

const (
	StageClassify  Stage = "classify"
	StageSummarize Stage = "summarize"
)

// Policy decides what a stage failure does to the run.
type Policy int

const (
	// FailFast aborts the run on the first failure.
	FailFast Policy = iota
	// BestEffort logs the failure, fills a fallback value and keeps going.
	BestEffort
)

func (p Policy) String() string {
	switch p {
	case FailFast:
		return "failfast"
	case BestEffort:
		return "besteffort"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy accepts "failfast" or "besteffort".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "failfast", "fail-fast":
		return FailFast, nil
	case "besteffort", "best-effort":
		return BestEffort, nil
	default:
		return 0, fmt.Errorf("unknown stage policy %q", s)
	}
}

// StageResult is the outcome of one stage for one record.
type StageResult struct {
	Value string
	Err   error
}

func (r StageResult) OK() bool { return r.Err == nil }

// StageError reports which record and stage aborted a run.
type StageError struct {
	Stage Stage
	Index int // 1-based position in the input
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s record %d (%s): %v", e.Stage, e.Index, e.Path, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Progress is reported once per input record.
type Progress struct {
	RunID   uuid.UUID
	Period  string
	Index   int // records finished so far
	Total   int
	Skipped bool
}

// Result is the output of one run.
type Result struct {
	RunID      uuid.UUID
	Period     string
	Records    []EnrichedRecord
	Total      int
	Skipped    int
	Degraded   int
	StartedAt  time.Time
	FinishedAt time.Time
}

// LabelCount is the number of records that received a label.
type LabelCount struct {
	Label string
	Count int
}

// LabelCounts tallies records per type, most frequent first, ties by label.
func (r *Result) LabelCounts() []LabelCount {
	byLabel := make(map[string]int)
	for _, rec := range r.Records {
		byLabel[rec.Type]++
	}
	out := make([]LabelCount, 0, len(byLabel))
	for l, n := range byLabel {
		out = append(out, LabelCount{Label: l, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}
