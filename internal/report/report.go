// Package report hands enriched records to their destinations: the monthly
// spreadsheet, the Postgres archive and a JSON export.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/chatreport/internal/pipeline"
)

// Publisher delivers one period's records.
type Publisher interface {
	Publish(ctx context.Context, res *pipeline.Result) error
}

// Multi publishes to each destination in order and stops at the first
// failure.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, res *pipeline.Result) error {
	for _, p := range m {
		if err := p.Publish(ctx, res); err != nil {
			return err
		}
	}
	return nil
}

// Column maps a record field to a spreadsheet column.
type Column struct {
	Name string // pipeline column name
	Cell string // column letter
}

// Layout places record fields on the period sheet.
type Layout struct {
	StartRow int
	Columns  []Column
}

// DefaultLayout matches the BASE template: data starts on row 5.
func DefaultLayout() Layout {
	return Layout{
		StartRow: 5,
		Columns: []Column{
			{Name: pipeline.ColCreatedOn, Cell: "A"},
			{Name: pipeline.ColEmail, Cell: "B"},
			{Name: pipeline.ColLocation, Cell: "C"},
			{Name: pipeline.ColSummarization, Cell: "D"},
			{Name: pipeline.ColType, Cell: "E"},
		},
	}
}

// Range returns the A1 anchor of a column on the given sheet. The sheet
// name is always quoted so spaces and punctuation survive.
func (l Layout) Range(sheet string, col Column) string {
	return fmt.Sprintf("'%s'!%s%d", strings.ReplaceAll(sheet, "'", "''"), col.Cell, l.StartRow)
}

// ColumnValues returns one single-cell row per record for the named column.
func ColumnValues(records []pipeline.EnrichedRecord, name string) [][]any {
	values := make([][]any, len(records))
	for i, r := range records {
		v, ok := r.Columns()[name]
		if !ok {
			v = ""
		}
		values[i] = []any{v}
	}
	return values
}
