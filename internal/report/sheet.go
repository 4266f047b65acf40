package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MikeSquared-Agency/chatreport/internal/pipeline"
	"github.com/MikeSquared-Agency/chatreport/internal/sheets"
)

// SheetAPI is the part of the Sheets client the publisher needs.
type SheetAPI interface {
	FindSheet(ctx context.Context, spreadsheetID, title string) (sheets.SheetProperties, bool, error)
	DuplicateSheet(ctx context.Context, spreadsheetID string, sourceSheetID int64, newName string) error
	UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]any) error
}

// SheetPublisher writes a period into its own tab, cloned from a template
// tab on first use.
type SheetPublisher struct {
	api           SheetAPI
	spreadsheetID string
	baseSheet     string
	sheetName     string // overrides the run period as tab name
	layout        Layout
	logger        *slog.Logger
}

func NewSheetPublisher(api SheetAPI, spreadsheetID, baseSheet, sheetName string, layout Layout, logger *slog.Logger) *SheetPublisher {
	return &SheetPublisher{
		api:           api,
		spreadsheetID: spreadsheetID,
		baseSheet:     baseSheet,
		sheetName:     sheetName,
		layout:        layout,
		logger:        logger,
	}
}

func (p *SheetPublisher) Publish(ctx context.Context, res *pipeline.Result) error {
	tab := p.sheetName
	if tab == "" {
		tab = res.Period
	}

	if err := p.ensureSheet(ctx, tab); err != nil {
		return err
	}

	for _, col := range p.layout.Columns {
		rng := p.layout.Range(tab, col)
		if err := p.api.UpdateValues(ctx, p.spreadsheetID, rng, ColumnValues(res.Records, col.Name)); err != nil {
			return fmt.Errorf("write column %s: %w", col.Name, err)
		}
	}

	p.logger.Info("report published to sheet",
		"spreadsheet_id", p.spreadsheetID,
		"sheet", tab,
		"records", len(res.Records),
	)
	return nil
}

func (p *SheetPublisher) ensureSheet(ctx context.Context, tab string) error {
	_, exists, err := p.api.FindSheet(ctx, p.spreadsheetID, tab)
	if err != nil {
		return fmt.Errorf("check sheet %s: %w", tab, err)
	}
	if exists {
		p.logger.Info("sheet already exists, skipping duplication", "sheet", tab)
		return nil
	}

	base, ok, err := p.api.FindSheet(ctx, p.spreadsheetID, p.baseSheet)
	if err != nil {
		return fmt.Errorf("check base sheet %s: %w", p.baseSheet, err)
	}
	if !ok {
		return fmt.Errorf("base sheet %q not found", p.baseSheet)
	}
	return p.api.DuplicateSheet(ctx, p.spreadsheetID, base.SheetID, tab)
}
