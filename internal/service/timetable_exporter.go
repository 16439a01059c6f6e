package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-planner-api/internal/models"
	"github.com/noah-isme/timetable-planner-api/pkg/export"
	"github.com/noah-isme/timetable-planner-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type gridRenderer interface {
	Render(title string, grid export.Grid, data export.Dataset) ([]byte, error)
}

type calendarRenderer interface {
	Render(result models.ScheduleResult, opts export.CalendarOptions) ([]byte, error)
}

// ExportConfig tunes rendering and download links.
type ExportConfig struct {
	APIPrefix string
	Location  *time.Location
}

// ExportRenderers bundles the per-format renderers; nil entries fall back to the defaults.
type ExportRenderers struct {
	CSV  csvRenderer
	PDF  gridRenderer
	XLSX gridRenderer
	ICS  calendarRenderer
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// TimetableExporter renders saved plans and persists the files behind signed links.
type TimetableExporter struct {
	plans     planReader
	storage   fileStorage
	renderers ExportRenderers
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewTimetableExporter constructs a TimetableExporter.
func NewTimetableExporter(plans planReader, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, renderers ExportRenderers) *TimetableExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderers.CSV == nil {
		renderers.CSV = export.NewCSVExporter()
	}
	if renderers.PDF == nil {
		renderers.PDF = export.NewPDFExporter()
	}
	if renderers.XLSX == nil {
		renderers.XLSX = export.NewXLSXExporter()
	}
	if renderers.ICS == nil {
		renderers.ICS = export.NewICSExporter()
	}
	return &TimetableExporter{
		plans:     plans,
		storage:   files,
		renderers: renderers,
		signer:    signer,
		logger:    logger,
		cfg:       cfg,
	}
}

// Generate renders the plan of the job in the requested format and stores the file.
func (e *TimetableExporter) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	plan, err := e.plans.GetByID(ctx, job.PlanID)
	if err != nil {
		return nil, fmt.Errorf("load plan %s: %w", job.PlanID, err)
	}

	payload, err := e.render(plan, job.Params)
	if err != nil {
		return nil, err
	}

	relPath, err := e.storage.Save(exportFilename(plan, job), payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := e.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(e.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	e.logger.Debug("export rendered", zap.String("job_id", job.ID), zap.String("path", relPath), zap.Int("bytes", len(payload)))
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

func (e *TimetableExporter) render(plan *models.SchedulePlan, params models.ExportJobParams) ([]byte, error) {
	title := planTitle(plan)
	switch params.Format {
	case models.ExportFormatCSV:
		return e.renderers.CSV.Render(export.TimetableDataset(plan.Result))
	case models.ExportFormatPDF:
		return e.renderers.PDF.Render(title, export.BuildGrid(plan.Result.Schedule), export.TimetableDataset(plan.Result))
	case models.ExportFormatXLSX:
		return e.renderers.XLSX.Render(title, export.BuildGrid(plan.Result.Schedule), export.TimetableDataset(plan.Result))
	case models.ExportFormatICS:
		opts := export.CalendarOptions{Name: title, Weeks: params.Weeks, Location: e.cfg.Location}
		if params.TermStart != nil {
			opts.TermStart = *params.TermStart
		}
		return e.renderers.ICS.Render(plan.Result, opts)
	default:
		return nil, fmt.Errorf("unsupported format %s", params.Format)
	}
}

// ParseToken validates download token metadata.
func (e *TimetableExporter) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return e.signer.Parse(token, allowExpired)
}

// Open opens a stored export.
func (e *TimetableExporter) Open(relPath string) (*os.File, error) {
	return e.storage.Open(relPath)
}

// Delete removes a stored export.
func (e *TimetableExporter) Delete(relPath string) error {
	return e.storage.Delete(relPath)
}

// Cleanup removes stored exports older than ttl.
func (e *TimetableExporter) Cleanup(ttl time.Duration) ([]string, error) {
	return e.storage.CleanupOlderThan(ttl)
}

func planTitle(plan *models.SchedulePlan) string {
	group := plan.RecommendedGroup
	if group == "" {
		group = models.GeneralOnlyGroup
	}
	return fmt.Sprintf("Timetable %s - %s", plan.Term, group)
}

func exportFilename(plan *models.SchedulePlan, job *models.ExportJob) string {
	term := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, plan.Term)
	return fmt.Sprintf("%s/timetable_%s_%s.%s", time.Now().UTC().Format("2006/01/02"), term, shortID(job.ID), job.Params.Format)
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
