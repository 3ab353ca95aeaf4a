package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"tgcompile/internal/config"
	"tgcompile/internal/dataprocessing"
	apperrors "tgcompile/internal/errors"
	"tgcompile/internal/exporter"
	"tgcompile/internal/files"
	"tgcompile/internal/infrastructure"
	"tgcompile/pkg/contracts/domain"
)

// Compiler runs the compile pipeline over one input directory
type Compiler struct {
	cfg       *config.Config
	discovery *files.Discovery
	loader    *dataprocessing.Loader
	annotator *dataprocessing.Annotator
	exporter  *exporter.TableExporter
	telemetry *infrastructure.Telemetry
	logger    *slog.Logger

	states map[string]*StepState
}

// NewCompiler creates a compiler for cfg. A nil telemetry records nothing.
func NewCompiler(cfg *config.Config, telemetry *infrastructure.Telemetry, logger *slog.Logger) (*Compiler, error) {
	if cfg == nil {
		return nil, apperrors.NewConfigError("configuration is required", nil)
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if telemetry == nil {
		telemetry = infrastructure.NoopTelemetry()
	}

	annotator, err := dataprocessing.NewAnnotator(cfg.Keywords.Categories, infrastructure.WithComponent(logger, "annotator"))
	if err != nil {
		return nil, err
	}

	return &Compiler{
		cfg:       cfg,
		discovery: files.NewDiscovery(""),
		loader:    dataprocessing.NewLoader(infrastructure.WithComponent(logger, "loader")),
		annotator: annotator,
		exporter:  exporter.NewTableExporter(infrastructure.WithComponent(logger, "exporter")),
		telemetry: telemetry,
		logger:    infrastructure.WithComponent(logger, "compiler"),
		states:    newStageStates(),
	}, nil
}

// Stages returns the stage states of the last run in execution order
func (c *Compiler) Stages() []*StepState {
	out := make([]*StepState, 0, len(StageOrder))
	for _, id := range StageOrder {
		out = append(out, c.states[id])
	}
	return out
}

// Run executes discover, load, merge, annotate, summarize and write.
// The returned report is never nil; on ErrNoValidFiles or a write failure
// it holds what was gathered before the failing stage.
func (c *Compiler) Run(ctx context.Context) (*domain.CompileReport, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	c.states = newStageStates()

	report := &domain.CompileReport{
		RunID:     infrastructure.GetTraceID(ctx),
		InputDir:  c.cfg.Input.Dir,
		StartedAt: time.Now(),
	}

	ctx, span := c.telemetry.Tracer.Start(ctx, "compile.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", report.RunID),
			attribute.String("input.dir", c.cfg.Input.Dir),
		),
	)
	defer span.End()

	c.logger.InfoContext(ctx, "Compile started",
		slog.String("input_dir", c.cfg.Input.Dir),
		slog.String("suffix", c.cfg.Input.Suffix))

	err := c.execute(ctx, report)
	report.CompletedAt = time.Now()

	if err != nil {
		for _, s := range c.states {
			if s.GetStatus() == StepStatusPending {
				s.Skip("previous stage failed")
			}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.ErrorContext(ctx, "Compile failed",
			slog.String("error_type", string(apperrors.TypeOf(err))),
			slog.String("error", err.Error()))
		return report, err
	}

	span.SetStatus(codes.Ok, "")
	c.logger.InfoContext(ctx, "Compile completed",
		slog.Int("files_loaded", report.FilesLoaded),
		slog.Int64("input_bytes", report.InputBytes),
		slog.Int("files_skipped", report.FilesSkipped()),
		slog.Int("messages", report.TotalMessages),
		slog.Int64("views", report.TotalViews),
		slog.Duration("duration", report.CompletedAt.Sub(report.StartedAt)))
	return report, nil
}

func (c *Compiler) execute(ctx context.Context, report *domain.CompileReport) error {
	m := c.telemetry.Metrics

	var inputs []files.FileInfo
	if err := c.runStage(ctx, StageDiscover, func(ctx context.Context, state *StepState) error {
		var err error
		inputs, err = c.discovery.FindInputFiles(c.cfg.Input.Dir, c.cfg.Input.Suffix)
		if err != nil {
			return err
		}
		report.FilesFound = len(inputs)
		report.InputBytes = files.TotalSize(inputs)
		m.FilesDiscovered.Add(ctx, int64(len(inputs)))
		state.SetMetadata("files", files.Names(inputs))
		state.SetMetadata("bytes", report.InputBytes)
		return nil
	}); err != nil {
		return err
	}

	var results []dataprocessing.LoadResult
	if err := c.runStage(ctx, StageLoad, func(ctx context.Context, state *StepState) error {
		results = c.loader.LoadAll(ctx, inputs)
		report.Skipped = dataprocessing.SkippedFiles(results)
		report.FileViews = dataprocessing.FileViewTotals(results)
		report.FilesLoaded = len(report.FileViews)

		m.FilesLoaded.Add(ctx, int64(report.FilesLoaded))
		for _, s := range report.Skipped {
			m.RecordSkip(ctx, s.ErrorType)
		}
		state.SetMetadata("loaded", report.FilesLoaded)
		state.SetMetadata("skipped", len(report.Skipped))
		return nil
	}); err != nil {
		return err
	}

	var table *domain.CompiledTable
	if err := c.runStage(ctx, StageMerge, func(ctx context.Context, state *StepState) error {
		var err error
		table, err = dataprocessing.Merge(dataprocessing.LoadedFiles(results))
		if err != nil {
			return err
		}
		state.SetMetadata("rows", table.Len())
		state.SetMetadata("synthetic_new_number", table.SyntheticNewNumber)
		return nil
	}); err != nil {
		return err
	}

	if err := c.runStage(ctx, StageAnnotate, func(ctx context.Context, state *StepState) error {
		c.annotator.Annotate(table)
		state.SetMetadata("keywords", len(table.KeywordColumns))
		if shared := config.DuplicateKeywords(c.annotator.Categories()); len(shared) > 0 {
			state.SetMetadata("shared_keywords", shared)
		}
		return nil
	}); err != nil {
		return err
	}

	if err := c.runStage(ctx, StageSummarize, func(ctx context.Context, state *StepState) error {
		report.TotalMessages = table.Len()
		report.TotalViews = table.TotalViews()
		report.CategoryTotals = dataprocessing.KeywordTotals(table, c.annotator.Categories())

		m.MessagesCompiled.Add(ctx, int64(report.TotalMessages))
		m.ViewsCompiled.Add(ctx, report.TotalViews)
		for _, ct := range report.CategoryTotals {
			var n int64
			for _, kt := range ct.Keywords {
				n += kt.Total
			}
			m.KeywordMatches.Add(ctx, n, metric.WithAttributes(attribute.String("category", ct.Category)))
		}
		return nil
	}); err != nil {
		return err
	}

	return c.runStage(ctx, StageWrite, func(ctx context.Context, state *StepState) error {
		path := c.cfg.OutputPath()
		if err := c.exporter.WriteCSV(path, table); err != nil {
			return err
		}
		report.OutputPath = path

		if c.cfg.Output.XLSX {
			xlsxPath := c.cfg.XLSXPath()
			if err := c.exporter.WriteXLSX(xlsxPath, table, report.CategoryTotals); err != nil {
				return err
			}
			report.XLSXPath = xlsxPath
		}
		state.SetMetadata("path", path)
		return nil
	})
}

// runStage wraps fn with a span, stage state tracking and a duration sample
func (c *Compiler) runStage(ctx context.Context, id string, fn func(context.Context, *StepState) error) error {
	state := c.states[id]

	ctx, span := c.telemetry.Tracer.Start(ctx, fmt.Sprintf("compile.stage.%s", id),
		trace.WithAttributes(attribute.String("stage.id", id)))
	defer span.End()

	if err := ctx.Err(); err != nil {
		state.Fail(err)
		return err
	}

	state.Start()
	c.logger.DebugContext(ctx, "Stage started", slog.String("stage", id))

	err := fn(ctx, state)
	if err != nil {
		state.Fail(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		level := slog.LevelError
		if errors.Is(err, apperrors.ErrNoValidFiles) {
			level = slog.LevelWarn
		}
		c.logger.Log(ctx, level, "Stage failed",
			slog.String("stage", id),
			slog.String("error", err.Error()))
	} else {
		state.Complete()
		span.SetStatus(codes.Ok, "")
		c.logger.DebugContext(ctx, "Stage completed",
			slog.String("stage", id),
			slog.Duration("duration", state.Duration()))
	}

	c.telemetry.Metrics.StageDuration.Record(ctx, state.Duration().Seconds(),
		metric.WithAttributes(attribute.String("stage", id)))
	return err
}
