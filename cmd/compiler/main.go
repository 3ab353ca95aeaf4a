package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tgcompile/internal/config"
	apperrors "tgcompile/internal/errors"
	"tgcompile/internal/exporter"
	"tgcompile/internal/infrastructure"
	"tgcompile/internal/operations"
	"tgcompile/pkg/contracts"
	"tgcompile/pkg/contracts/domain"
)

// errReported marks a failure whose message was already printed
var errReported = errors.New("reported")

type options struct {
	dir        string
	configFile string
	logLevel   string
	xlsx       bool
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Compile scraped Telegram channel exports into one annotated CSV",
		Long: `Reads every *.csv.csv export in the input directory, merges them into one
table, counts the monitored Persian keywords in each message and writes
Telegram_Data_Compiled.csv next to the inputs.

Files that cannot be decoded or parsed are skipped and listed in the report.`,
		Version:       contracts.GetFullVersionString(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd, opts, stdout, stderr)
		},
	}

	cmd.Flags().StringVar(&opts.dir, "dir", "", "input directory (default "+config.DefaultInputDir+")")
	cmd.Flags().StringVar(&opts.configFile, "config", "", "YAML configuration file")
	cmd.Flags().BoolVar(&opts.xlsx, "xlsx", false, "also write an XLSX workbook")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, opts options, stdout, stderr io.Writer) error {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("dir") {
		cfg.Input.Dir = opts.dir
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if cmd.Flags().Changed("xlsx") {
		cfg.Output.XLSX = opts.xlsx
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	telemetry, err := infrastructure.InitializeTelemetry(cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("Telemetry disabled", slog.String("error", err.Error()))
		telemetry = infrastructure.NoopTelemetry()
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	compiler, err := operations.NewCompiler(cfg, telemetry, logger)
	if err != nil {
		return err
	}

	printer := exporter.NewReportPrinter(stdout, cfg.Output.FileViewsLimit, cfg.Output.SkippedLimit)
	report, err := compiler.Run(ctx)
	printer.PrintLoadErrors(report.Skipped)

	switch {
	case err == nil:
		printer.PrintReport(report)
		return nil
	case errors.Is(err, apperrors.ErrNoValidFiles):
		printer.PrintNoValidFiles()
		return nil
	case apperrors.IsType(err, apperrors.ErrTypeStorage) && report.TotalMessages > 0:
		fmt.Fprintf(stderr, "Failed to write %s: %v\n", failedWritePath(cfg, report), err)
		return errReported
	default:
		return err
	}
}

// failedWritePath names the output that failed. The CSV is written first
// and recorded on the report once it succeeds.
func failedWritePath(cfg *config.Config, report *domain.CompileReport) string {
	if report.OutputPath != "" {
		return cfg.XLSXPath()
	}
	return cfg.OutputPath()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand(os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}
