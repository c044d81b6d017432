package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/iwvelando/roomrev/internal/analysis"
	"github.com/iwvelando/roomrev/internal/config"
	"github.com/iwvelando/roomrev/internal/metrics"
	"github.com/iwvelando/roomrev/internal/sheet"
	"github.com/iwvelando/roomrev/internal/synonym"
	"github.com/iwvelando/roomrev/pkg/adapters"
	"github.com/iwvelando/roomrev/pkg/constants"
	"github.com/iwvelando/roomrev/pkg/output"
	"github.com/iwvelando/roomrev/pkg/validation"
)

// readInput reads one export file, logging where its header was found.
func readInput(logger *zap.Logger, path string, aliases *synonym.Table, opts sheet.Options) (analysis.Input, error) {
	table, err := sheet.ReadFile(logger, path, aliases, opts)
	if err != nil {
		return analysis.Input{}, err
	}
	logger.Debug("read input",
		zap.String("op", "main"),
		zap.String("file", path),
		zap.String("sheet", table.Sheet),
		zap.Int("header_row", table.HeaderRow),
		zap.Int("rows", len(table.Rows)),
		zap.Int("blank_rows", table.Blank),
	)
	return adapters.TableToInput(table), nil
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	priorFile := flag.String("prior", "", "prior period export override")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": %q}\n", *configLocation, err.Error())
		os.Exit(1)
	}
	if *priorFile != "" {
		conf.Analysis.PriorFile = *priorFile
	}

	logger, err := config.NewLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": %q}\n", err.Error())
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	opts, err := adapters.AnalysisOptions(conf)
	if err != nil {
		logger.Fatal("invalid analysis options",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	aliases, err := synonym.Extend(synonym.Default(), conf.Synonyms.File)
	if err != nil {
		logger.Fatal("failed to load synonyms",
			zap.String("op", "main"),
			zap.String("file", conf.Synonyms.File),
			zap.Error(err),
		)
	}

	currentOpts, priorOpts := adapters.SheetOptions(conf, opts)
	current, err := readInput(logger, conf.Input.File, aliases, currentOpts)
	if err != nil {
		logger.Fatal("failed to read input",
			zap.String("op", "main"),
			zap.String("file", conf.Input.File),
			zap.Error(err),
		)
	}

	var prior *analysis.Input
	if conf.Analysis.PriorFile != "" {
		in, err := readInput(logger, conf.Analysis.PriorFile, aliases, priorOpts)
		if err != nil {
			logger.Fatal("failed to read prior input",
				zap.String("op", "main"),
				zap.String("file", conf.Analysis.PriorFile),
				zap.Error(err),
			)
		}
		prior = &in
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := metrics.NewPipeline(nil)
	report, err := analysis.NewRunner(aliases, logger, pipeline).Run(ctx, current, prior, opts)
	if err != nil {
		logger.Fatal("failed to analyze input",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if err := output.Write(os.Stdout, outputFormat, report); err != nil {
		logger.Fatal("failed to write report",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if conf.Metrics.Textfile != "" {
		if err := pipeline.WriteTextfile(conf.Metrics.Textfile); err != nil {
			logger.Error("failed to export metrics",
				zap.String("op", "main"),
				zap.String("file", conf.Metrics.Textfile),
				zap.Error(err),
			)
		}
	}
}
