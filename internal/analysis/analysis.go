// Package analysis runs the whole pipeline over one export: schema
// resolution, row normalization, and the fan-out to KPIs, aggregation, pace
// and cancellation analysis.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iwvelando/roomrev/internal/aggregate"
	"github.com/iwvelando/roomrev/internal/cancellation"
	"github.com/iwvelando/roomrev/internal/kpi"
	"github.com/iwvelando/roomrev/internal/metrics"
	"github.com/iwvelando/roomrev/internal/normalize"
	"github.com/iwvelando/roomrev/internal/pace"
	"github.com/iwvelando/roomrev/internal/record"
	"github.com/iwvelando/roomrev/internal/schema"
	"github.com/iwvelando/roomrev/internal/synonym"
	"github.com/iwvelando/roomrev/pkg/constants"
)

// Input is one tabular export: a header row and its data rows.
type Input struct {
	Source  string
	Headers []string
	Rows    []record.RawRow
}

// Options control a run.
type Options struct {
	Granularity    string
	RollingWindows []int
	// Dimension groups cancellation rates and top groups; empty disables both.
	Dimension string
	// Comparison is yoy, mom or none. Yoy compares against the prior input
	// when one is given and within the current input otherwise.
	Comparison    string
	PaceAlignment string
	TopN          int
	Workers       int
	// From and To restrict the current input to stay dates in [From, To].
	From time.Time
	To   time.Time
	// Overrides pin canonical fields to header names.
	Overrides map[synonym.Field]string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Granularity:    constants.DefaultGranularity,
		RollingWindows: append([]int(nil), constants.DefaultRollingWindows...),
		Comparison:     constants.ComparisonYoY,
		PaceAlignment:  constants.PaceAlignSameDate,
		TopN:           constants.DefaultTopN,
		Workers:        constants.DefaultWorkers,
	}
}

// BucketReport is a bucket with its indicators.
type BucketReport struct {
	aggregate.Bucket
	KPIs kpi.Set `json:"kpis"`
}

// RollingSeries is the rolling mean of one measure for one window size.
type RollingSeries struct {
	Measure string                   `json:"measure"`
	Window  int                      `json:"window"`
	Points  []aggregate.RollingPoint `json:"points"`
}

// Report collects every output of a run.
type Report struct {
	RunID       string    `json:"run_id"`
	Source      string    `json:"source"`
	GeneratedAt time.Time `json:"generated_at"`
	Granularity string    `json:"granularity"`

	Mapping  schema.Mapping     `json:"mapping"`
	Records  []record.Canonical `json:"-"`
	Rejected []record.Rejected  `json:"rejected"`
	Warnings []string           `json:"warnings"`

	Summary   Summary                   `json:"summary"`
	Buckets   []BucketReport            `json:"buckets"`
	Rolling   []RollingSeries           `json:"rolling"`
	Deltas    []aggregate.Delta         `json:"deltas,omitempty"`
	RoomTypes []kpi.RoomTypeOccupancy   `json:"room_types,omitempty"`
	TopGroups []aggregate.Group         `json:"top_groups,omitempty"`
	Cancel    *cancellation.Report      `json:"cancellation,omitempty"`
	Pace      []pace.Series             `json:"pace,omitempty"`
	PaceYoY   []pace.Comparison         `json:"pace_comparison,omitempty"`
}

// Runner executes runs with a shared alias table, logger and metrics.
type Runner struct {
	table   *synonym.Table
	logger  *zap.Logger
	metrics *metrics.Pipeline
}

// NewRunner returns a Runner. A nil table uses the built-in aliases, a nil
// logger discards logs and a nil pipeline discards metrics.
func NewRunner(table *synonym.Table, logger *zap.Logger, pipeline *metrics.Pipeline) *Runner {
	if table == nil {
		table = synonym.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{table: table, logger: logger, metrics: pipeline}
}

// Run analyzes current, and compares it with prior when prior is not nil.
// A schema resolution failure of either input aborts the run.
func (r *Runner) Run(ctx context.Context, current Input, prior *Input, opts Options) (Report, error) {
	started := time.Now()
	report := Report{
		RunID:       uuid.NewString(),
		Source:      current.Source,
		Granularity: opts.Granularity,
	}
	logger := r.logger.With(zap.String("run_id", report.RunID))

	mapping, result, err := r.load(ctx, logger, current, opts)
	if err != nil {
		return report, err
	}
	report.Mapping = mapping
	report.Rejected = result.Rejected
	for _, w := range result.Warnings {
		report.Warnings = append(report.Warnings, w.String())
	}
	report.Records = aggregate.Slice(result.Records, opts.From, opts.To)

	buckets, err := aggregate.Aggregate(report.Records, opts.Granularity)
	if err != nil {
		return report, err
	}
	r.metrics.SetBuckets(len(buckets))
	for _, b := range buckets {
		report.Buckets = append(report.Buckets, BucketReport{Bucket: b, KPIs: b.KPIs()})
	}
	report.Summary = Summarize(report.Records, len(report.Rejected), buckets)

	for _, w := range opts.RollingWindows {
		for _, m := range aggregate.Measures {
			points, err := aggregate.Rolling(buckets, w, m.Fn)
			if err != nil {
				return report, err
			}
			report.Rolling = append(report.Rolling, RollingSeries{Measure: m.Name, Window: w, Points: points})
		}
	}

	var priorRecords []record.Canonical
	var priorMapping schema.Mapping
	if prior != nil {
		var priorResult normalize.Result
		priorMapping, priorResult, err = r.load(ctx, logger, *prior, opts)
		if err != nil {
			return report, fmt.Errorf("prior input: %w", err)
		}
		priorRecords = priorResult.Records
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}

	report.Deltas, err = r.compare(buckets, priorRecords, prior != nil, opts)
	if err != nil {
		return report, err
	}

	if mapping.Has(synonym.RoomType) {
		report.RoomTypes = kpi.ByRoomType(report.Records)
	}
	if opts.Dimension != "" {
		report.TopGroups, err = aggregate.TopGroups(report.Records, opts.Dimension, opts.TopN)
		if err != nil {
			return report, err
		}
	}
	if mapping.Has(synonym.Cancelled) || mapping.Has(synonym.NoShow) {
		c, err := cancellation.Analyze(report.Records, opts.Dimension)
		if err != nil {
			return report, err
		}
		report.Cancel = &c
	}

	if mapping.Has(synonym.BookingDate) {
		report.Pace, report.PaceYoY, err = r.pace(logger, &report, priorRecords, priorMapping.Has(synonym.BookingDate), opts)
		if err != nil {
			return report, err
		}
	}

	finished := time.Now()
	report.GeneratedAt = finished
	r.metrics.ObserveRun(started, finished)
	logger.Info("analysis complete",
		zap.String("op", "analysis.Run"),
		zap.String("source", current.Source),
		zap.Int("records", len(report.Records)),
		zap.Int("rejected", len(report.Rejected)),
		zap.Int("buckets", len(report.Buckets)),
		zap.Duration("elapsed", finished.Sub(started)),
	)
	return report, nil
}

func (r *Runner) load(ctx context.Context, logger *zap.Logger, in Input, opts Options) (schema.Mapping, normalize.Result, error) {
	mapping, absent, err := schema.ResolveWithOptions(r.table, in.Headers, schema.Options{Overrides: opts.Overrides})
	if err != nil {
		logger.Error("schema resolution failed",
			zap.String("op", "analysis.Run"),
			zap.String("source", in.Source),
			zap.Strings("headers", in.Headers),
			zap.Error(err),
		)
		return mapping, normalize.Result{}, err
	}
	logger.Debug("resolved headers",
		zap.String("op", "analysis.Run"),
		zap.String("source", in.Source),
		zap.Any("columns", mapping.Columns),
		zap.Int("absent", len(absent)),
	)

	n := normalize.New(mapping, logger, normalize.WithWorkers(opts.Workers))
	result, err := n.NormalizeAll(ctx, in.Rows)
	if err != nil {
		return mapping, result, err
	}
	r.metrics.ObserveNormalization(result)
	return mapping, result, nil
}

func (r *Runner) compare(buckets []aggregate.Bucket, priorRecords []record.Canonical, hasPrior bool, opts Options) ([]aggregate.Delta, error) {
	switch opts.Comparison {
	case "", constants.ComparisonNone:
		return nil, nil
	case constants.ComparisonYoY:
		if !hasPrior {
			return aggregate.Compare(buckets, buckets, constants.ComparisonYoY)
		}
		priorBuckets, err := aggregate.Aggregate(priorRecords, opts.Granularity)
		if err != nil {
			return nil, err
		}
		return aggregate.Compare(buckets, priorBuckets, constants.ComparisonYoY)
	default:
		return aggregate.Compare(buckets, buckets, opts.Comparison)
	}
}

func (r *Runner) pace(logger *zap.Logger, report *Report, priorRecords []record.Canonical, priorHasBookings bool, opts Options) ([]pace.Series, []pace.Comparison, error) {
	series, warnings := pace.BuildAll(report.Records)
	r.logPaceWarnings(logger, report, warnings)

	if !priorHasBookings || opts.PaceAlignment == "" {
		return series, nil, nil
	}
	mode, err := pace.ParseAlignMode(opts.PaceAlignment)
	if err != nil {
		return series, nil, err
	}
	priorSeries, priorWarnings := pace.BuildAll(priorRecords)
	r.logPaceWarnings(logger, report, priorWarnings)

	comparisons, err := pace.AlignAll(series, priorSeries, mode)
	if err != nil {
		return series, nil, err
	}
	return series, comparisons, nil
}

func (r *Runner) logPaceWarnings(logger *zap.Logger, report *Report, warnings []pace.Warning) {
	for _, w := range warnings {
		logger.Warn(w.Message,
			zap.String("op", "analysis.Run"),
			zap.Int("row", w.Row),
			zap.Time("stay_date", w.StayDate),
		)
		report.Warnings = append(report.Warnings, w.String())
	}
	r.metrics.AddWarnings("pace", len(warnings))
}
