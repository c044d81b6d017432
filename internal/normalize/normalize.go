// Package normalize turns raw spreadsheet rows into canonical records.
//
// Every row handed to NormalizeAll ends up exactly once in either the record
// stream or the rejection log. Only a bad stay date or an unparsable
// rooms_sold, rooms_available or room_revenue rejects a row; other problems
// leave the field undefined and produce a Warning.
package normalize

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iwvelando/roomrev/internal/record"
	"github.com/iwvelando/roomrev/internal/schema"
	"github.com/iwvelando/roomrev/internal/synonym"
	"github.com/iwvelando/roomrev/pkg/constants"
	"github.com/iwvelando/roomrev/pkg/metric"
)

// Warning is a soft problem in an accepted row.
type Warning struct {
	Row     int
	Field   synonym.Field
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("row %d: %s: %s", w.Row, w.Field, w.Message)
}

// Result is the outcome of normalizing a batch of rows.
type Result struct {
	// Records are sorted by stay date, then source row.
	Records  []record.Canonical
	Rejected []record.Rejected
	Warnings []Warning
}

// Normalizer converts rows laid out per a schema.Mapping.
type Normalizer struct {
	mapping schema.Mapping
	logger  *zap.Logger
	workers int
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithWorkers sets the number of goroutines used by NormalizeAll.
func WithWorkers(workers int) Option {
	return func(n *Normalizer) {
		if workers > 0 {
			n.workers = workers
		}
	}
}

// New returns a Normalizer for rows matching mapping.
func New(mapping schema.Mapping, logger *zap.Logger, opts ...Option) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &Normalizer{
		mapping: mapping,
		logger:  logger,
		workers: constants.DefaultWorkers,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

type outcome struct {
	record   record.Canonical
	rejected *record.Rejected
	warnings []Warning
}

var numericSetters = map[synonym.Field]func(*record.Canonical, metric.Value){
	synonym.RoomsSold:            func(r *record.Canonical, v metric.Value) { r.RoomsSold = v },
	synonym.RoomsAvailable:       func(r *record.Canonical, v metric.Value) { r.RoomsAvailable = v },
	synonym.RoomRevenue:          func(r *record.Canonical, v metric.Value) { r.RoomRevenue = v },
	synonym.FBRevenue:            func(r *record.Canonical, v metric.Value) { r.FBRevenue = v },
	synonym.OtherRevenue:         func(r *record.Canonical, v metric.Value) { r.OtherRevenue = v },
	synonym.OutOfOrder:           func(r *record.Canonical, v metric.Value) { r.OutOfOrder = v },
	synonym.HouseUse:             func(r *record.Canonical, v metric.Value) { r.HouseUse = v },
	synonym.Complimentary:        func(r *record.Canonical, v metric.Value) { r.Complimentary = v },
	synonym.OverbookHold:         func(r *record.Canonical, v metric.Value) { r.OverbookHold = v },
	synonym.HouseUseRevenue:      func(r *record.Canonical, v metric.Value) { r.HouseUseRevenue = v },
	synonym.ComplimentaryRevenue: func(r *record.Canonical, v metric.Value) { r.ComplimentaryRevenue = v },
}

var textSetters = map[synonym.Field]func(*record.Canonical, string){
	synonym.Channel:       func(r *record.Canonical, s string) { r.Channel = s },
	synonym.RatePlan:      func(r *record.Canonical, s string) { r.RatePlan = s },
	synonym.MarketSegment: func(r *record.Canonical, s string) { r.MarketSegment = s },
	synonym.RoomType:      func(r *record.Canonical, s string) { r.RoomType = s },
}

var flagSetters = map[synonym.Field]func(*record.Canonical, bool){
	synonym.Cancelled: func(r *record.Canonical, b bool) { r.Cancelled = b },
	synonym.NoShow:    func(r *record.Canonical, b bool) { r.NoShow = b },
}

// Normalize converts one row. Exactly one of the results is meaningful: the
// record when the returned *record.Rejected is nil, the rejection otherwise.
// Warnings are logged.
func (n *Normalizer) Normalize(row record.RawRow) (record.Canonical, *record.Rejected) {
	out := n.normalize(row)
	n.logOutcome("normalize.Normalize", out)
	return out.record, out.rejected
}

func (n *Normalizer) normalize(row record.RawRow) outcome {
	rec := record.Canonical{Row: row.Index}
	reject := func(f synonym.Field, reason string) outcome {
		return outcome{rejected: &record.Rejected{
			Row:    row.Index,
			Cells:  append([]record.Cell(nil), row.Cells...),
			Field:  string(f),
			Reason: reason,
		}}
	}
	var warnings []Warning
	warn := func(f synonym.Field, format string, args ...interface{}) {
		warnings = append(warnings, Warning{Row: row.Index, Field: f, Message: fmt.Sprintf(format, args...)})
	}

	col, _ := n.mapping.Index(synonym.StayDate)
	stay, err := ParseDate(row.Cell(col))
	if err != nil {
		return reject(synonym.StayDate, fmt.Sprintf("unparsable stay date %q: %v", row.Cell(col).String(), err))
	}
	rec.StayDate = stay

	if col, ok := n.mapping.Index(synonym.BookingDate); ok && !row.Cell(col).IsBlank() {
		booked, err := ParseDate(row.Cell(col))
		if err != nil {
			warn(synonym.BookingDate, "unparsable booking date %q: %v", row.Cell(col).String(), err)
		} else {
			rec.BookingDate = booked
			rec.HasBookingDate = true
		}
	}

	for _, f := range synonym.Order {
		col, ok := n.mapping.Index(f)
		if !ok {
			continue
		}
		cell := row.Cell(col)

		if set, ok := numericSetters[f]; ok {
			v, err := ParseNumber(cell)
			if err != nil {
				if f.IsRequired() {
					return reject(f, err.Error())
				}
				warn(f, "%v, treated as not provided", err)
			}
			set(&rec, v)
			continue
		}
		if set, ok := textSetters[f]; ok {
			set(&rec, parseText(cell))
			continue
		}
		if set, ok := flagSetters[f]; ok {
			b, recognized := ParseFlag(cell)
			if !recognized {
				warn(f, "unrecognized flag %q, treated as false", cell.String())
			}
			set(&rec, b)
		}
	}

	return outcome{record: rec, warnings: warnings}
}

// NormalizeAll converts rows concurrently and returns every row as either a
// record or a rejection. Workers write into slots addressed by the row's
// position, and a single pass merges them in input order before records are
// sorted. Cancelling ctx abandons the batch.
func (n *Normalizer) NormalizeAll(ctx context.Context, rows []record.RawRow) (Result, error) {
	outcomes := make([]outcome, len(rows))

	workers := n.workers
	if workers > len(rows) {
		workers = len(rows)
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (len(rows) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < len(rows); lo += chunk {
		hi := lo + chunk
		if hi > len(rows) {
			hi = len(rows)
		}
		lo := lo
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				outcomes[i] = n.normalize(rows[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("row normalization cancelled: %w", err)
	}

	var result Result
	for _, out := range outcomes {
		if out.rejected != nil {
			result.Rejected = append(result.Rejected, *out.rejected)
		} else {
			result.Records = append(result.Records, out.record)
		}
		result.Warnings = append(result.Warnings, out.warnings...)
		n.logOutcome("normalize.NormalizeAll", out)
	}
	record.Sort(result.Records)

	n.logger.Debug("normalized rows",
		zap.String("op", "normalize.NormalizeAll"),
		zap.Int("rows", len(rows)),
		zap.Int("accepted", len(result.Records)),
		zap.Int("rejected", len(result.Rejected)),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

func (n *Normalizer) logOutcome(op string, out outcome) {
	for _, w := range out.warnings {
		n.logger.Warn(w.Message,
			zap.String("op", op),
			zap.Int("row", w.Row),
			zap.String("field", string(w.Field)),
		)
	}
	if out.rejected != nil {
		n.logger.Warn("row rejected",
			zap.String("op", op),
			zap.Int("row", out.rejected.Row),
			zap.String("field", out.rejected.Field),
			zap.String("reason", out.rejected.Reason),
		)
	}
}
