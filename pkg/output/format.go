// Package output provides utilities for formatting and displaying analysis reports.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/iwvelando/roomrev/internal/aggregate"
	"github.com/iwvelando/roomrev/internal/analysis"
	"github.com/iwvelando/roomrev/internal/kpi"
	"github.com/iwvelando/roomrev/internal/pace"
	"github.com/iwvelando/roomrev/pkg/constants"
	"github.com/iwvelando/roomrev/pkg/format"
	"github.com/iwvelando/roomrev/pkg/mathutil"
	"github.com/iwvelando/roomrev/pkg/metric"
)

// pickupWindow is the lead time, in days, of the pickup column.
const pickupWindow = 7

// Write renders the report in the given format.
func Write(w io.Writer, outputFormat string, report analysis.Report) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, report)
	case constants.OutputFormatCSV:
		return CsvFormat(w, report)
	case constants.OutputFormatJSON:
		return JSONFormat(w, report)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, report analysis.Report) error {
	pw := &prettyWriter{w: w, p: message.NewPrinter(language.English)}
	s := report.Summary

	pw.printf("=== Report for %s (run %s) ===\n", report.Source, report.RunID)
	if s.Records > 0 {
		pw.printf("Records: %d accepted, %d rejected, %s to %s\n", s.Records, s.Rejected,
			s.FirstDay.Format(constants.DateLayout), s.LastDay.Format(constants.DateLayout))
	} else {
		pw.printf("Records: 0 accepted, %d rejected\n", s.Rejected)
	}
	pw.printf("Rooms sold %s | Rooms available %s | Room revenue %s | Total revenue %s\n",
		format.Count(s.RoomsSold), format.Count(s.RoomsAvailable), format.Amount(s.RoomRevenue), format.Amount(s.KPIs.TotalRevenue))
	pw.printf("Occupancy %s | ADR %s | RevPAR %s\n",
		format.Percent(s.KPIs.Occupancy), format.Amount(s.KPIs.ADR), format.Amount(s.KPIs.RevPAR))
	pw.printf("Sellable occupancy %s | ADR sellable %s | ADR sellable incl. overbook %s | OOO rate %s\n",
		format.Percent(s.KPIs.SellableOccupancy), format.Amount(s.KPIs.ADRSellable),
		format.Amount(s.KPIs.ADRSellableOverbook), format.Percent(s.KPIs.OutOfOrderRate))

	pw.section("Periods (%s)", report.Granularity)
	pw.printf("%-10s | %8s | %8s | %14s | %8s | %10s | %10s\n", "Period", "Sold", "Avail", "Revenue", "Occ", "ADR", "RevPAR")
	for _, b := range report.Buckets {
		pw.printf("%-10s | %8s | %8s | %14s | %8s | %10s | %10s\n", b.Key,
			format.Count(b.RoomsSold), format.Count(b.RoomsAvailable), format.Amount(b.RoomRevenue),
			format.Percent(b.KPIs.Occupancy), format.Amount(b.KPIs.ADR), format.Amount(b.KPIs.RevPAR))
	}

	if len(report.Rolling) > 0 {
		pw.section("Rolling averages (latest period)")
		for _, series := range report.Rolling {
			if len(series.Points) == 0 {
				continue
			}
			last := series.Points[len(series.Points)-1]
			pw.printf("%-22s %3d %s: %s\n", series.Measure, series.Window, report.Granularity, measureText(series.Measure, last.Value))
		}
	}

	if len(report.Deltas) > 0 {
		pw.section("Period comparison")
		pw.printf("%-10s | %-10s | %8s | %14s | %9s | %9s | %12s | %12s | %12s\n",
			"Period", "Prior", "Sold Δ", "Revenue Δ", "ADR Δ%", "Occ Δ", "Volume", "Rate", "Cross")
		for _, d := range report.Deltas {
			pw.printf("%-10s | %-10s | %8s | %14s | %9s | %9s | %12s | %12s | %12s\n",
				d.Key, d.PriorKey, signedCount(d.RoomsSold.Delta), format.SignedAmount(d.RoomRevenue.Delta),
				format.SignedPercent(d.ADR.Pct), format.SignedPercent(d.Occupancy.Delta),
				decomposition(d.Decomposition, "volume"), decomposition(d.Decomposition, "rate"), decomposition(d.Decomposition, "cross"))
		}
	}

	if len(report.RoomTypes) > 0 {
		pw.section("Occupancy by room type")
		for _, rt := range report.RoomTypes {
			pw.printf("%-12s %8s / %-8s %s\n", rt.RoomType,
				format.Count(metric.Of(rt.RoomsSold)), format.Count(metric.Of(rt.RoomsAvailable)), format.Percent(rt.Occupancy))
		}
	}

	if len(report.TopGroups) > 0 {
		pw.section("Top groups by room revenue")
		for _, g := range report.TopGroups {
			pw.printf("%-16s | %6d records | %8s sold | %14s | ADR %s\n",
				g.Key, g.Records, format.Count(g.RoomsSold), format.Amount(g.RoomRevenue), format.Amount(g.ADR))
		}
	}

	if c := report.Cancel; c != nil {
		pw.section("Cancellations and no-shows")
		pw.printf("%-16s | %8s | %9s | %8s | %8s\n", "Group", "Bookings", "Cancelled", "No-show", "Rate")
		pw.printf("%-16s | %8d | %9d | %8d | %8s\n", c.Overall.Key, c.Overall.Bookings, c.Overall.Cancellations, c.Overall.NoShows, format.Percent(c.Overall.Rate))
		for _, sl := range c.Slices {
			pw.printf("%-16s | %8d | %9d | %8d | %8s\n", sl.Key, sl.Bookings, sl.Cancellations, sl.NoShows, format.Percent(sl.Rate))
		}
	}

	if len(report.Pace) > 0 {
		pw.section("Pace")
		prior := make(map[string]pace.Comparison, len(report.PaceYoY))
		for _, c := range report.PaceYoY {
			prior[c.StayDate.Format(constants.DateLayout)] = c
		}
		pw.printf("%-10s | %8s | %10s | %10s\n", "Stay date", "On books", fmt.Sprintf("Pickup %dd", pickupWindow), "Prior year")
		for _, s := range report.Pace {
			key := s.StayDate.Format(constants.DateLayout)
			priorText := metric.NotAvailable
			if c, ok := prior[key]; ok {
				priorText = format.Count(priorFinal(c))
			}
			pw.printf("%-10s | %8s | %10s | %10s\n", key,
				format.Count(metric.Of(s.Final())), format.Count(pace.Pickup(s, pickupWindow, 0)), priorText)
		}
	}

	if len(report.Rejected) > 0 {
		pw.section("Rejected rows")
		for _, r := range report.Rejected {
			pw.printf("%s\n", r.String())
		}
	}
	if len(report.Warnings) > 0 {
		pw.section("Warnings")
		for _, warning := range report.Warnings {
			pw.printf("%s\n", warning)
		}
	}
	return pw.err
}

type prettyWriter struct {
	w   io.Writer
	p   *message.Printer
	err error
}

func (pw *prettyWriter) printf(format string, args ...interface{}) {
	if pw.err != nil {
		return
	}
	_, pw.err = pw.p.Fprintf(pw.w, format, args...)
}

func (pw *prettyWriter) section(title string, args ...interface{}) {
	pw.printf("\n--- "+title+" ---\n", args...)
}

func measureText(name string, v metric.Value) string {
	switch name {
	case kpi.NameOccupancy:
		return format.Percent(v)
	case "rooms_sold":
		return format.Count(v)
	default:
		return format.Amount(v)
	}
}

func signedCount(v metric.Value) string {
	f, ok := v.Float()
	if !ok {
		return metric.NotAvailable
	}
	if f > 0 {
		return "+" + format.Count(v)
	}
	return format.Count(v)
}

func decomposition(d aggregate.Decomposition, part string) string {
	if !d.Defined {
		return metric.NotAvailable
	}
	switch part {
	case "volume":
		return d.Volume.StringFixed(2)
	case "rate":
		return d.Rate.StringFixed(2)
	default:
		return d.Cross.StringFixed(2)
	}
}

// priorFinal is the prior curve's value nearest to arrival.
func priorFinal(c pace.Comparison) metric.Value {
	for i := len(c.Points) - 1; i >= 0; i-- {
		if c.Points[i].Prior.Defined() {
			return c.Points[i].Prior
		}
	}
	return metric.Undefined
}

// CsvFormat outputs one comma-separated row per period with every indicator.
// Amounts are rounded to cents and ratios to RatioPlaces; the JSON report
// keeps full precision.
func CsvFormat(w io.Writer, report analysis.Report) error {
	cw := csv.NewWriter(w)

	header := []string{"period", "start", "end", "records", "rooms_sold", "rooms_available", "room_revenue",
		"fb_revenue", "other_revenue", "cancellations", "no_shows"}
	for _, n := range (kpi.Set{}).Named() {
		header = append(header, n.Name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, b := range report.Buckets {
		row := []string{
			b.Key,
			b.Start.Format(constants.DateLayout),
			b.End.Format(constants.DateLayout),
			strconv.Itoa(b.Records),
			b.RoomsSold.String(),
			b.RoomsAvailable.String(),
			csvAmount(b.RoomRevenue),
			strconv.FormatFloat(mathutil.Round(b.FBRevenue), 'f', -1, 64),
			strconv.FormatFloat(mathutil.Round(b.OtherRevenue), 'f', -1, 64),
			strconv.Itoa(b.Cancellations),
			strconv.Itoa(b.NoShows),
		}
		for _, n := range b.KPIs.Named() {
			row = append(row, csvKPI(n))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvAmount(v metric.Value) string {
	return mathutil.RoundValue(v, constants.CurrencyPlaces).String()
}

// csvKPI rounds ratios to RatioPlaces and amounts to cents.
func csvKPI(n kpi.Named) string {
	switch n.Name {
	case kpi.NameOccupancy, kpi.NameSellableOccupancy, kpi.NameOutOfOrderRate:
		return mathutil.RoundValue(n.Value, constants.RatioPlaces).String()
	default:
		return csvAmount(n.Value)
	}
}

// JSONFormat outputs the whole report as indented JSON. Undefined values
// are null.
func JSONFormat(w io.Writer, report analysis.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
