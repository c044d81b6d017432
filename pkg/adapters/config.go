// Package adapters provides adapter implementations between different package interfaces.
package adapters

import (
	"github.com/iwvelando/roomrev/internal/analysis"
	"github.com/iwvelando/roomrev/internal/config"
	"github.com/iwvelando/roomrev/internal/schema"
	"github.com/iwvelando/roomrev/internal/sheet"
	"github.com/iwvelando/roomrev/pkg/validation"
)

// AnalysisOptions converts the analysis configuration into run options.
func AnalysisOptions(c *config.Configuration) (analysis.Options, error) {
	from, err := validation.ParseDateBound("from", c.Analysis.From)
	if err != nil {
		return analysis.Options{}, err
	}
	to, err := validation.ParseDateBound("to", c.Analysis.To)
	if err != nil {
		return analysis.Options{}, err
	}
	overrides, err := c.Overrides()
	if err != nil {
		return analysis.Options{}, err
	}

	return analysis.Options{
		Granularity:    c.Analysis.Granularity,
		RollingWindows: append([]int(nil), c.Analysis.RollingWindows...),
		Dimension:      c.Analysis.Dimension,
		Comparison:     c.Analysis.Comparison,
		PaceAlignment:  c.Analysis.PaceAlignment,
		TopN:           c.Analysis.TopN,
		Workers:        c.Analysis.Workers,
		From:           from,
		To:             to,
		Overrides:      overrides,
	}, nil
}

// SheetOptions returns how to read the current input. The prior input is
// read with the same options minus the sheet name and header row, which
// describe the current file only.
func SheetOptions(c *config.Configuration, opts analysis.Options) (current, prior sheet.Options) {
	resolve := schema.Options{Overrides: opts.Overrides}
	current = sheet.Options{
		Sheet:     c.Input.Sheet,
		HeaderRow: c.Input.HeaderRow,
		Resolve:   resolve,
	}
	prior = sheet.Options{Resolve: resolve}
	return current, prior
}

// TableToInput converts a read sheet into an analysis input.
func TableToInput(t sheet.Table) analysis.Input {
	return analysis.Input{
		Source:  t.Source,
		Headers: t.Headers,
		Rows:    t.Rows,
	}
}
