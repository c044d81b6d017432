package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/width"

	"github.com/iwvelando/roomrev/internal/record"
	"github.com/iwvelando/roomrev/pkg/datetime"
	"github.com/iwvelando/roomrev/pkg/metric"
)

// Longer tokens first so "NT$" is stripped before "$".
var currencyTokens = []string{
	"NT$", "US$", "HK$",
	"TWD", "NTD", "USD", "JPY", "CNY", "RMB", "EUR",
	"$", "¥", "€", "£", "₩", "元", "圓",
}

var digitsPattern = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)$`)

var errEmpty = errors.New("empty value")

// ParseNumber parses a numeric cell. Text may carry thousands separators,
// currency symbols or codes on either side, a leading sign, parentheses for
// negatives and full-width digits. Blank text and a lone dash are undefined.
// Percentages are rejected.
func ParseNumber(c record.Cell) (metric.Value, error) {
	switch c.Kind {
	case record.Number:
		v := metric.Of(c.Number)
		if !v.Defined() {
			return metric.Undefined, fmt.Errorf("invalid number %v", c.Number)
		}
		return v, nil
	case record.Text:
		return parseNumberText(c.Text)
	default:
		return metric.Undefined, nil
	}
}

func parseNumberText(text string) (metric.Value, error) {
	s := strings.TrimSpace(width.Narrow.String(text))
	if s == "" || s == "-" {
		return metric.Undefined, nil
	}
	if strings.HasSuffix(s, "%") {
		return metric.Undefined, fmt.Errorf("percentage %q is not a count or amount", text)
	}

	// Accounting formats put the currency outside the parentheses: $(1,200).
	s = stripCurrency(s)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	s = stripCurrency(s)
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		if s[0] == '-' {
			negative = !negative
		}
		s = stripCurrency(s[1:])
	}
	s = strings.ReplaceAll(s, ",", "")

	if !digitsPattern.MatchString(s) {
		return metric.Undefined, fmt.Errorf("unrecognized number %q", text)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return metric.Undefined, fmt.Errorf("unrecognized number %q: %w", text, err)
	}
	if negative {
		f = -f
	}
	return metric.Of(f), nil
}

func stripCurrency(s string) string {
	for {
		s = strings.TrimSpace(s)
		trimmed := false
		for _, tok := range currencyTokens {
			if len(s) >= len(tok) && strings.EqualFold(s[:len(tok)], tok) {
				s = s[len(tok):]
				trimmed = true
				break
			}
			if len(s) >= len(tok) && strings.EqualFold(s[len(s)-len(tok):], tok) {
				s = s[:len(s)-len(tok)]
				trimmed = true
				break
			}
		}
		if !trimmed {
			return s
		}
	}
}

// ParseDate parses a date cell: numbers are spreadsheet serials or YYYYMMDD
// integers, text goes through datetime.ParseFlexible.
func ParseDate(c record.Cell) (time.Time, error) {
	switch c.Kind {
	case record.Number:
		return datetime.FromNumber(c.Number)
	case record.Text:
		if strings.TrimSpace(c.Text) == "" {
			return time.Time{}, errEmpty
		}
		return datetime.ParseFlexible(width.Narrow.String(c.Text))
	default:
		return time.Time{}, errEmpty
	}
}

var (
	trueTokens  = map[string]bool{"y": true, "yes": true, "true": true, "t": true, "1": true, "是": true, "x": true, "✓": true, "v": true}
	falseTokens = map[string]bool{"n": true, "no": true, "false": true, "f": true, "0": true, "否": true, "": true}
)

// ParseFlag parses a boolean-like cell. The second result is false when the
// token is not recognized, in which case the flag is false.
func ParseFlag(c record.Cell) (bool, bool) {
	switch c.Kind {
	case record.Number:
		switch c.Number {
		case 1:
			return true, true
		case 0:
			return false, true
		}
		return false, false
	case record.Text:
		token := strings.ToLower(strings.TrimSpace(width.Narrow.String(c.Text)))
		if trueTokens[token] {
			return true, true
		}
		return false, falseTokens[token]
	default:
		return false, true
	}
}

func parseText(c record.Cell) string {
	return strings.TrimSpace(c.String())
}
