// Package constants provides shared constants for the roomrev application.
package constants

// DateLayout is the canonical calendar date format used for stay dates,
// booking dates and configuration date bounds.
const DateLayout = "2006-01-02"

// MonthLayout is the period key format of monthly buckets.
const MonthLayout = "2006-01"

// YearLayout is the period key format of yearly buckets.
const YearLayout = "2006"

// Granularity constants
const (
	GranularityDay   = "day"
	GranularityWeek  = "week"
	GranularityMonth = "month"
	GranularityYear  = "year"
)

// Period comparison constants
const (
	// ComparisonYoY compares each period with the same period one year earlier.
	ComparisonYoY = "yoy"

	// ComparisonMoM compares each period with the same period one month earlier.
	ComparisonMoM = "mom"

	// ComparisonNone disables period comparison.
	ComparisonNone = "none"
)

// Pace alignment constants
const (
	// PaceAlignSameDate aligns stay dates with the identical calendar date of an earlier year.
	PaceAlignSameDate = "same_date"

	// PaceAlignDayOfYear aligns stay dates with the identical ordinal day of an earlier year.
	PaceAlignDayOfYear = "day_of_year"
)

// Dimension constants used for cross-tabulation and grouping.
const (
	DimensionChannel       = "channel"
	DimensionRatePlan      = "rate_plan"
	DimensionMarketSegment = "market_segment"
	DimensionRoomType      = "room_type"

	// BlankDimension labels records with no value for the grouping dimension.
	BlankDimension = "(none)"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable report format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// EnvPrefix is the prefix of environment variables overriding configuration keys.
	EnvPrefix = "ROOMREV"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address of the analysis API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum size of one analysis request (32 MB)
	DefaultMaxUploadSizeBytes int64 = 32 * 1024 * 1024
)

// Analysis defaults
const (
	// DefaultGranularity is the bucket size used when none is configured.
	DefaultGranularity = GranularityDay

	// DefaultWorkers is the number of row normalization workers.
	DefaultWorkers = 4

	// DefaultTopN limits the number of dimension groups reported.
	DefaultTopN = 8

	// HeaderScanRows is how many leading rows are searched for a header row.
	HeaderScanRows = 15
)

// DefaultRollingWindows are the rolling average window sizes, in periods.
var DefaultRollingWindows = []int{7, 28}

// Spreadsheet serial date constants
const (
	// ExcelEpoch is day zero of spreadsheet serial dates (1900 date system).
	ExcelEpoch = "1899-12-30"

	// MinSerialYear and MaxSerialYear bound the years accepted from serial dates.
	MinSerialYear = 2000
	MaxSerialYear = 2100
)

// Numeric constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyPlaces is the number of decimals kept for amounts in exported tables.
	CurrencyPlaces = 2

	// RatioPlaces is the number of decimals kept for ratios in exported tables.
	RatioPlaces = 6

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// ADRPrecision is the number of decimal places kept when deriving ADR
	// for revenue decomposition.
	ADRPrecision = 12
)
