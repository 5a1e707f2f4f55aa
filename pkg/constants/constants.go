// Package constants provides shared constants for the factory-planner application.
package constants

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default plan file name
	DefaultConfigFile = "plan.yaml"

	// ExamplePlanFile is the example plan file name
	ExamplePlanFile = "plan.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment overrides of plan and server settings
	EnvPrefix = "FACTORY_PLANNER"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for plan files (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultRateLimit is the default sustained request rate per second
	DefaultRateLimit = 20.0

	// DefaultRateBurst is the default request burst size
	DefaultRateBurst = 40

	// DefaultSolveTimeoutSeconds bounds a single HTTP solve
	DefaultSolveTimeoutSeconds = 30

	// DefaultDatabaseDriver stores saved plans in SQLite
	DefaultDatabaseDriver = "sqlite"

	// DefaultDatabaseDSN is the default SQLite database file
	DefaultDatabaseDSN = "factory-planner.db"
)

// Display constants
const (
	// DisplayPrecision is the number of decimal places used for rates and
	// machine counts in human-readable output
	DisplayPrecision = 3

	// KilowattsPerMegawatt converts power for display
	KilowattsPerMegawatt = 1000
)
