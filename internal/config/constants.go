package config

import "time"

// Application constants for the fund reconciliation service
const (
	// Application Info
	AppName    = "Fund Reconciliation"
	AppVersion = "1.0.0"

	// Environment
	EnvPrefix         = "RECON"
	DefaultConfigFile = "config.yaml"

	// Report variants
	VariantMinimal  = "minimal"
	VariantExtended = "extended"

	// Unit type classifications known to the variants
	UnitTypeCommercial = "Commercial"
	UnitTypeOffice     = "Office"
	UnitTypeRetail     = "Retail"

	// Input workbook
	DefaultInputSheet = "New Data"

	// Upload limits
	DefaultUploadField    = "file"
	DefaultMaxUploadBytes = 32 << 20 // 32MB

	// Rate Limiting
	DefaultRateLimit = 20 // requests per second
	DefaultBurstSize = 10

	// Timeouts
	DefaultRequestTimeout = 60 * time.Second

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
