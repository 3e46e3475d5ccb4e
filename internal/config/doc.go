// Package config loads the configuration of the fund reconciliation service.
//
// # Configuration Sources
//
// Values are resolved in the following order of precedence:
//
//  1. Environment variables (highest priority)
//  2. YAML configuration file
//  3. Default values (lowest priority)
//
// The file defaults to config.yaml in the working directory and may be moved
// with RECON_CONFIG_FILE. A missing default file is ignored; a missing file
// named explicitly is an error.
//
// # Environment Variables
//
// All environment variables use the RECON_ prefix followed by the section:
//
//	RECON_SERVER_PORT=8080
//	RECON_LOGGING_LEVEL=debug
//	RECON_REPORT_VARIANT=extended
//	RECON_REPORT_ALLOWED_UNIT_TYPES=Commercial,Retail
//	RECON_UPLOAD_MAX_BYTES=10485760
//
// # Report Eligibility
//
// The report variant selects which unit types are reconciled:
//
//	minimal   Commercial
//	extended  Commercial, Office, Retail
//
// An explicit RECON_REPORT_ALLOWED_UNIT_TYPES list replaces the variant.
// Unit types are compared exactly.
//
// # Validation
//
// The loaded configuration is checked with go-playground/validator struct
// tags; Load fails rather than start with an unusable value.
package config
