// Package app wires the fund reconciliation web service: configuration,
// logging, OpenTelemetry, the reconciliation and health services, the chi
// router and the HTTP server.
//
// # Initialization Flow
//
//  1. Load configuration (defaults, config.yaml, RECON_* environment)
//  2. Initialize the slog logger and OpenTelemetry providers
//  3. Create business metrics and the services
//  4. Build the router and middleware chain
//  5. Create the HTTP server
//
// # Middleware Order
//
//	RequestID → RealIP → OTel → StructuredLogger → Recoverer →
//	SecurityHeaders → CORS → RateLimit → Timeout → BodyLimit (upload only)
//
// # Usage
//
//	application, err := app.NewApplication(nil)
//	if err != nil {
//		return err
//	}
//	return application.Run(ctx)
//
// # Graceful Shutdown
//
// Run stops on SIGINT or SIGTERM. In-flight uploads get
// Server.ShutdownTimeout to finish before the listener is torn down and the
// telemetry providers are flushed. Initialization errors are returned to the
// caller; the package never calls os.Exit.
package app
