package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"fundrecon/internal/app"
	"fundrecon/internal/config"
	"fundrecon/pkg/contracts"
)

var cfgPath string

func main() {
	rootCmd := &cobra.Command{
		Use:     "web",
		Short:   "Start the fund reconciliation web server",
		Version: contracts.GetFullVersionString(),
		RunE:    runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the YAML config file (default is $RECON_CONFIG_FILE or ./config.yaml)")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	var (
		cfg *config.Config
		err error
	)
	if cfgPath != "" {
		cfg, err = config.LoadFile(cfgPath, true)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return application.Run(cmd.Context())
}
