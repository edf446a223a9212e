package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/posleasing/leasesync/internal/config"
	"github.com/posleasing/leasesync/internal/di"
	"github.com/posleasing/leasesync/pkg/logger"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "leasesync",
		Short:        "POS lease synchronization and monthly delinquency reporting",
		SilenceUsage: true,
		RunE:         runServe,
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the daily scheduler and the ops server until interrupted",
		RunE:  runServe,
	}

	runOnce := &cobra.Command{
		Use:   "run-once",
		Short: "Run a single cycle now and print its result",
		RunE:  runOnce,
	}

	setParameter := &cobra.Command{
		Use:   "set-parameter",
		Short: "Update a system parameter in the control database",
		RunE:  runSetParameter,
	}
	setParameter.Flags().String("code", "", "Parameter code")
	setParameter.Flags().String("value", "", "Parameter value")
	setParameter.Flags().Bool("encrypt", false, "Store the value encrypted with APP_PHRASE")
	_ = setParameter.MarkFlagRequired("code")
	_ = setParameter.MarkFlagRequired("value")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}

	root.AddCommand(serve, runOnce, setParameter, versionCmd)
	return root
}

// setup loads configuration and builds the logger
func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Error().Err(err).Msg("Failed to load configuration")
		return nil, fallbackLog, err
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.Pretty,
	})
	logger.SetGlobalLogger(log)
	return cfg, log, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	log.Info().Str("version", version).Msg("Starting lease sync service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := di.Wire(ctx, cfg, version, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to wire dependencies")
		return err
	}
	defer container.Close()

	if container.Server != nil {
		go func() {
			if err := container.Server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithLevel(zerolog.FatalLevel).Err(err).Msg("HTTP server failed")
			}
		}()
	}

	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		// A halted scheduler leaves the ops server up so the failure stays visible
		_ = container.Scheduler.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down...")
	cancel()
	<-schedulerDone

	if container.Server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := container.Server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
	}

	log.Info().Msg("Service stopped")
	return nil
}

func runOnce(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := di.Wire(ctx, cfg, version, log)
	if err != nil {
		return fmt.Errorf("failed to wire dependencies: %w", err)
	}
	defer container.Close()

	result, err := container.Orchestrator.RunCycle(ctx)
	if result != nil {
		out, jerr := json.MarshalIndent(result, "", "  ")
		if jerr != nil {
			return fmt.Errorf("failed to encode cycle result: %w", jerr)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	}
	return err
}

func runSetParameter(cmd *cobra.Command, _ []string) error {
	code, _ := cmd.Flags().GetString("code")
	value, _ := cmd.Flags().GetString("value")
	encrypt, _ := cmd.Flags().GetBool("encrypt")

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	// The parameter command never serves HTTP
	cfg.HTTPPort = 0

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.CommandTimeout)
	defer cancel()

	container, err := di.Wire(ctx, cfg, version, log)
	if err != nil {
		return fmt.Errorf("failed to wire dependencies: %w", err)
	}
	defer container.Close()

	if err := container.Retrying.UpdateSystemParameter(ctx, code, value, encrypt, cfg.App.SystemID, cfg.App.Phrase); err != nil {
		return fmt.Errorf("failed to update parameter %s: %w", code, err)
	}

	log.Info().Str("code", code).Bool("encrypted", encrypt).Msg("System parameter updated")
	return nil
}
