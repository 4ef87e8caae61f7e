/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tomoncle/storefront"
	"github.com/tomoncle/storefront/api"
	"github.com/tomoncle/storefront/cache"
	"github.com/tomoncle/storefront/config"
	"github.com/tomoncle/storefront/database"
	_ "github.com/tomoncle/storefront/model"
	"github.com/tomoncle/storefront/utils"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront data service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c",
		utils.EnvDefaultString("STOREFRONT_CONFIG", ""), "path to the YAML configuration file")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		if err := setupLogging(cfg.Log); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	root.AddCommand(
		newServeCommand(load),
		newMigrateCommand(load),
		newSeedCommand(load),
	)
	return root
}

type loader func() (*config.Config, error)

func newServeCommand(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func newMigrateCommand(load loader) *cobra.Command {
	var rollback string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, err := database.InitDatabaseWithOptions(ctx, &cfg.Database, nil)
			if err != nil {
				return err
			}
			defer database.CloseDB()

			mm := database.NewMigrationManager(db, database.GetLogger(), cfg.Database.MigrationOptions())
			if rollback != "" {
				return mm.RollbackMigration(ctx, rollback)
			}
			if err := mm.RunMigrations(ctx); err != nil {
				return err
			}
			applied, err := mm.GetAppliedMigrations(ctx)
			if err != nil {
				return err
			}
			for _, m := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s %s\n", m.Version, m.Name, m.AppliedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rollback, "rollback", "", "roll back the given migration version")
	return cmd
}

func newSeedCommand(load loader) *cobra.Command {
	var env string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Run the SQL seed scripts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if _, err := database.InitDB(ctx, &cfg.Database); err != nil {
				return err
			}
			defer database.CloseDB()
			return database.InitData(ctx, env)
		},
	}
	cmd.Flags().StringVar(&env, "env", "", "seed environment (defaults to database.init.environment)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := database.GetLogger()

	if _, err := database.InitDB(ctx, &cfg.Database); err != nil {
		return err
	}
	defer database.CloseDB()

	opts := []storefront.StoreOption{storefront.WithStoreLogger(logger)}
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisCache(ctx, &cfg.Redis)
		if err != nil {
			return err
		}
		defer rc.Close()
		opts = append(opts, storefront.WithEntityCache(rc))
	}
	store := storefront.NewStore(nil, opts...)

	handler := api.New(store,
		api.WithAPIURL(cfg.Server.APIURL),
		api.WithRequestLogger(utils.NewLogger("HTTP")),
	).Handler()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func setupLogging(cfg config.LogConfig) error {
	utils.ConfigureLogLevel(cfg.Level)
	if cfg.Format == "json" {
		utils.ConfigureConsoleLogFormat("json")
	}

	if cfg.Backend != "zap" {
		database.InitLogger(database.NewDefaultLogger("DATABASE"))
		return nil
	}

	var (
		zl  *zap.Logger
		err error
	)
	if cfg.Format == "json" {
		zl, err = zap.NewProduction()
	} else {
		zl, err = zap.NewDevelopment()
	}
	if err != nil {
		return fmt.Errorf("failed to build zap logger: %w", err)
	}
	l := database.NewZapLogger(zl.Named("storefront"))
	l.SetLevel(database.ParseLogLevel(cfg.Level))
	database.InitLogger(l)
	return nil
}
