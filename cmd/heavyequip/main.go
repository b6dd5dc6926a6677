package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"heavyequip/internal/cache"
	"heavyequip/internal/config"
	"heavyequip/internal/http/handlers"
	"heavyequip/internal/http/server"
	applog "heavyequip/internal/log"
	"heavyequip/internal/repos"
	"heavyequip/internal/services"
	"heavyequip/internal/storage"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	cfg        config.Config
	logFile    *os.File
	statPeriod string
)

var rootCmd = &cobra.Command{
	Use:           "heavyequip",
	Short:         "Heavy equipment marketplace server",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		applog.SetLevel(cfg.Log.Level)
		// Optional file logging
		if cfg.Log.File != "" {
			f, err := os.OpenFile(cfg.Log.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				l := applog.Logger()
				l.Warn().Err(err).Str("file", cfg.Log.File).Msg("could not open log file")
			} else {
				logFile = f
				applog.SetOutput(io.MultiWriter(os.Stdout, f))
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			_ = logFile.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the schema and seed demo data, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := repos.OpenDB(cfg.DB.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		l := applog.Logger()
		l.Info().Str("action", "migrate").Str("dsn", cfg.DB.DSN).Msg("schema ready")
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the dashboard growth report as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := repos.OpenDB(cfg.DB.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		svc := services.NewStatsService(repos.NewStatsRepo(db), repos.NewInquiryRepo(db))
		d, err := svc.Dashboard(cmd.Context(), statPeriod)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	// no config needed
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "heavyequip", version)
	},
}

func init() {
	statsCmd.Flags().StringVar(&statPeriod, "period", "30d", "Window: 7d, 30d, 90d or 12m")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

func newCache() cache.Cache {
	if cfg.Cache.RedisURL == "" {
		return cache.NewMemory(1024)
	}
	r, err := cache.NewRedisFromURL(cfg.Cache.RedisURL)
	if err != nil {
		l := applog.Logger()
		l.Warn().Err(err).Str("action", "cache.redis").Msg("bad REDIS_URL, using in-memory cache")
		return cache.NewMemory(1024)
	}
	return r
}

func newStorage() (storage.Store, error) {
	m := cfg.Media
	if m.S3Bucket == "" {
		return storage.NewLocal(m.Dir)
	}
	return storage.NewS3(storage.S3Config{
		Bucket:    m.S3Bucket,
		Region:    m.S3Region,
		Endpoint:  m.S3Endpoint,
		PublicURL: m.S3PublicURL,
		AccessKey: m.S3AccessKey,
		SecretKey: m.S3SecretKey,
	})
}

func serve(ctx context.Context) error {
	l := applog.Logger()
	l.Info().Str("action", "startup").Str("version", version).Msg(cfg.Summary())

	db, err := repos.OpenDB(cfg.DB.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	media, err := newStorage()
	if err != nil {
		return err
	}
	c := newCache()
	if r, ok := c.(*cache.Redis); ok {
		defer r.Close()
	}

	app := server.New(cfg, handlers.NewDeps(db, cfg, c, media))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		l.Info().Str("action", "shutdown").Msg("draining connections")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	l.Info().Str("action", "listen").Str("addr", ":"+cfg.Server.Port).Send()
	return app.Listen(":" + cfg.Server.Port)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		l := applog.Logger()
		l.Error().Err(err).Str("action", "fatal").Send()
		os.Exit(1)
	}
}
