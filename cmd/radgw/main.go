package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	serverrun "github.com/rzbill/radgw/internal/cmd/server"
	cfgpkg "github.com/rzbill/radgw/internal/config"
	pebblestore "github.com/rzbill/radgw/internal/storage/pebble"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "radgw",
		Short: "RADIUS to Diameter gateway",
		Long:  "radgw accepts RADIUS requests, translates them to Diameter exchanges, and answers the client. This CLI manages the server and basic operations.",
	}

	// server start
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the gateway (RADIUS UDP front end plus admin gRPC and HTTP)",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, _ := cmd.Flags().GetString("data-dir")
			configPath, _ := cmd.Flags().GetString("config")
			radiusAddr, _ := cmd.Flags().GetString("radius")
			grpcAddr, _ := cmd.Flags().GetString("grpc")
			httpAddr, _ := cmd.Flags().GetString("http")
			fsyncMode, _ := cmd.Flags().GetString("fsync")
			fsyncIntervalMs, _ := cmd.Flags().GetInt("fsync-interval-ms")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")
			workers, _ := cmd.Flags().GetInt("workers")
			queueCap, _ := cmd.Flags().GetInt("queue-capacity")

			mode := pebblestore.FsyncModeAlways
			switch fsyncMode {
			case "never":
				mode = pebblestore.FsyncModeNever
			case "interval":
				mode = pebblestore.FsyncModeInterval
			case "always":
				mode = pebblestore.FsyncModeAlways
			default:
				return fmt.Errorf("invalid --fsync; use always|interval|never")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfgpkg.FromEnv(&cfg)
			if workers > 0 {
				cfg.Workers = workers
			}
			if queueCap > 0 {
				cfg.QueueCapacity = queueCap
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if logLevel != "" {
				_ = os.Setenv("RADGW_LOG_LEVEL", logLevel)
			}
			if logFormat != "" {
				_ = os.Setenv("RADGW_LOG_FORMAT", logFormat)
			}
			if err := serverrun.Run(ctx, serverrun.Options{
				DataDir:       dataDir,
				RADIUSAddr:    radiusAddr,
				GRPCAddr:      grpcAddr,
				HTTPAddr:      httpAddr,
				Fsync:         mode,
				FsyncInterval: time.Duration(fsyncIntervalMs) * time.Millisecond,
				Config:        cfg,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			// brief delay to allow logs flush
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	}
	serverStartCmd.Flags().String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	serverStartCmd.Flags().String("config", "", "Path to a JSON config file declaring clients and gateway settings")
	serverStartCmd.Flags().String("radius", ":1813", "RADIUS UDP listen address")
	serverStartCmd.Flags().String("grpc", ":9091", "gRPC admin listen address")
	serverStartCmd.Flags().String("http", ":8080", "HTTP admin listen address")
	serverStartCmd.Flags().String("fsync", "always", "Fsync mode: always|interval|never")
	serverStartCmd.Flags().Int("fsync-interval-ms", 5, "When --fsync=interval, group-commit window in ms (default 5)")
	serverStartCmd.Flags().String("log-level", os.Getenv("RADGW_LOG_LEVEL"), "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", os.Getenv("RADGW_LOG_FORMAT"), "Log format: text|json (default text)")
	serverStartCmd.Flags().Int("workers", 0, "Worker pool size (overrides config)")
	serverStartCmd.Flags().Int("queue-capacity", 0, "Job queue capacity (overrides config)")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	// journal read
	journalCmd := &cobra.Command{Use: "journal", Short: "Exchange journal operations"}
	journalReadCmd := &cobra.Command{
		Use:   "read",
		Short: "Read recent exchange outcomes from a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetUint64("from")
			limit, _ := cmd.Flags().GetInt("limit")
			resp, err := http.Get(fmt.Sprintf("%s/v1/journal?from=%d&limit=%d", apiURL(), from, limit))
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			var out map[string]any
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				return err
			}
			b, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(b))
			return nil
		},
	}
	journalReadCmd.Flags().Uint64("from", 0, "Read entries with sequence greater than this")
	journalReadCmd.Flags().Int("limit", 50, "Maximum entries to return")
	journalCmd.AddCommand(journalReadCmd)
	rootCmd.AddCommand(journalCmd)

	// stats
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show gateway stats from a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := http.Get(apiURL() + "/v1/stats")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			b, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		},
	}
	rootCmd.AddCommand(statsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func apiURL() string {
	if v := os.Getenv("RADGW_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}
