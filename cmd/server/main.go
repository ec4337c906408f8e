package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/andy6609/linechat/internal/chat"
)

var (
	addr         string
	metricsAddr  string
	outboxSize   int
	writeTimeout time.Duration
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:          "chat-server",
	Short:        "Line-based TCP chat relay",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		var level slog.Level
		if err := level.UnmarshalText([]byte(logLevel)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		}))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return run(ctx, logger)
	},
}

func init() {
	def := chat.DefaultConfig()
	rootCmd.Flags().StringVar(&addr, "addr", def.Addr, "chat listen address")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "metrics listen address, empty to disable")
	rootCmd.Flags().IntVar(&outboxSize, "outbox", def.OutboxSize, "lines buffered per client before dropping")
	rootCmd.Flags().DurationVar(&writeTimeout, "write-timeout", def.WriteTimeout, "timeout for a single write to a client")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

func run(ctx context.Context, logger *slog.Logger) error {
	srv := chat.NewServer(chat.Config{
		Addr:         addr,
		OutboxSize:   outboxSize,
		WriteTimeout: writeTimeout,
	}, logger)
	if err := srv.Start(); err != nil {
		logger.Error("failed to start server", "error", err)
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		srv.Stop()
		return nil
	})

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metrics := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			logger.Info("metrics endpoint started", "addr", metricsAddr)
			if err := metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metrics.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
