package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"docconnect/backend/internal/config"
	"docconnect/backend/internal/service/appointments"
	"docconnect/backend/internal/service/directory"
	"docconnect/backend/internal/store/postgres"
	"docconnect/backend/internal/timezone"
	grpcTransport "docconnect/backend/internal/transport/grpc"
)

const (
	serviceName     = "docconnect-server"
	requestIDHeader = "x-request-id"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           serviceName,
		Short:         "DocConnect appointment scheduling server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the gRPC appointments server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), func(ctx context.Context, db *bun.DB) error {
				group, err := postgres.MigrateUp(ctx, db)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				if group.IsZero() {
					fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied group %d: %s\n", group.ID, group.Migrations)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration group",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), func(ctx context.Context, db *bun.DB) error {
				group, err := postgres.MigrateDown(ctx, db)
				if err != nil {
					return fmt.Errorf("rollback failed: %w", err)
				}
				if group.IsZero() {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to roll back.")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rolled back group %d: %s\n", group.ID, group.Migrations)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), func(ctx context.Context, db *bun.DB) error {
				ms, err := postgres.MigrationStatus(ctx, db)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%-16s %-32s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
				for _, m := range ms {
					state, appliedAt := "pending", ""
					if m.IsApplied() {
						state = "applied"
						appliedAt = m.MigratedAt.Format("2006-01-02 15:04:05")
					}
					fmt.Fprintf(out, "%-16s %-32s %-10s %s\n", m.Name, m.Comment, state, appliedAt)
				}
				return nil
			})
		},
	})

	return cmd
}

func withDatabase(ctx context.Context, fn func(ctx context.Context, db *bun.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel)

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(ctx, cfg.DatabaseURL, poolConfig(cfg))
	if err != nil {
		return err
	}
	defer func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}()

	return fn(ctx, db)
}

func runServer() error {
	log := newLogger("info")

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		return err
	}
	log = newLogger(cfg.LogLevel)

	log.Info("starting", slog.String("grpc_addr", cfg.GRPCAddr()), slog.String("log_level", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(ctx, cfg.DatabaseURL, poolConfig(cfg))
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		return err
	}
	defer func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}()

	zones, closeZones, err := newZoneResolver(ctx, cfg, log)
	if err != nil {
		log.Error("time zone resolver init failed", slog.Any("err", err))
		return err
	}
	defer closeZones()

	directoryRepo := postgres.NewDirectoryRepo(db)
	svc := appointments.NewService(
		postgres.NewAppointmentRepo(db),
		directoryRepo,
		zones,
		appointments.WithSlotRules(slotRules(cfg.Scheduling)),
	)
	search := directory.NewService(directoryRepo, directory.WithImageBaseURL(cfg.ImageBaseURL))

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			requestLogInterceptor(log),
			defaultRequestTimeoutInterceptor(cfg.GRPCRequestTimeout),
		),
	)
	grpcTransport.RegisterAppointmentsServiceServer(grpcServer, grpcTransport.NewAppointmentsServer(svc, log))
	grpcTransport.RegisterDirectoryServiceServer(grpcServer, grpcTransport.NewDirectoryServer(search, log))

	lis, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		log.Error("grpc listen failed", slog.Any("err", err), slog.String("grpc_addr", cfg.GRPCAddr()))
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- grpcServer.Serve(lis)
	}()

	log.Info("grpc server started", slog.String("grpc_addr", cfg.GRPCAddr()))

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdown(log, grpcServer, cfg.ShutdownTimeout)
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Error("grpc server stopped with error", slog.Any("err", err))
			return err
		}
	}
	return nil
}

// newZoneResolver returns the polygon resolver, wrapped in a Redis-backed
// cache when one is configured. An unreachable Redis leaves the cache off.
func newZoneResolver(ctx context.Context, cfg config.Config, log *slog.Logger) (appointments.ZoneResolver, func(), error) {
	base, err := timezone.NewResolver()
	if err != nil {
		return nil, nil, err
	}
	noop := func() {}
	if cfg.RedisURL == "" {
		return base, noop, nil
	}

	client, err := timezone.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn("redis unavailable; zone cache disabled", slog.Any("err", err))
		return base, noop, nil
	}
	log.Info("zone cache enabled", slog.Duration("ttl", cfg.ZoneCacheTTL))

	cached := timezone.NewCachingResolver(base, timezone.NewRedisCache(client), cfg.ZoneCacheTTL, log)
	return cached, func() {
		if err := client.Close(); err != nil {
			log.Warn("redis close failed", slog.Any("err", err))
		}
	}, nil
}

func slotRules(s config.Scheduling) appointments.SlotRules {
	return appointments.SlotRules{
		FirstHour:     s.FirstHour,
		LastHour:      s.LastHour,
		LeadDays:      s.LeadDays,
		HorizonMonths: s.HorizonMonths,
	}
}

func poolConfig(cfg config.Config) postgres.PoolConfig {
	return postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	}
}

func newLogger(level string) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(level)})).With(
		slog.String("service", serviceName),
	)
	slog.SetDefault(log)
	return log
}

func defaultRequestTimeoutInterceptor(timeout time.Duration) grpc.UnaryServerInterceptor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := ctx.Deadline(); ok {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		return handler(ctx, req)
	}
}

// requestLogInterceptor echoes or assigns a request id and logs each call's outcome.
func requestLogInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		id := requestID(ctx)
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDHeader, id))

		resp, err := handler(ctx, req)

		log.Debug(
			"rpc finished",
			slog.String("method", info.FullMethod),
			slog.String("request_id", id),
			slog.String("code", status.Code(err).String()),
			slog.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}

func requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(requestIDHeader); len(values) > 0 {
			if id := strings.TrimSpace(values[0]); id != "" {
				return id
			}
		}
	}
	return uuid.NewString()
}

func shutdown(log *slog.Logger, s *grpc.Server, timeout time.Duration) {
	log.Info("shutting down grpc server", slog.Duration("timeout", timeout))

	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		log.Info("grpc server stopped")
	case <-timer.C:
		log.Warn("grpc graceful shutdown timed out; forcing stop")
		s.Stop()
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
