package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/hivehr/hivehr/internal/api/handlers"
	"github.com/hivehr/hivehr/internal/config"
	"github.com/hivehr/hivehr/internal/jobs"
	"github.com/hivehr/hivehr/internal/llm"
	"github.com/hivehr/hivehr/internal/repository"
	"github.com/hivehr/hivehr/internal/server"
	"github.com/hivehr/hivehr/internal/service"
	"github.com/hivehr/hivehr/internal/storage"
	"github.com/hivehr/hivehr/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the hivehr API server and the ingest worker",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().Bool("no-worker", false, "Do not start the background ingest worker")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SentryDSN != "" {
		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if cfg.Environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	orgRepo := repository.NewOrgRepository(pool)
	apiKeyRepo := repository.NewAPIKeyRepository(pool)
	employeeRepo := repository.NewEmployeeRepository(pool)
	policyRepo := repository.NewPolicyRepository(pool)
	chunkRepo := repository.NewPolicyChunkRepository(pool)
	ingestJobRepo := repository.NewIngestJobRepository(pool)
	leaveBalanceRepo := repository.NewLeaveBalanceRepository(pool)
	leaveRequestRepo := repository.NewLeaveRequestRepository(pool)
	conversationRepo := repository.NewConversationRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	var renderer service.DocumentRenderer
	if cfg.HasS3() {
		s3Config := storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		}
		s3Client, err := storage.NewS3Client(ctx, s3Config)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)

		renderer = service.NewDocumentGenerator(s3Client, func(ctx context.Context, orgID string) string {
			org, err := orgRepo.GetByID(ctx, orgID)
			if err != nil {
				return ""
			}
			return org.Name
		})
	} else {
		log.Println("S3 not configured, document PDF rendering disabled")
	}

	uuidGen := &service.DefaultUUIDGenerator{}

	conversationSvc := service.NewConversationService(conversationRepo, messageRepo)
	authSvc := service.NewAuthService(orgRepo, apiKeyRepo, employeeRepo, uuidGen)
	policySvc := service.NewPolicyService(policyRepo, ingestJobRepo, uuidGen)

	registry := service.NewRegistry(service.RegistryDeps{
		Defaults: llm.Config{
			ChatProvider:      llm.ChatProvider(cfg.ChatProvider),
			ChatModel:         cfg.ChatModel,
			EmbeddingProvider: llm.EmbeddingProvider(cfg.EmbeddingProvider),
			EmbeddingModel:    cfg.EmbeddingModel,
			APIKey:            cfg.OpenAIAPIKey,
			BaseURL:           cfg.LLMBaseURL,
		},
		ChunkConfig: service.ChunkConfig{
			ChunkSize: cfg.ChunkSize,
			Overlap:   cfg.ChunkOverlap,
		},
		Policies:       policyRepo,
		ActivePolicies: policyRepo,
		Searcher:       chunkRepo,
		Tx:             txRunner,
		Balances:       leaveBalanceRepo,
		LeaveRequests:  leaveRequestRepo,
		Employees:      employeeRepo,
		Documents:      documentRepo,
		Messages:       conversationSvc,
		Renderer:       renderer,
	})

	var ingestWorker *jobs.Worker
	noWorker, _ := cmd.Flags().GetBool("no-worker")
	if !noWorker {
		dispatcher := service.NewIngestDispatcher(orgRepo, registry)
		processor := jobs.NewIngestWorker(ingestJobRepo, dispatcher)
		ingestWorker = jobs.NewWorker(processor, cfg.WorkerPollInterval)
		go ingestWorker.Start(ctx)
		log.Println("ingest worker started")
	}

	routerCfg := server.RouterConfig{
		AuthValidator:       authSvc,
		PolicyHandler:       handlers.NewPolicyHandler(policySvc),
		SearchHandler:       handlers.NewSearchHandler(orgRepo, registry),
		ChatHandler:         handlers.NewChatHandler(orgRepo, registry, conversationSvc),
		ConversationHandler: handlers.NewConversationHandler(conversationSvc),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if ingestWorker != nil {
		ingestWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", upErr)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if upErr == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
