package admin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/stackmill/docent/internal/api/handlers"
	"github.com/stackmill/docent/internal/chunk"
	"github.com/stackmill/docent/internal/config"
	"github.com/stackmill/docent/internal/database"
	"github.com/stackmill/docent/internal/eval"
	"github.com/stackmill/docent/internal/ingest"
	"github.com/stackmill/docent/internal/interactionlog"
	"github.com/stackmill/docent/internal/llm"
	"github.com/stackmill/docent/internal/schema"
	"github.com/stackmill/docent/internal/server"
	"github.com/stackmill/docent/internal/service"
	"github.com/stackmill/docent/internal/tabular"
	"github.com/stackmill/docent/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the docent API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SentryDSN != "" {
		environment := cfg.SentryEnv
		if environment == "" {
			environment = "development"
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      environment,
			TracesSampleRate: cfg.SentrySampleRate,
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

	if !cfg.HasOpenAI() {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}

	var pool *pgxpool.Pool
	if cfg.HasDatabase() {
		pool, err = database.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()
		log.Println("connected to database")
	}

	chatClient := llm.NewClientWithConfig(llm.Config{
		APIKey:            cfg.OpenAIAPIKey,
		Model:             cfg.ChatModel,
		RequestsPerMinute: cfg.LLMRateLimit,
	})
	judgeClient := llm.NewClientWithConfig(llm.Config{
		APIKey:            cfg.OpenAIAPIKey,
		Model:             cfg.JudgeModel,
		RequestsPerMinute: cfg.LLMRateLimit,
	})

	loader, err := tabular.NewLoader()
	if err != nil {
		return fmt.Errorf("failed to open table store: %w", err)
	}
	defer loader.Close()

	logger, err := interactionlog.NewLogger(cfg.LogsDir)
	if err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}
	reader := interactionlog.NewReader(cfg.LogsDir)

	downloader := ingest.NewDownloader(cfg.ArchiveBaseURL)
	indexer := schema.NewIndexer(loader)

	ingestSvc := service.NewIngestService(downloader, chunk.Config{
		Size: cfg.ChunkSize,
		Step: cfg.ChunkStep,
	})
	assistantSvc := service.NewAssistantService(chatClient, ingestSvc, logger)
	dataSvc := service.NewDataService(loader, indexer, chatClient, logger, pool)
	evalSvc := service.NewEvalService(
		reader,
		eval.NewJudge(judgeClient),
		eval.NewQuestionGenerator(chatClient),
		assistantSvc,
		ingestSvc,
	)

	routerCfg := server.RouterConfig{
		APIKey:        cfg.APIKey,
		IngestHandler: handlers.NewIngestHandler(ingestSvc),
		ChatHandler:   handlers.NewChatHandler(assistantSvc, dataSvc),
		TableHandler:  handlers.NewTableHandler(dataSvc),
		LogHandler:    handlers.NewLogHandler(reader),
		EvalHandler:   handlers.NewEvalHandler(evalSvc),
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

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}
