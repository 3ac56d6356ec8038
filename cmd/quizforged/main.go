package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/quizforge/quizforge/internal/analyzer"
	"github.com/quizforge/quizforge/internal/api"
	"github.com/quizforge/quizforge/internal/attempt"
	"github.com/quizforge/quizforge/internal/config"
	"github.com/quizforge/quizforge/internal/domain"
	"github.com/quizforge/quizforge/internal/evaluator"
	"github.com/quizforge/quizforge/internal/generator"
	"github.com/quizforge/quizforge/internal/job"
	"github.com/quizforge/quizforge/internal/llm"
	"github.com/quizforge/quizforge/internal/queue"
	"github.com/quizforge/quizforge/internal/sandbox"
	"github.com/quizforge/quizforge/internal/storage"
	"github.com/quizforge/quizforge/internal/storage/memory"
	"github.com/quizforge/quizforge/internal/storage/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("daemon error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Optional .env for local development; a missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))
	slog.SetDefault(logger)

	store, cleanup, err := openStore(cfg)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	provider := buildProvider(cfg)
	synth := generator.New(generator.Config{
		Provider: provider,
		Logger:   logger,
	})

	codeSandbox := buildSandbox(cfg)
	eval := evaluator.New(codeSandbox, logger)
	tracker := attempt.NewTracker(store, eval, logger)

	contentAnalyzer := analyzer.NewAnalyzer()
	jobs := job.NewService(job.Config{
		Store:       store,
		Synthesizer: synth,
		Analyzer:    contentAnalyzer,
		Logger:      logger,
		Workers:     cfg.Job.Workers,
	})

	// Optional AMQP worker: consume batch jobs published by other
	// processes alongside the in-process pool.
	var (
		queueConn     *queue.Connection
		queueConsumer *queue.Consumer
	)
	if cfg.Queue.URL != "" {
		queueConn, err = queue.NewConnection(cfg.Queue.URL)
		if err != nil {
			return fmt.Errorf("connect queue: %w", err)
		}
		defer queueConn.Close()

		queueConsumer = queue.NewConsumer(queueConn, synthesisHandler(jobs), queue.ConsumerConfig{
			Workers: cfg.Job.Workers,
		})
		if err := queueConsumer.Start(context.Background()); err != nil {
			return fmt.Errorf("start queue consumer: %w", err)
		}
	}

	server := api.NewServer(api.ServerConfig{
		Bind:     cfg.Server.Bind,
		Port:     cfg.Server.Port,
		Store:    store,
		Analyzer: contentAnalyzer,
		Jobs:     jobs,
		Attempts: tracker,
	})

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		slog.Info("received signal, shutting down", "signal", sig.String())

		if queueConsumer != nil {
			queueConsumer.Stop()
		}
		jobs.Wait()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		close(done)
	}()

	if err := server.Start(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	slog.Info("daemon stopped")
	return nil
}

// openStore creates the configured persistence backend. The returned
// cleanup closes the database handle when one was opened.
func openStore(cfg *config.Config) (storage.Store, func(), error) {
	switch cfg.Storage.Driver {
	case "memory":
		slog.Info("using in-memory storage")
		return memory.NewStore(), nil, nil
	default:
		db, err := sqlite.Open(cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		slog.Info("using sqlite storage", "path", cfg.Storage.Path)
		return sqlite.NewStore(db), func() { db.Close() }, nil
	}
}

// buildProvider assembles the completion backend from configuration.
// Returns nil when no provider is enabled; synthesis then runs on
// templates only.
func buildProvider(cfg *config.Config) llm.Provider {
	registry := llm.NewRegistry()

	if pc, ok := cfg.LLM.Providers["ollama"]; ok && pc.Enabled {
		registry.Register("ollama", llm.NewOllamaProvider(llm.OllamaConfig{
			BaseURL: pc.URL,
			Model:   pc.Model,
		}))
	}
	if pc, ok := cfg.LLM.Providers["openai"]; ok && pc.Enabled && pc.APIKey != "" {
		registry.Register("openai", llm.NewOpenAIProvider(llm.OpenAIConfig{
			APIKey: pc.APIKey,
			Model:  pc.Model,
		}))
	}

	if cfg.LLM.DefaultProvider != "" && cfg.LLM.DefaultProvider != "auto" {
		if err := registry.SetDefault(cfg.LLM.DefaultProvider); err != nil {
			slog.Warn("configured provider not registered, using auto selection",
				"provider", cfg.LLM.DefaultProvider)
		}
	}

	provider, err := registry.Default()
	if err != nil {
		slog.Warn("no generation provider available, using template synthesis only")
		return nil
	}

	slog.Info("generation provider selected", "provider", registry.DefaultName())
	return llm.NewResilientProvider(provider, llm.DefaultResilientConfig())
}

// buildSandbox assembles the code execution backend. A Docker backend
// that cannot reach the daemon falls back to the subprocess sandbox so
// coding challenges stay usable.
func buildSandbox(cfg *config.Config) sandbox.CodeSandbox {
	switch cfg.Sandbox.Backend {
	case "off":
		slog.Info("code sandbox disabled, coding challenges will not be evaluated")
		return nil
	case "docker":
		docker, err := sandbox.NewDockerSandbox(sandbox.DockerConfig{
			Image:    cfg.Sandbox.Docker.Image,
			MemoryMB: cfg.Sandbox.Docker.MemoryMB,
			CPULimit: cfg.Sandbox.Docker.CPULimit,
			Timeout:  time.Duration(cfg.Sandbox.Docker.TimeoutSeconds) * time.Second,
		})
		if err != nil {
			slog.Warn("docker sandbox unavailable, falling back to subprocess", "error", err)
			return sandbox.NewSubprocessSandbox(sandbox.SubprocessConfig{PythonPath: cfg.Sandbox.Python})
		}
		slog.Info("using docker sandbox", "image", cfg.Sandbox.Docker.Image)
		return docker
	default:
		slog.Info("using subprocess sandbox", "python", cfg.Sandbox.Python)
		return sandbox.NewSubprocessSandbox(sandbox.SubprocessConfig{PythonPath: cfg.Sandbox.Python})
	}
}

// synthesisHandler adapts the batch service to the queue's job shape.
func synthesisHandler(jobs *job.Service) queue.JobHandler {
	return func(ctx context.Context, qj *queue.SynthesisJob) (*queue.SynthesisResult, error) {
		selections := make([]job.Selection, 0, len(qj.Selections))
		for _, sel := range qj.Selections {
			selections = append(selections, job.Selection{
				Topic:      sel.Topic,
				Difficulty: sel.Difficulty,
				Types:      sel.Types,
			})
		}

		progress, err := jobs.RunBatch(ctx, qj.DocumentID, selections)
		if err != nil {
			return nil, err
		}

		result := &queue.SynthesisResult{
			Status:       string(progress.Status),
			ChallengeIDs: progress.ChallengeIDs,
		}
		if progress.Status == domain.JobFailed {
			result.Error = progress.Message
		}
		return result, nil
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
