package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/llmprint/internal/adapters/driven/ai"
	"github.com/custodia-labs/llmprint/internal/adapters/driven/config/file"
	"github.com/custodia-labs/llmprint/internal/adapters/driven/corpus/local"
	"github.com/custodia-labs/llmprint/internal/adapters/driven/corpus/s3sink"
	"github.com/custodia-labs/llmprint/internal/adapters/driven/features/command"
	"github.com/custodia-labs/llmprint/internal/adapters/driven/features/watch"
	"github.com/custodia-labs/llmprint/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/llmprint/internal/adapters/driven/table/csvtable"
	"github.com/custodia-labs/llmprint/internal/adapters/driving/cli"
	"github.com/custodia-labs/llmprint/internal/core/domain"
	"github.com/custodia-labs/llmprint/internal/core/ports/driven"
	"github.com/custodia-labs/llmprint/internal/core/ports/driving"
	"github.com/custodia-labs/llmprint/internal/core/services"
	"github.com/custodia-labs/llmprint/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// homeEnv overrides the ~/.llmprint directory.
const homeEnv = "LLMPRINT_HOME"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Error("Failed to load .env: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	home := os.Getenv(homeEnv)

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return fmt.Errorf("failed to open settings: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	var runStore driven.RunStore
	dataDir := ""
	if home != "" {
		dataDir = filepath.Join(home, "data")
	}
	if store, err := sqlite.NewStore(dataDir); err != nil {
		logger.Warn("Run ledger unavailable: %v", err)
	} else {
		defer store.Close()
		runStore = store
	}

	codec := csvtable.NewCodec()

	cli.SetServices(cli.Services{
		Settings:   settingsService,
		Plans:      services.NewPlanService(file.NewPlanLoader()),
		Generation: generationBuilder(runStore),
		Extraction: services.NewExtractionService(newExtractor(settingsService)),
		Merge:      services.NewMergeService(codec, codec),
		Runs:       services.NewRunService(runStore),
		WaitFor: func(ctx context.Context, path string, timeout time.Duration) error {
			return watch.WaitForFile(ctx, path, watch.Options{Timeout: timeout})
		},
	})

	return cli.Execute(ctx, version)
}

// generationBuilder wires a generation service for the effective settings.
func generationBuilder(runStore driven.RunStore) cli.GenerationBuilder {
	return func(ctx context.Context, settings *domain.Settings) (driving.GenerationService, error) {
		sink, err := newSink(ctx, settings.Corpus)
		if err != nil {
			return nil, err
		}
		writer := services.NewCorpusWriter(sink, csvtable.NewRowWriter)
		executor := services.NewExecutor(settings, services.ExecutorConfig{})
		return services.NewGenerationService(settings, ai.NewFactory(settings), executor, writer, runStore), nil
	}
}

func newSink(ctx context.Context, corpus domain.CorpusSettings) (driven.CorpusSink, error) {
	switch corpus.Sink {
	case domain.SinkS3:
		sink, err := s3sink.NewSink(ctx, s3sink.Config{
			Bucket:    corpus.S3Bucket,
			Region:    corpus.S3Region,
			Prefix:    corpus.S3Prefix,
			Endpoint:  corpus.S3Endpoint,
			AccessKey: corpus.S3AccessKey,
			SecretKey: corpus.S3SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to set up s3 sink: %w", err)
		}
		return sink, nil
	default:
		return local.NewSink(corpus.Dir, corpus.MetadataPath), nil
	}
}

// newExtractor returns nil when no extractor command is configured.
func newExtractor(settingsService *services.SettingsService) driven.FeatureExtractor {
	settings, err := settingsService.Get()
	if err != nil {
		logger.Warn("Feature extractor unavailable: %v", err)
		return nil
	}
	if settings.Features.Command == "" {
		return nil
	}
	extractor, err := command.NewExtractor(command.Config{Command: settings.Features.Command})
	if err != nil {
		logger.Warn("Feature extractor unavailable: %v", err)
		return nil
	}
	return extractor
}
