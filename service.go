package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/exp/slog"
	"google.golang.org/api/option"

	"github.com/highfieldroadinc-art/fluency-admin/fetch"
	"github.com/highfieldroadinc-art/fluency-admin/handler"
	"github.com/highfieldroadinc-art/fluency-admin/media"
	"github.com/highfieldroadinc-art/fluency-admin/pipeline"
	"github.com/highfieldroadinc-art/fluency-admin/storage"
	"github.com/highfieldroadinc-art/fluency-admin/synth"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr))

	godotenv.Load()

	postgres, err := storage.NewPostgres(storage.PostgresInfo{
		Host:     getParam("POSTGRES_HOST", "localhost"),
		Port:     getParam("POSTGRES_PORT", "5432"),
		User:     getParam("POSTGRES_USER", "fluency"),
		Password: mustParam("POSTGRES_PASSWORD", logger),
		Database: getParam("POSTGRES_DB", "fluency"),
	})
	if err != nil {
		logger.Error("unable to connect to postgres", err)
		os.Exit(1)
	}
	contentRepo := storage.NewPostgresContentRepository(postgres.DB())
	runRepo := storage.NewPostgresRunRepository(postgres.DB())

	var storageOpts []option.ClientOption
	if credsFile := getParam("GCS_CREDENTIALS_FILE", ""); credsFile != "" {
		storageOpts = append(storageOpts, option.WithCredentialsFile(credsFile))
	}
	objectStore, err := storage.NewGCSStore(ctx, mustParam("VIDEO_BUCKET", logger), storageOpts...)
	if err != nil {
		logger.Error("unable to create object store", err)
		os.Exit(1)
	}

	openAIClient := openai.NewClient(mustParam("OPENAI_API_KEY", logger))

	acquirer := fetch.NewAcquirer(getParam("WORK_DIR", os.TempDir()), logger)
	extractor := media.NewExtractor()
	transcriber := synth.NewTranscriber(openAIClient)
	synthesizer := synth.NewSynthesizer(openAIClient)

	runner := pipeline.NewRunner(acquirer, extractor, transcriber, synthesizer, objectStore, contentRepo, runRepo, logger)
	go runner.Run()
	logger.Info("pipeline runner started")

	port, err := strconv.Atoi(getParam("API_PORT", "8080"))
	if err != nil {
		logger.Error("invalid port", err)
		os.Exit(1)
	}
	go http.ListenAndServe(fmt.Sprintf(":%d", port), handler.NewServer(runner, contentRepo, runRepo, logger))
	logger.Info("http server started")

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt)
	<-done

	logger.Info("service stopped")
}

func getParam(param, def string) string {
	if val, ok := os.LookupEnv(param); ok {
		return val
	}
	return def
}

// mustParam is for credentials and endpoints the service cannot run without.
// Absence is fatal at startup, not at run time.
func mustParam(param string, logger *slog.Logger) string {
	val, ok := os.LookupEnv(param)
	if !ok || val == "" {
		logger.Error("missing required parameter", fmt.Errorf("%s is not set", param))
		os.Exit(1)
	}
	return val
}
