// Command landrate serves property-rate predictions over HTTP. It loads the
// transaction corpus, restores the trained model bundle when one exists
// (running in statistical fallback mode when it does not) and serves until
// interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/keystone-data/landrate/internal/api"
	"github.com/keystone-data/landrate/internal/dataset"
	"github.com/keystone-data/landrate/internal/features"
	"github.com/keystone-data/landrate/internal/model"
	"github.com/keystone-data/landrate/internal/predictor"
	"github.com/keystone-data/landrate/internal/regressor"
	"github.com/keystone-data/landrate/internal/sequence"
	"github.com/keystone-data/landrate/internal/stats"
)

var (
	listen    = flag.String("listen", ":8080", "Listen address")
	dataPath  = flag.String("data", "data/transactions.json", "Path to the transaction corpus")
	modelPath = flag.String("model", "landrate_model.db", "Path to the model store")
	envFile   = flag.String("env", "", "Optional .env file with defaults")
)

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	flag.Parse()

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.Fatalf("failed to load env file %s: %v", *envFile, err)
		}
	}

	// Flags win; env vars fill in anything left at its default.
	if flag.Lookup("data").Value.String() == flag.Lookup("data").DefValue {
		*dataPath = envDefault("LANDRATE_DATA", *dataPath)
	}
	if flag.Lookup("model").Value.String() == flag.Lookup("model").DefValue {
		*modelPath = envDefault("LANDRATE_MODEL", *modelPath)
	}

	records, err := dataset.Load(*dataPath)
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}
	index := stats.NewIndex(records, stats.DefaultConfig())

	var reg *regressor.Regressor
	var enc *features.Encoder
	seqLen := sequence.DefaultLength

	bundle, err := model.LoadFromPath(*modelPath)
	switch {
	case err == nil:
		reg, enc, err = bundle.Materialize()
		if err != nil {
			log.Fatalf("model store %s is corrupt: %v", *modelPath, err)
		}
		seqLen = bundle.SequenceLength
		log.Printf("loaded model bundle trained at %s", bundle.TrainedAt.Format(time.RFC3339))
	case errors.Is(err, model.ErrStoreNotFound):
		log.Printf("no trained model at %s; serving statistical fallback only", *modelPath)
	case errors.Is(err, model.ErrStoreCorrupt):
		log.Fatalf("model store %s is corrupt: %v", *modelPath, err)
	default:
		log.Fatalf("failed to load model store %s: %v", *modelPath, err)
	}

	svc := predictor.New(index, reg, enc, seqLen)
	server := api.NewServer(svc)

	httpServer := &http.Server{
		Addr:    *listen,
		Handler: api.LoggingMiddleware(server.ServeMux()),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("listening on %s (%d records, model loaded: %v)", *listen, len(records), svc.ModelLoaded())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
