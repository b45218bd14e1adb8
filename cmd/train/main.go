// Command train fits the sequence regressor on the transaction corpus and
// saves the resulting bundle (weights, category encoders and scaler as one
// unit) to the model store. It can also write a training-curve plot for
// inspection.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/keystone-data/landrate/internal/dataset"
	"github.com/keystone-data/landrate/internal/features"
	"github.com/keystone-data/landrate/internal/model"
	"github.com/keystone-data/landrate/internal/regressor"
	"github.com/keystone-data/landrate/internal/sequence"
)

var (
	dataPath  = flag.String("data", "data/transactions.json", "Path to the transaction corpus")
	modelPath = flag.String("model", "landrate_model.db", "Path to the model store")
	seqLen    = flag.Int("seq", sequence.DefaultLength, "Sequence window length")
	epochs    = flag.Int("epochs", 100, "Maximum training epochs")
	patience  = flag.Int("patience", 10, "Early-stopping patience in epochs")
	plotPath  = flag.String("plot", "", "Optional PNG path for the training curve")
)

func main() {
	flag.Parse()

	records, err := dataset.Load(*dataPath)
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}

	var enc features.Encoder
	matrix, targets, err := enc.Fit(records)
	if err != nil {
		log.Fatalf("failed to encode features: %v", err)
	}

	seqs, seqTargets, err := sequence.Build(matrix, targets, *seqLen)
	if err != nil {
		// Includes the insufficient-data case: training must abort rather
		// than proceed with zero sequences.
		log.Fatalf("failed to build training sequences: %v", err)
	}
	log.Printf("built %d sequences of length %d from %d records", len(seqs), *seqLen, len(records))

	cfg := regressor.DefaultConfig()
	cfg.MaxEpochs = *epochs
	cfg.Patience = *patience

	var reg regressor.Regressor
	hist, err := reg.Train(seqs, seqTargets, cfg)
	if err != nil {
		log.Fatalf("training failed: %v", err)
	}
	log.Printf("trained %d epochs (best %d); test MSE %.2f, MAE %.2f",
		len(hist.TrainLoss), hist.BestEpoch, hist.TestMSE, hist.TestMAE)

	snap, err := reg.Snapshot()
	if err != nil {
		log.Fatalf("failed to snapshot model: %v", err)
	}

	store, err := model.Open(*modelPath)
	if err != nil {
		log.Fatalf("failed to open model store: %v", err)
	}
	defer store.Close()

	bundle := &model.Bundle{
		SequenceLength: *seqLen,
		Regressor:      snap,
		Encoder:        enc,
		TrainedAt:      time.Now().UTC(),
	}
	if err := store.Save(bundle); err != nil {
		log.Fatalf("failed to save model bundle: %v", err)
	}
	log.Printf("saved model bundle to %s", *modelPath)

	if *plotPath != "" {
		if err := writeTrainingCurve(*plotPath, hist); err != nil {
			log.Fatalf("failed to write training curve: %v", err)
		}
		log.Printf("wrote training curve to %s", *plotPath)
	}
}
