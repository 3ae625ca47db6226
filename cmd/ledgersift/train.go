package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dhanvantari/ledgersift/internal/cli"
	"github.com/dhanvantari/ledgersift/internal/engine"
	"github.com/dhanvantari/ledgersift/internal/service"
)

func trainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the classifier from categorized transactions",
		Long: `Build a naive Bayes classifier from every already-categorized
transaction and save it for the categorize command to use. Needs
categorized transactions spanning at least two categories.`,
		RunE: runTrain,
	}

	cmd.Flags().Int("min-samples", 20, "minimum categorized transactions required to train")

	return cmd
}

func runTrain(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	minSamples, _ := cmd.Flags().GetInt("min-samples")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	txs, err := store.GetTransactions(ctx, service.TransactionFilter{})
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	var samples []engine.TrainingSample
	for i := range txs {
		result, catErr := store.GetCategorization(ctx, txs[i].Hash)
		if catErr != nil {
			continue
		}
		samples = append(samples, engine.TrainingSample{
			Merchant:    txs[i].MerchantName,
			Description: txs[i].Description,
			Category:    result.Category,
			Amount:      txs[i].Amount,
			Direction:   txs[i].Direction,
		})
	}

	if len(samples) < minSamples {
		return fmt.Errorf("need at least %d categorized transactions to train, have %d", minSamples, len(samples))
	}

	classifier, err := engine.NewTrainedClassifier(samples)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	path := classifierPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create classifier directory: %w", err)
	}
	if err := classifier.Save(path); err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Trained on %d transactions, saved to %s", len(samples), path)))
	return nil
}
