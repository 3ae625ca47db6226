package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhanvantari/ledgersift/internal/cli"
	"github.com/dhanvantari/ledgersift/internal/engine"
	"github.com/dhanvantari/ledgersift/internal/model"
	"github.com/dhanvantari/ledgersift/internal/service"
)

func categorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Categorize staged transactions",
		Long: `Run every uncategorized transaction through the categorization cascade:
merchant rules, the merchant directory, personal-name detection, the
trained classifier and the keyword fallback. Every transaction receives
a category; low-confidence results are counted in the summary.`,
		RunE: runCategorize,
	}

	cmd.Flags().IntP("limit", "l", 0, "maximum transactions to categorize (0 = all)")

	return cmd
}

func runCategorize(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	classifier, err := loadClassifier()
	if err != nil {
		return fmt.Errorf("failed to load classifier: %w", err)
	}
	if classifier == nil {
		fmt.Println(cli.FormatInfo("No trained classifier found; running without the classifier tier"))
	}

	txs, err := store.GetUncategorizedTransactions(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to load uncategorized transactions: %w", err)
	}
	if len(txs) == 0 {
		fmt.Println(cli.FormatInfo("Nothing to categorize"))
		return nil
	}

	fmt.Println(cli.FormatTitle("Categorizing transactions"))

	handler := cli.NewInterruptHandler(os.Stdout)
	ctx = handler.HandleInterrupts(ctx, "Progress is saved per transaction. Re-run: ledgersift categorize")

	eng := engine.NewEngine(store, classifier)
	results, err := eng.CategorizeBatch(ctx, txs)
	if err != nil {
		return fmt.Errorf("categorization failed: %w", err)
	}

	bar := cli.NewProgressBar(len(results), "Saving categorizations...", os.Stderr)

	stats := service.CategorizeStats{
		ByMethod: make(map[model.MatchMethod]int),
	}
	start := time.Now()

	for i := range results {
		if err := ctx.Err(); err != nil {
			return err
		}

		result := &results[i]
		if err := store.SaveCategorization(ctx, txs[i].Hash, result); err != nil {
			return fmt.Errorf("failed to save categorization: %w", err)
		}
		if result.RuleID != nil {
			if err := store.IncrementRuleUseCount(ctx, *result.RuleID); err != nil {
				return fmt.Errorf("failed to update rule use count: %w", err)
			}
		}

		stats.Total++
		stats.ByMethod[result.Method]++
		if result.Confidence < 0.5 {
			stats.LowConfident++
		}
		_ = bar.Add(1)
	}
	stats.Duration = time.Since(start)

	summary := fmt.Sprintf("  • Categorized: %d\n", stats.Total)
	for method, count := range stats.ByMethod {
		summary += fmt.Sprintf("  • %s: %d\n", method, count)
	}
	summary += fmt.Sprintf("  • Low confidence: %d\n", stats.LowConfident) +
		fmt.Sprintf("  • Time taken: %s\n", stats.Duration.Round(time.Millisecond))
	fmt.Println(cli.RenderBox("Categorization Complete", summary))

	return nil
}
