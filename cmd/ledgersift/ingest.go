package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dhanvantari/ledgersift/internal/cli"
	"github.com/dhanvantari/ledgersift/internal/ingest"
)

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Ingest statement files or alert emails",
		Long: `Parse one or more statement files into canonical transactions and stage
them in the local database under an upload batch.

Supported formats: CSV, TSV, plain text, XLSX, XLS, PDF, OFX/QFX and
MIME email (.eml). Records are deduplicated automatically; re-ingesting
the same file stages nothing new.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runIngest,
	}

	cmd.Flags().StringP("bank", "b", "", "bank code to tag records with (HDFC, ICICI, SBI, ...)")
	cmd.Flags().StringP("password", "p", "", "password for encrypted PDF statements")
	cmd.Flags().Bool("alert-only", false, "parse only email bodies, skipping attachments")

	_ = viper.BindPFlag("ingest.bank", cmd.Flags().Lookup("bank"))
	_ = viper.BindPFlag("ingest.password", cmd.Flags().Lookup("password"))
	_ = viper.BindPFlag("ingest.alert_only", cmd.Flags().Lookup("alert-only"))

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	job := ingest.NewJob(store, ingest.Options{
		BankCode:  viper.GetString("ingest.bank"),
		Password:  viper.GetString("ingest.password"),
		AlertOnly: viper.GetBool("ingest.alert_only"),
	})

	fmt.Println(cli.FormatTitle("Ingesting statements"))

	bar := cli.NewProgressBar(len(args), "Parsing files...", os.Stderr)

	var read, saved, duplicates, failures int
	start := time.Now()

	for _, path := range args {
		stats, ingestErr := job.IngestFile(ctx, path)
		_ = bar.Add(1)
		if ingestErr != nil {
			failures++
			slog.Error("Failed to ingest file", "file", path, "error", ingestErr)
			continue
		}
		read += stats.RecordsRead
		saved += stats.RecordsSaved
		duplicates += stats.Duplicates
	}

	summary := fmt.Sprintf("  • Files: %d (%d failed)\n", len(args), failures) +
		fmt.Sprintf("  • Records read: %d\n", read) +
		fmt.Sprintf("  • Records staged: %d\n", saved) +
		fmt.Sprintf("  • Duplicates skipped: %d\n", duplicates) +
		fmt.Sprintf("  • Time taken: %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Println(cli.RenderBox("Ingestion Complete", summary))

	if failures == len(args) {
		return fmt.Errorf("all %d files failed to ingest", failures)
	}
	return nil
}
