package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhanvantari/ledgersift/internal/cli"
)

func batchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batches",
		Short: "Inspect upload batches",
		Long:  `List ingestion runs and delete batches that were staged by mistake.`,
	}

	cmd.AddCommand(listBatchesCmd())
	cmd.AddCommand(deleteBatchCmd())

	return cmd
}

func listBatchesCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent ingestion runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			batches, err := store.ListUploadBatches(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list batches: %w", err)
			}

			if len(batches) == 0 {
				fmt.Println(cli.InfoStyle.Render("No batches found. Use 'ledgersift ingest' to stage a statement."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("ID"),
				cli.TableHeaderStyle.Render("File"),
				cli.TableHeaderStyle.Render("Bank"),
				cli.TableHeaderStyle.Render("Status"),
				cli.TableHeaderStyle.Render("Records"),
				cli.TableHeaderStyle.Render("Created"))

			for _, batch := range batches {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					batch.ID, batch.SourceFile, batch.BankCode, batch.Status,
					batch.RecordCount, batch.CreatedAt.Format(time.RFC3339))
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum batches to show")

	return cmd
}

func deleteBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a batch and all its staged records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteBatch(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete batch: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted batch %s", args[0])))
			return nil
		},
	}
}
