package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhanvantari/ledgersift/internal/cli"
	"github.com/dhanvantari/ledgersift/internal/common"
	"github.com/dhanvantari/ledgersift/internal/enrich"
	"github.com/dhanvantari/ledgersift/internal/service"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txns"},
		Short:   "Query staged transactions",
		Long:    `List staged transactions with filters, or inspect one with its parsed rail metadata.`,
	}

	cmd.AddCommand(listTransactionsCmd())
	cmd.AddCommand(showTransactionCmd())

	return cmd
}

func listTransactionsCmd() *cobra.Command {
	var (
		batchID   string
		category  string
		bankCode  string
		startDate string
		endDate   string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions matching the filters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			filter := service.TransactionFilter{
				BatchID:  batchID,
				Category: category,
				BankCode: bankCode,
				Limit:    limit,
			}
			if startDate != "" {
				t, err := time.Parse("2006-01-02", startDate)
				if err != nil {
					return fmt.Errorf("invalid start date %q", startDate)
				}
				filter.StartDate = &t
			}
			if endDate != "" {
				t, err := time.Parse("2006-01-02", endDate)
				if err != nil {
					return fmt.Errorf("invalid end date %q", endDate)
				}
				filter.EndDate = &t
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txs, err := store.GetTransactions(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to query transactions: %w", err)
			}

			if len(txs) == 0 {
				fmt.Println(cli.InfoStyle.Render("No transactions match."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("Date"),
				cli.TableHeaderStyle.Render("Merchant"),
				cli.TableHeaderStyle.Render("Amount"),
				cli.TableHeaderStyle.Render("Dir"),
				cli.TableHeaderStyle.Render("Channel"),
				cli.TableHeaderStyle.Render("Hash"))

			for _, tx := range txs {
				fmt.Fprintf(w, "%s\t%s\t%.2f %s\t%s\t%s\t%s\n",
					tx.Date.Format("2006-01-02"), tx.MerchantName,
					tx.Amount, tx.Currency, tx.Direction, tx.Channel,
					shortHash(tx.Hash))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&batchID, "batch", "", "filter by upload batch id")
	cmd.Flags().StringVar(&category, "category", "", "filter by assigned category")
	cmd.Flags().StringVar(&bankCode, "bank", "", "filter by bank code")
	cmd.Flags().StringVar(&startDate, "start", "", "start date (2006-01-02)")
	cmd.Flags().StringVar(&endDate, "end", "", "end date (2006-01-02)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum transactions to show")

	return cmd
}

func showTransactionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <hash>",
		Short: "Show one transaction with parsed rail metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			tx, err := store.GetTransactionByHash(ctx, args[0])
			if errors.Is(err, common.ErrNotFound) {
				return fmt.Errorf("no transaction with hash %s", args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to load transaction: %w", err)
			}

			md := enrich.ParseTransaction(tx)

			content := fmt.Sprintf("  Date:        %s\n", tx.Date.Format("2006-01-02")) +
				fmt.Sprintf("  Merchant:    %s\n", tx.MerchantName) +
				fmt.Sprintf("  Amount:      %.2f %s (%s)\n", tx.Amount, tx.Currency, tx.Direction) +
				fmt.Sprintf("  Bank:        %s\n", tx.BankCode) +
				fmt.Sprintf("  Description: %s\n", tx.Description) +
				fmt.Sprintf("  Channel:     %s\n", md.Channel)

			if md.TransferDirection != "" {
				content += fmt.Sprintf("  Transfer:    %s\n", md.TransferDirection)
			}
			if md.CounterpartyName != "" {
				content += fmt.Sprintf("  Counterparty: %s\n", md.CounterpartyName)
			}
			if md.CounterpartyVPA != "" {
				content += fmt.Sprintf("  VPA:         %s\n", md.CounterpartyVPA)
			}
			if md.CounterpartyBank != "" {
				content += fmt.Sprintf("  Counterparty bank: %s\n", md.CounterpartyBank)
			}
			if md.RailReference != "" {
				content += fmt.Sprintf("  Rail ref:    %s\n", md.RailReference)
			}
			if md.InternalReference != "" {
				content += fmt.Sprintf("  Internal ref: %s\n", md.InternalReference)
			}
			if md.MCC != "" {
				content += fmt.Sprintf("  MCC:         %s\n", md.MCC)
			}

			if result, catErr := store.GetCategorization(ctx, tx.Hash); catErr == nil {
				category := result.Category
				if result.Subcategory != "" {
					category += "/" + result.Subcategory
				}
				content += fmt.Sprintf("  Category:    %s (%s, %.2f)\n", category, result.Method, result.Confidence)
			} else {
				content += "  Category:    " + cli.SubtleStyle.Render("(uncategorized)") + "\n"
			}

			fmt.Println(cli.RenderBox("Transaction", content))
			return nil
		},
	}
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
