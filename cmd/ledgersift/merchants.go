package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dhanvantari/ledgersift/internal/cli"
	"github.com/dhanvantari/ledgersift/internal/model"
)

func merchantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merchants",
		Short: "Manage the merchant directory",
		Long:  `List and edit the curated merchant directory consulted by the cascade.`,
	}

	cmd.AddCommand(listMerchantsCmd())
	cmd.AddCommand(addMerchantCmd())

	return cmd
}

func listMerchantsCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List directory entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var merchants []model.MerchantDirectoryEntry
			if category != "" {
				merchants, err = store.GetMerchantsByCategory(ctx, category)
			} else {
				merchants, err = store.GetAllMerchants(ctx)
			}
			if err != nil {
				return fmt.Errorf("failed to get merchants: %w", err)
			}

			if len(merchants) == 0 {
				fmt.Println(cli.InfoStyle.Render("No merchants found. Use 'ledgersift merchants add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("Name"),
				cli.TableHeaderStyle.Render("Category"),
				cli.TableHeaderStyle.Render("Subcategory"),
				cli.TableHeaderStyle.Render("Aliases"),
				cli.TableHeaderStyle.Render("Uses"))

			for _, m := range merchants {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
					m.Name, m.Category, m.Subcategory,
					strings.Join(m.Aliases, ", "), m.UseCount)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "filter by category code")

	return cmd
}

func addMerchantCmd() *cobra.Command {
	var (
		subcategory string
		aliases     []string
	)

	cmd := &cobra.Command{
		Use:   "add <name> <category>",
		Short: "Add or update a directory entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if _, err := store.GetCategoryByCode(ctx, args[1]); err != nil {
				return fmt.Errorf("unknown category %q: %w", args[1], err)
			}

			entry := &model.MerchantDirectoryEntry{
				Name:        args[0],
				Category:    args[1],
				Subcategory: subcategory,
				Aliases:     aliases,
				IsActive:    true,
			}
			if err := store.SaveMerchant(ctx, entry); err != nil {
				return fmt.Errorf("failed to save merchant: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Saved merchant %q -> %s", entry.Name, entry.Category)))
			return nil
		},
	}

	cmd.Flags().StringVar(&subcategory, "subcategory", "", "subcategory to assign")
	cmd.Flags().StringSliceVar(&aliases, "aliases", nil, "alternate names (comma-separated)")

	return cmd
}
