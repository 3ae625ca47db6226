package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dhanvantari/ledgersift/internal/cli"
	"github.com/dhanvantari/ledgersift/internal/model"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage merchant categorization rules",
		Long:  `List, add and deactivate the rules the categorization cascade consults first.`,
	}

	cmd.AddCommand(listRulesCmd())
	cmd.AddCommand(addRuleCmd())
	cmd.AddCommand(deactivateRuleCmd())

	return cmd
}

func listRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rules, err := store.GetActiveRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to get rules: %w", err)
			}

			if len(rules) == 0 {
				fmt.Println(cli.InfoStyle.Render("No rules found. Use 'ledgersift rules add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("ID"),
				cli.TableHeaderStyle.Render("Type"),
				cli.TableHeaderStyle.Render("Pattern"),
				cli.TableHeaderStyle.Render("Category"),
				cli.TableHeaderStyle.Render("Priority"),
				cli.TableHeaderStyle.Render("Confidence"),
				cli.TableHeaderStyle.Render("Uses"))

			for _, rule := range rules {
				pattern := rule.Pattern
				if rule.PatternType == model.RuleKeyword {
					pattern = strings.Join(rule.Keywords, ", ")
				}
				category := rule.Category
				if rule.Subcategory != "" {
					category += "/" + rule.Subcategory
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%.2f\t%d\n",
					rule.ID, rule.PatternType, pattern, category,
					rule.Priority, rule.Confidence, rule.UseCount)
			}

			return nil
		},
	}
}

func addRuleCmd() *cobra.Command {
	var (
		patternType string
		appliesTo   string
		subcategory string
		keywords    []string
		priority    int
		confidence  float64
	)

	cmd := &cobra.Command{
		Use:   "add <pattern> <category>",
		Short: "Add a categorization rule",
		Long: `Create a rule mapping a merchant pattern to a category.

Pattern types: exact (default), regex, keyword. Keyword rules take
their terms from --keywords and ignore the pattern argument beyond
using it as a label.`,
		Args: cobra.ExactArgs(2),
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

			rule := &model.MerchantRule{
				Pattern:     args[0],
				PatternType: model.RulePatternType(patternType),
				AppliesTo:   model.RuleField(appliesTo),
				Category:    args[1],
				Subcategory: subcategory,
				Keywords:    keywords,
				Priority:    priority,
				Confidence:  confidence,
				IsActive:    true,
			}
			if err := store.CreateRule(ctx, rule); err != nil {
				return fmt.Errorf("failed to create rule: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created rule %d: %s -> %s", rule.ID, rule.Pattern, rule.Category)))
			return nil
		},
	}

	cmd.Flags().StringVar(&patternType, "type", string(model.RuleExact), "pattern type (exact, regex, keyword)")
	cmd.Flags().StringVar(&appliesTo, "applies-to", string(model.FieldMerchant), "field to match (merchant, description)")
	cmd.Flags().StringVar(&subcategory, "subcategory", "", "subcategory to assign")
	cmd.Flags().StringSliceVar(&keywords, "keywords", nil, "keywords for keyword rules (comma-separated)")
	cmd.Flags().IntVar(&priority, "priority", 0, "rule priority (higher wins)")
	cmd.Flags().Float64Var(&confidence, "confidence", 1.0, "confidence assigned on match")

	return cmd
}

func deactivateRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Deactivate a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid rule id %q", args[0])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeactivateRule(ctx, id); err != nil {
				return fmt.Errorf("failed to deactivate rule: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deactivated rule %d", id)))
			return nil
		},
	}
}
