package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ledger-import-app/internal/modules/ledger/domain/entity"
	"ledger-import-app/internal/modules/ledger/domain/profile"
)

func profileOf(mode entity.Mode) (*profile.Profile, error) {
	return profile.Get(mode)
}

type ruleRow struct {
	Keyword     string `json:"keyword"`
	Account     string `json:"account"`
	TaxCategory string `json:"tax_category,omitempty"`
	Type        string `json:"type"`
}

func (c *cli) rulesCmd() *cobra.Command {
	var (
		kind   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "仕訳ルールを表示",
		Long:  "保存済みの仕訳ルール（未保存ならモードの初期ルール）を上から優先順に表示します。",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k := entity.Kind(kind)
			if k != entity.KindExpense && k != entity.KindIncome {
				return fmt.Errorf("kind must be expense or income: %q", kind)
			}

			ctx := c.context(cmd)
			session, closeDB, err := c.session(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			rules := session.Rules(k)
			rows := make([]ruleRow, 0, len(rules))
			for _, r := range rules {
				rows = append(rows, ruleRow{Keyword: r.Keyword, Account: r.Account, TaxCategory: r.TaxCategory, Type: string(r.Kind())})
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "キーワード\t勘定科目\t税区分")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Keyword, r.Account, r.TaxCategory)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(entity.KindExpense), "区分（expense, income）")
	cmd.Flags().BoolVar(&asJSON, "json", false, "JSONで出力")
	return cmd
}
