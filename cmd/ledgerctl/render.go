package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"ledger-import-app/internal/modules/ledger/domain/entity"
	"ledger-import-app/internal/modules/ledger/domain/service"
	"ledger-import-app/internal/modules/ledger/infrastructure/yayoi"
	"ledger-import-app/internal/modules/ledger/presentation/handler"
)

func (c *cli) renderCmd() *cobra.Command {
	var (
		input    string
		output   string
		encoding string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "取引から弥生会計インポート用CSVを作成",
		Long: `保存済みの取引（--input 指定時は取引JSON）から弥生会計インポート用CSVを作成します。
勘定科目が空の取引は仕訳ルールで補完します。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.context(cmd)
			session, closeDB, err := c.session(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			var text string
			if input == "" {
				text, err = session.RenderCSV()
			} else {
				text, err = c.renderJSON(cmd, input, session.Rules(entity.KindExpense), session.Rules(entity.KindIncome))
			}
			if err != nil {
				return err
			}

			body := yayoi.EncodeShiftJIS(text)
			switch encoding {
			case "sjis", "shift_jis":
			case "utf8", "utf-8":
				body = []byte(text)
			default:
				return fmt.Errorf("unknown encoding: %q", encoding)
			}

			w, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			if _, err := w.Write(body); err != nil {
				_ = closeOut()
				return fmt.Errorf("failed to write csv: %w", err)
			}
			if err := closeOut(); err != nil {
				return err
			}

			if output != "" && output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s を作成しました（推奨ファイル名: %s）\n", output, session.CSVFilename())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "取引JSON（\"-\" は標準入力）")
	cmd.Flags().StringVarP(&output, "output", "o", "", "出力ファイル（既定は標準出力）")
	cmd.Flags().StringVar(&encoding, "encoding", "sjis", "文字コード（sjis, utf8）")
	return cmd
}

// renderJSON 取引JSONをセッションの仕訳ルールでCSVにする
func (c *cli) renderJSON(cmd *cobra.Command, input string, expense, income []entity.Rule) (string, error) {
	mode, err := c.mode()
	if err != nil {
		return "", err
	}

	data, err := readInput(cmd, input)
	if err != nil {
		return "", err
	}
	var rows []handler.TransactionDTO
	if err := json.Unmarshal(data, &rows); err != nil {
		return "", fmt.Errorf("failed to parse transactions: %w", err)
	}

	txs := make([]*entity.Transaction, 0, len(rows))
	for _, row := range rows {
		tx := row.ToEntity()
		tx.SourceType = mode
		txs = append(txs, tx)
	}

	settings := c.settings()
	p, err := profileOf(mode)
	if err != nil {
		return "", err
	}
	return service.NewJournalCSV(service.NewRuleBook(append(expense, income...))).Render(txs, service.RenderOptions{
		Mode:              mode,
		SourceLabel:       settings.SourceLabel,
		RequiresSource:    p.RequiresSource,
		Tax:               settings.Tax,
		ShowSystemColumns: settings.ShowSystemColumns,
		DescriptionLength: settings.DescriptionLength,
	})
}
