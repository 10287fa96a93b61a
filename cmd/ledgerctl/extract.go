package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ledger-import-app/internal/modules/ledger/presentation/handler"
	"ledger-import-app/internal/modules/vision/domain"
)

func (c *cli) extractCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "extract [画像またはPDF...]",
		Short: "画像から取引を抽出してJSONで出力",
		Long: `画像（JPEG/PNG/PDF）から取引を抽出し、勘定科目を割り当てたJSONを出力します。
抽出した取引は保存され、未登録の摘要は仕訳ルールとして学習されます。`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			images := make([]domain.Image, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				images = append(images, domain.NewImage(data))
			}

			ctx := c.context(cmd)
			session, closeDB, err := c.session(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			result, err := session.ProcessDocument(ctx, images)
			if err != nil {
				return err
			}

			w, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(handler.NewTransactionDTOs(result.Transactions)); err != nil {
				_ = closeOut()
				return fmt.Errorf("failed to write transactions: %w", err)
			}
			if err := closeOut(); err != nil {
				return err
			}

			c.log.Info().
				Int("transactions", len(result.Transactions)).
				Int("learned_rules", len(result.LearnedRules)).
				Int("total_tokens", result.TotalTokens()).
				Msg("extracted")
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "出力ファイル（既定は標準出力）")
	return cmd
}
