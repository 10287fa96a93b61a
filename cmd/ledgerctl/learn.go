package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) learnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "learn [仕訳日記帳CSV]",
		Short: "弥生会計の仕訳日記帳から仕訳ルールを学習",
		Long: `弥生会計からエクスポートした仕訳日記帳（Shift-JIS/UTF-8）を読み込み、
摘要と勘定科目の組を仕訳ルールとして保存します。`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			ctx := c.context(cmd)
			session, closeDB, err := c.session(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			result, err := session.LearnFromJournal(ctx, data)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "仕訳 %d 件: 追加 %d / 更新 %d / スキップ %d\n",
				result.TotalEntries, result.Added, result.Updated, result.Skipped)
			return nil
		},
	}
}
