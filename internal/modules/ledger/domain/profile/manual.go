package profile

import (
	"fmt"
	"strings"
	"time"

	"ledger-import-app/internal/modules/ledger/domain/entity"
)

const manualSteps = `--------------------------------------------------
■ 取り込み手順
--------------------------------------------------

1. 弥生会計を起動し、「帳簿・伝票」メニューから「仕訳日記帳」を開きます。
2. [ファイル] メニューの [インポート] を選びます。
3. ファイル選択画面で、ファイルの種類を「すべてのファイル(*.*)」に切り替えます。
4. 出力したCSVファイルを選んで「開く」を押します。
5. 「インポート」ボタンを押します。
6. 勘定科目や補助科目のマッチング画面が表示された場合は、画面の案内に従って対応付けます。
7. 仕訳日記帳にデータが追加されれば完了です。
`

const creditCardNote = `
--------------------------------------------------
■ クレカ明細の仕訳パターン
--------------------------------------------------
借方（経費科目）/ 貸方（未払金：カード名）で出力しています。

カードの引落し日には、次の仕訳を別途入力してください。
  借方（未払金：カード名）/ 貸方（普通預金：銀行名）
`

// Manual 弥生会計への取り込み手順書を作成
func (p *Profile) Manual(now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "【弥生会計 取り込み手順書（%s用）】\n\n", p.Label)
	sb.WriteString("このCSVファイルを弥生会計に取り込む手順です。\n\n")
	sb.WriteString(manualSteps)
	if p.Mode == entity.ModeCreditCard {
		sb.WriteString(creditCardNote)
	}
	sb.WriteString("\n--------------------------------------------------\n")
	fmt.Fprintf(&sb, "作成日: %s\n", now.Format("2006/01/02"))
	return sb.String()
}

// ManualFilename 手順書のファイル名
func (p *Profile) ManualFilename() string {
	return "弥生会計インポート手順書_" + p.Label + ".txt"
}

// CSVFilename 出力CSVのファイル名
func (p *Profile) CSVFilename(now time.Time) string {
	return fmt.Sprintf("弥生会計インポート_%s_%s.csv", p.CSVFilenamePart, now.Format("20060102"))
}
