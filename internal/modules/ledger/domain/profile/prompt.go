package profile

import (
	"strconv"
	"strings"
)

// プロンプトのプレースホルダー
const (
	placeholderYear           = "{{year}}"
	placeholderAccountList    = "{{account_list}}"
	placeholderExpenseAccount = "{{expense_account_list}}"
	placeholderIncomeAccount  = "{{income_account_list}}"
	accountListSeparator      = "、"
)

// PromptParams プロンプトに埋め込む値
type PromptParams struct {
	Year            int
	ExpenseAccounts []string
	IncomeAccounts  []string
}

// RenderPrompt テンプレートのプレースホルダーを置換
// カスタムテンプレートが空ならプロファイルの既定テンプレートを使う
func (p *Profile) RenderPrompt(custom string, params PromptParams) string {
	tmpl := custom
	if strings.TrimSpace(tmpl) == "" {
		tmpl = p.PromptTemplate
	}

	expense := params.ExpenseAccounts
	if len(expense) == 0 {
		expense = p.ExpenseAccounts
	}
	income := params.IncomeAccounts
	if len(income) == 0 {
		income = p.IncomeAccounts
	}

	r := strings.NewReplacer(
		placeholderYear, strconv.Itoa(params.Year),
		placeholderAccountList, strings.Join(expense, accountListSeparator),
		placeholderExpenseAccount, strings.Join(expense, accountListSeparator),
		placeholderIncomeAccount, strings.Join(income, accountListSeparator),
	)
	return r.Replace(tmpl)
}

const bankPrompt = `
通帳の画像（複数枚の場合はページ順）に記載された取引を読み取り、次のJSON形式で返してください。

【基準年】
このデータの開始年は西暦{{year}}年です。

【日付の扱い（重要）】
1. 日付欄が「08-01-23」「08.01.23」のような数字の場合、先頭の2桁は令和の年です。西暦 = 令和の年 + 2018 で変換してください。
   例: 「08」は令和8年 = 2026年なので 2026/01/23 になります。
2. 年が書かれていない場合は{{year}}年から始め、並び順を見て年をまたぐ箇所を補ってください。
3. 日付は必ず西暦の "YYYY/MM/DD" で出力してください。

【読み取りのルール】
- 「繰越」の行は出力しないでください。
- 金額はカンマを付けず数字だけにしてください。
- お支払い（出金）欄に金額がある行は type を "expense" にしてください。
- お預かり（入金）欄に金額がある行は type を "income" にしてください。
- 複数の画像の内容はひとつにまとめ、日付順のリストにしてください。

【勘定科目】
各取引の「account」に、最も当てはまる勘定科目を設定してください。
出金の候補: {{expense_account_list}}（判断できない場合は「雑費」）
入金の候補: {{income_account_list}}（判断できない場合は「雑収入」）

【出力形式】
{
  "transactions": [
    { "date": "{{year}}/05/06", "description": "電話", "amount": 9975, "type": "expense", "note": "携帯電話", "account": "通信費" }
  ]
}

JSON以外の文章は出力しないでください。
`

const creditCardPrompt = `
クレジットカード明細のPDFまたは画像（複数枚の場合はページ順）に記載された利用履歴を読み取り、次のJSON形式で返してください。

【基準年】
このデータの開始年は西暦{{year}}年です。

【日付の扱い】
1. 「利用日」「ご利用日」の欄の日付を使ってください。
2. 月日だけの場合は{{year}}年から始め、12月から1月に戻る箇所などを見て年を補ってください。
3. 和暦（令和）の場合は 西暦 = 令和の年 + 2018 で変換してください。
4. 日付は必ず西暦の "YYYY/MM/DD" で出力してください。

【読み取りのルール】
- 「利用日」「利用店名・内容」「利用金額（支払金額）」を読み取ってください。
- 次の行は出力しないでください。
  ・「お支払い金額合計」「ご利用合計」「今回ご請求金額」などの合計行
  ・「口座引落し」「お引落し」「お支払い」などの引落し行
  ・「前回ご請求額」「繰越残高」などの繰越行
  ・見出しや欄外の行
- キャンセルや返品は金額をマイナスにして出力してください。
- 金額はカンマを付けない整数にしてください。
- 分割払いは今回の支払額を使ってください。
- 複数の画像の内容はひとつにまとめ、利用日順のリストにしてください。
- 読み取れる取引がない場合も空の配列を返してください。

【勘定科目】
各取引の「account」に、次の候補から最も当てはまるものを設定してください。
候補: {{account_list}}
判断できない場合は「雑費」にしてください。

【出力形式】
{
  "transactions": [
    { "date": "{{year}}/05/06", "description": "アマゾン ジャパン", "amount": 3980, "note": "日用品", "account": "消耗品費" }
  ]
}

JSON以外の文章は出力しないでください。
`

const receiptPrompt = `
領収書・レシートの写真またはPDF（複数枚の場合はページ順）から取引を読み取り、次のJSON形式で返してください。

【基準年】
このデータの開始年は西暦{{year}}年です。

【日付の扱い】
1. 領収書・レシートに書かれた日付を使ってください。
2. 年が書かれていない場合は{{year}}年としてください。
3. 和暦（令和）の場合は 西暦 = 令和の年 + 2018 で変換してください。
4. 日付は必ず西暦の "YYYY/MM/DD" で出力してください。

【読み取りのルール】
- 1枚ごとに「日付」「店名（発行者）」「合計金額」「品目・内容」「インボイス登録番号」を読み取ってください。
- 金額は税込の合計金額を、カンマを付けない整数で出力してください。
- 品目や内容が分かる場合は note に入れてください。
- 1枚の画像に複数の領収書がある場合は、それぞれ別の取引にしてください。
- 読み取れる取引がない場合は空の配列を返してください。

【インボイス登録番号】
- 「T」の後に13桁の数字が続く番号です（例: T1234567890123）。
- 見つからない場合は空文字 "" にしてください。

【勘定科目】
各取引の「account」に、次の候補から最も当てはまるものを設定してください。
候補: {{account_list}}
判断できない場合は「雑費」にしてください。

【出力形式】
{
  "transactions": [
    { "date": "{{year}}/05/06", "description": "セブンイレブン", "amount": 550, "note": "文房具", "invoiceNumber": "T1234567890123", "account": "消耗品費" }
  ]
}

JSON以外の文章は出力しないでください。
`
