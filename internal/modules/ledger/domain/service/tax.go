package service

import (
	"regexp"

	"github.com/shopspring/decimal"

	"ledger-import-app/internal/modules/ledger/domain/entity"
)

// 税区分ラベル
const (
	TaxCategoryNone            = "対象外"
	TaxCategoryPurchase10      = "課対仕入10%"
	TaxCategorySales10         = "課税売上10%"
	defaultSimplifiedBizClass  = 5
	simplifiedReducedRateLabel = "軽減8%"
)

var (
	rate10Pattern = regexp.MustCompile(`[1１][0０][%％]`)
	rate8Pattern  = regexp.MustCompile(`[8８][%％]`)

	rate10 = decimal.New(10, -2)
	rate8  = decimal.New(8, -2)
)

// ExpenseTaxCategories 出金側で選択できる税区分
var ExpenseTaxCategories = []string{
	TaxCategoryPurchase10,
	"課対仕入8%",
	"課対仕入込軽減8%",
	"非課仕入",
	TaxCategoryNone,
}

// IncomeTaxCategories 入金側で選択できる税区分
var IncomeTaxCategories = []string{
	TaxCategorySales10,
	"課税売上8%",
	"課税売上込軽減8%",
	"非課売上",
	TaxCategoryNone,
}

var bizClassKanji = []string{"一", "二", "三", "四", "五", "六"}

// DetectTaxRate 税区分ラベルから税率を判定（該当なしはゼロ）
func DetectTaxRate(category string) decimal.Decimal {
	switch {
	case category == "":
		return decimal.Zero
	case rate10Pattern.MatchString(category):
		return rate10
	case rate8Pattern.MatchString(category):
		return rate8
	}
	return decimal.Zero
}

// CalculateTax 税込金額から内税額を算出（切り捨て、常に非負）
func CalculateTax(amount int64, rate decimal.Decimal) int64 {
	if !rate.IsPositive() {
		return 0
	}
	gross := decimal.NewFromInt(amount).Abs()
	tax := gross.Mul(rate).Div(decimal.NewFromInt(1).Add(rate)).Floor()
	return tax.IntPart()
}

// CalculateTaxFromCategory 税区分ラベルから税額を算出
// 本則課税以外はラベルに税率が含まれていても0を返す
func CalculateTaxFromCategory(amount int64, category string, taxType entity.TaxType) int64 {
	if taxType != entity.TaxTypeStandard {
		return 0
	}
	rate := DetectTaxRate(category)
	if rate.IsZero() {
		return 0
	}
	return CalculateTax(amount, rate)
}

// DefaultTaxCategories 課税方式ごとの既定の税区分（出金, 入金）
func DefaultTaxCategories(settings entity.TaxSettings) (expense, income string) {
	switch settings.TaxType {
	case entity.TaxTypeExempt:
		return TaxCategoryNone, TaxCategoryNone
	case entity.TaxTypeSimplified:
		return TaxCategoryNone, SimplifiedIncomeCategory(settings)
	}
	return TaxCategoryPurchase10, TaxCategorySales10
}

// SimplifiedIncomeCategory 簡易課税の売上税区分を組み立てる
// 例: 課税売上込五10%
func SimplifiedIncomeCategory(settings entity.TaxSettings) string {
	method := "込"
	if settings.SimplifiedMethod == entity.SimplifiedExclusive {
		method = "外"
		if settings.SimplifiedCalcType == entity.SimplifiedInternal {
			method = "内"
		}
	}

	class := settings.SimplifiedBizClass
	if class < 1 || class > len(bizClassKanji) {
		class = defaultSimplifiedBizClass
	}

	rate := "10%"
	if settings.SimplifiedTaxRate == "8%" {
		rate = simplifiedReducedRateLabel
	}

	return "課税売上" + method + bizClassKanji[class-1] + rate
}
