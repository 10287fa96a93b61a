package entity

// TaxType 消費税の課税方式
type TaxType string

const (
	TaxTypeStandard   TaxType = "standard"   // 本則課税
	TaxTypeExempt     TaxType = "exempt"     // 免税事業者
	TaxTypeSimplified TaxType = "simplified" // 簡易課税
)

// SimplifiedMethod 簡易課税の経理方式
type SimplifiedMethod string

const (
	SimplifiedInclusive SimplifiedMethod = "inclusive" // 税込経理
	SimplifiedExclusive SimplifiedMethod = "exclusive" // 税抜経理
)

// SimplifiedCalcType 税抜経理時の計算方式
type SimplifiedCalcType string

const (
	SimplifiedInternal SimplifiedCalcType = "internal" // 内税
	SimplifiedExternal SimplifiedCalcType = "external" // 外税
)

// TaxSettings 税区分の既定値を決める設定
type TaxSettings struct {
	TaxType            TaxType            `json:"tax_type" yaml:"tax_type"`
	SimplifiedMethod   SimplifiedMethod   `json:"simplified_method" yaml:"simplified_method"`
	SimplifiedCalcType SimplifiedCalcType `json:"simplified_calc_type" yaml:"simplified_calc_type"`
	SimplifiedBizClass int                `json:"simplified_biz_class" yaml:"simplified_biz_class"`
	SimplifiedTaxRate  string             `json:"simplified_tax_rate" yaml:"simplified_tax_rate"` // "10%" or "8%"
}

// DefaultTaxSettings 本則課税の既定設定
func DefaultTaxSettings() TaxSettings {
	return TaxSettings{
		TaxType:            TaxTypeStandard,
		SimplifiedMethod:   SimplifiedInclusive,
		SimplifiedCalcType: SimplifiedInternal,
		SimplifiedBizClass: 5,
		SimplifiedTaxRate:  "10%",
	}
}

// IsValid 設定値が許容範囲内かどうか
func (s TaxSettings) IsValid() bool {
	switch s.TaxType {
	case TaxTypeStandard, TaxTypeExempt, TaxTypeSimplified:
	default:
		return false
	}
	if s.TaxType != TaxTypeSimplified {
		return true
	}
	if s.SimplifiedBizClass != 0 && (s.SimplifiedBizClass < 1 || s.SimplifiedBizClass > 6) {
		return false
	}
	return s.SimplifiedTaxRate == "" || s.SimplifiedTaxRate == "10%" || s.SimplifiedTaxRate == "8%"
}
