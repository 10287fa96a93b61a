package profile

import "ledger-import-app/internal/modules/ledger/domain/entity"

func expense(keyword, account string) entity.Rule {
	return entity.NewRule(keyword, account, entity.KindExpense)
}

func income(keyword, account string) entity.Rule {
	return entity.NewRule(keyword, account, entity.KindIncome)
}

var bankExpenseRules = []entity.Rule{
	expense("電話", "通信費"),
	expense("通信", "通信費"),
	expense("電気", "水道光熱費"),
	expense("ガス", "水道光熱費"),
	expense("水道", "水道光熱費"),
	expense("Amazon", "消耗品費"),
	expense("家賃", "地代家賃"),
	expense("保険", "保険料"),
	expense("手数料", "支払手数料"),
	expense("クレジット", "未払金"),
	expense("総合振込", "給与手当"),
}

var bankIncomeRules = []entity.Rule{
	income("振込", "売上高"),
	income("カ）", "売上高"),
	income("利息", "受取利息"),
}

var creditCardRules = []entity.Rule{
	expense("ETC", "旅費交通費"),
	expense("SUICA", "旅費交通費"),
	expense("PASMO", "旅費交通費"),
	expense("JR ", "旅費交通費"),
	expense("タクシー", "旅費交通費"),
	expense("ANA", "旅費交通費"),
	expense("JAL", "旅費交通費"),
	expense("Amazon", "消耗品費"),
	expense("アマゾン", "消耗品費"),
	expense("ヨドバシ", "消耗品費"),
	expense("ビックカメラ", "消耗品費"),
	expense("Google", "通信費"),
	expense("Apple", "通信費"),
	expense("AWS", "通信費"),
	expense("NTT", "通信費"),
	expense("ソフトバンク", "通信費"),
	expense("KDDI", "通信費"),
	expense("さくらインターネット", "通信費"),
	expense("ENEOS", "車両費"),
	expense("出光", "車両費"),
	expense("ガソリン", "車両費"),
	expense("年会費", "支払手数料"),
	expense("保険", "保険料"),
}

var receiptRules = []entity.Rule{
	expense("コンビニ", "消耗品費"),
	expense("セブン", "消耗品費"),
	expense("ローソン", "消耗品費"),
	expense("ファミリーマート", "消耗品費"),
	expense("Amazon", "消耗品費"),
	expense("アマゾン", "消耗品費"),
	expense("ヨドバシ", "消耗品費"),
	expense("ビックカメラ", "消耗品費"),
	expense("ダイソー", "消耗品費"),
	expense("100均", "消耗品費"),
	expense("タクシー", "旅費交通費"),
	expense("JR", "旅費交通費"),
	expense("駐車場", "旅費交通費"),
	expense("パーキング", "旅費交通費"),
	expense("ガソリン", "車両費"),
	expense("ENEOS", "車両費"),
	expense("出光", "車両費"),
	expense("郵便", "通信費"),
	expense("切手", "通信費"),
	expense("レターパック", "通信費"),
	expense("文具", "事務用品費"),
	expense("コピー", "事務用品費"),
	expense("印刷", "事務用品費"),
	expense("カフェ", "会議費"),
	expense("スターバックス", "会議費"),
	expense("ドトール", "会議費"),
	expense("飲食", "接待交際費"),
	expense("居酒屋", "接待交際費"),
	expense("レストラン", "接待交際費"),
}

var bankOptions = []string{
	"三菱UFJ銀行", "みずほ銀行", "三井住友銀行", "りそな銀行", "ゆうちょ銀行",
	"楽天銀行", "住信SBIネット銀行", "PayPay銀行", "その他",
}

var cardOptions = []string{
	"楽天カード", "三井住友カード", "JCBカード", "アメリカン・エキスプレス", "ダイナースクラブ",
	"セゾンカード", "イオンカード", "dカード", "PayPayカード", "その他",
}

var bankExpenseAccounts = []string{
	"通信費", "水道光熱費", "消耗品費", "地代家賃", "保険料", "支払手数料", "旅費交通費", "接待交際費",
	"広告宣伝費", "給与手当", "外注費", "未払金", "租税公課", "修繕費", "新聞図書費", "雑費",
}

var bankIncomeAccounts = []string{"売上高", "受取利息", "雑収入", "受取配当金"}

// クレカ明細と領収書で共通
var purchaseAccounts = []string{
	"通信費", "水道光熱費", "消耗品費", "地代家賃", "保険料", "支払手数料", "旅費交通費", "接待交際費",
	"広告宣伝費", "外注費", "租税公課", "修繕費", "新聞図書費", "車両費", "会議費", "福利厚生費",
	"事務用品費", "雑費",
}
