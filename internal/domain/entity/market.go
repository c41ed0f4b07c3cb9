package entity

import "time"

type PricePoint struct {
	Date   time.Time
	Close  float64
	Volume int64
}

// BalanceSheet holds one row per line item, with one value per period. A nil value
// means the provider reported nothing for that period.
type BalanceSheet struct {
	Symbol  string
	Periods []time.Time
	Rows    []BalanceSheetRow
}

type BalanceSheetRow struct {
	Item   string
	Values []*float64
}

func (r BalanceSheetRow) Complete() bool {
	for _, v := range r.Values {
		if v == nil {
			return false
		}
	}
	return true
}
