package market

import "github.com/shopspring/decimal"

// FormatPrice renders a price with precision that scales with magnitude:
// 2 decimals at or above $1, 4 above a cent, 6 below.
func FormatPrice(price float64) string {
	d := decimal.NewFromFloat(price)
	switch {
	case price >= 1:
		return "$" + d.StringFixed(2)
	case price >= 0.01:
		return "$" + d.StringFixed(4)
	default:
		return "$" + d.StringFixed(6)
	}
}

var (
	billion  = decimal.New(1, 9)
	million  = decimal.New(1, 6)
	thousand = decimal.New(1, 3)
)

// FormatVolume renders a USD volume with a B/M/K suffix.
func FormatVolume(volume float64) string {
	d := decimal.NewFromFloat(volume)
	switch {
	case d.GreaterThanOrEqual(billion):
		return "$" + d.Div(billion).StringFixed(2) + "B"
	case d.GreaterThanOrEqual(million):
		return "$" + d.Div(million).StringFixed(2) + "M"
	default:
		return "$" + d.Div(thousand).StringFixed(2) + "K"
	}
}
