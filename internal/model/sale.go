package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// the backend expects precio_unitario and friends as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// TimestampLayout is the ISO-8601 form with milliseconds the backend stores
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t in UTC using TimestampLayout
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// SaleDetail is one line item of a sale
type SaleDetail struct {
	ProductID int             `json:"id_producto"`
	Quantity  int             `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio_unitario"`
}

// Sale represents a sale record as served by the backend
type Sale struct {
	ID       int             `json:"id_venta"`
	Date     string          `json:"fecha"`
	ClientID int             `json:"id_cliente"`
	Method   PaymentMethod   `json:"metodo_pago"`
	Total    decimal.Decimal `json:"total_venta"`
	Details  []SaleDetail    `json:"detalles,omitempty"`
}

// SaleInput is the body sent on create and update. On update every zero
// field is treated as absent.
type SaleInput struct {
	Date     string        `json:"fecha,omitempty"`
	ClientID int           `json:"id_cliente,omitempty"`
	Method   PaymentMethod `json:"metodo_pago,omitempty"`
	Details  []SaleDetail  `json:"detalles,omitempty"`
}

// FoldDetails folds the detail list into a product id -> quantity map.
// When two lines share a product the later one wins.
func (s Sale) FoldDetails() map[int]int {
	return FoldDetails(s.Details)
}

// FoldDetails is the free-standing form of Sale.FoldDetails
func FoldDetails(details []SaleDetail) map[int]int {
	products := make(map[int]int, len(details))
	for _, d := range details {
		products[d.ProductID] = d.Quantity
	}
	return products
}

// DetailsTotal sums quantity x unit price across details
func DetailsTotal(details []SaleDetail) decimal.Decimal {
	total := decimal.Zero
	for _, d := range details {
		total = total.Add(d.UnitPrice.Mul(decimal.NewFromInt(int64(d.Quantity))))
	}
	return total
}
