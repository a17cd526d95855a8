package dashboard

import (
	"fmt"
	"time"

	"sales-dashboard/internal/model"

	"github.com/shopspring/decimal"
)

// SaleView is a sale reshaped for display: the date formatted, the total
// numeric and the detail lines folded into product id -> quantity.
type SaleView struct {
	ID       int                 `json:"id_venta"`
	Date     string              `json:"fecha"`
	ClientID int                 `json:"id_cliente"`
	Method   model.PaymentMethod `json:"metodo_pago"`
	Total    decimal.Decimal     `json:"total_venta"`
	Products map[int]int         `json:"productos"`
}

// ItemCount sums the quantities of the sale
func (s SaleView) ItemCount() int {
	n := 0
	for _, q := range s.Products {
		n += q
	}
	return n
}

func (s SaleView) clone() SaleView {
	products := make(map[int]int, len(s.Products))
	for k, v := range s.Products {
		products[k] = v
	}
	s.Products = products
	return s
}

// SaleRow is one line of the sales table
type SaleRow struct {
	ID        int             `json:"id_venta"`
	Date      string          `json:"fecha"`
	Client    string          `json:"cliente"`
	Method    string          `json:"metodo"`
	ItemCount int             `json:"cantidad_productos"`
	Amount    decimal.Decimal `json:"monto"`
}

// PieSlice is one category of the units-sold pie chart
type PieSlice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// CategoryAverage is the backend-computed average for a category
type CategoryAverage struct {
	Category string  `json:"categoria"`
	Average  float64 `json:"promedio"`
}

// ScatterPoint is one price/quantity pair of the scatter chart
type ScatterPoint struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Name string  `json:"name"`
}

// View is the complete state the dashboard renders
type View struct {
	Clients          []model.Client               `json:"clientes"`
	Products         []model.Product              `json:"productos"`
	Sales            []SaleView                   `json:"ventas"`
	Rows             []SaleRow                    `json:"filas_ventas"`
	Pie              []PieSlice                   `json:"pie"`
	CategoryAverages []CategoryAverage            `json:"promedios_categoria"`
	Scatter          []ScatterPoint               `json:"scatter"`
	Trend            []model.PaymentTrendPoint    `json:"tendencia"`
	Variance         *model.PaymentMethodVariance `json:"desvio"`
	Correlation      *model.PearsonCorrelation    `json:"pearson"`
	PaymentMethods   []model.PaymentMethod        `json:"metodos_pago"`
	UsingMockData    bool                         `json:"using_mock_data"`
	Loading          bool                         `json:"loading"`
	LoadedAt         time.Time                    `json:"loaded_at"`
}

// clone copies every slice and map so the caller can hand it out freely
func (v View) clone() View {
	out := v
	out.Clients = append([]model.Client(nil), v.Clients...)
	out.Products = append([]model.Product(nil), v.Products...)
	out.Sales = make([]SaleView, len(v.Sales))
	for i, s := range v.Sales {
		out.Sales[i] = s.clone()
	}
	out.Rows = append([]SaleRow(nil), v.Rows...)
	out.Pie = append([]PieSlice(nil), v.Pie...)
	out.CategoryAverages = append([]CategoryAverage(nil), v.CategoryAverages...)
	out.Scatter = append([]ScatterPoint(nil), v.Scatter...)
	out.Trend = append([]model.PaymentTrendPoint(nil), v.Trend...)
	out.PaymentMethods = append([]model.PaymentMethod(nil), v.PaymentMethods...)
	if v.Variance != nil {
		variance := *v.Variance
		out.Variance = &variance
	}
	if v.Correlation != nil {
		corr := *v.Correlation
		out.Correlation = &corr
	}
	return out
}

// DateFormatter renders backend timestamps as display dates
type DateFormatter struct {
	Layout   string
	Location *time.Location
}

var inputLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Format parses raw and renders it with Layout in Location. Unparseable
// input is returned as is.
func (f DateFormatter) Format(raw string) string {
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.In(loc).Format(f.Layout)
		}
	}
	return raw
}

// ToSaleView reshapes a backend sale into its display form
func (f DateFormatter) ToSaleView(s model.Sale) SaleView {
	return SaleView{
		ID:       s.ID,
		Date:     f.Format(s.Date),
		ClientID: s.ClientID,
		Method:   s.Method,
		Total:    s.Total,
		Products: s.FoldDetails(),
	}
}

func pieSlices(rows []model.CategoryUnits) []PieSlice {
	slices := make([]PieSlice, 0, len(rows))
	for _, r := range rows {
		slices = append(slices, PieSlice{Name: r.Category, Value: r.Units.InexactFloat64()})
	}
	return slices
}

func categoryAverages(rows []model.CategoryUnits) []CategoryAverage {
	averages := make([]CategoryAverage, 0, len(rows))
	for _, r := range rows {
		averages = append(averages, CategoryAverage{Category: r.Category, Average: r.Average.InexactFloat64()})
	}
	return averages
}

func scatterPoints(points []model.ProductSalesPoint) []ScatterPoint {
	out := make([]ScatterPoint, 0, len(points))
	for i, p := range points {
		out = append(out, ScatterPoint{
			X:    p.Price.InexactFloat64(),
			Y:    p.QuantitySold.InexactFloat64(),
			Name: fmt.Sprintf("Producto %d", i+1),
		})
	}
	return out
}

// saleRows builds the table rows, resolving client names against clients
func saleRows(sales []SaleView, clients []model.Client) []SaleRow {
	rows := make([]SaleRow, 0, len(sales))
	for _, s := range sales {
		name := "N/A"
		if c, ok := model.FindClient(clients, s.ClientID); ok {
			name = c.Name
		}
		rows = append(rows, SaleRow{
			ID:        s.ID,
			Date:      s.Date,
			Client:    name,
			Method:    s.Method.Label(),
			ItemCount: s.ItemCount(),
			Amount:    s.Total,
		})
	}
	return rows
}
