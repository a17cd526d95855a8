package model

import "github.com/shopspring/decimal"

// CategoryUnits is one row of GET /estadisticas/unidades-vendidas-categoria
type CategoryUnits struct {
	Category string          `json:"categoria"`
	Units    decimal.Decimal `json:"unidades_vendidas"`
	Average  decimal.Decimal `json:"promedio"`
}

// ProductSalesPoint pairs a price with the quantity sold at that price.
// Both arrive as numeric text, e.g. "1500.00" and "21".
type ProductSalesPoint struct {
	Price        decimal.Decimal `json:"precio"`
	QuantitySold decimal.Decimal `json:"cantidad_vendida"`
}

// PaymentTrendPoint is the amount collected per payment method on one date
type PaymentTrendPoint struct {
	Date     string          `json:"fecha"`
	Card     decimal.Decimal `json:"Tarjeta"`
	Cash     decimal.Decimal `json:"Efectivo"`
	Transfer decimal.Decimal `json:"Transferencia"`
}

// PaymentMethodVariance holds the backend-computed standard deviation per method
type PaymentMethodVariance struct {
	Card     decimal.Decimal `json:"Tarjeta"`
	Cash     decimal.Decimal `json:"Efectivo"`
	Transfer decimal.Decimal `json:"Transferencia"`
}

// PaymentTrend is the body of GET /estadisticas/metodos-pago-tiempo
type PaymentTrend struct {
	Trend    []PaymentTrendPoint   `json:"tendencia"`
	Variance PaymentMethodVariance `json:"desvio"`
}

// PearsonCorrelation is the price/quantity correlation summary
type PearsonCorrelation struct {
	Coefficient    decimal.Decimal `json:"coeficiente"`
	Interpretation string          `json:"interpretacion"`
}
