package backend

import (
	"sales-dashboard/internal/model"

	"github.com/shopspring/decimal"
)

// Demonstration datasets served when the backend cannot be reached.
// Every accessor returns a fresh copy.

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// MockClients returns the demonstration client list
func MockClients() []model.Client {
	return []model.Client{
		{ID: 1, Name: "Juan Pérez", Sex: "M", Age: 28, PostalCode: "28001", Email: "juan@example.com"},
		{ID: 2, Name: "María García", Sex: "F", Age: 34, PostalCode: "28002", Email: "maria@example.com"},
		{ID: 3, Name: "Carlos López", Sex: "M", Age: 45, PostalCode: "28003", Email: "carlos@example.com"},
		{ID: 4, Name: "Ana Martínez", Sex: "F", Age: 29, PostalCode: "28004", Email: "ana@example.com"},
		{ID: 5, Name: "Luis Rodríguez", Sex: "M", Age: 52, PostalCode: "28005", Email: "luis@example.com"},
	}
}

// MockProducts returns the demonstration catalog
func MockProducts() []model.Product {
	return []model.Product{
		{ID: 1, Name: "Papas Fritas", Price: d("2.50"), Brand: "Lays", Category: "Snacks", Stock: 100, Description: "Papas fritas clásicas"},
		{ID: 2, Name: "Galletas Oreo", Price: d("3.80"), Brand: "Nabisco", Category: "Snacks", Stock: 80, Description: "Galletas de chocolate"},
		{ID: 3, Name: "Coca Cola 2L", Price: d("2.90"), Brand: "Coca Cola", Category: "Bebidas", Stock: 150, Description: "Bebida gaseosa"},
		{ID: 4, Name: "Agua Mineral 1.5L", Price: d("1.20"), Brand: "Evian", Category: "Bebidas", Stock: 200, Description: "Agua natural", Healthy: true},
		{ID: 5, Name: "Detergente", Price: d("5.50"), Brand: "Ariel", Category: "Limpieza", Stock: 60, Description: "Detergente líquido"},
		{ID: 6, Name: "Arroz 1kg", Price: d("1.80"), Brand: "Diana", Category: "Alimentos", Stock: 120, Description: "Arroz blanco", Healthy: true},
		{ID: 7, Name: "Yogur Natural", Price: d("3.20"), Brand: "Danone", Category: "Alimentos", Stock: 90, Description: "Yogur sin azúcar", Healthy: true},
		{ID: 8, Name: "Cerveza Lata", Price: d("1.50"), Brand: "Heineken", Category: "Bebidas", Stock: 180, Description: "Cerveza premium"},
	}
}

// MockSales returns the demonstration sales, without detail lines
func MockSales() []model.Sale {
	return []model.Sale{
		{ID: 1, Date: "2025-11-01T10:30:00Z", ClientID: 1, Method: model.Card, Total: d("15.40")},
		{ID: 2, Date: "2025-11-02T14:20:00Z", ClientID: 2, Method: model.Cash, Total: d("8.70")},
		{ID: 3, Date: "2025-11-03T09:15:00Z", ClientID: 3, Method: model.Transfer, Total: d("22.50")},
		{ID: 4, Date: "2025-11-05T16:45:00Z", ClientID: 4, Method: model.Card, Total: d("12.30")},
		{ID: 5, Date: "2025-11-07T11:00:00Z", ClientID: 5, Method: model.Cash, Total: d("18.90")},
	}
}

// MockCategoryUnits returns the demonstration units-per-category breakdown
func MockCategoryUnits() []model.CategoryUnits {
	return []model.CategoryUnits{
		{Category: "Snacks", Units: d("45")},
		{Category: "Bebidas", Units: d("78")},
		{Category: "Limpieza", Units: d("23")},
		{Category: "Alimentos", Units: d("56")},
	}
}

// MockProductSales returns the demonstration price/quantity points
func MockProductSales() []model.ProductSalesPoint {
	return []model.ProductSalesPoint{
		{Price: d("2.50"), QuantitySold: d("45")},
		{Price: d("3.80"), QuantitySold: d("30")},
		{Price: d("2.90"), QuantitySold: d("52")},
		{Price: d("1.20"), QuantitySold: d("70")},
		{Price: d("5.50"), QuantitySold: d("23")},
		{Price: d("1.80"), QuantitySold: d("40")},
		{Price: d("3.20"), QuantitySold: d("16")},
		{Price: d("1.50"), QuantitySold: d("48")},
	}
}

// MockPaymentTrend returns the demonstration trend with a zero variance
func MockPaymentTrend() model.PaymentTrend {
	return model.PaymentTrend{
		Trend: []model.PaymentTrendPoint{
			{Date: "2025-11-01", Card: d("450"), Transfer: d("320"), Cash: d("180")},
			{Date: "2025-11-02", Card: d("520"), Transfer: d("280"), Cash: d("220")},
			{Date: "2025-11-03", Card: d("480"), Transfer: d("390"), Cash: d("150")},
			{Date: "2025-11-04", Card: d("610"), Transfer: d("340"), Cash: d("200")},
			{Date: "2025-11-05", Card: d("550"), Transfer: d("420"), Cash: d("170")},
			{Date: "2025-11-06", Card: d("590"), Transfer: d("380"), Cash: d("190")},
			{Date: "2025-11-07", Card: d("640"), Transfer: d("450"), Cash: d("210")},
		},
		Variance: model.PaymentMethodVariance{
			Card:     decimal.Zero,
			Cash:     decimal.Zero,
			Transfer: decimal.Zero,
		},
	}
}
