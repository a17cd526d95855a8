package model

import "github.com/shopspring/decimal"

// Client represents a customer as served by the backend. Read-only here.
type Client struct {
	ID         int    `json:"id_cliente"`
	Name       string `json:"nombre"`
	Sex        string `json:"sexo"`
	Age        int    `json:"edad"`
	PostalCode string `json:"codigo_postal"`
	Email      string `json:"correo"`
}

// Product represents a catalog entry. The backend may serialize the price
// as text ("1500.00"); decimal.Decimal decodes both forms.
type Product struct {
	ID          int             `json:"id_producto"`
	Name        string          `json:"nombre"`
	Price       decimal.Decimal `json:"precio"`
	Brand       string          `json:"marca"`
	Category    string          `json:"categoria"`
	Stock       int             `json:"stock"`
	Description string          `json:"descripcion"`
	Healthy     bool            `json:"saludable"`
}

// FindProduct returns the product with the given id, if present
func FindProduct(products []Product, id int) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// FindClient returns the client with the given id, if present
func FindClient(clients []Client, id int) (Client, bool) {
	for _, c := range clients {
		if c.ID == id {
			return c, true
		}
	}
	return Client{}, false
}
