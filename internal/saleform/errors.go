package saleform

import "errors"

const errorTitle = "Error"

// Fixed dialog messages
const (
	MsgNoClient     = "Debe seleccionar un cliente"
	MsgNoMethod     = "Debe seleccionar un método de pago"
	MsgEmptyCart    = "Debe agregar al menos un producto con cantidad mayor a cero."
	MsgSaveFailed   = "No se pudo guardar la venta"
	MsgDeleteFailed = "No se pudo eliminar la venta"
)

var (
	ErrNoSaleSelected     = errors.New("no sale selected")
	ErrSaveInProgress     = errors.New("a save is already in progress")
	ErrDeleteNotRequested = errors.New("delete was not requested")
	ErrUnknownSale        = errors.New("sale not found")
	ErrInvalidMethod      = errors.New("invalid payment method")
)

// DialogError is a failure the user has to acknowledge
type DialogError struct {
	Title       string
	Description string
	// Validation is true for draft problems the user can fix and resubmit
	Validation bool
	Err        error
}

func (e *DialogError) Error() string {
	if e.Err != nil {
		return e.Description + ": " + e.Err.Error()
	}
	return e.Description
}

func (e *DialogError) Unwrap() error {
	return e.Err
}

func validationError(msg string) *DialogError {
	return &DialogError{Title: errorTitle, Description: msg, Validation: true}
}

func failure(msg string, err error) *DialogError {
	return &DialogError{Title: errorTitle, Description: msg, Err: err}
}
