package saleform

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"sales-dashboard/internal/dashboard"
	"sales-dashboard/internal/model"
	"sales-dashboard/pkg/backend"
	"sales-dashboard/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Confirmation texts for the delete dialog
const (
	ConfirmDeleteTitle       = "¿Borrar Venta?"
	ConfirmDeleteDescription = "¿Está seguro que desea eliminar permanentemente esta venta? Esta acción no se puede deshacer."
)

// Store is the local sale collection and catalog the form edits against
type Store interface {
	FindSale(id int) (dashboard.SaleView, bool)
	ProductPrice(id int) (decimal.Decimal, bool)
	UpsertSale(s dashboard.SaleView)
	RemoveSale(id int) bool
}

// SaleWriter persists sales
type SaleWriter interface {
	CreateSale(ctx context.Context, in model.SaleInput) (backend.WriteResult, error)
	UpdateSale(ctx context.Context, id int, in model.SaleInput) (backend.WriteResult, error)
	DeleteSale(ctx context.Context, id int) (backend.Outcome, error)
}

// Reloader refreshes the dashboard after a mutation
type Reloader interface {
	Reload(ctx context.Context) error
}

// Draft is the sale being created or edited. Zero ClientID and empty
// Method mean not selected.
type Draft struct {
	SelectedID int
	Editing    bool
	ClientID   int
	Method     model.PaymentMethod
	Products   map[int]int
}

// Totals are derived from the draft and the current catalog prices
type Totals struct {
	Items  int             `json:"total_productos"`
	Amount decimal.Decimal `json:"monto_total"`
}

// Snapshot is the draft as the presentation renders it
type Snapshot struct {
	SelectedID    *int                `json:"id_venta_seleccionada"`
	ClientID      *int                `json:"id_cliente"`
	Method        model.PaymentMethod `json:"metodo_pago,omitempty"`
	Products      map[int]int         `json:"productos"`
	Totals        Totals              `json:"totales"`
	Saving        bool                `json:"guardando"`
	PendingDelete bool                `json:"confirmar_borrado"`
}

// Confirmation is the dialog shown before a delete
type Confirmation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	SaleID      int    `json:"id_venta"`
}

// SaveResult reports a completed save
type SaveResult struct {
	Sale    dashboard.SaleView `json:"venta"`
	Created bool               `json:"creada"`
	Outcome backend.Outcome    `json:"outcome"`
}

// DeleteResult reports a completed delete
type DeleteResult struct {
	SaleID  int             `json:"id_venta"`
	Outcome backend.Outcome `json:"outcome"`
}

// Form holds the single draft of the process
type Form struct {
	store    Store
	writer   SaleWriter
	reloader Reloader
	dates    dashboard.DateFormatter
	log      *zap.Logger
	now      func() time.Time

	mu            sync.Mutex
	draft         Draft
	saving        bool
	pendingDelete bool
}

// Option configures a Form
type Option func(*Form)

// WithClock replaces the wall clock used for sale timestamps
func WithClock(now func() time.Time) Option {
	return func(f *Form) { f.now = now }
}

// WithLogger sets the fallback logger used when the context carries none
func WithLogger(l *zap.Logger) Option {
	return func(f *Form) { f.log = l }
}

// NewForm creates an empty form
func NewForm(store Store, writer SaleWriter, reloader Reloader, dates dashboard.DateFormatter, opts ...Option) *Form {
	f := &Form{
		store:    store,
		writer:   writer,
		reloader: reloader,
		dates:    dates,
		log:      zap.NewNop(),
		now:      time.Now,
		draft:    Draft{Products: map[int]int{}},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Select copies an existing sale into the draft, discarding any previous one
func (f *Form) Select(id int) error {
	sale, ok := f.store.FindSale(id)
	if !ok {
		return ErrUnknownSale
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	products := make(map[int]int, len(sale.Products))
	for pid, q := range sale.Products {
		if q > 0 {
			products[pid] = q
		}
	}
	method := sale.Method
	if !method.Valid() {
		method = ""
	}
	f.draft = Draft{
		SelectedID: sale.ID,
		Editing:    true,
		ClientID:   sale.ClientID,
		Method:     method,
		Products:   products,
	}
	f.pendingDelete = false
	return nil
}

// SetClient sets the draft client; zero clears it
func (f *Form) SetClient(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.ClientID = id
}

// SetMethod sets the draft payment method; the empty method clears it
func (f *Form) SetMethod(m model.PaymentMethod) error {
	if m != "" && !m.Valid() {
		return ErrInvalidMethod
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.Method = m
	return nil
}

// SetQuantity sets the pending quantity of a product. Zero or below
// removes the product from the draft.
func (f *Form) SetQuantity(productID, quantity int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if quantity <= 0 {
		delete(f.draft.Products, productID)
		return
	}
	f.draft.Products[productID] = quantity
}

// Clear empties the draft and drops the selection
func (f *Form) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearLocked()
}

func (f *Form) clearLocked() {
	f.draft = Draft{Products: map[int]int{}}
	f.pendingDelete = false
}

// Draft returns a copy of the current draft
func (f *Form) Draft() Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draftLocked()
}

func (f *Form) draftLocked() Draft {
	d := f.draft
	d.Products = make(map[int]int, len(f.draft.Products))
	for k, v := range f.draft.Products {
		d.Products[k] = v
	}
	return d
}

// Totals computes item count and amount at current catalog prices.
// Products missing from the catalog are left out.
func (f *Form) Totals() Totals {
	f.mu.Lock()
	products := f.draftLocked().Products
	f.mu.Unlock()
	return f.totals(products)
}

func (f *Form) totals(products map[int]int) Totals {
	t := Totals{Amount: decimal.Zero}
	for pid, q := range products {
		price, ok := f.store.ProductPrice(pid)
		if !ok || q <= 0 {
			continue
		}
		t.Items += q
		t.Amount = t.Amount.Add(price.Mul(decimal.NewFromInt(int64(q))))
	}
	return t
}

// Snapshot returns the draft with its totals
func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	d := f.draftLocked()
	saving, pending := f.saving, f.pendingDelete
	f.mu.Unlock()

	s := Snapshot{
		Method:        d.Method,
		Products:      d.Products,
		Totals:        f.totals(d.Products),
		Saving:        saving,
		PendingDelete: pending,
	}
	if d.Editing {
		id := d.SelectedID
		s.SelectedID = &id
	}
	if d.ClientID != 0 {
		id := d.ClientID
		s.ClientID = &id
	}
	return s
}

func validate(d Draft) error {
	switch {
	case d.ClientID == 0:
		return validationError(MsgNoClient)
	case !d.Method.Valid():
		return validationError(MsgNoMethod)
	case len(d.Products) == 0:
		return validationError(MsgEmptyCart)
	}
	return nil
}

// details builds the submitted lines in product order, each priced at the
// current catalog price.
func (f *Form) details(products map[int]int) []model.SaleDetail {
	ids := make([]int, 0, len(products))
	for pid, q := range products {
		if q > 0 {
			ids = append(ids, pid)
		}
	}
	sort.Ints(ids)

	details := make([]model.SaleDetail, 0, len(ids))
	for _, pid := range ids {
		price, _ := f.store.ProductPrice(pid)
		details = append(details, model.SaleDetail{
			ProductID: pid,
			Quantity:  products[pid],
			UnitPrice: price,
		})
	}
	return details
}

// Save validates the draft and creates or updates the sale. On success
// the local collection is patched, the draft cleared and the dashboard
// reloaded. Only one save may be in flight at a time.
func (f *Form) Save(ctx context.Context) (SaveResult, error) {
	log := logger.FromCtx(ctx, f.log)

	f.mu.Lock()
	if f.saving {
		f.mu.Unlock()
		return SaveResult{}, ErrSaveInProgress
	}
	d := f.draftLocked()
	if err := validate(d); err != nil {
		f.mu.Unlock()
		return SaveResult{}, err
	}
	f.saving = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.saving = false
		f.mu.Unlock()
	}()

	in := model.SaleInput{
		Date:     model.FormatTimestamp(f.now()),
		ClientID: d.ClientID,
		Method:   d.Method,
		Details:  f.details(d.Products),
	}

	var (
		res backend.WriteResult
		err error
	)
	if d.Editing {
		res, err = f.writer.UpdateSale(ctx, d.SelectedID, in)
	} else {
		res, err = f.writer.CreateSale(ctx, in)
	}
	if err != nil {
		log.Error("Failed to save sale", zap.Int("sale_id", d.SelectedID), zap.Error(err))
		return SaveResult{}, failure(MsgSaveFailed, err)
	}

	view := f.dates.ToSaleView(res.Sale)
	if d.Editing {
		view.ID = d.SelectedID
	}
	f.store.UpsertSale(view)

	// a sale selected while the write was in flight keeps its draft
	f.mu.Lock()
	if f.draft.Editing == d.Editing && f.draft.SelectedID == d.SelectedID {
		f.clearLocked()
	}
	f.mu.Unlock()

	log.Info("Sale saved",
		zap.Int("sale_id", view.ID),
		zap.Bool("created", !d.Editing),
		zap.String("outcome", string(res.Outcome)),
	)
	f.reload(ctx, log)

	return SaveResult{Sale: view, Created: !d.Editing, Outcome: res.Outcome}, nil
}

// RequestDelete opens the confirmation for the selected sale
func (f *Form) RequestDelete() (Confirmation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.draft.Editing {
		return Confirmation{}, ErrNoSaleSelected
	}
	f.pendingDelete = true
	return Confirmation{
		Title:       ConfirmDeleteTitle,
		Description: ConfirmDeleteDescription,
		SaleID:      f.draft.SelectedID,
	}, nil
}

// CancelDelete dismisses the confirmation without touching the draft
func (f *Form) CancelDelete() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pendingDelete = false
}

// ConfirmDelete deletes the selected sale after RequestDelete. On success
// the sale leaves the local collection, the draft is cleared and the
// dashboard reloaded. On failure state is left unchanged.
func (f *Form) ConfirmDelete(ctx context.Context) (DeleteResult, error) {
	log := logger.FromCtx(ctx, f.log)

	f.mu.Lock()
	if !f.draft.Editing {
		f.mu.Unlock()
		return DeleteResult{}, ErrNoSaleSelected
	}
	if !f.pendingDelete {
		f.mu.Unlock()
		return DeleteResult{}, ErrDeleteNotRequested
	}
	id := f.draft.SelectedID
	f.pendingDelete = false
	f.mu.Unlock()

	outcome, err := f.writer.DeleteSale(ctx, id)
	if err != nil {
		f.mu.Lock()
		if f.draft.Editing && f.draft.SelectedID == id {
			f.pendingDelete = true
		}
		f.mu.Unlock()
		log.Error("Failed to delete sale", zap.Int("sale_id", id), zap.Error(err))
		return DeleteResult{}, failure(MsgDeleteFailed, err)
	}

	f.store.RemoveSale(id)

	f.mu.Lock()
	if f.draft.Editing && f.draft.SelectedID == id {
		f.clearLocked()
	}
	f.mu.Unlock()

	log.Info("Sale deleted", zap.Int("sale_id", id), zap.String("outcome", string(outcome)))
	f.reload(ctx, log)

	return DeleteResult{SaleID: id, Outcome: outcome}, nil
}

// reload outlives the request that triggered it; each backend call is
// still bounded by its own timeout.
func (f *Form) reload(ctx context.Context, log *zap.Logger) {
	if f.reloader == nil {
		return
	}
	if err := f.reloader.Reload(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("Dashboard reload after sale change failed", zap.Error(err))
	}
}
