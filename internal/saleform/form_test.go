package saleform

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sales-dashboard/internal/dashboard"
	"sales-dashboard/internal/model"
	"sales-dashboard/pkg/backend"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memStore struct {
	mu     sync.Mutex
	sales  []dashboard.SaleView
	prices map[int]decimal.Decimal
}

func (s *memStore) FindSale(id int) (dashboard.SaleView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.sales {
		if v.ID == id {
			return v, true
		}
	}
	return dashboard.SaleView{}, false
}

func (s *memStore) ProductPrice(id int) (decimal.Decimal, bool) {
	p, ok := s.prices[id]
	return p, ok
}

func (s *memStore) UpsertSale(v dashboard.SaleView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sales {
		if s.sales[i].ID == v.ID {
			s.sales[i] = v
			return
		}
	}
	s.sales = append(s.sales, v)
}

func (s *memStore) RemoveSale(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sales {
		if s.sales[i].ID == id {
			s.sales = append(s.sales[:i], s.sales[i+1:]...)
			return true
		}
	}
	return false
}

func (s *memStore) count(id int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.sales {
		if v.ID == id {
			n++
		}
	}
	return n
}

type fakeWriter struct {
	mu      sync.Mutex
	created []model.SaleInput
	updated map[int]model.SaleInput
	deleted []int
	err     error
	nextID  int
	outcome backend.Outcome
	block   chan struct{}
	started chan struct{}
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{updated: map[int]model.SaleInput{}, nextID: 100, outcome: backend.Persisted}
}

func (w *fakeWriter) wait() {
	if w.started != nil {
		close(w.started)
	}
	if w.block != nil {
		<-w.block
	}
}

func (w *fakeWriter) CreateSale(_ context.Context, in model.SaleInput) (backend.WriteResult, error) {
	w.wait()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.created = append(w.created, in)
	if w.err != nil {
		return backend.WriteResult{}, w.err
	}
	return backend.WriteResult{
		Sale: model.Sale{
			ID: w.nextID, Date: in.Date, ClientID: in.ClientID, Method: in.Method,
			Total: model.DetailsTotal(in.Details), Details: in.Details,
		},
		Outcome: w.outcome,
	}, nil
}

func (w *fakeWriter) UpdateSale(_ context.Context, id int, in model.SaleInput) (backend.WriteResult, error) {
	w.wait()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.updated[id] = in
	if w.err != nil {
		return backend.WriteResult{}, w.err
	}
	return backend.WriteResult{
		Sale: model.Sale{
			ID: id, Date: in.Date, ClientID: in.ClientID, Method: in.Method,
			Total: model.DetailsTotal(in.Details), Details: in.Details,
		},
		Outcome: w.outcome,
	}, nil
}

func (w *fakeWriter) DeleteSale(_ context.Context, id int) (backend.Outcome, error) {
	w.wait()
	w.mu.Lock()
	defer w.mu.Unlock()
	w.deleted = append(w.deleted, id)
	if w.err != nil {
		return "", w.err
	}
	return w.outcome, nil
}

func (w *fakeWriter) calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.created) + len(w.updated) + len(w.deleted)
}

type countingReloader struct {
	mu   sync.Mutex
	n    int
	done int
}

func (r *countingReloader) Reload(ctx context.Context) error {
	r.mu.Lock()
	r.n++
	if ctx.Err() != nil {
		r.done++
	}
	r.mu.Unlock()
	return nil
}

func (r *countingReloader) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

var fixedNow = time.Date(2025, 11, 12, 9, 30, 0, 0, time.UTC)

func newTestForm(store *memStore, writer *fakeWriter, reloader *countingReloader, opts ...Option) *Form {
	dates := dashboard.DateFormatter{Layout: "2/1/2006", Location: time.UTC}
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewForm(store, writer, reloader, dates, opts...)
}

func catalogStore() *memStore {
	return &memStore{prices: map[int]decimal.Decimal{
		1: decimal.RequireFromString("2.50"),
		4: decimal.RequireFromString("1.20"),
	}}
}

func TestSetQuantityKeepsOnlyPositiveEntries(t *testing.T) {
	f := newTestForm(catalogStore(), newFakeWriter(), &countingReloader{})

	f.SetQuantity(4, 3)
	f.SetQuantity(1, 2)
	f.SetQuantity(1, 0)
	f.SetQuantity(7, -1)

	d := f.Draft()
	if len(d.Products) != 1 || d.Products[4] != 3 {
		t.Errorf("Expected only product 4 with quantity 3, got %v", d.Products)
	}
	for pid, q := range d.Products {
		if q <= 0 {
			t.Errorf("Product %d has non-positive quantity %d", pid, q)
		}
	}
}

func TestTotalsUseCatalogPrices(t *testing.T) {
	f := newTestForm(catalogStore(), newFakeWriter(), &countingReloader{})
	f.SetQuantity(1, 2)
	f.SetQuantity(4, 3)
	f.SetQuantity(99, 5)

	got := f.Totals()
	if got.Items != 5 {
		t.Errorf("Expected 5 items, got %d", got.Items)
	}
	if !got.Amount.Equal(decimal.RequireFromString("8.60")) {
		t.Errorf("Expected amount 8.60, got %s", got.Amount)
	}
}

func TestSaveValidation(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *Form)
		want  string
	}{
		{"no client", func(f *Form) { _ = f.SetMethod(model.Cash); f.SetQuantity(4, 1) }, MsgNoClient},
		{"nothing set", func(f *Form) {}, MsgNoClient},
		{"no method", func(f *Form) { f.SetClient(1); f.SetQuantity(4, 1) }, MsgNoMethod},
		{"empty cart", func(f *Form) { f.SetClient(1); _ = f.SetMethod(model.Cash) }, MsgEmptyCart},
		{"all zero", func(f *Form) {
			f.SetClient(1)
			_ = f.SetMethod(model.Cash)
			f.SetQuantity(4, 2)
			f.SetQuantity(4, 0)
		}, MsgEmptyCart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newFakeWriter()
			f := newTestForm(catalogStore(), w, &countingReloader{})
			tt.setup(f)

			_, err := f.Save(context.Background())
			var de *DialogError
			if !errors.As(err, &de) {
				t.Fatalf("Expected DialogError, got %v", err)
			}
			if de.Description != tt.want || de.Title != "Error" || !de.Validation {
				t.Errorf("Expected %q, got %+v", tt.want, de)
			}
			if w.calls() != 0 {
				t.Errorf("Expected no writer calls, got %d", w.calls())
			}
		})
	}
}

func TestSaveCreatesSale(t *testing.T) {
	store := catalogStore()
	w := newFakeWriter()
	r := &countingReloader{}
	f := newTestForm(store, w, r)

	f.SetClient(1)
	if err := f.SetMethod(model.Cash); err != nil {
		t.Fatalf("SetMethod failed: %v", err)
	}
	f.SetQuantity(4, 2)

	res, err := f.Save(context.Background())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if len(w.created) != 1 {
		t.Fatalf("Expected 1 create, got %d", len(w.created))
	}
	in := w.created[0]
	if in.Date != "2025-11-12T09:30:00.000Z" {
		t.Errorf("Expected current timestamp, got %s", in.Date)
	}
	if len(in.Details) != 1 || in.Details[0].ProductID != 4 || in.Details[0].Quantity != 2 ||
		!in.Details[0].UnitPrice.Equal(decimal.RequireFromString("1.20")) {
		t.Errorf("Unexpected details: %+v", in.Details)
	}

	if !res.Created || res.Outcome != backend.Persisted {
		t.Errorf("Unexpected result: %+v", res)
	}
	if !res.Sale.Total.Equal(decimal.RequireFromString("2.40")) {
		t.Errorf("Expected total 2.40, got %s", res.Sale.Total)
	}
	if res.Sale.Date != "12/11/2025" {
		t.Errorf("Expected display date, got %s", res.Sale.Date)
	}
	if store.count(100) != 1 {
		t.Errorf("Expected sale 100 exactly once, got %d", store.count(100))
	}
	if d := f.Draft(); d.ClientID != 0 || d.Method != "" || len(d.Products) != 0 || d.Editing {
		t.Errorf("Expected cleared draft, got %+v", d)
	}
	if r.count() != 1 {
		t.Errorf("Expected 1 reload, got %d", r.count())
	}
}

func TestSaveUpdatesSelectedSale(t *testing.T) {
	store := catalogStore()
	store.sales = []dashboard.SaleView{
		{ID: 7, ClientID: 2, Method: model.Transfer, Products: map[int]int{1: 1}},
		{ID: 8, ClientID: 3, Method: model.Card, Products: map[int]int{4: 1}},
	}
	w := newFakeWriter()
	w.outcome = backend.Simulated
	f := newTestForm(store, w, &countingReloader{})

	if err := f.Select(7); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	d := f.Draft()
	if !d.Editing || d.SelectedID != 7 || d.ClientID != 2 || d.Method != model.Transfer || d.Products[1] != 1 {
		t.Fatalf("Select did not copy sale: %+v", d)
	}

	f.SetQuantity(4, 5)
	res, err := f.Save(context.Background())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, ok := w.updated[7]; !ok || len(w.created) != 0 {
		t.Errorf("Expected update of sale 7 only, got created=%d updated=%v", len(w.created), w.updated)
	}
	if res.Created || res.Outcome != backend.Simulated {
		t.Errorf("Unexpected result: %+v", res)
	}
	if store.count(7) != 1 || len(store.sales) != 2 {
		t.Errorf("Expected in place replacement, got %+v", store.sales)
	}
	s, _ := store.FindSale(7)
	if s.Products[4] != 5 || s.Products[1] != 1 {
		t.Errorf("Unexpected patched products: %v", s.Products)
	}
}

func TestSelectUnknownSale(t *testing.T) {
	f := newTestForm(catalogStore(), newFakeWriter(), &countingReloader{})
	if err := f.Select(42); !errors.Is(err, ErrUnknownSale) {
		t.Errorf("Expected ErrUnknownSale, got %v", err)
	}
}

func TestSelectDiscardsDirtyDraft(t *testing.T) {
	store := catalogStore()
	store.sales = []dashboard.SaleView{{ID: 3, ClientID: 5, Method: model.Card, Products: map[int]int{}}}
	f := newTestForm(store, newFakeWriter(), &countingReloader{})

	f.SetClient(1)
	f.SetQuantity(4, 9)
	if err := f.Select(3); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if d := f.Draft(); d.ClientID != 5 || len(d.Products) != 0 {
		t.Errorf("Expected selected sale to replace draft, got %+v", d)
	}
}

func TestSetMethodRejectsUnknown(t *testing.T) {
	f := newTestForm(catalogStore(), newFakeWriter(), &countingReloader{})
	if err := f.SetMethod(model.PaymentMethod("Bitcoin")); !errors.Is(err, ErrInvalidMethod) {
		t.Errorf("Expected ErrInvalidMethod, got %v", err)
	}
}

func TestSaveFailureKeepsDraft(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	w := newFakeWriter()
	w.err = context.DeadlineExceeded
	r := &countingReloader{}
	f := newTestForm(catalogStore(), w, r, WithLogger(zap.New(core)))

	f.SetClient(1)
	_ = f.SetMethod(model.Card)
	f.SetQuantity(1, 1)

	_, err := f.Save(context.Background())
	var de *DialogError
	if !errors.As(err, &de) || de.Description != MsgSaveFailed || de.Validation {
		t.Fatalf("Expected save failure dialog, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected wrapped cause, got %v", err)
	}
	if d := f.Draft(); d.ClientID != 1 || d.Products[1] != 1 {
		t.Errorf("Expected draft intact, got %+v", d)
	}
	if r.count() != 0 {
		t.Error("Expected no reload on failure")
	}
	if logs.FilterMessage("Failed to save sale").Len() != 1 {
		t.Error("Expected failure log entry")
	}
}

func TestSaveRejectsConcurrentSubmit(t *testing.T) {
	w := newFakeWriter()
	w.block = make(chan struct{})
	w.started = make(chan struct{})
	f := newTestForm(catalogStore(), w, &countingReloader{})

	f.SetClient(1)
	_ = f.SetMethod(model.Cash)
	f.SetQuantity(4, 2)

	done := make(chan error, 1)
	go func() {
		_, err := f.Save(context.Background())
		done <- err
	}()
	<-w.started

	if !f.Snapshot().Saving {
		t.Error("Expected saving flag while in flight")
	}
	if _, err := f.Save(context.Background()); !errors.Is(err, ErrSaveInProgress) {
		t.Errorf("Expected ErrSaveInProgress, got %v", err)
	}

	close(w.block)
	if err := <-done; err != nil {
		t.Fatalf("First save failed: %v", err)
	}
	if len(w.created) != 1 {
		t.Errorf("Expected exactly 1 create, got %d", len(w.created))
	}
	if f.Snapshot().Saving {
		t.Error("Expected saving flag cleared")
	}
}

func TestDeleteFlow(t *testing.T) {
	store := catalogStore()
	store.sales = []dashboard.SaleView{{ID: 5, ClientID: 1, Method: model.Cash, Products: map[int]int{4: 1}}}
	w := newFakeWriter()
	r := &countingReloader{}
	f := newTestForm(store, w, r)

	if _, err := f.RequestDelete(); !errors.Is(err, ErrNoSaleSelected) {
		t.Errorf("Expected ErrNoSaleSelected, got %v", err)
	}
	if err := f.Select(5); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if _, err := f.ConfirmDelete(context.Background()); !errors.Is(err, ErrDeleteNotRequested) {
		t.Errorf("Expected ErrDeleteNotRequested, got %v", err)
	}

	c, err := f.RequestDelete()
	if err != nil {
		t.Fatalf("RequestDelete failed: %v", err)
	}
	if c.Title != "¿Borrar Venta?" || c.SaleID != 5 {
		t.Errorf("Unexpected confirmation: %+v", c)
	}
	f.CancelDelete()
	if f.Snapshot().PendingDelete {
		t.Error("Expected confirmation dismissed")
	}
	if _, err := f.ConfirmDelete(context.Background()); !errors.Is(err, ErrDeleteNotRequested) {
		t.Errorf("Expected ErrDeleteNotRequested after cancel, got %v", err)
	}

	if _, err := f.RequestDelete(); err != nil {
		t.Fatalf("RequestDelete failed: %v", err)
	}
	res, err := f.ConfirmDelete(context.Background())
	if err != nil {
		t.Fatalf("ConfirmDelete failed: %v", err)
	}
	if res.SaleID != 5 || res.Outcome != backend.Persisted {
		t.Errorf("Unexpected result: %+v", res)
	}
	if store.count(5) != 0 {
		t.Error("Sale 5 still present")
	}
	if d := f.Draft(); d.Editing {
		t.Errorf("Expected cleared draft, got %+v", d)
	}
	if r.count() != 1 {
		t.Errorf("Expected 1 reload, got %d", r.count())
	}
}

func TestDeleteFailureLeavesState(t *testing.T) {
	store := catalogStore()
	store.sales = []dashboard.SaleView{{ID: 5, ClientID: 1, Method: model.Cash, Products: map[int]int{4: 1}}}
	w := newFakeWriter()
	w.err = context.Canceled
	f := newTestForm(store, w, &countingReloader{})

	_ = f.Select(5)
	_, _ = f.RequestDelete()
	_, err := f.ConfirmDelete(context.Background())

	var de *DialogError
	if !errors.As(err, &de) || de.Description != MsgDeleteFailed {
		t.Fatalf("Expected delete failure dialog, got %v", err)
	}
	if store.count(5) != 1 {
		t.Error("Expected sale 5 kept")
	}
	if d := f.Draft(); !d.Editing || d.SelectedID != 5 {
		t.Errorf("Expected selection kept, got %+v", d)
	}
	if !f.Snapshot().PendingDelete {
		t.Error("Expected confirmation to stay open after failure")
	}
}

func TestConfirmDeleteRejectsSecondConfirm(t *testing.T) {
	store := catalogStore()
	store.sales = []dashboard.SaleView{{ID: 5, ClientID: 1, Method: model.Cash, Products: map[int]int{4: 1}}}
	w := newFakeWriter()
	w.block = make(chan struct{})
	w.started = make(chan struct{})
	f := newTestForm(store, w, &countingReloader{})

	_ = f.Select(5)
	if _, err := f.RequestDelete(); err != nil {
		t.Fatalf("RequestDelete failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.ConfirmDelete(context.Background())
		done <- err
	}()
	<-w.started

	if _, err := f.ConfirmDelete(context.Background()); !errors.Is(err, ErrDeleteNotRequested) {
		t.Errorf("Expected ErrDeleteNotRequested while delete in flight, got %v", err)
	}

	close(w.block)
	if err := <-done; err != nil {
		t.Fatalf("First confirm failed: %v", err)
	}
	if len(w.deleted) != 1 {
		t.Errorf("Expected exactly 1 delete, got %d", len(w.deleted))
	}
}

func TestSelectClearsUnknownMethod(t *testing.T) {
	store := catalogStore()
	store.sales = []dashboard.SaleView{{ID: 6, ClientID: 1, Method: model.PaymentMethod("Cheque"), Products: map[int]int{4: 1}}}
	w := newFakeWriter()
	f := newTestForm(store, w, &countingReloader{})

	if err := f.Select(6); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if d := f.Draft(); d.Method != "" {
		t.Errorf("Expected empty method, got %q", d.Method)
	}

	_, err := f.Save(context.Background())
	var de *DialogError
	if !errors.As(err, &de) || de.Description != MsgNoMethod {
		t.Fatalf("Expected %q, got %v", MsgNoMethod, err)
	}
	if w.calls() != 0 {
		t.Errorf("Expected no writer calls, got %d", w.calls())
	}
}

func TestSaveKeepsDraftSelectedDuringWrite(t *testing.T) {
	store := catalogStore()
	store.sales = []dashboard.SaleView{{ID: 8, ClientID: 3, Method: model.Card, Products: map[int]int{1: 2}}}
	w := newFakeWriter()
	w.block = make(chan struct{})
	w.started = make(chan struct{})
	f := newTestForm(store, w, &countingReloader{})

	f.SetClient(1)
	_ = f.SetMethod(model.Cash)
	f.SetQuantity(4, 2)

	done := make(chan error, 1)
	go func() {
		_, err := f.Save(context.Background())
		done <- err
	}()
	<-w.started

	if err := f.Select(8); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	close(w.block)
	if err := <-done; err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	d := f.Draft()
	if !d.Editing || d.SelectedID != 8 || d.ClientID != 3 || d.Method != model.Card || d.Products[1] != 2 {
		t.Errorf("Expected sale 8 to stay selected, got %+v", d)
	}
	if store.count(100) != 1 {
		t.Errorf("Expected created sale 100 in store, got %d", store.count(100))
	}
}

func TestReloadOutlivesCancelledRequest(t *testing.T) {
	w := newFakeWriter()
	r := &countingReloader{}
	f := newTestForm(catalogStore(), w, r)

	f.SetClient(1)
	_ = f.SetMethod(model.Cash)
	f.SetQuantity(4, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Save(ctx); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if r.count() != 1 || r.done != 0 {
		t.Errorf("Expected 1 reload with a live context, got %d reloads, %d cancelled", r.count(), r.done)
	}
}

func TestSnapshot(t *testing.T) {
	f := newTestForm(catalogStore(), newFakeWriter(), &countingReloader{})
	s := f.Snapshot()
	if s.SelectedID != nil || s.ClientID != nil || s.Method != "" || !s.Totals.Amount.IsZero() {
		t.Errorf("Expected empty snapshot, got %+v", s)
	}

	f.SetClient(2)
	f.SetQuantity(1, 2)
	s = f.Snapshot()
	if s.ClientID == nil || *s.ClientID != 2 {
		t.Errorf("Expected client 2, got %v", s.ClientID)
	}
	if s.Totals.Items != 2 || !s.Totals.Amount.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Unexpected totals: %+v", s.Totals)
	}
}
