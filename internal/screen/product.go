package screen

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"firelist/internal/output"
	"firelist/internal/service"
	"firelist/internal/validate"
)

// EditorState is the state of the product editor.
type EditorState int

const (
	// EditorIdle means no product is being edited.
	EditorIdle EditorState = iota
	// EditorOpen means the editor is showing a draft for the selected product.
	EditorOpen
)

func (s EditorState) String() string {
	if s == EditorOpen {
		return "open"
	}
	return "idle"
}

// ProductForm holds the three text inputs of a product form.
type ProductForm struct {
	Name  string
	Type  string
	Price string
}

// ProductScreen is the product catalog screen.
type ProductScreen struct {
	svc service.Service
	log *zap.Logger

	mu       sync.Mutex
	form     ProductForm
	items    []service.Product
	state    EditorState
	selected string
	draft    ProductForm
	mounted  bool
}

// NewProductScreen creates an unmounted product screen.
func NewProductScreen(svc service.Service, log *zap.Logger) *ProductScreen {
	return &ProductScreen{svc: svc, log: log}
}

// Mount subscribes to the products collection. See TaskScreen.Mount.
func (s *ProductScreen) Mount(ctx context.Context, render func([]service.Product)) error {
	s.mu.Lock()
	if s.mounted {
		s.mu.Unlock()
		return ErrAlreadyMounted
	}
	s.mounted = true
	s.mu.Unlock()

	return mount(ctx, s.svc.WatchProducts, s.apply, render)
}

func (s *ProductScreen) apply(items []service.Product) {
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

// Items returns the latest snapshot.
func (s *ProductScreen) Items() []service.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]service.Product(nil), s.items...)
}

// Find returns the product with id from the latest snapshot.
func (s *ProductScreen) Find(id string) (service.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.items {
		if p.ID == id {
			return p, true
		}
	}
	return service.Product{}, false
}

// SetForm sets the add-product inputs.
func (s *ProductScreen) SetForm(f ProductForm) {
	s.mu.Lock()
	s.form = f
	s.mu.Unlock()
}

// Form returns the add-product inputs.
func (s *ProductScreen) Form() ProductForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Add creates a product from the form. All three fields are required and the
// price must parse as a number; otherwise an *Alert is returned and nothing is
// sent. Backend failures are logged. On success the form is cleared.
func (s *ProductScreen) Add(ctx context.Context) error {
	form := s.Form()
	fields, alert := CheckProductForm(form)
	if alert != nil {
		return alert
	}

	id, err := s.svc.AddProduct(ctx, fields)
	if err != nil {
		s.log.Error("error adding product", zap.Error(err))
		return nil
	}
	s.log.Debug("product added", zap.String("id", id))

	s.mu.Lock()
	if s.form == form {
		s.form = ProductForm{}
	}
	s.mu.Unlock()
	return nil
}

// State returns the editor state.
func (s *ProductScreen) State() EditorState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Selected returns the ID of the product being edited.
func (s *ProductScreen) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Draft returns the editor inputs.
func (s *ProductScreen) Draft() ProductForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetDraft replaces the editor inputs.
func (s *ProductScreen) SetDraft(f ProductForm) {
	s.mu.Lock()
	s.draft = f
	s.mu.Unlock()
}

// OpenEditor selects a product from the latest snapshot and pre-fills the
// draft with its current values. Unknown IDs leave the editor idle.
func (s *ProductScreen) OpenEditor(id string) bool {
	p, ok := s.Find(id)
	if !ok {
		return false
	}

	s.mu.Lock()
	s.selected = id
	s.draft = ProductForm{Name: p.Name, Type: p.Type, Price: output.FormatPrice(p.Price)}
	s.state = EditorOpen
	s.mu.Unlock()
	return true
}

// CancelEdit closes the editor without contacting the backend.
// The draft is kept until the next OpenEditor overwrites it.
func (s *ProductScreen) CancelEdit() {
	s.mu.Lock()
	s.state = EditorIdle
	s.mu.Unlock()
}

// ErrEditorClosed is returned by SubmitEdit when no product is being edited.
var ErrEditorClosed = errors.New("editor is not open")

// SubmitEdit sends the draft for the selected product.
// Invalid drafts return an *Alert and keep the editor open. Backend failures
// are logged and keep the editor open. On success the editor is closed and
// the draft cleared.
func (s *ProductScreen) SubmitEdit(ctx context.Context) error {
	s.mu.Lock()
	if s.state != EditorOpen {
		s.mu.Unlock()
		return ErrEditorClosed
	}
	id, draft := s.selected, s.draft
	s.mu.Unlock()

	fields, alert := CheckProductForm(draft)
	if alert != nil {
		return alert
	}

	if err := s.svc.UpdateProduct(ctx, id, fields); err != nil {
		s.log.Error("error updating product", zap.String("id", id), zap.Error(err))
		return nil
	}

	s.mu.Lock()
	s.state = EditorIdle
	s.draft = ProductForm{}
	s.mu.Unlock()
	return nil
}

// Delete removes a product. Failures are logged.
func (s *ProductScreen) Delete(ctx context.Context, id string) {
	if err := s.svc.DeleteProduct(ctx, id); err != nil {
		s.log.Error("error deleting product", zap.String("id", id), zap.Error(err))
	}
}

// CheckProductForm validates a product form and parses its price.
func CheckProductForm(f ProductForm) (service.ProductFields, *Alert) {
	fields, err := validate.Product(validate.ProductForm{Name: f.Name, Type: f.Type, Price: f.Price})
	switch {
	case err == nil:
		return fields, nil
	case errors.Is(err, validate.ErrBlank):
		return service.ProductFields{}, newAlert(MsgFillAllFields)
	case errors.Is(err, validate.ErrInvalidPrice):
		return service.ProductFields{}, newAlert(MsgInvalidPrice)
	default:
		return service.ProductFields{}, &Alert{Title: alertTitle, Message: err.Error()}
	}
}
