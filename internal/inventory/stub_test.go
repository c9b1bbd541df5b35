package inventory

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

type listCall struct {
	Page, Size int
}

type stubGateway struct {
	mu          sync.Mutex
	pages       map[int]Page
	listErr     error
	createErr   error
	updateErr   error
	listCalls   []listCall
	createCalls []Draft
	updates     map[int64]int
	nextID      int64
}

func newStubGateway() *stubGateway {
	return &stubGateway{pages: map[int]Page{}, updates: map[int64]int{}, nextID: 100}
}

func (s *stubGateway) List(_ context.Context, page, size int) (Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls = append(s.listCalls, listCall{page, size})
	if s.listErr != nil {
		return Page{}, s.listErr
	}
	p, ok := s.pages[page]
	if !ok {
		for _, known := range s.pages {
			return Page{Total: known.Total, Number: page, Size: size}, nil
		}
		return Page{Number: page, Size: size}, nil
	}
	return p, nil
}

func (s *stubGateway) Create(_ context.Context, d Draft) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls = append(s.createCalls, d)
	if s.createErr != nil {
		return Product{}, s.createErr
	}
	s.nextID++
	return Product{ID: s.nextID, Name: d.Name, Type: d.Type, SKU: d.SKU, Quantity: d.Quantity, Price: d.Price}, nil
}

func (s *stubGateway) UpdateQuantity(_ context.Context, id int64, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates[id] = qty
	for n, p := range s.pages {
		for i := range p.Items {
			if p.Items[i].ID == id {
				p.Items[i].Quantity = qty
			}
		}
		s.pages[n] = p
	}
	return nil
}

func (s *stubGateway) calls() []listCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]listCall(nil), s.listCalls...)
}

type note struct {
	Level   Level
	Message string
}

type recorder struct {
	mu    sync.Mutex
	notes []note
}

func (r *recorder) Notify(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note{level, message})
}

func (r *recorder) all() []note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]note(nil), r.notes...)
}

func product(id int64, name, sku string, qty int, price string) Product {
	return Product{ID: id, Name: name, Type: "general", SKU: sku, Quantity: qty, Price: decimal.RequireFromString(price)}
}

func numberedProducts(from, to int) []Product {
	items := make([]Product, 0, to-from+1)
	for i := from; i <= to; i++ {
		items = append(items, product(int64(i), fmt.Sprintf("Item %d", i), fmt.Sprintf("SKU-%d", i), 20, "1"))
	}
	return items
}
