package inventory

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// ListView owns the state of one product list page: cursor, search term,
// filter mode and the last fetched rows. It is created per view instance and
// discarded with it.
type ListView struct {
	gw       Gateway
	notifier Notifier
	logger   *slog.Logger
	fold     cases.Caser

	mu          sync.Mutex
	current     int
	totalPages  int
	search      string
	filter      FilterMode
	status      ListStatus
	lastFetched []Product
	issued      uint64
	edits       map[int64]*EditSession
}

// ListOption customises a ListView.
type ListOption func(*ListView)

// WithLogger sets the logger used for load failures.
func WithLogger(logger *slog.Logger) ListOption {
	return func(v *ListView) {
		v.logger = logger
	}
}

// AtPage positions the cursor before the first fetch.
func AtPage(n int) ListOption {
	return func(v *ListView) {
		v.current = clampPage(n, 0)
	}
}

// WithFilterMode sets the initial filter.
func WithFilterMode(mode FilterMode) ListOption {
	return func(v *ListView) {
		v.filter = mode
	}
}

// WithSearchTerm sets the initial search term.
func WithSearchTerm(term string) ListOption {
	return func(v *ListView) {
		v.search = term
	}
}

// NewListView builds a view positioned on page 1 with no search or filter
// unless options say otherwise. Nothing is fetched until Refresh.
func NewListView(gw Gateway, notifier Notifier, opts ...ListOption) *ListView {
	v := &ListView{
		gw:       gw,
		notifier: notifierOrDiscard(notifier),
		fold:     cases.Fold(),
		current:  1,
		filter:   FilterAll,
		status:   StatusIdle,
		edits:    make(map[int64]*EditSession),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// SetPage moves the cursor to n (at least 1, at most TotalPages once known)
// and refetches.
func (v *ListView) SetPage(ctx context.Context, n int) error {
	v.mu.Lock()
	v.current = clampPage(n, v.totalPages)
	v.mu.Unlock()
	return v.Refresh(ctx)
}

// SetFilterMode changes the filter and refetches the current page. Filtering
// itself is applied locally in VisibleRows.
func (v *ListView) SetFilterMode(ctx context.Context, mode FilterMode) error {
	v.mu.Lock()
	v.filter = mode
	v.mu.Unlock()
	return v.Refresh(ctx)
}

// SetSearchTerm changes the search term. No fetch happens.
func (v *ListView) SetSearchTerm(term string) {
	v.mu.Lock()
	v.search = term
	v.mu.Unlock()
}

// Refresh fetches the current page. On failure the user is notified and the
// previous rows and page count stay in place. Responses of superseded calls
// are dropped.
func (v *ListView) Refresh(ctx context.Context) error {
	v.mu.Lock()
	v.issued++
	seq := v.issued
	page := v.current
	v.status = StatusLoading
	v.mu.Unlock()

	result, err := v.gw.List(ctx, page, ListPageSize)

	v.mu.Lock()
	if seq != v.issued {
		v.mu.Unlock()
		return nil
	}
	if err != nil {
		v.status = StatusError
		v.mu.Unlock()
		if v.logger != nil {
			v.logger.Error("load products", slog.Int("page", page), slog.Any("error", err))
		}
		v.notifier.Notify(LevelError, MsgLoadProductsFailed)
		return err
	}
	v.lastFetched = append([]Product(nil), result.Items...)
	v.totalPages = totalPages(result.Total, ListPageSize)
	v.status = StatusIdle
	beyond := v.totalPages > 0 && v.current > v.totalPages
	if beyond {
		v.current = v.totalPages
	}
	v.mu.Unlock()

	if beyond {
		// The collection shrank under the cursor; fetch the new last page once.
		return v.Refresh(ctx)
	}
	return nil
}

// VisibleRows returns the fetched rows matching the search term (name or SKU,
// case-insensitive) and the filter mode, in server order.
func (v *ListView) VisibleRows() []Product {
	v.mu.Lock()
	defer v.mu.Unlock()
	needle := v.fold.String(v.search)
	rows := make([]Product, 0, len(v.lastFetched))
	for _, p := range v.lastFetched {
		if needle != "" && !strings.Contains(v.fold.String(p.Name), needle) && !strings.Contains(v.fold.String(p.SKU), needle) {
			continue
		}
		if v.filter == FilterLowStock && !IsLowStock(p) {
			continue
		}
		rows = append(rows, p)
	}
	return rows
}

// Items returns a copy of the last fetched rows.
func (v *ListView) Items() []Product {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Product(nil), v.lastFetched...)
}

// CurrentPage returns the page cursor.
func (v *ListView) CurrentPage() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// TotalPages returns the page count reported by the last successful fetch.
func (v *ListView) TotalPages() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.totalPages
}

// SearchTerm returns the active search term.
func (v *ListView) SearchTerm() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.search
}

// FilterMode returns the active filter.
func (v *ListView) FilterMode() FilterMode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

// Status returns the fetch lifecycle state.
func (v *ListView) Status() ListStatus {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// HasPrev reports whether a previous page exists.
func (v *ListView) HasPrev() bool {
	return v.CurrentPage() > 1
}

// HasNext reports whether a next page exists.
func (v *ListView) HasNext() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current < v.totalPages
}

// Find returns the fetched row with the given id.
func (v *ListView) Find(id int64) (Product, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, p := range v.lastFetched {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func clampPage(n, total int) int {
	if n < 1 {
		n = 1
	}
	if total > 0 && n > total {
		n = total
	}
	return n
}

func totalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}
