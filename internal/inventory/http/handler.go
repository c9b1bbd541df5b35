package inventoryhttp

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/stockdesk/stockdesk/internal/inventory"
	"github.com/stockdesk/stockdesk/internal/platform/httpx"
	"github.com/stockdesk/stockdesk/internal/shared"
	"github.com/stockdesk/stockdesk/internal/view"
)

// ProductAPI is the product API as the pages use it.
type ProductAPI interface {
	inventory.Gateway
	inventory.ProductReader
}

// GatewayFactory returns the product API authorised by a bearer token.
type GatewayFactory func(token string) ProductAPI

// Handler wires the dashboard and product pages.
type Handler struct {
	logger    *slog.Logger
	products  GatewayFactory
	snapshots inventory.SnapshotReader
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler constructs the inventory handler. snapshots may be nil.
func NewHandler(logger *slog.Logger, products GatewayFactory, snapshots inventory.SnapshotReader, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, products: products, snapshots: snapshots, templates: templates, csrf: csrf}
}

// MountRoutes registers inventory routes. Callers wrap them with the token
// middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showDashboard)
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Post("/", h.createProduct)
		r.Get("/new", h.showProductForm)
		r.Get("/{id}", h.showProduct)
		r.Post("/{id}/quantity", h.updateQuantity)
	})
}

type dashboardPageData struct {
	Dashboard  inventory.Dashboard
	LoadFailed bool
	LowStockAt int
}

func (h *Handler) showDashboard(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	gw := h.products(shared.TokenFromContext(r.Context()))
	loader := inventory.DashboardLoader{Snapshots: h.snapshots, Logger: h.logger}
	dash, err := loader.Load(r.Context(), gw, flashNotifier{sess: sess})
	if errors.Is(err, inventory.ErrUnauthorized) {
		h.signOut(w, r, sess)
		return
	}
	data := dashboardPageData{Dashboard: dash, LoadFailed: err != nil, LowStockAt: inventory.LowStockThreshold}
	h.render(w, r, "pages/dashboard.html", "Dashboard", http.StatusOK, data)
}

// listState is the list cursor carried in query strings and hidden fields.
type listState struct {
	Page   int
	Filter inventory.FilterMode
	Search string
}

func listStateFrom(values url.Values) listState {
	page, err := strconv.Atoi(values.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	return listState{
		Page:   page,
		Filter: inventory.ParseFilterMode(values.Get("filter")),
		Search: strings.TrimSpace(values.Get("search")),
	}
}

func (s listState) query() url.Values {
	q := url.Values{}
	if s.Page > 1 {
		q.Set("page", strconv.Itoa(s.Page))
	}
	if s.Filter != inventory.FilterAll {
		q.Set("filter", string(s.Filter))
	}
	if s.Search != "" {
		q.Set("search", s.Search)
	}
	return q
}

func (s listState) URL() string {
	if q := s.query().Encode(); q != "" {
		return "/products?" + q
	}
	return "/products"
}

// PageURL links to page n keeping filter and search.
func (s listState) PageURL(n int) string {
	s.Page = n
	return s.URL()
}

// FilterURL links to the first page under mode.
func (s listState) FilterURL(mode string) string {
	s.Filter = inventory.ParseFilterMode(mode)
	s.Page = 1
	return s.URL()
}

// EditURL opens the inline editor of row id.
func (s listState) EditURL(id int64) string {
	q := s.query()
	q.Set("edit", strconv.FormatInt(id, 10))
	return "/products?" + q.Encode()
}

func (s listState) options(logger *slog.Logger) []inventory.ListOption {
	return []inventory.ListOption{
		inventory.AtPage(s.Page),
		inventory.WithFilterMode(s.Filter),
		inventory.WithSearchTerm(s.Search),
		inventory.WithLogger(logger),
	}
}

type editState struct {
	ProductID int64
	Pending   int
}

type listPageData struct {
	State      listState
	Rows       []inventory.Product
	Fetched    int
	Pager      shared.Pagination
	Edit       *editState
	LoadFailed bool
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	state := listStateFrom(r.URL.Query())
	gw := h.products(shared.TokenFromContext(r.Context()))
	lv := inventory.NewListView(gw, flashNotifier{sess: sess}, state.options(h.logger)...)

	err := lv.Refresh(r.Context())
	if errors.Is(err, inventory.ErrUnauthorized) {
		h.signOut(w, r, sess)
		return
	}
	state.Page = lv.CurrentPage()
	data := listPageData{
		State:      state,
		Rows:       lv.VisibleRows(),
		Fetched:    len(lv.Items()),
		Pager:      shared.NewPagination(lv.CurrentPage(), lv.TotalPages()),
		LoadFailed: lv.Status() == inventory.StatusError,
	}
	if id, err := strconv.ParseInt(r.URL.Query().Get("edit"), 10, 64); err == nil {
		if row, err := lv.Find(id); err == nil {
			session := lv.BeginEdit(row)
			data.Edit = &editState{ProductID: session.ProductID(), Pending: session.Pending()}
		}
	}
	h.render(w, r, "pages/products/list.html", "Products", http.StatusOK, data)
}

type quantityResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name,omitempty"`
	Quantity int    `json:"quantity"`
	Message  string `json:"message"`
}

func (h *Handler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	wantsJSON := httpx.WantsJSON(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		if wantsJSON {
			httpx.RespondError(w, httpx.NewError(httpx.ErrNotFound, "Product not found"))
			return
		}
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	state := listStateFrom(r.PostForm)

	var sink inventory.Notifier = flashNotifier{sess: sess}
	if wantsJSON {
		sink = nil
	}
	notes := &capturingNotifier{next: sink}
	gw := h.products(shared.TokenFromContext(r.Context()))
	lv := inventory.NewListView(gw, notes, state.options(h.logger)...)
	session := lv.BeginEdit(inventory.Product{ID: id})
	session.SetPendingQuantity(r.PostFormValue("quantity"))
	quantity := session.Pending()

	err = session.Save(r.Context())
	saved := notes.saw(inventory.LevelSuccess)

	if wantsJSON {
		if saved {
			resp := quantityResponse{ID: id, Quantity: quantity, Message: inventory.MsgQuantityUpdated}
			if row, err := lv.Find(id); err == nil {
				resp.Name = row.Name
				resp.Quantity = row.Quantity
			}
			httpx.JSON(w, http.StatusOK, resp)
			return
		}
		httpx.RespondError(w, problemFor(err, inventory.MsgUpdateQuantityFail))
		return
	}

	if !saved && errors.Is(err, inventory.ErrUnauthorized) {
		h.signOut(w, r, sess)
		return
	}
	http.Redirect(w, r, state.URL(), http.StatusSeeOther)
}

type productPageData struct {
	Product    inventory.Product
	Found      bool
	LoadFailed bool
	LowStockAt int
}

func (h *Handler) showProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	product, err := h.products(shared.TokenFromContext(r.Context())).Get(r.Context(), id)
	data := productPageData{LowStockAt: inventory.LowStockThreshold}
	status := http.StatusOK
	switch {
	case err == nil:
		data.Product = product
		data.Found = true
	case errors.Is(err, inventory.ErrUnauthorized):
		h.signOut(w, r, sess)
		return
	case errors.Is(err, inventory.ErrNotFound):
		status = http.StatusNotFound
	default:
		status = http.StatusBadGateway
		data.LoadFailed = true
		h.logger.Error("load product", slog.Int64("product_id", id), slog.Any("error", err))
	}
	title := "Product not found"
	if data.Found {
		title = product.Name
	}
	h.render(w, r, "pages/products/detail.html", title, status, data)
}

type productForm struct {
	Name        string
	Type        string
	SKU         string
	ImageURL    string
	Description string
	Quantity    string
	Price       string
}

func parseProductForm(r *http.Request) productForm {
	return productForm{
		Name:        r.PostFormValue("name"),
		Type:        r.PostFormValue("type"),
		SKU:         r.PostFormValue("sku"),
		ImageURL:    strings.TrimSpace(r.PostFormValue("image_url")),
		Description: r.PostFormValue("description"),
		Quantity:    r.PostFormValue("quantity"),
		Price:       r.PostFormValue("price"),
	}
}

func (f productForm) draft() inventory.Draft {
	return inventory.Draft{
		Name:        strings.TrimSpace(f.Name),
		Type:        strings.TrimSpace(f.Type),
		SKU:         strings.TrimSpace(f.SKU),
		ImageURL:    f.ImageURL,
		Description: strings.TrimSpace(f.Description),
		Quantity:    inventory.ParseInteger(f.Quantity),
		Price:       inventory.ParseNumeric(f.Price),
	}
}

type productFormData struct {
	Form   productForm
	Errors map[string]string
}

func (h *Handler) showProductForm(w http.ResponseWriter, r *http.Request) {
	data := productFormData{Form: productForm{Quantity: "0"}, Errors: map[string]string{}}
	h.render(w, r, "pages/products/form.html", "Add Product", http.StatusOK, data)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	form := parseProductForm(r)
	gw := h.products(shared.TokenFromContext(r.Context()))

	target := ""
	df := &inventory.DraftForm{Draft: form.draft()}
	created, err := df.Submit(r.Context(), gw, flashNotifier{sess: sess}, inventory.NavigatorFunc(func(route string) {
		target = route
	}))
	if err == nil {
		h.logger.Info("product created", slog.Int64("product_id", created.ID), slog.String("sku", created.SKU))
		if target == "" {
			target = inventory.ProductsRoute
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	errs := map[string]string{}
	status := http.StatusBadRequest
	var verr *inventory.ValidationError
	switch {
	case errors.As(err, &verr):
		errs[verr.Field] = verr.Message
	case errors.Is(err, inventory.ErrUnauthorized):
		h.signOut(w, r, sess)
		return
	case errors.Is(err, inventory.ErrConflict):
		status = http.StatusConflict
		errs["sku"] = inventory.GatewayMessage(err, inventory.MsgAddProductFailed)
	default:
		status = http.StatusBadGateway
		h.logger.Error("create product", slog.String("sku", df.Draft.SKU), slog.Any("error", err))
	}
	h.render(w, r, "pages/products/form.html", "Add Product", status, productFormData{Form: form, Errors: errs})
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request, sess *shared.Session) {
	if sess != nil {
		sess.SignOut()
		sess.AddFlash(shared.FlashMessage{Kind: string(inventory.LevelError), Message: shared.MsgSessionExpired})
	}
	if httpx.WantsJSON(r) {
		httpx.RespondError(w, httpx.NewError(httpx.ErrUnauthorized, shared.MsgSessionExpired))
		return
	}
	http.Redirect(w, r, shared.LoginPath, http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name, title string, status int, data any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	viewData := view.TemplateData{Title: title, CSRFToken: csrfToken, CurrentPath: r.URL.Path, Data: data}
	if sess != nil {
		viewData.Flashes = sess.PopFlashes()
		viewData.Username = sess.Username()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.Execute(w, name, viewData); err != nil {
		h.logger.Error("render "+name, slog.Any("error", err))
	}
}

func problemFor(err error, fallback string) error {
	detail := inventory.GatewayMessage(err, fallback)
	switch {
	case errors.Is(err, inventory.ErrUnauthorized):
		return httpx.NewError(httpx.ErrUnauthorized, shared.MsgSessionExpired)
	case errors.Is(err, inventory.ErrNotFound):
		return httpx.NewError(httpx.ErrNotFound, detail)
	case errors.Is(err, inventory.ErrConflict):
		return httpx.NewError(httpx.ErrConflict, detail)
	default:
		return httpx.NewError(httpx.ErrUpstream, detail)
	}
}
