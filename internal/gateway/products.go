package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockdesk/stockdesk/internal/inventory"
)

// Products is the product API scoped to one bearer token.
type Products struct {
	client *Client
	token  string
}

var _ inventory.Gateway = (*Products)(nil)

// Products returns the product endpoints authorised by token.
func (c *Client) Products(token string) *Products {
	return &Products{client: c, token: token}
}

// price is a decimal written as a bare JSON number, the form the API accepts.
type price struct {
	decimal.Decimal
}

func (p price) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal.String()), nil
}

type productDTO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	SKU         string    `json:"sku"`
	ImageURL    *string   `json:"image_url"`
	Description *string   `json:"description"`
	Quantity    int       `json:"quantity"`
	Price       price     `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (d productDTO) toDomain() inventory.Product {
	return inventory.Product{
		ID:          d.ID,
		Name:        d.Name,
		Type:        d.Type,
		SKU:         d.SKU,
		ImageURL:    deref(d.ImageURL),
		Description: deref(d.Description),
		Quantity:    d.Quantity,
		Price:       d.Price.Decimal,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type listResponse struct {
	Products []productDTO `json:"products"`
	Total    int          `json:"total"`
	Page     int          `json:"page"`
	PerPage  int          `json:"per_page"`
}

type createRequest struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	SKU         string  `json:"sku"`
	ImageURL    *string `json:"image_url,omitempty"`
	Description *string `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	Price       price   `json:"price"`
}

type createResponse struct {
	ProductID int64  `json:"product_id"`
	Message   string `json:"message"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// List fetches one page. Each call issues its own request.
func (p *Products) List(ctx context.Context, page, pageSize int) (inventory.Page, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(pageSize))

	var resp listResponse
	if err := p.client.do(ctx, "list", http.MethodGet, "/products?"+query.Encode(), p.token, nil, &resp); err != nil {
		return inventory.Page{}, err
	}
	items := make([]inventory.Product, 0, len(resp.Products))
	for _, dto := range resp.Products {
		items = append(items, dto.toDomain())
	}
	return inventory.Page{Items: items, Total: resp.Total, Number: resp.Page, Size: resp.PerPage}, nil
}

// Get fetches a single product.
func (p *Products) Get(ctx context.Context, id int64) (inventory.Product, error) {
	var dto productDTO
	if err := p.client.do(ctx, "get", http.MethodGet, fmt.Sprintf("/products/%d", id), p.token, nil, &dto); err != nil {
		return inventory.Product{}, err
	}
	return dto.toDomain(), nil
}

// Create submits a draft. The API answers with the new id only, so the
// returned record is the draft plus that id.
func (p *Products) Create(ctx context.Context, draft inventory.Draft) (inventory.Product, error) {
	req := createRequest{
		Name:        draft.Name,
		Type:        draft.Type,
		SKU:         draft.SKU,
		ImageURL:    optional(draft.ImageURL),
		Description: optional(draft.Description),
		Quantity:    draft.Quantity,
		Price:       price{draft.Price},
	}
	var resp createResponse
	if err := p.client.do(ctx, "create", http.MethodPost, "/products", p.token, req, &resp); err != nil {
		return inventory.Product{}, err
	}
	return inventory.Product{
		ID:          resp.ProductID,
		Name:        draft.Name,
		Type:        draft.Type,
		SKU:         draft.SKU,
		ImageURL:    draft.ImageURL,
		Description: draft.Description,
		Quantity:    draft.Quantity,
		Price:       draft.Price,
	}, nil
}

// UpdateQuantity replaces the stock quantity of a product.
func (p *Products) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	return p.client.do(ctx, "update_quantity", http.MethodPut, fmt.Sprintf("/products/%d/quantity", id), p.token, quantityRequest{Quantity: quantity}, nil)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
