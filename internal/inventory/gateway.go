package inventory

import "context"

// Gateway is the remote product API as seen by the inventory views.
type Gateway interface {
	List(ctx context.Context, page, pageSize int) (Page, error)
	Create(ctx context.Context, draft Draft) (Product, error)
	UpdateQuantity(ctx context.Context, id int64, quantity int) error
}

// ProductReader fetches one product by id. A missing product is ErrNotFound.
type ProductReader interface {
	Get(ctx context.Context, id int64) (Product, error)
}
