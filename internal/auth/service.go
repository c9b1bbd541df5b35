package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/stockdesk/stockdesk/internal/gateway"
	"github.com/stockdesk/stockdesk/internal/inventory"
)

var (
	// ErrInvalidCredentials indicates the API rejected the username or password.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrUsernameTaken indicates registration of an existing username.
	ErrUsernameTaken = errors.New("auth: username already registered")
)

// Gateway is the account side of the product API.
type Gateway interface {
	Login(ctx context.Context, username, password string) (gateway.Token, error)
	Register(ctx context.Context, username, password string) error
}

// Service wraps authentication against the product API.
type Service struct {
	api Gateway
}

// NewService constructs a new Service.
func NewService(api Gateway) *Service {
	return &Service{api: api}
}

// Authenticate exchanges credentials for an API token.
func (s *Service) Authenticate(ctx context.Context, username, password string) (gateway.Token, error) {
	tok, err := s.api.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, inventory.ErrUnauthorized) {
			return gateway.Token{}, ErrInvalidCredentials
		}
		return gateway.Token{}, fmt.Errorf("auth: login: %w", err)
	}
	return tok, nil
}

// Register creates an account.
func (s *Service) Register(ctx context.Context, username, password string) error {
	if err := s.api.Register(ctx, username, password); err != nil {
		if errors.Is(err, inventory.ErrConflict) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("auth: register: %w", err)
	}
	return nil
}
