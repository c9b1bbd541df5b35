package gateway

import (
	"context"
	"net/http"
	"strings"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a bearer token. Claims that cannot be read
// leave Subject and ExpiresAt empty.
func (c *Client) Login(ctx context.Context, username, password string) (Token, error) {
	var resp tokenResponse
	if err := c.do(ctx, "login", http.MethodPost, "/login", "", credentials{Username: username, Password: password}, &resp); err != nil {
		return Token{}, err
	}
	tok, err := InspectToken(resp.AccessToken)
	if err != nil {
		tok = Token{Value: resp.AccessToken}
	}
	if resp.TokenType != "" {
		tok.Type = strings.ToLower(resp.TokenType)
	}
	if tok.Subject == "" {
		tok.Subject = username
	}
	return tok, nil
}

// Register creates an account on the product API.
func (c *Client) Register(ctx context.Context, username, password string) error {
	return c.do(ctx, "register", http.MethodPost, "/register", "", credentials{Username: username, Password: password}, nil)
}
