package medid

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"instadoc-admin/internal/platform/httpclient"
)

var (
	ErrNotConfigured = errors.New("medid client not configured")
	ErrUnauthorized  = errors.New("medid unauthorized")
	ErrUpstream      = errors.New("medid upstream error")
)

// Config del cliente admin de MedID (el identity provider hosteado).
// BaseURL y APIKey normalmente vienen de env vars.
type Config struct {
	BaseURL string
	APIKey  string

	// Opcional: nombre del header donde se manda la API key.
	// Si está vacío, se usa "X-Api-Key".
	APIKeyHeader string

	// Timeout HTTP del cliente.
	Timeout time.Duration
}

// Client habla con el admin API de MedID. Hoy solo se usa para la
// revocación dura de sesiones al suspender o archivar una cuenta;
// los llamadores lo tratan como best-effort.
type Client struct {
	apiKey       string
	apiKeyHeader string
	http         *httpclient.Client
}

func NewClient(cfg Config) (*Client, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	hc, err := httpclient.NewWithBaseURL(cfg.BaseURL, timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
		http:         hc,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

// RevokeSessions invalida todas las sesiones de la cuenta en el IdP.
// Implementa auth.SessionRevoker.
func (c *Client) RevokeSessions(ctx context.Context, accountID string) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return ErrUnauthorized
	}

	path := fmt.Sprintf("/v1/accounts/%s/sessions", accountID)
	headers := map[string]string{c.apiKeyHeader: c.apiKey}

	err := c.http.DoJSON(ctx, http.MethodDelete, path, headers, nil, nil)
	if err == nil {
		return nil
	}

	var httpErr *httpclient.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusNotFound:
			// cuenta sin sesiones en el IdP: nada que revocar
			return nil
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrUnauthorized
		default:
			return fmt.Errorf("%w: status=%d", ErrUpstream, httpErr.StatusCode)
		}
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
