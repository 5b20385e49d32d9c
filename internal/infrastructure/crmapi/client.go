// Package crmapi is the console's client for the integration HTTP API.
package crmapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	appintegration "github.com/crmconsole/backend/internal/application/integration"
	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/crmconsole/backend/internal/domain/shared"
	"github.com/crmconsole/backend/internal/infrastructure/auth"
	"github.com/crmconsole/backend/internal/infrastructure/config"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const messageSuccess = "success"

// Errors returned inside failed results.
var (
	ErrTransport = errors.New("crmapi: transport failure")
	ErrDecode    = errors.New("crmapi: malformed response")
)

// APIError is a response whose message was not "success".
type APIError struct {
	Status  int
	Message string
	Code    string
	Detail  string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("crmapi: %s (%d %s): %s", e.Message, e.Status, e.Code, e.Detail)
	}
	return fmt.Sprintf("crmapi: %s (%d)", e.Message, e.Status)
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

// Client implements console.Gateway over HTTP.
type Client struct {
	http   *resty.Client
	stream *resty.Client
	token  string
	logger *zap.Logger
}

// New creates a client for cfg.APIBaseURL.
func New(cfg config.ConsoleConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:   newResty(cfg).SetTimeout(cfg.Timeout),
		stream: newResty(cfg),
		token:  cfg.Token,
		logger: logger,
	}
}

// newResty builds a client without a timeout; event streams stay open.
func newResty(cfg config.ConsoleConfig) *resty.Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.APIBaseURL, "/")).
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		rc.SetAuthToken(cfg.Token)
	}
	if cfg.TenantID != "" {
		rc.SetHeader("X-Tenant-ID", cfg.TenantID)
	}
	return rc
}

// Permissions returns the permissions carried by the configured token.
// The server remains the authority; this only decides what to fetch.
func (c *Client) Permissions() []string {
	if c.token == "" {
		return nil
	}
	claims, err := auth.ParseUnverified(c.token)
	if err != nil {
		c.logger.Warn("Cannot read token claims", zap.Error(err))
		return nil
	}
	return claims.Permissions
}

// HasPermission reports whether the configured token grants perm.
func (c *Client) HasPermission(perm string) bool {
	for _, p := range c.Permissions() {
		if p == perm {
			return true
		}
	}
	return false
}

// GetSettings fetches the stored CRM credentials.
func (c *Client) GetSettings(ctx context.Context) shared.Result[integration.Credentials] {
	r := call[appintegration.SettingsResponse](ctx, c, http.MethodGet, "/integration/settings", nil, nil)
	return shared.MapResult(r, appintegration.SettingsResponse.Credentials)
}

// SaveSettings stores CRM credentials.
func (c *Client) SaveSettings(ctx context.Context, creds integration.Credentials) shared.Result[struct{}] {
	body := appintegration.SettingsRequest{
		Username:     creds.Username,
		Password:     creds.Password,
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		URL:          creds.URL,
	}
	r := call[json.RawMessage](ctx, c, http.MethodPut, "/integration/settings", body, nil)
	return shared.MapResult(r, func(json.RawMessage) struct{} { return struct{}{} })
}

// GetMappingCatalog fetches the source and target field lists of one record type.
func (c *Client) GetMappingCatalog(ctx context.Context, sobjectName, internalModelName string) shared.Result[integration.FieldCatalog] {
	query := map[string]string{"sobject": sobjectName, "model": internalModelName}
	r := call[appintegration.CatalogResponse](ctx, c, http.MethodGet, "/integration/catalog", nil, query)
	return shared.MapResult(r, func(cr appintegration.CatalogResponse) integration.FieldCatalog {
		return integration.FieldCatalog{SourceFields: cr.SourceFields, TargetFields: cr.TargetFields}
	})
}

// GetMappingList fetches every saved mapping of the tenant.
func (c *Client) GetMappingList(ctx context.Context) shared.Result[[]integration.Mapping] {
	list, err := call[[]appintegration.MappingResponse](ctx, c, http.MethodGet, "/integration/mappings", nil, nil).Unwrap()
	if err != nil {
		return shared.Fail[[]integration.Mapping](err)
	}
	out := make([]integration.Mapping, 0, len(list))
	for _, mr := range list {
		m, err := mr.ToDomain()
		if err != nil {
			return shared.Fail[[]integration.Mapping](fmt.Errorf("%w: mapping %s: %v", ErrDecode, mr.ID, err))
		}
		out = append(out, m)
	}
	return shared.Ok(out)
}

// CreateMapping saves a new mapping.
func (c *Client) CreateMapping(ctx context.Context, m integration.Mapping) shared.Result[integration.Mapping] {
	return c.sendMapping(ctx, http.MethodPost, "/integration/mappings", m)
}

// UpdateMapping replaces the associations and configuration of a saved mapping.
func (c *Client) UpdateMapping(ctx context.Context, id uuid.UUID, m integration.Mapping) shared.Result[integration.Mapping] {
	return c.sendMapping(ctx, http.MethodPut, "/integration/mappings/"+id.String(), m)
}

// GetRoleCatalog fetches the internal role catalog.
func (c *Client) GetRoleCatalog(ctx context.Context) shared.Result[[]integration.Role] {
	r := call[[]appintegration.RoleResponse](ctx, c, http.MethodGet, "/integration/roles", nil, nil)
	return shared.MapResult(r, func(in []appintegration.RoleResponse) []integration.Role {
		out := make([]integration.Role, 0, len(in))
		for _, rr := range in {
			out = append(out, integration.Role{ID: rr.ID, Name: rr.Name})
		}
		return out
	})
}

func (c *Client) sendMapping(ctx context.Context, method, path string, m integration.Mapping) shared.Result[integration.Mapping] {
	body, err := appintegration.NewMappingRequest(m)
	if err != nil {
		return shared.Fail[integration.Mapping](err)
	}
	mr, err := call[appintegration.MappingResponse](ctx, c, method, path, body, nil).Unwrap()
	if err != nil {
		return shared.Fail[integration.Mapping](err)
	}
	saved, err := mr.ToDomain()
	if err != nil {
		return shared.Fail[integration.Mapping](fmt.Errorf("%w: %v", ErrDecode, err))
	}
	return shared.Ok(saved)
}

// call performs one request and unwraps the response envelope. Only an
// envelope whose message is exactly "success" yields an Ok result.
func call[T any](ctx context.Context, c *Client, method, path string, body any, query map[string]string) shared.Result[T] {
	var env envelope
	req := c.http.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&env).
		SetError(&env)
	if body != nil {
		req.SetBody(body)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Debug("Request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return shared.Fail[T](fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err))
	}

	if env.Message != messageSuccess {
		apiErr := &APIError{Status: resp.StatusCode(), Message: env.Message}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Detail = env.Error.Message
			apiErr.Fields = env.Error.Fields
		}
		if apiErr.Message == "" {
			apiErr.Message = "missing status"
		}
		return shared.Fail[T](apiErr)
	}

	var out T
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return shared.Ok(out)
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return shared.Fail[T](fmt.Errorf("%w: %s %s: %v", ErrDecode, method, path, err))
	}
	return shared.Ok(out)
}
