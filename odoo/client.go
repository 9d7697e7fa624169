// Package odoo implements the schema client: a thin JSON-RPC collaborator
// that introspects model schemas on a remote Odoo server.
package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/modelkit/odoogen/internal/debug"
)

// Sentinel failure classes. Both are fatal for one model's generation only,
// never for the whole batch.
var (
	ErrUnauthorized = errors.New("odoo: unauthorized")
	ErrUnreachable  = errors.New("odoo: server unreachable")
)

// fields_get attributes requested from the server. Keeping the list explicit
// bounds the payload for wide models.
var fieldAttributes = []string{"type", "string", "required", "readonly", "relation", "selection", "store", "related"}

// Client speaks the Odoo external JSON-RPC API (/jsonrpc endpoint, services
// "common" and "object"). It authenticates lazily on first use and caches
// the resulting uid for the lifetime of the client.
type Client struct {
	endpoint string
	database string
	login    string
	apiKey   string
	http     *http.Client

	mu  sync.Mutex
	uid int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client, e.g. to set transport timeouts.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// NewClient creates a schema client for the given server endpoint. The
// endpoint is the server base URL; "/jsonrpc" is appended if missing.
func NewClient(endpoint, database, login, apiKey string, opts ...Option) *Client {
	endpoint = strings.TrimRight(endpoint, "/")
	if !strings.HasSuffix(endpoint, "/jsonrpc") {
		endpoint += "/jsonrpc"
	}
	c := &Client{
		endpoint: endpoint,
		database: database,
		login:    login,
		apiKey:   apiKey,
		http:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type rpcRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
	ID      int            `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"data"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call performs one JSON-RPC "call" against a service method.
func (c *Client) call(ctx context.Context, service, method string, args []any) (json.RawMessage, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params: map[string]any{
			"service": service,
			"method":  method,
			"args":    args,
		},
		ID: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("odoo: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("odoo: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnreachable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnreachable, err)
	}
	if rpcResp.Error != nil {
		if isAccessError(rpcResp.Error) {
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, rpcResp.Error.Message)
		}
		return nil, fmt.Errorf("odoo: %s %s: %s", service, method, rpcResp.Error.Message)
	}
	return rpcResp.Result, nil
}

func isAccessError(e *rpcError) bool {
	name := strings.ToLower(e.Data.Name + " " + e.Message)
	return strings.Contains(name, "accessdenied") ||
		strings.Contains(name, "accesserror") ||
		strings.Contains(name, "access denied") ||
		strings.Contains(name, "session expired")
}

// authenticate resolves and caches the uid for the configured credentials.
func (c *Client) authenticate(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.uid != 0 {
		return c.uid, nil
	}

	raw, err := c.call(ctx, "common", "authenticate", []any{c.database, c.login, c.apiKey, map[string]any{}})
	if err != nil {
		return 0, err
	}

	// On bad credentials the server answers `false` rather than an error.
	var uid int
	if err := json.Unmarshal(raw, &uid); err != nil || uid == 0 {
		return 0, fmt.Errorf("%w: authentication rejected for login %q on database %q", ErrUnauthorized, c.login, c.database)
	}

	debug.Debug("Authenticated against schema server", "login", c.login, "uid", uid)
	c.uid = uid
	return uid, nil
}

// executeKw performs one object.execute_kw call for the given model method.
func (c *Client) executeKw(ctx context.Context, model, method string, args []any, kwargs map[string]any) (json.RawMessage, error) {
	uid, err := c.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	return c.call(ctx, "object", "execute_kw", []any{
		c.database, uid, c.apiKey, model, method, args, kwargs,
	})
}

// FetchModelSchema introspects one model via fields_get and returns its field
// metadata in the order the server declared the fields. The response is an
// ordered JSON object, so decoding walks the token stream instead of
// unmarshalling into a Go map.
func (c *Client) FetchModelSchema(ctx context.Context, model string) ([]FieldMetadata, error) {
	debug.Debug("Fetching model schema", "model", model)

	raw, err := c.executeKw(ctx, model, "fields_get", []any{[]any{}}, map[string]any{
		"attributes": fieldAttributes,
	})
	if err != nil {
		return nil, err
	}

	metas, err := decodeFieldsGet(raw)
	if err != nil {
		return nil, fmt.Errorf("odoo: decode fields_get for %s: %w", model, err)
	}

	debug.Debug("Model schema fetched", "model", model, "fields", len(metas))
	return metas, nil
}

// fieldAttrs mirrors one attribute object of a fields_get response. Loosely
// typed values (selection pairs, booleans reported as false-or-string) are
// normalized below.
type fieldAttrs struct {
	Type      string          `json:"type"`
	Label     string          `json:"string"`
	Required  bool            `json:"required"`
	Readonly  bool            `json:"readonly"`
	Relation  string          `json:"relation"`
	Selection [][]any         `json:"selection"`
	Store     *bool           `json:"store"`
	Related   json.RawMessage `json:"related"`
}

func decodeFieldsGet(raw json.RawMessage) ([]FieldMetadata, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var metas []FieldMetadata
	for dec.More() {
		nameTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := nameTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected field name, got %v", nameTok)
		}

		var attrs fieldAttrs
		if err := dec.Decode(&attrs); err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		metas = append(metas, metadataFromAttrs(name, attrs))
	}
	return metas, nil
}

func metadataFromAttrs(name string, attrs fieldAttrs) FieldMetadata {
	meta := FieldMetadata{
		Name:           name,
		RawType:        attrs.Type,
		Label:          attrs.Label,
		Required:       attrs.Required,
		Readonly:       attrs.Readonly,
		RelationTarget: attrs.Relation,
	}
	for _, pair := range attrs.Selection {
		if len(pair) != 2 {
			continue
		}
		meta.SelectionOptions = append(meta.SelectionOptions, SelectionOption{
			Value: stringify(pair[0]),
			Label: stringify(pair[1]),
		})
	}
	// Non-stored or related fields are computed server-side.
	related := string(bytes.TrimSpace(attrs.Related))
	if (attrs.Store != nil && !*attrs.Store) || (related != "" && related != "false" && related != "null") {
		meta.Computed = true
	}
	return meta
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strings.TrimSuffix(fmt.Sprintf("%v", t), ".0")
	default:
		return fmt.Sprintf("%v", t)
	}
}

// ListModels returns the non-transient models registered on the server,
// ordered by technical name.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	raw, err := c.executeKw(ctx, "ir.model", "search_read",
		[]any{[]any{[]any{"transient", "=", false}}},
		map[string]any{
			"fields": []string{"model", "name"},
			"order":  "model asc",
		})
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Model string `json:"model"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("odoo: decode ir.model rows: %w", err)
	}

	infos := make([]ModelInfo, 0, len(rows))
	for _, row := range rows {
		infos = append(infos, ModelInfo{Name: row.Model, Label: row.Name})
	}
	return infos, nil
}
