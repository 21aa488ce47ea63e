package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/five82/shoplist/internal/shoplist"
)

// Outcome classifies a list lookup.
type Outcome int

const (
	// Found means the list exists and was decoded.
	Found Outcome = iota
	// NotFound means the API reported that the share id does not resolve.
	NotFound
	// Failed means the request or the response decoding failed.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotFound:
		return "not found"
	default:
		return "failed"
	}
}

// FetchResult is the outcome of FetchList. Err is set only when Outcome is
// Failed; List is meaningful only when Outcome is Found.
type FetchResult struct {
	Outcome Outcome
	List    shoplist.List
	Err     error
}

// APIError is returned when the API answers with a status >= 400.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s %s returned status %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.Status)
}

// Client talks to the shopping list HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	validate  *validator.Validate
}

const (
	defaultAPIURL    = "http://127.0.0.1:3000/api"
	defaultUserAgent = "shoplist/0.1"
	requestTimeout   = 10 * time.Second
	maxErrorBody     = 4 << 10
)

// NewClient builds a Client rooted at apiURL. A missing scheme defaults to
// http; any path on apiURL is kept as the API prefix.
func NewClient(apiURL string) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// CreateList asks the API for a brand new list.
func (c *Client) CreateList(ctx context.Context) (shoplist.List, error) {
	var list shoplist.List
	if err := c.do(ctx, http.MethodPost, c.listsPath(), nil, &list); err != nil {
		return shoplist.List{}, err
	}
	return list, nil
}

// FetchList loads a list by share id. A 404 or a body carrying an "error"
// marker is reported as NotFound rather than Failed.
func (c *Client) FetchList(ctx context.Context, shareID string) FetchResult {
	var payload struct {
		shoplist.List
		Error json.RawMessage `json:"error"`
	}
	err := c.do(ctx, http.MethodGet, c.listPath(shareID), nil, &payload)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return FetchResult{Outcome: NotFound}
		}
		return FetchResult{Outcome: Failed, Err: err}
	}
	if hasErrorMarker(payload.Error) {
		return FetchResult{Outcome: NotFound}
	}
	return FetchResult{Outcome: Found, List: payload.List}
}

type itemPayload struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Order     int    `json:"order"`
	Checked   bool   `json:"checked"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

type replaceItemsRequest struct {
	Items []itemPayload `json:"items"`
}

// draftItem holds the fields checked on items the client is creating.
// Items that already have an id are owned by the API and sent as is.
type draftItem struct {
	Name     string `validate:"required"`
	Quantity int    `validate:"min=1"`
}

// ReplaceItems writes the complete item set of a list and returns the list
// as stored by the API. Items without an id are created server side.
func (c *Client) ReplaceItems(ctx context.Context, shareID string, items []shoplist.Item) (shoplist.List, error) {
	req := replaceItemsRequest{Items: make([]itemPayload, 0, len(items))}
	for _, item := range items {
		if item.ID == "" {
			if err := c.validate.Struct(draftItem{Name: item.Name, Quantity: item.Quantity}); err != nil {
				return shoplist.List{}, fmt.Errorf("invalid new item: %w", err)
			}
		}
		req.Items = append(req.Items, itemPayload(item))
	}
	var list shoplist.List
	if err := c.do(ctx, http.MethodPut, c.listPath(shareID), req, &list); err != nil {
		return shoplist.List{}, err
	}
	return list, nil
}

type renameRequest struct {
	Name string `json:"name" validate:"max=200"`
}

// RenameList changes the display name of a list.
func (c *Client) RenameList(ctx context.Context, shareID, name string) (shoplist.List, error) {
	req := renameRequest{Name: name}
	if err := c.validate.Struct(req); err != nil {
		return shoplist.List{}, fmt.Errorf("invalid name: %w", err)
	}
	var list shoplist.List
	if err := c.do(ctx, http.MethodPatch, c.listPath(shareID).JoinPath("name"), req, &list); err != nil {
		return shoplist.List{}, err
	}
	return list, nil
}

// DeleteList removes a list and all of its items.
func (c *Client) DeleteList(ctx context.Context, shareID string) error {
	return c.do(ctx, http.MethodDelete, c.listPath(shareID), nil, nil)
}

type checkedRequest struct {
	Checked bool `json:"checked"`
}

// SetItemChecked patches the checked flag and returns the updated item.
func (c *Client) SetItemChecked(ctx context.Context, itemID string, checked bool) (shoplist.Item, error) {
	var item shoplist.Item
	if err := c.do(ctx, http.MethodPatch, c.itemPath(itemID), checkedRequest{Checked: checked}, &item); err != nil {
		return shoplist.Item{}, err
	}
	return item, nil
}

type quantityRequest struct {
	Quantity int `json:"quantity" validate:"min=1"`
}

// SetItemQuantity patches an item's quantity. The API answers with the full
// item collection of the owning list.
func (c *Client) SetItemQuantity(ctx context.Context, itemID string, quantity int) ([]shoplist.Item, error) {
	req := quantityRequest{Quantity: quantity}
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid quantity: %w", err)
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPatch, c.itemPath(itemID), req, &raw); err != nil {
		return nil, err
	}
	return decodeItems(raw)
}

// DeleteItem removes a single item.
func (c *Client) DeleteItem(ctx context.Context, itemID string) error {
	return c.do(ctx, http.MethodDelete, c.itemPath(itemID), nil, nil)
}

func (c *Client) listsPath() *url.URL {
	return c.baseURL.JoinPath("lists")
}

func (c *Client) listPath(shareID string) *url.URL {
	return c.baseURL.JoinPath("lists", url.PathEscape(strings.TrimSpace(shareID)))
}

func (c *Client) itemPath(itemID string) *url.URL {
	return c.baseURL.JoinPath("items", url.PathEscape(strings.TrimSpace(itemID)))
}

func (c *Client) do(ctx context.Context, method string, target *url.URL, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &APIError{
			Method:  method,
			Path:    target.Path,
			Status:  resp.StatusCode,
			Message: readErrorMessage(resp.Body),
		}
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeItems accepts either a bare item array or an object with an items
// field.
func decodeItems(raw json.RawMessage) ([]shoplist.Item, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []shoplist.Item
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode items: %w", err)
		}
		return items, nil
	}
	var wrapped struct {
		Items []shoplist.Item `json:"items"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if wrapped.Items == nil {
		return nil, fmt.Errorf("decode items: response has no items")
	}
	return wrapped.Items, nil
}

func hasErrorMarker(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "", "null", "false", `""`:
		return false
	}
	return true
}

func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if msg, ok := payload.Error.(string); ok && msg != "" {
			return msg
		}
		if payload.Message != "" {
			return payload.Message
		}
		return ""
	}
	return strings.TrimSpace(string(data))
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", apiURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
