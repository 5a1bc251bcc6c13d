package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kaurvahtra/listq/internal/models"
)

// ErrNotFound is returned when the server does not know the requested item.
var ErrNotFound = errors.New("item not found")

// ClientIDHeader carries the per-installation device id on every request,
// letting the server attribute writes in its logs.
const ClientIDHeader = "X-Listq-Client"

// Client defines the contract for executing mutations against a list server.
// Rejection (a returned error) is the sole failure signal consumed by the
// queue's retry path.
type Client interface {
	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, id string, patch *models.ItemPatch) (*models.Item, error)
	DeleteItem(ctx context.Context, id string) error
	GetItem(ctx context.Context, id string) (*models.Item, error)
	ListItems(ctx context.Context) ([]*models.Item, error)
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL    string
	list       string
	token      string
	clientID   string
	httpClient *http.Client
}

// NewHTTPClient creates an HTTP-based remote client for one named list.
func NewHTTPClient(baseURL, list, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		list:       list,
		token:      token,
		httpClient: &http.Client{},
	}
}

// SetClientID sets the device id sent with every request.
func (c *HTTPClient) SetClientID(id string) {
	c.clientID = id
}

func (c *HTTPClient) listURL(path string) string {
	return fmt.Sprintf("%s/api/v1/lists/%s%s", c.baseURL, c.list, path)
}

func (c *HTTPClient) doJSON(ctx context.Context, method, url string, reqBody, respBody interface{}) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	if c.clientID != "" {
		req.Header.Set(ClientIDHeader, c.clientID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// CreateItem creates a new item on the server.
func (c *HTTPClient) CreateItem(ctx context.Context, item *models.Item) error {
	if err := c.doJSON(ctx, "POST", c.listURL("/items"), item, nil); err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

// UpdateItem applies a partial update and returns the resulting item.
func (c *HTTPClient) UpdateItem(ctx context.Context, id string, patch *models.ItemPatch) (*models.Item, error) {
	var item models.Item
	if err := c.doJSON(ctx, "PATCH", c.listURL("/items/"+id), patch, &item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return &item, nil
}

// DeleteItem removes an item. Deleting an unknown item is not an error.
func (c *HTTPClient) DeleteItem(ctx context.Context, id string) error {
	err := c.doJSON(ctx, "DELETE", c.listURL("/items/"+id), nil, nil)
	if err != nil && !isStatus(err, http.StatusNotFound) {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// GetItem fetches the current server-side state of an item.
func (c *HTTPClient) GetItem(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	if err := c.doJSON(ctx, "GET", c.listURL("/items/"+id), nil, &item); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &item, nil
}

// ListItems fetches every item on the list.
func (c *HTTPClient) ListItems(ctx context.Context) ([]*models.Item, error) {
	var resp ItemsResponse
	if err := c.doJSON(ctx, "GET", c.listURL("/items"), nil, &resp); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return resp.Items, nil
}

// Prefetch fetches the current server state for the given ids in parallel.
// Unknown ids are simply absent from the result, not errors.
func Prefetch(ctx context.Context, client Client, ids []string) (map[string]*models.Item, error) {
	var mu sync.Mutex
	result := make(map[string]*models.Item, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for _, id := range ids {
		g.Go(func() error {
			item, err := client.GetItem(ctx, id)
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			result[item.ID] = item
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("prefetch items: %w", err)
	}
	return result, nil
}

// RemoteError is an HTTP error returned by the server.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error (%d): %s", e.Status, e.Message)
}

// IsTransient reports whether the error is worth retrying.
func (e *RemoteError) IsTransient() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

// isStatus checks whether err is a RemoteError with the given status code.
func isStatus(err error, status int) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Status == status
}

// decodeError converts an HTTP error response into a RemoteError.
func decodeError(resp *http.Response) error {
	var er ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err == nil && er.Error != "" {
		msg := er.Error
		if er.Message != "" {
			msg = er.Message
		}
		return &RemoteError{Status: resp.StatusCode, Message: msg}
	}
	return &RemoteError{Status: resp.StatusCode, Message: resp.Status}
}
