package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaurvahtra/listq/internal/models"
	"github.com/kaurvahtra/listq/internal/remote"
)

// newTestServer spins up a full server and returns a client wired to it.
func newTestServer(t *testing.T, token string) (*remote.HTTPClient, *httptest.Server) {
	t.Helper()

	st, err := NewStore(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(Handler(st, &Config{MaxRequestBody: 1024, Token: token}, logger))
	t.Cleanup(srv.Close)

	return remote.NewHTTPClient(srv.URL, "groceries", token), srv
}

func TestServer_CreateGetRoundtrip(t *testing.T) {
	client, _ := newTestServer(t, "")
	ctx := context.Background()

	item := &models.Item{ID: "item-1", Name: "Milk", Quantity: 2, Category: "dairy", UpdatedAt: 1000}
	require.NoError(t, client.CreateItem(ctx, item))

	got, err := client.GetItem(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, "Milk", got.Name)
	assert.Equal(t, 2, got.Quantity)
	assert.Equal(t, "dairy", got.Category)
	assert.Equal(t, int64(1000), got.UpdatedAt)
}

func TestServer_CreateDuplicate(t *testing.T) {
	client, _ := newTestServer(t, "")
	ctx := context.Background()

	item := &models.Item{ID: "item-1", Name: "Milk"}
	require.NoError(t, client.CreateItem(ctx, item))

	err := client.CreateItem(ctx, item)
	require.Error(t, err)

	var re *remote.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusConflict, re.Status)
	assert.False(t, re.IsTransient())
}

func TestServer_CreateInvalid(t *testing.T) {
	client, _ := newTestServer(t, "")

	err := client.CreateItem(context.Background(), &models.Item{ID: "item-1"})
	require.Error(t, err)

	var re *remote.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusBadRequest, re.Status)
}

func TestServer_Patch(t *testing.T) {
	client, _ := newTestServer(t, "")
	ctx := context.Background()

	require.NoError(t, client.CreateItem(ctx, &models.Item{ID: "item-1", Name: "Milk", Quantity: 1, UpdatedAt: 1000}))

	qty := 3
	updated, err := client.UpdateItem(ctx, "item-1", &models.ItemPatch{Quantity: &qty})
	require.NoError(t, err)

	assert.Equal(t, 3, updated.Quantity)
	assert.Equal(t, "Milk", updated.Name)
	assert.Greater(t, updated.UpdatedAt, int64(1000))
}

func TestServer_PatchNotFound(t *testing.T) {
	client, _ := newTestServer(t, "")

	qty := 3
	_, err := client.UpdateItem(context.Background(), "missing", &models.ItemPatch{Quantity: &qty})
	require.Error(t, err)

	var re *remote.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusNotFound, re.Status)
}

func TestServer_GetNotFound(t *testing.T) {
	client, _ := newTestServer(t, "")

	_, err := client.GetItem(context.Background(), "missing")
	assert.True(t, errors.Is(err, remote.ErrNotFound))
}

func TestServer_DeleteUnknownTolerated(t *testing.T) {
	client, _ := newTestServer(t, "")

	assert.NoError(t, client.DeleteItem(context.Background(), "missing"))
}

func TestServer_DeleteThenList(t *testing.T) {
	client, _ := newTestServer(t, "")
	ctx := context.Background()

	require.NoError(t, client.CreateItem(ctx, &models.Item{ID: "item-1", Name: "Milk"}))
	require.NoError(t, client.CreateItem(ctx, &models.Item{ID: "item-2", Name: "Bread"}))
	require.NoError(t, client.DeleteItem(ctx, "item-1"))

	items, err := client.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "item-2", items[0].ID)
}

func TestServer_ListsAreIsolated(t *testing.T) {
	client, srv := newTestServer(t, "")
	ctx := context.Background()

	require.NoError(t, client.CreateItem(ctx, &models.Item{ID: "item-1", Name: "Milk"}))

	other := remote.NewHTTPClient(srv.URL, "hardware", "")
	items, err := other.ListItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestServer_AuthRequired(t *testing.T) {
	_, srv := newTestServer(t, "secret")
	ctx := context.Background()

	bad := remote.NewHTTPClient(srv.URL, "groceries", "wrong")
	_, err := bad.ListItems(ctx)
	require.Error(t, err)

	var re *remote.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusUnauthorized, re.Status)

	good := remote.NewHTTPClient(srv.URL, "groceries", "secret")
	_, err = good.ListItems(ctx)
	assert.NoError(t, err)
}

func TestServer_HealthzSkipsAuth(t *testing.T) {
	_, srv := newTestServer(t, "secret")

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_RejectsMalformedBody(t *testing.T) {
	_, srv := newTestServer(t, "")

	resp, err := http.Post(srv.URL+"/api/v1/lists/groceries/items", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
