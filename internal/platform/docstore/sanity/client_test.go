package sanity

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/georgemunganga/accessories-admin/internal/platform/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		ProjectID:  "proj",
		Dataset:    "production",
		APIVersion: "2025-02-03",
		Token:      "secret",
		BaseURL:    srv.URL,
	}, srv.Client())
	require.NoError(t, err)
	return c
}

func TestNewRequiresProjectAndDataset(t *testing.T) {
	_, err := New(Config{Dataset: "production"}, nil)
	assert.Error(t, err)
}

func TestBuildQuery(t *testing.T) {
	groq, params := buildQuery(docstore.Query{
		Type:  "adminUser",
		IDs:   []string{"a", "b"},
		Match: map[string]string{"email": "x@y.z"},
		Order: docstore.OrderCreatedDesc,
	})
	assert.Equal(t, `*[_type == $type && _id in $ids && email == $m0] | order(_createdAt desc)`, groq)
	assert.Equal(t, "adminUser", params["type"])
	assert.Equal(t, []string{"a", "b"}, params["ids"])
	assert.Equal(t, "x@y.z", params["m0"])
}

func TestQuerySendsTypedParams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2025-02-03/data/query/production", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, `*[_type == $type] | order(_createdAt desc)`, r.URL.Query().Get("query"))
		assert.Equal(t, `"shipping"`, r.URL.Query().Get("$type"))
		io.WriteString(w, `{"result":[{"_id":"o-1","_type":"shipping","_createdAt":"2025-02-03T10:00:00Z","status":"pending"}]}`)
	})

	docs, err := c.Query(context.Background(), docstore.Query{Type: "shipping", Order: docstore.OrderCreatedDesc})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "o-1", docs[0].ID)
	assert.Equal(t, "pending", docs[0].Fields["status"])
	assert.Equal(t, 2025, docs[0].CreatedAt.Year())
}

func TestGetMissingDocument(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"result":null}`)
	})
	_, err := c.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestCreateAndPatchMutations(t *testing.T) {
	var mutations []map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2025-02-03/data/mutate/production", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("returnDocuments"))

		var body struct {
			Mutations []map[string]any `json:"mutations"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		mutations = append(mutations, body.Mutations...)
		io.WriteString(w, `{"results":[{"id":"c-1","operation":"create","document":{"_id":"c-1","_type":"category","name":"Audio"}}]}`)
	})
	ctx := context.Background()

	doc, err := c.Create(ctx, docstore.NewDocument("category", "c-1", map[string]any{"name": "Audio"}))
	require.NoError(t, err)
	assert.Equal(t, "c-1", doc.ID)

	_, err = c.Patch(ctx, "c-1", map[string]any{"name": "Audio"})
	require.NoError(t, err)

	require.Len(t, mutations, 2)
	create := mutations[0]["create"].(map[string]any)
	assert.Equal(t, "category", create["_type"])
	assert.Equal(t, "c-1", create["_id"])
	patch := mutations[1]["patch"].(map[string]any)
	assert.Equal(t, "c-1", patch["id"])
	assert.Equal(t, map[string]any{"name": "Audio"}, patch["set"])
}

func TestDeleteConflictIsReferenced(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		io.WriteString(w, `{"error":{"description":"Document cannot be deleted as there are references to it"}}`)
	})
	err := c.Delete(context.Background(), "p-1")
	assert.ErrorIs(t, err, docstore.ErrReferenced)
}

func TestServerErrorIsAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	err := c.Delete(context.Background(), "p-1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.NotErrorIs(t, err, docstore.ErrReferenced)
}

func TestUploadAsset(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2025-02-03/assets/images/production", r.URL.Path)
		assert.Equal(t, "cable.png", r.URL.Query().Get("filename"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "bytes", string(body))
		io.WriteString(w, `{"document":{"_id":"image-abc-10x10-png","url":"https://cdn.example/abc.png","mimeType":"image/png","size":5}}`)
	})

	asset, err := c.UploadAsset(context.Background(), docstore.AssetImage, "cable.png", strings.NewReader("bytes"))
	require.NoError(t, err)
	assert.Equal(t, "image-abc-10x10-png", asset.ID)
	assert.Equal(t, "https://cdn.example/abc.png", asset.URL)
	assert.Equal(t, docstore.AssetImage, asset.Kind)
}
