// Package sanity talks to the hosted content platform's HTTP API: the query
// endpoint, the mutate endpoint and the asset upload endpoint.
package sanity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/georgemunganga/accessories-admin/internal/platform/docstore"
	"github.com/google/uuid"
)

// Config identifies a project dataset.
type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	BaseURL    string // defaults to https://<project>.api.sanity.io
}

// APIError is a non-2xx response from the platform.
type APIError struct {
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("content platform: %d %s", e.StatusCode, e.Description)
}

// Client implements docstore.Client.
type Client struct {
	cfg  Config
	base string
	http *http.Client
}

var _ docstore.Client = (*Client)(nil)

func New(cfg Config, httpClient *http.Client) (*Client, error) {
	if cfg.ProjectID == "" || cfg.Dataset == "" {
		return nil, errors.New("sanity: project id and dataset are required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2025-02-03"
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.api.sanity.io", cfg.ProjectID)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{cfg: cfg, base: base + "/v" + strings.TrimPrefix(cfg.APIVersion, "v"), http: httpClient}, nil
}

func (c *Client) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	groq, params := buildQuery(q)
	var out struct {
		Result []docstore.Document `json:"result"`
	}
	if err := c.query(ctx, groq, params, &out); err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Type, err)
	}
	if out.Result == nil {
		out.Result = []docstore.Document{}
	}
	return out.Result, nil
}

func (c *Client) Get(ctx context.Context, id string) (docstore.Document, error) {
	var out struct {
		Result *docstore.Document `json:"result"`
	}
	if err := c.query(ctx, `*[_id == $id][0]`, map[string]any{"id": id}, &out); err != nil {
		return docstore.Document{}, fmt.Errorf("get %s: %w", id, err)
	}
	if out.Result == nil {
		return docstore.Document{}, fmt.Errorf("document %s: %w", id, docstore.ErrNotFound)
	}
	return *out.Result, nil
}

func (c *Client) Create(ctx context.Context, doc docstore.Document) (docstore.Document, error) {
	if doc.Type == "" {
		return docstore.Document{}, errors.New("document type is required")
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	body := map[string]any{}
	for k, v := range doc.Fields {
		body[k] = v
	}
	body["_id"] = doc.ID
	body["_type"] = doc.Type
	return c.mutateOne(ctx, map[string]any{"create": body})
}

func (c *Client) Patch(ctx context.Context, id string, set map[string]any) (docstore.Document, error) {
	return c.mutateOne(ctx, map[string]any{"patch": map[string]any{"id": id, "set": set}})
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.mutate(ctx, map[string]any{"delete": map[string]any{"id": id}})
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
		return fmt.Errorf("delete %s: %s: %w", id, apiErr.Description, docstore.ErrReferenced)
	}
	return err
}

func (c *Client) UploadAsset(ctx context.Context, kind docstore.AssetKind, filename string, r io.Reader) (docstore.Asset, error) {
	endpoint := fmt.Sprintf("%s/assets/%ss/%s?filename=%s",
		c.base, kind, url.PathEscape(c.cfg.Dataset), url.QueryEscape(filename))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, r)
	if err != nil {
		return docstore.Asset{}, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	var out struct {
		Document docstore.Asset `json:"document"`
	}
	if err := c.do(req, &out); err != nil {
		return docstore.Asset{}, fmt.Errorf("upload %s: %w", filename, err)
	}
	out.Document.Kind = kind
	return out.Document, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

// buildQuery renders q as a GROQ filter with $-prefixed parameters.
func buildQuery(q docstore.Query) (string, map[string]any) {
	params := map[string]any{"type": q.Type}
	filters := []string{"_type == $type"}
	if len(q.IDs) > 0 {
		filters = append(filters, "_id in $ids")
		params["ids"] = q.IDs
	}
	keys := sortedKeys(q.Match)
	for i, k := range keys {
		name := fmt.Sprintf("m%d", i)
		filters = append(filters, fmt.Sprintf("%s == $%s", k, name))
		params[name] = q.Match[k]
	}
	groq := "*[" + strings.Join(filters, " && ") + "]"
	switch q.Order {
	case docstore.OrderCreatedAsc:
		groq += " | order(_createdAt asc)"
	case docstore.OrderCreatedDesc:
		groq += " | order(_createdAt desc)"
	}
	return groq, params
}

func (c *Client) query(ctx context.Context, groq string, params map[string]any, out any) error {
	v := url.Values{}
	v.Set("query", groq)
	for k, p := range params {
		raw, err := json.Marshal(p)
		if err != nil {
			return err
		}
		v.Set("$"+k, string(raw))
	}
	endpoint := fmt.Sprintf("%s/data/query/%s?%s", c.base, url.PathEscape(c.cfg.Dataset), v.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

type mutateResult struct {
	ID        string             `json:"id"`
	Operation string             `json:"operation"`
	Document  *docstore.Document `json:"document"`
}

func (c *Client) mutateOne(ctx context.Context, mutation map[string]any) (docstore.Document, error) {
	results, err := c.mutate(ctx, mutation)
	if err != nil {
		return docstore.Document{}, err
	}
	if len(results) == 0 || results[0].Document == nil {
		return docstore.Document{}, errors.New("content platform returned no document")
	}
	return *results[0].Document, nil
}

func (c *Client) mutate(ctx context.Context, mutations ...map[string]any) ([]mutateResult, error) {
	body, err := json.Marshal(map[string]any{"mutations": mutations})
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/data/mutate/%s?returnDocuments=true",
		c.base, url.PathEscape(c.cfg.Dataset))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		Results []mutateResult `json:"results"`
	}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *Client) do(req *http.Request, out any) error {
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var body struct {
			Error struct {
				Description string `json:"description"`
			} `json:"error"`
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		desc := body.Error.Description
		if desc == "" {
			desc = body.Message
		}
		if desc == "" {
			desc = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Description: desc}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
