// Package opensearch provides an index.Client talking to an
// OpenSearch-compatible REST API.
package opensearch

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/quarrylabs/strata/pkg/index"
)

// Config holds configuration for the OpenSearch client.
type Config struct {
	// Host is the index service host (e.g. "localhost" or a full domain).
	Host string

	// Port is the index service port.
	Port int

	// IndexName is the index all document operations run against.
	IndexName string

	// Username and Password enable basic auth when both are non-empty.
	Username string
	Password string

	// UseTLS selects https when true.
	UseTLS bool

	// InsecureSkipVerify disables certificate verification. Only for
	// local development clusters with self-signed certificates.
	InsecureSkipVerify bool
}

// Client implements index.Client using the OpenSearch REST API.
type Client struct {
	baseURL    string
	indexName  string
	username   string
	password   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new OpenSearch index client.
func NewClient(c Config, logger *zap.Logger) (*Client, error) {
	if c.Host == "" {
		return nil, fmt.Errorf("%w: opensearch host is required", index.ErrConfiguration)
	}
	if c.IndexName == "" {
		return nil, fmt.Errorf("%w: index name is required", index.ErrConfiguration)
	}

	scheme := "http"
	if c.UseTLS {
		scheme = "https"
	}

	baseURL := fmt.Sprintf("%s://%s", scheme, c.Host)
	if c.Port > 0 {
		baseURL = fmt.Sprintf("%s:%d", baseURL, c.Port)
	}

	transport := http.DefaultTransport
	if c.InsecureSkipVerify {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &Client{
		baseURL:   baseURL,
		indexName: c.IndexName,
		username:  c.Username,
		password:  c.Password,
		httpClient: &http.Client{
			Timeout:   60 * time.Second,
			Transport: transport,
		},
		logger: logger,
	}, nil
}

// Search executes a raw query body against the index.
func (c *Client) Search(ctx context.Context, body map[string]any, size int) (*index.SearchResponse, error) {
	if body == nil {
		body = map[string]any{}
	}

	searchURL := fmt.Sprintf("%s/%s/_search?size=%d", c.baseURL, url.PathEscape(c.indexName), size)

	respBody, err := c.do(ctx, http.MethodPost, searchURL, body)
	if err != nil {
		return nil, err
	}

	var searchResp index.SearchResponse
	if err := json.Unmarshal(respBody, &searchResp); err != nil {
		return nil, fmt.Errorf("%w: decoding search response: %v", index.ErrUnexpected, err)
	}

	c.logger.Debug("executed search",
		zap.String("index", c.indexName),
		zap.Int("hits", len(searchResp.Hits.Hits)),
	)

	return &searchResp, nil
}

// Write stores a document under the given id, replacing any existing one.
func (c *Client) Write(ctx context.Context, id string, doc map[string]any) (*index.WriteAck, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: document id is required", index.ErrValidation)
	}

	docURL := fmt.Sprintf("%s/%s/_doc/%s?refresh=true", c.baseURL, url.PathEscape(c.indexName), url.PathEscape(id))

	respBody, err := c.do(ctx, http.MethodPut, docURL, doc)
	if err != nil {
		return nil, err
	}

	return decodeAck(respBody)
}

// Index stores a document and lets the index service assign its id.
func (c *Client) Index(ctx context.Context, doc map[string]any) (*index.WriteAck, error) {
	docURL := fmt.Sprintf("%s/%s/_doc?refresh=true", c.baseURL, url.PathEscape(c.indexName))

	respBody, err := c.do(ctx, http.MethodPost, docURL, doc)
	if err != nil {
		return nil, err
	}

	return decodeAck(respBody)
}

// Delete removes the document with the given id.
func (c *Client) Delete(ctx context.Context, id string) (*index.WriteAck, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: document id is required", index.ErrValidation)
	}

	docURL := fmt.Sprintf("%s/%s/_doc/%s?refresh=true", c.baseURL, url.PathEscape(c.indexName), url.PathEscape(id))

	respBody, err := c.do(ctx, http.MethodDelete, docURL, nil)
	if err != nil {
		return nil, err
	}

	return decodeAck(respBody)
}

// Bulk executes several write actions in one request. The body is NDJSON
// alternating an action header and the document itself. refresh=true makes
// the writes visible to immediately subsequent reads.
func (c *Client) Bulk(ctx context.Context, actions []index.BulkAction) (*index.BulkResponse, error) {
	if len(actions) == 0 {
		return nil, fmt.Errorf("%w: bulk request requires at least one action", index.ErrValidation)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	for _, action := range actions {
		header := map[string]any{"index": map[string]any{"_index": c.indexName}}
		if action.ID != "" {
			header["index"].(map[string]any)["_id"] = action.ID
		}
		if err := enc.Encode(header); err != nil {
			return nil, fmt.Errorf("%w: encoding bulk header: %v", index.ErrUnexpected, err)
		}
		if err := enc.Encode(action.Doc); err != nil {
			return nil, fmt.Errorf("%w: encoding bulk document: %v", index.ErrUnexpected, err)
		}
	}

	bulkURL := fmt.Sprintf("%s/_bulk?refresh=true", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, bulkURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("%w: creating bulk request: %v", index.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	c.auth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending bulk request: %v", index.ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading bulk response: %v", index.ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: bulk returned status %d: %s", index.ErrTransport, resp.StatusCode, string(respBody))
	}

	var bulkResp index.BulkResponse
	if err := json.Unmarshal(respBody, &bulkResp); err != nil {
		return nil, fmt.Errorf("%w: decoding bulk response: %v", index.ErrUnexpected, err)
	}

	c.logger.Debug("executed bulk write",
		zap.String("index", c.indexName),
		zap.Int("actions", len(actions)),
		zap.Bool("errors", bulkResp.Errors),
	)

	return &bulkResp, nil
}

// Health returns the cluster health document.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	return c.getJSON(ctx, c.baseURL+"/_cluster/health")
}

// Stats returns the cluster statistics document.
func (c *Client) Stats(ctx context.Context) (map[string]any, error) {
	return c.getJSON(ctx, c.baseURL+"/_cluster/stats")
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// do runs a JSON request against the index service and returns the raw
// response body. A nil body sends no payload.
func (c *Client) do(ctx context.Context, method, reqURL string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: marshaling request: %v", index.ErrUnexpected, err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", index.ErrTransport, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.auth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", index.ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", index.ErrTransport, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", index.ErrNotFound, string(respBody))
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: index service returned status %d: %s", index.ErrTransport, resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// getJSON runs a GET request and decodes the response as a generic document.
func (c *Client) getJSON(ctx context.Context, reqURL string) (map[string]any, error) {
	respBody, err := c.do(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := json.Unmarshal(respBody, &doc); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", index.ErrUnexpected, err)
	}

	return doc, nil
}

// auth sets basic auth when credentials are configured.
func (c *Client) auth(req *http.Request) {
	if c.username != "" && c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}
}

// decodeAck decodes a single-document write acknowledgement.
func decodeAck(body []byte) (*index.WriteAck, error) {
	var ack index.WriteAck
	if err := json.Unmarshal(body, &ack); err != nil {
		return nil, fmt.Errorf("%w: decoding write response: %v", index.ErrUnexpected, err)
	}
	return &ack, nil
}

// Ensure Client implements index.Client
var _ index.Client = (*Client)(nil)
