package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client communicates with a downstream chunk index over HTTP. The index is
// optional: when none is configured, chunks are only held on the job for
// retrieval through the API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// DocumentRequest is the body for PUT /documents/{docID}.
type DocumentRequest struct {
	Title       string `json:"title"`
	Filename    string `json:"filename"`
	ContentHash string `json:"content_hash"`
	ChunkCount  int    `json:"chunk_count"`
	MaxTokens   int    `json:"max_tokens"`
	CreatedAt   string `json:"created_at"`
}

// ChunkRecord is one chunk in a POST /documents/{docID}/chunks batch.
type ChunkRecord struct {
	ID          string   `json:"id"`
	Index       int      `json:"index"`
	Text        string   `json:"text"`
	TokenLength int      `json:"token_length"`
	HeaderPath  []string `json:"header_path"`
	Overflow    bool     `json:"overflow,omitempty"`
}

// TransientError marks a delivery failure worth retrying (429 or 5xx).
type TransientError struct {
	Status int
	Msg    string
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient index error (status %d): %s", e.Status, e.Msg)
}

// PutDocument registers or updates document metadata in the index.
func (c *Client) PutDocument(ctx context.Context, docID string, req DocumentRequest) error {
	return c.send(ctx, http.MethodPut, "/documents/"+docID, req, "put document "+docID)
}

// PutChunks delivers a batch of chunks for a document.
func (c *Client) PutChunks(ctx context.Context, docID string, chunks []ChunkRecord) error {
	body := map[string]any{"chunks": chunks}
	return c.send(ctx, http.MethodPost, "/documents/"+docID+"/chunks", body, "put chunks "+docID)
}

// DeleteDocument removes a document and its chunks from the index.
func (c *Client) DeleteDocument(ctx context.Context, docID string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/documents/"+docID, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return responseError(resp, "delete document "+docID)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, payload any, op string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", op, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Network failures are worth a retry too.
		return &TransientError{Status: 0, Msg: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return responseError(resp, op)
	}
	return nil
}

func responseError(resp *http.Response, op string) error {
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	msg := fmt.Sprintf("%s: %s", op, string(respBody))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &TransientError{Status: resp.StatusCode, Msg: msg}
	}
	return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, string(respBody))
}

// Close releases any resources (currently a no-op).
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
