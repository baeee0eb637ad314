package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jusunglee/kyrlat/internal/romanizer"
)

// APIClient romanizes through a running kyrlat web server instead of the
// in-process engine, so several bots can share one history store.
type APIClient struct {
	url  string
	http *http.Client
}

func NewAPIClient(url string) *APIClient {
	return &APIClient{
		url:  strings.TrimRight(url, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

type apiRequest struct {
	Language string `json:"language"`
	Text     string `json:"text"`
	ASCII    bool   `json:"ascii"`
}

type apiResponse struct {
	Romanized string `json:"romanized"`
	HistoryID int64  `json:"history_id"`
	Error     string `json:"error"`
}

func (c *APIClient) Romanize(ctx context.Context, req romanizer.Request) (romanizer.Result, error) {
	jsonBody, err := json.Marshal(apiRequest{
		Language: req.Language.Code(),
		Text:     req.Text,
		ASCII:    req.ASCII,
	})
	if err != nil {
		return romanizer.Result{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/api/v1/romanize", bytes.NewReader(jsonBody))
	if err != nil {
		return romanizer.Result{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return romanizer.Result{}, fmt.Errorf("calling romanize API: %w", err)
	}
	defer resp.Body.Close()

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return romanizer.Result{}, fmt.Errorf("decoding response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return romanizer.Result{}, fmt.Errorf("romanize API returned %d: %s", resp.StatusCode, body.Error)
	}

	return romanizer.Result{
		Language:  req.Language,
		Input:     req.Text,
		Output:    body.Romanized,
		ASCII:     req.ASCII,
		HistoryID: body.HistoryID,
	}, nil
}
