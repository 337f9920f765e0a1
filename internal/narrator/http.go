package narrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mrwolf/kocicka/internal/models"
)

// HTTPTransport calls the narration backend over JSON/HTTP.
type HTTPTransport struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPTransport creates a transport for the backend at baseURL.
// token is sent as a bearer token when non-empty.
func NewHTTPTransport(baseURL, token string, httpClient *http.Client) *HTTPTransport {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPTransport{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// RespondToStatus calls POST /cat/respond
func (t *HTTPTransport) RespondToStatus(ctx context.Context, req models.CatStatusRequest) Result {
	var resp models.CatResponse
	if err := t.post(ctx, "/cat/respond", req, &resp); err != nil {
		return Result{Err: err}
	}
	return Result{Text: resp.Message}
}

// GenerateStory calls POST /story/generate
func (t *HTTPTransport) GenerateStory(ctx context.Context, req models.StoryRequest) Result {
	var resp models.StoryResponse
	if err := t.post(ctx, "/story/generate", req, &resp); err != nil {
		return Result{Err: err}
	}
	return Result{Text: resp.StoryText}
}

func (t *HTTPTransport) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if t.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+t.token)
	}

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("backend returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
