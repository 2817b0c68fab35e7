package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// ErrQuotaExhausted mirrors the server's 403 response for an empty quota.
var ErrQuotaExhausted = errors.New("no reports remaining")

// APIClient calls the report-generation endpoint as the browser would:
// multipart body, bearer token, JSON responses.
type APIClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Generate implements ReportGenerator against the HTTP API.
func (c *APIClient) Generate(ctx context.Context, in GenerationInput) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audioFile"; filename=%q`, in.Audio.Filename))
	mime := in.Audio.MIMEType
	if mime == "" {
		mime = "application/octet-stream"
	}
	header.Set("Content-Type", mime)
	part, err := w.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(in.Audio.Data); err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}

	if err := w.WriteField("sessionNotes", in.SessionNotes); err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}
	if in.PreviousReport != "" {
		if err := w.WriteField("previousReport", in.PreviousReport); err != nil {
			return "", fmt.Errorf("failed to build multipart body: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/reports/generate", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusForbidden {
		return "", ErrQuotaExhausted
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return "", fmt.Errorf("generation failed (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return "", fmt.Errorf("generation failed (status %d)", resp.StatusCode)
	}

	var ok struct {
		Report string `json:"report"`
	}
	if err := json.Unmarshal(data, &ok); err != nil {
		return "", fmt.Errorf("invalid generation response: %w", err)
	}
	if ok.Report == "" {
		return "", errors.New("invalid generation response: empty report")
	}
	return ok.Report, nil
}
