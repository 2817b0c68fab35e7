package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/inforia/backend/internal/config"
)

const (
	httpReferer = "https://inforia.app"
	xTitle      = "iNFORiA SaaS"
)

// AudioPayload is the audio blob handed to the transcription endpoint.
type AudioPayload struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Client talks to the OpenRouter AI gateway for transcription and
// report composition. It performs no retries; failed calls surface to
// the orchestrator, which never charges quota for them.
type Client struct {
	cfg          *config.Config
	httpClient   *http.Client
	systemPrompt string
}

func NewClient(cfg *config.Config) *Client {
	timeout := cfg.AITimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: timeout},
		systemPrompt: LoadSystemPrompt(cfg.SystemPromptPath),
	}
}

// Transcribe sends the audio to the speech-to-text endpoint and returns
// the plain-text transcript.
func (c *Client) Transcribe(ctx context.Context, audio AudioPayload) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, audio.Filename))
	if audio.MIMEType != "" {
		header.Set("Content-Type", audio.MIMEType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to build transcription request: %w", err)
	}
	if _, err := part.Write(audio.Data); err != nil {
		return "", fmt.Errorf("failed to build transcription request: %w", err)
	}
	if err := writer.WriteField("model", c.cfg.TranscriptionModel); err != nil {
		return "", fmt.Errorf("failed to build transcription request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to build transcription request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TranscriptionURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.setCommonHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ServiceError{Op: OpTranscription, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ServiceError{Op: OpTranscription, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Error("transcription API returned error", "status", resp.StatusCode, "body", truncate(string(respBody), 500))
		return "", &ServiceError{Op: OpTranscription, Status: resp.StatusCode}
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil || parsed.Text == "" {
		slog.Error("transcription response did not contain text")
		return "", ErrTranscriptionInvalid
	}
	return parsed.Text, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ComposeReport sends the transcript, therapist notes and optional prior
// report to the chat-completion endpoint and returns the Markdown report.
func (c *Client) ComposeReport(ctx context.Context, transcript, sessionNotes, previousReport string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.cfg.ReportModel,
		Messages: []chatMessage{
			{Role: "system", Content: c.systemPrompt},
			{Role: "user", Content: buildUserPrompt(transcript, sessionNotes, previousReport)},
		},
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.CompletionsURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setCommonHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ServiceError{Op: OpReport, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ServiceError{Op: OpReport, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Error("completions API returned error", "status", resp.StatusCode, "body", truncate(string(respBody), 500))
		return "", &ServiceError{Op: OpReport, Status: resp.StatusCode}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", ErrReportInvalid
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		slog.Error("completions response was invalid")
		return "", ErrReportInvalid
	}
	return parsed.Choices[0].Message.Content, nil
}

func buildUserPrompt(transcript, sessionNotes, previousReport string) string {
	var b strings.Builder
	b.WriteString("Transcripción de la sesión:\n---\n")
	b.WriteString(transcript)
	b.WriteString("\n---\n\nNotas adicionales del terapeuta:\n---\n")
	b.WriteString(sessionNotes)
	b.WriteString("\n---\n")
	if previousReport != "" {
		b.WriteString("\nInforme anterior para análisis evolutivo:\n---\n")
		b.WriteString(previousReport)
		b.WriteString("\n---\n")
	}
	return b.String()
}

func (c *Client) setCommonHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.OpenRouterAPIKey)
	req.Header.Set("HTTP-Referer", httpReferer)
	req.Header.Set("X-Title", xTitle)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
