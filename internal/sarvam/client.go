// Package sarvam implements HTTP clients for the Sarvam AI
// speech-to-text, translation and text-to-speech APIs.
package sarvam

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://api.sarvam.ai"

// Client talks to the Sarvam AI endpoints on behalf of one task. The
// API key comes from the task's submission, not from server config.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	logger      *slog.Logger
	maxAttempts int
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryAttempts bounds per-call retries for transient errors.
func WithRetryAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// New creates a Client for the given base URL and API key.
func New(baseURL, apiKey string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		logger:      logger,
		maxAttempts: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sttResponse struct {
	Transcript string `json:"transcript"`
}

// Transcribe posts chunk audio to the speech-to-text endpoint and
// returns the transcript.
func (c *Client) Transcribe(ctx context.Context, wavData []byte, language string) (string, error) {
	body, err := c.do(ctx, func() (*http.Request, error) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)

		fw, err := mw.CreateFormFile("file", "audio.wav")
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(wavData); err != nil {
			return nil, err
		}
		if err := mw.WriteField("language_code", language); err != nil {
			return nil, err
		}
		if err := mw.Close(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/speech-to-text", &buf)
		if err != nil {
			return nil, err
		}
		req.Header.Set("API-Subscription-Key", c.apiKey)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req, nil
	})
	if err != nil {
		return "", err
	}

	var resp sttResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode stt response: %w", err)
	}
	return resp.Transcript, nil
}

type translateRequest struct {
	Input               string `json:"input"`
	SourceLanguageCode  string `json:"source_language_code"`
	TargetLanguageCode  string `json:"target_language_code"`
	Mode                string `json:"mode"`
	Model               string `json:"model"`
	EnablePreprocessing bool   `json:"enable_preprocessing"`
}

type translateResponse struct {
	TranslatedText string `json:"translated_text"`
}

// Translate converts text from the source to the target language.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	body, err := c.postJSON(ctx, "/translate", translateRequest{
		Input:               text,
		SourceLanguageCode:  sourceLang,
		TargetLanguageCode:  targetLang,
		Mode:                "formal",
		Model:               "mayura:v1",
		EnablePreprocessing: true,
	})
	if err != nil {
		return "", err
	}

	var resp translateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode translate response: %w", err)
	}
	return resp.TranslatedText, nil
}

type ttsRequest struct {
	Inputs              []string `json:"inputs"`
	TargetLanguageCode  string   `json:"target_language_code"`
	Pitch               float64  `json:"pitch"`
	Pace                float64  `json:"pace"`
	Loudness            float64  `json:"loudness"`
	SpeechSampleRate    int      `json:"speech_sample_rate"`
	EnablePreprocessing bool     `json:"enable_preprocessing"`
	Model               string   `json:"model"`
}

type ttsResponse struct {
	Audios []string `json:"audios"`
}

// Synthesize converts translated text to speech in the target language.
// Pace adjusts speaking speed (1.0 is normal). Returns decoded WAV data.
func (c *Client) Synthesize(ctx context.Context, text, targetLang string, pace float64, sampleRate int) ([]byte, error) {
	body, err := c.postJSON(ctx, "/text-to-speech", ttsRequest{
		Inputs:              []string{text},
		TargetLanguageCode:  targetLang,
		Pace:                pace,
		Loudness:            1.2,
		SpeechSampleRate:    sampleRate,
		EnablePreprocessing: true,
		Model:               "bulbul:v1",
	})
	if err != nil {
		return nil, err
	}

	var resp ttsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode tts response: %w", err)
	}
	if len(resp.Audios) == 0 {
		return nil, fmt.Errorf("no audio data in tts response")
	}

	audio, err := base64.StdEncoding.DecodeString(resp.Audios[0])
	if err != nil {
		return nil, fmt.Errorf("decode tts audio: %w", err)
	}
	return audio, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	return c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("API-Subscription-Key", c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
}

// do executes a request with bounded retries. Only transient failures
// (network errors, 429, 5xx) are retried; 4xx responses surface
// immediately. The request is rebuilt per attempt since bodies are
// consumed on send.
func (c *Client) do(ctx context.Context, build func() (*http.Request, error)) ([]byte, error) {
	backoff := 500 * time.Millisecond

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		req, err := build()
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			c.logger.Warn("sarvam request failed", "url", req.URL.Path, "attempt", attempt, "error", err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if readErr != nil {
				// A truncated body on a success status is the same
				// transient class as a failed request.
				lastErr = fmt.Errorf("read response: %w", readErr)
				c.logger.Warn("sarvam response read failed", "url", req.URL.Path, "attempt", attempt, "error", readErr)
				continue
			}
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("sarvam http %d: %s", resp.StatusCode, truncate(body, 256))
			c.logger.Warn("sarvam transient error", "url", req.URL.Path, "attempt", attempt, "status", resp.StatusCode)
		default:
			return nil, fmt.Errorf("sarvam http %d: %s", resp.StatusCode, truncate(body, 256))
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", c.maxAttempts, lastErr)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
