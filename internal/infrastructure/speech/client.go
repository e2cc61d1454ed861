package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yashdave182/medinote/config"
	"github.com/yashdave182/medinote/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

var (
	ErrMissingAPIKey       = errors.New("speech-to-text API key is not configured")
	ErrTranscriptionFailed = errors.New("transcription failed")
	// ErrTranscriptionTimeout is returned when the job never completed within
	// the poll budget. It matches ErrTranscriptionFailed with errors.Is.
	ErrTranscriptionTimeout = fmt.Errorf("%w: polling attempts exhausted", ErrTranscriptionFailed)
)

// Job statuses reported by the vendor
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type transcriptRequest struct {
	AudioURL     string `json:"audio_url"`
	LanguageCode string `json:"language_code,omitempty"`
	Punctuate    bool   `json:"punctuate"`
	FormatText   bool   `json:"format_text"`
}

type transcriptResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// Client talks to an AssemblyAI-style speech-to-text API:
// upload the audio, create a transcription job, poll until it settles.
type Client struct {
	baseURL      string
	apiKey       string
	languageCode string
	pollInterval time.Duration
	maxAttempts  int
	httpClient   *http.Client
	log          *logrus.Logger
}

func NewClient(cfg config.SpeechConfig, log *logrus.Logger) *Client {
	maxAttempts := cfg.MaxPollAttempts
	if maxAttempts <= 0 {
		maxAttempts = 60
	}
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		languageCode: cfg.LanguageCode,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
		httpClient:   &http.Client{Timeout: cfg.HTTPTimeout},
		log:          log,
	}
}

// Transcribe uploads the audio and waits for the vendor to finish the job
func (c *Client) Transcribe(ctx context.Context, audio *entity.Audio) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	if audio.Size() == 0 {
		return "", fmt.Errorf("%w: empty audio", ErrTranscriptionFailed)
	}

	uploadURL, err := c.upload(ctx, audio)
	if err != nil {
		return "", err
	}

	jobID, err := c.createJob(ctx, uploadURL)
	if err != nil {
		return "", err
	}
	c.log.Infof("Transcription job created: id=%s, bytes=%d", jobID, audio.Size())

	return c.poll(ctx, jobID)
}

func (c *Client) upload(ctx context.Context, audio *entity.Audio) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", bytes.NewReader(audio.Data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	var out uploadResponse
	if err := c.do(req, &out); err != nil {
		return "", fmt.Errorf("upload audio: %w", err)
	}
	if out.UploadURL == "" {
		return "", fmt.Errorf("%w: upload returned no url", ErrTranscriptionFailed)
	}
	return out.UploadURL, nil
}

func (c *Client) createJob(ctx context.Context, audioURL string) (string, error) {
	body, err := json.Marshal(transcriptRequest{
		AudioURL:     audioURL,
		LanguageCode: c.languageCode,
		Punctuate:    true,
		FormatText:   true,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcript", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var out transcriptResponse
	if err := c.do(req, &out); err != nil {
		return "", fmt.Errorf("create transcription job: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("%w: job id missing", ErrTranscriptionFailed)
	}
	return out.ID, nil
}

// poll checks the job status at a fixed interval, at most maxAttempts times
func (c *Client) poll(ctx context.Context, jobID string) (string, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		job, err := c.getJob(ctx, jobID)
		if err != nil {
			return "", err
		}

		switch job.Status {
		case StatusCompleted:
			c.log.Infof("Transcription job completed: id=%s, attempts=%d", jobID, attempt)
			return job.Text, nil
		case StatusError:
			return "", fmt.Errorf("%w: %s", ErrTranscriptionFailed, job.Error)
		default:
			c.log.Debugf("Transcription job %s is %s (attempt %d/%d)", jobID, job.Status, attempt, c.maxAttempts)
		}
	}

	return "", ErrTranscriptionTimeout
}

func (c *Client) getJob(ctx context.Context, jobID string) (*transcriptResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transcript/"+jobID, nil)
	if err != nil {
		return nil, err
	}

	var out transcriptResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("poll transcription job %s: %w", jobID, err)
	}
	return &out, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: vendor returned status %d: %s", ErrTranscriptionFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
