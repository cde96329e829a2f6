// Package lyria calls the hosted Lyria text-to-music model on Vertex AI
// and turns its predictions into WAV files on disk.
package lyria

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"golang.org/x/oauth2/google"

	"github.com/harmonia-labs/lyria-api/internal/audio"
	"github.com/harmonia-labs/lyria-api/internal/breakdown"
	"github.com/harmonia-labs/lyria-api/internal/config"
	"github.com/harmonia-labs/lyria-api/internal/logger"
)

const (
	// ModelID is the Lyria batch generation model on Vertex AI.
	ModelID = "lyria-002"

	cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

	requestTimeout = 120 * time.Second
)

// Request describes one generation. Either Prompt or WeightedPrompts
// must be set; weighted prompts are normalized and rendered into the
// final Lyria prompt string.
type Request struct {
	Prompt          string
	WeightedPrompts []breakdown.WeightedPrompt
	NegativePrompt  string
	Seed            *int
	// BPM, when non-zero, is rendered into the prompt text. The batch
	// predict API has no tempo parameter, so tempo travels in-prompt.
	BPM int
}

// Track is a generated WAV file written to disk
type Track struct {
	Filename string
	Path     string
	Size     int
}

// predict request/response wire types (Vertex AI :predict REST)
type predictInstance struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt"`
	Seed           *int   `json:"seed,omitempty"`
}

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters map[string]any    `json:"parameters"`
}

type predictResponse struct {
	Predictions []struct {
		AudioContent string `json:"audioContent"`
		MimeType     string `json:"mimeType"`
	} `json:"predictions"`
}

// Generator holds an authenticated HTTP client for the Vertex AI
// predict endpoint.
type Generator struct {
	client   *http.Client
	endpoint string
	audioDir string
}

// NewGenerator creates a generator using Application Default Credentials.
func NewGenerator(ctx context.Context, cfg *config.Config) (*Generator, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("%w: PROJECT_ID not configured", breakdown.ErrUpstreamUnavailable)
	}

	client, err := google.DefaultClient(ctx, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("%w: google credentials: %v", breakdown.ErrUpstreamUnavailable, err)
	}
	client.Timeout = requestTimeout

	return &Generator{
		client:   client,
		endpoint: EndpointURL(cfg.ProjectID, cfg.Location),
		audioDir: cfg.AudioDir,
	}, nil
}

// NewGeneratorWithClient creates a generator against an explicit client
// and endpoint. Used by tests.
func NewGeneratorWithClient(client *http.Client, endpoint, audioDir string) *Generator {
	return &Generator{client: client, endpoint: endpoint, audioDir: audioDir}
}

// EndpointURL builds the Vertex AI predict URL for the Lyria model
func EndpointURL(projectID, location string) string {
	return fmt.Sprintf(
		"https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/google/models/%s:predict",
		location, projectID, location, ModelID,
	)
}

// Generate renders the prompt, calls the predict endpoint and writes the
// decoded audio to a WAV file under the configured audio directory.
func (g *Generator) Generate(ctx context.Context, req *Request) (*Track, error) {
	span := sentry.StartSpan(ctx, "lyria.generate")
	span.SetTag("model", ModelID)
	defer span.Finish()

	promptText, err := RenderPrompt(req)
	if err != nil {
		return nil, err
	}

	body := predictRequest{
		Instances: []predictInstance{{
			Prompt:         promptText,
			NegativePrompt: req.NegativePrompt,
			Seed:           req.Seed,
		}},
		Parameters: map[string]any{},
	}
	// sample_count cannot be combined with an explicit seed
	if req.Seed == nil {
		body.Parameters["sample_count"] = 1
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode predict request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(span.Context(), http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build predict request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.client.Do(httpReq)
	if err != nil {
		span.Status = sentry.SpanStatusUnavailable
		return nil, fmt.Errorf("%w: predict call failed: %v", breakdown.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading predict response: %v", breakdown.ErrUpstreamUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		span.Status = sentry.SpanStatusUnavailable
		return nil, fmt.Errorf("%w: predict returned %d: %s",
			breakdown.ErrUpstreamUnavailable, resp.StatusCode, truncate(string(respBody), 200))
	}

	var parsed predictResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", breakdown.ErrMalformedUpstream, err)
	}
	if len(parsed.Predictions) == 0 {
		return nil, fmt.Errorf("%w: no predictions returned", breakdown.ErrMalformedUpstream)
	}
	if parsed.Predictions[0].AudioContent == "" {
		return nil, fmt.Errorf("%w: no audioContent in prediction", breakdown.ErrMalformedUpstream)
	}

	audioBytes, err := base64.StdEncoding.DecodeString(parsed.Predictions[0].AudioContent)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid audio encoding: %v", breakdown.ErrMalformedUpstream, err)
	}
	if len(audioBytes) == 0 {
		return nil, fmt.Errorf("%w: empty audio payload", breakdown.ErrMalformedUpstream)
	}

	// Lyria normally returns complete WAV bytes; raw PCM gets wrapped
	wavBytes := audio.EnsureWAV(audioBytes)
	if _, err := audio.ParseHeader(wavBytes); err != nil {
		return nil, fmt.Errorf("%w: %v", breakdown.ErrMalformedUpstream, err)
	}

	track, err := g.writeTrack(wavBytes)
	if err != nil {
		return nil, err
	}

	logger.Info("music generation complete", logger.Fields{
		"model":       ModelID,
		"file":        track.Filename,
		"bytes":       track.Size,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	span.Status = sentry.SpanStatusOK
	return track, nil
}

func (g *Generator) writeTrack(wavBytes []byte) (*Track, error) {
	if err := os.MkdirAll(g.audioDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}

	filename := fmt.Sprintf("track_%d_%s.wav", time.Now().Unix(), uuid.New().String()[:4])
	path := filepath.Join(g.audioDir, filename)
	if err := os.WriteFile(path, wavBytes, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write audio file: %w", err)
	}

	return &Track{Filename: filename, Path: path, Size: len(wavBytes)}, nil
}

// RenderPrompt turns the request into the single prompt string Lyria
// accepts. Weighted prompts take precedence over the plain prompt and
// are re-normalized before rendering.
func RenderPrompt(req *Request) (string, error) {
	var prompt string

	if len(req.WeightedPrompts) > 0 {
		candidates := make([]breakdown.Candidate, 0, len(req.WeightedPrompts))
		for _, wp := range req.WeightedPrompts {
			candidates = append(candidates, breakdown.Candidate{Text: wp.Text, Weight: wp.Weight})
		}
		normalized, err := breakdown.Normalize(candidates)
		if err != nil {
			return "", err
		}

		parts := make([]string, 0, len(normalized))
		for _, wp := range normalized {
			parts = append(parts, fmt.Sprintf("%s (weight: %.2f)", wp.Text, wp.Weight))
		}
		prompt = strings.Join(parts, ", ")
	} else {
		prompt = strings.TrimSpace(req.Prompt)
		if prompt == "" {
			return "", breakdown.ErrEmptyInput
		}
	}

	if req.BPM > 0 {
		prompt = fmt.Sprintf("%s, %d bpm", prompt, req.BPM)
	}
	return prompt, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
