package lyria

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-labs/lyria-api/internal/audio"
	"github.com/harmonia-labs/lyria-api/internal/breakdown"
)

func predictServer(t *testing.T, status int, response any) (*httptest.Server, *predictRequest) {
	t.Helper()
	var captured predictRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(server.Close)

	return server, &captured
}

func wavResponse() map[string]any {
	wav := audio.WrapRawPCM(make([]byte, 9600), audio.LyriaSampleRate, audio.LyriaChannels, audio.LyriaBitsPerSample)
	return map[string]any{
		"predictions": []map[string]any{
			{"audioContent": base64.StdEncoding.EncodeToString(wav), "mimeType": "audio/wav"},
		},
	}
}

func TestGenerate_WritesWAVFile(t *testing.T) {
	server, captured := predictServer(t, http.StatusOK, wavResponse())
	gen := NewGeneratorWithClient(server.Client(), server.URL, t.TempDir())

	track, err := gen.Generate(context.Background(), &Request{Prompt: "a catchy pop song"})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^track_\d+_[0-9a-f]{4}\.wav$`), track.Filename)
	assert.Equal(t, "a catchy pop song", captured.Instances[0].Prompt)
	assert.Equal(t, float64(1), captured.Parameters["sample_count"])

	data, err := os.ReadFile(track.Path)
	require.NoError(t, err)
	require.True(t, audio.IsWAV(data))
	assert.Equal(t, track.Size, len(data))
}

func TestGenerate_SeedDisablesSampleCount(t *testing.T) {
	server, captured := predictServer(t, http.StatusOK, wavResponse())
	gen := NewGeneratorWithClient(server.Client(), server.URL, t.TempDir())

	seed := 42
	_, err := gen.Generate(context.Background(), &Request{Prompt: "jazz", Seed: &seed})
	require.NoError(t, err)

	require.NotNil(t, captured.Instances[0].Seed)
	assert.Equal(t, 42, *captured.Instances[0].Seed)
	assert.NotContains(t, captured.Parameters, "sample_count")
}

func TestGenerate_WeightedPromptsRendered(t *testing.T) {
	server, captured := predictServer(t, http.StatusOK, wavResponse())
	gen := NewGeneratorWithClient(server.Client(), server.URL, t.TempDir())

	_, err := gen.Generate(context.Background(), &Request{
		WeightedPrompts: []breakdown.WeightedPrompt{
			{Text: "pop", Weight: 2},
			{Text: "piano", Weight: 1},
			{Text: "drums", Weight: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "pop (weight: 0.50), piano (weight: 0.25), drums (weight: 0.25)", captured.Instances[0].Prompt)
}

func TestGenerate_RawPCMGetsWrapped(t *testing.T) {
	raw := make([]byte, 9600)
	server, _ := predictServer(t, http.StatusOK, map[string]any{
		"predictions": []map[string]any{
			{"audioContent": base64.StdEncoding.EncodeToString(raw)},
		},
	})
	gen := NewGeneratorWithClient(server.Client(), server.URL, t.TempDir())

	track, err := gen.Generate(context.Background(), &Request{Prompt: "ambient"})
	require.NoError(t, err)

	data, err := os.ReadFile(track.Path)
	require.NoError(t, err)
	header, err := audio.ParseHeader(data)
	require.NoError(t, err)
	assert.Equal(t, audio.LyriaSampleRate, header.SampleRate)
	assert.Equal(t, len(raw), header.DataSize)
}

func TestGenerate_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		response any
		wantErr  error
	}{
		{name: "server error", status: http.StatusInternalServerError, response: map[string]any{}, wantErr: breakdown.ErrUpstreamUnavailable},
		{name: "no predictions", status: http.StatusOK, response: map[string]any{"predictions": []any{}}, wantErr: breakdown.ErrMalformedUpstream},
		{name: "missing audio content", status: http.StatusOK, response: map[string]any{"predictions": []map[string]any{{"mimeType": "audio/wav"}}}, wantErr: breakdown.ErrMalformedUpstream},
		{name: "invalid base64", status: http.StatusOK, response: map[string]any{"predictions": []map[string]any{{"audioContent": "@@not base64@@"}}}, wantErr: breakdown.ErrMalformedUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := predictServer(t, tt.status, tt.response)
			gen := NewGeneratorWithClient(server.Client(), server.URL, t.TempDir())

			_, err := gen.Generate(context.Background(), &Request{Prompt: "pop"})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRenderPrompt_BPMAppended(t *testing.T) {
	prompt, err := RenderPrompt(&Request{Prompt: "lofi hip hop", BPM: 85})
	require.NoError(t, err)
	assert.Equal(t, "lofi hip hop, 85 bpm", prompt)
}

func TestRenderPrompt_EmptyRequest(t *testing.T) {
	_, err := RenderPrompt(&Request{})
	assert.ErrorIs(t, err, breakdown.ErrEmptyInput)

	_, err = RenderPrompt(&Request{Prompt: "   "})
	assert.ErrorIs(t, err, breakdown.ErrEmptyInput)
}

func TestEndpointURL(t *testing.T) {
	url := EndpointURL("my-project", "us-central1")
	assert.Equal(t,
		"https://us-central1-aiplatform.googleapis.com/v1/projects/my-project/locations/us-central1/publishers/google/models/lyria-002:predict",
		url)
}
