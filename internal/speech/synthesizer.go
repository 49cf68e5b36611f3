package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/dermassist/skin-triage-platform/pkg/logging"
)

const defaultTimeout = 15 * time.Second

// ErrNotConfigured is returned when no TTS endpoint is configured.
var ErrNotConfigured = errors.New("speech: no tts endpoint configured")

// Synthesizer turns text in a given language into an audio file artifact.
// No playback, no delivery; the caller owns the file.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) (path string, err error)
}

// HTTPSynthesizer calls a TTS service that answers GET ?text=&lang= with raw
// audio bytes, and writes the artifact to a temp file.
type HTTPSynthesizer struct {
	endpoint   string
	dir        string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewHTTPSynthesizer creates a synthesizer. dir may be empty to use the
// system temp directory.
func NewHTTPSynthesizer(endpoint, dir string, timeout time.Duration, logger *logging.Logger) *HTTPSynthesizer {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPSynthesizer{
		endpoint: strings.TrimSpace(endpoint),
		dir:      dir,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Synthesize fetches audio for the text and stores it as an .mp3 temp file,
// returning the file path.
func (s *HTTPSynthesizer) Synthesize(ctx context.Context, text, lang string) (string, error) {
	if s.endpoint == "" {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("speech: text required")
	}
	if lang == "" {
		lang = "en"
	}

	q := url.Values{}
	q.Set("text", text)
	q.Set("lang", lang)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("speech: create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("speech: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return "", fmt.Errorf("speech: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	tmp, err := os.CreateTemp(s.dir, "tts-*.mp3")
	if err != nil {
		return "", fmt.Errorf("speech: create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("speech: write audio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("speech: close audio file: %w", err)
	}

	s.logger.Info("speech synthesized", "lang", lang, "path", tmp.Name())
	return tmp.Name(), nil
}
