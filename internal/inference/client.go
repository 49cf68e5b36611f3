package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dermassist/skin-triage-platform/internal/classifier"
	"github.com/dermassist/skin-triage-platform/pkg/logging"
)

const defaultTimeout = 30 * time.Second

// Client scores image batches against a TF-Serving style inference server.
// Model artifacts live on disk next to an optional metadata sidecar; the
// server is assumed to have the same artifacts mounted under the model name.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates an inference client. baseURL is the server root, e.g.
// http://inference:8501.
func NewClient(baseURL string, timeout time.Duration, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Loader adapts the client to the classifier's Loader contract.
func (c *Client) Loader() classifier.Loader {
	return c.LoadModel
}

// bundleMetadata is the optional sidecar describing a model artifact.
type bundleMetadata struct {
	Name       string   `json:"name"`
	InputShape []*int   `json:"input_shape"`
	ClassNames []string `json:"class_names"`
}

// LoadModel builds a Model handle for the artifact at path. A missing or
// malformed metadata sidecar never fails the load; the handle simply reports
// no shape and no class names.
func (c *Client) LoadModel(path string) (classifier.Model, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("inference: no server endpoint configured")
	}
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("inference: model path required")
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	model := &Model{client: c, name: name}

	meta, err := readMetadata(path)
	if err != nil {
		c.logger.Warn("model metadata unavailable, continuing without shape introspection",
			"path", path, "error", err)
		return model, nil
	}

	if meta.Name != "" {
		model.name = meta.Name
	}
	model.classNames = meta.ClassNames
	// Mirrors a Keras input_shape of (batch, height, width, channels):
	// positions 1 and 2 carry the spatial dims.
	if len(meta.InputShape) >= 3 && meta.InputShape[1] != nil && meta.InputShape[2] != nil {
		model.height = *meta.InputShape[1]
		model.width = *meta.InputShape[2]
		model.shapeOK = model.height > 0 && model.width > 0
	}
	return model, nil
}

// readMetadata looks for metadata.json inside a bundle directory, or a
// <artifact>.json sidecar next to a single-file artifact.
func readMetadata(path string) (*bundleMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	metaPath := path + ".json"
	if info.IsDir() {
		metaPath = filepath.Join(path, "metadata.json")
	}

	raw, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}
	var meta bundleMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("parse %s: %w", metaPath, err)
	}
	return &meta, nil
}

// Model is a remote model handle. Predict round-trips through the server;
// shape and class names come from the local sidecar.
type Model struct {
	client     *Client
	name       string
	height     int
	width      int
	shapeOK    bool
	classNames []string
}

// InputShape reports the declared input dims from the metadata sidecar.
func (m *Model) InputShape() (int, int, bool) {
	return m.height, m.width, m.shapeOK
}

// ClassNames returns label metadata, nil when the sidecar carried none.
func (m *Model) ClassNames() []string {
	return m.classNames
}

type predictRequest struct {
	Instances [][][][]float32 `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
	Error       string      `json:"error"`
}

// Predict posts the batch to /v1/models/<name>:predict and returns the score
// vector for the single instance.
func (m *Model) Predict(ctx context.Context, batch classifier.Batch) ([]float64, error) {
	body, err := json.Marshal(predictRequest{Instances: nestInstances(batch)})
	if err != nil {
		return nil, fmt.Errorf("inference: marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/models/%s:predict", m.client.baseURL, m.name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("inference: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("inference: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		return nil, fmt.Errorf("inference: status %d: %s", resp.StatusCode, msg)
	}

	var parsed predictResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("inference: unmarshal response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("inference: server error: %s", parsed.Error)
	}
	if len(parsed.Predictions) == 0 {
		return nil, fmt.Errorf("inference: no predictions in response")
	}
	return parsed.Predictions[0], nil
}

// nestInstances rebuilds the flat NHWC buffer into the nested array form the
// predict API expects.
func nestInstances(batch classifier.Batch) [][][][]float32 {
	instances := make([][][][]float32, batch.N)
	idx := 0
	for n := 0; n < batch.N; n++ {
		rows := make([][][]float32, batch.Height)
		for y := 0; y < batch.Height; y++ {
			cols := make([][]float32, batch.Width)
			for x := 0; x < batch.Width; x++ {
				px := make([]float32, batch.Channels)
				copy(px, batch.Data[idx:idx+batch.Channels])
				idx += batch.Channels
				cols[x] = px
			}
			rows[y] = cols
		}
		instances[n] = rows
	}
	return instances
}
