package classifier

import (
	"context"
	"fmt"
	"image"
	"sync/atomic"

	"github.com/dermassist/skin-triage-platform/pkg/logging"
)

// DefaultInputSize is used when the loaded model declares no input shape.
const DefaultInputSize = 224

// Result is a single classification outcome.
type Result struct {
	Label        string  `json:"label"`
	Probability  float64 `json:"probability"`
	Index        int     `json:"index"`
	ModelVersion string  `json:"-"`
}

// handle pins a model snapshot. Predict reads the pointer once, so an
// administrative model swap never mixes shapes or class names mid-request.
type handle struct {
	model   Model
	version string
}

// Adapter normalizes images to a loaded model's expected input and turns raw
// score vectors into labeled results.
type Adapter struct {
	current          atomic.Pointer[handle]
	loader           Loader
	defaultInputSize int
	logger           *logging.Logger
}

// NewAdapter creates an adapter that loads models through loader.
func NewAdapter(loader Loader, defaultInputSize int, logger *logging.Logger) *Adapter {
	if logger == nil {
		logger = logging.Default()
	}
	if defaultInputSize <= 0 {
		defaultInputSize = DefaultInputSize
	}
	return &Adapter{
		loader:           loader,
		defaultInputSize: defaultInputSize,
		logger:           logger,
	}
}

// LoadModel loads the artifact at path and atomically replaces any previously
// loaded model. Shape introspection failure is not a load failure; the adapter
// falls back to its default input size at predict time.
func (a *Adapter) LoadModel(path string) error {
	if a.loader == nil {
		return fmt.Errorf("classifier: no model loader configured")
	}
	model, err := a.loader(path)
	if err != nil {
		return fmt.Errorf("classifier: load model %s: %w", path, err)
	}
	a.current.Store(&handle{model: model, version: path})

	h, w, ok := model.InputShape()
	if ok {
		a.logger.Info("model loaded", "path", path, "input_height", h, "input_width", w)
	} else {
		a.logger.Info("model loaded without shape metadata, using default input size",
			"path", path, "default", a.defaultInputSize)
	}
	return nil
}

// Loaded reports whether a model is currently available.
func (a *Adapter) Loaded() bool {
	return a.current.Load() != nil
}

// ModelVersion returns the identifier of the loaded model, "" when none.
func (a *Adapter) ModelVersion() string {
	if h := a.current.Load(); h != nil {
		return h.version
	}
	return ""
}

// Predict classifies one image against the current model snapshot.
func (a *Adapter) Predict(ctx context.Context, img image.Image) (*Result, error) {
	h := a.current.Load()
	if h == nil {
		return nil, ErrModelNotLoaded
	}

	height, width, ok := h.model.InputShape()
	if !ok || height <= 0 || width <= 0 {
		height, width = a.defaultInputSize, a.defaultInputSize
	}

	scores, err := h.model.Predict(ctx, preprocess(img, height, width))
	if err != nil {
		return nil, fmt.Errorf("classifier: predict: %w", err)
	}
	if len(scores) == 0 {
		return nil, ErrEmptyScores
	}

	top := argmax(scores)
	return &Result{
		Label:        a.labelFor(h.model, top),
		Probability:  scores[top],
		Index:        top,
		ModelVersion: h.version,
	}, nil
}

// labelFor prefers class-name metadata attached to the model and falls back to
// the synthesized class_<index> form.
func (a *Adapter) labelFor(m Model, index int) string {
	if names := m.ClassNames(); index < len(names) && names[index] != "" {
		return names[index]
	}
	return fmt.Sprintf("class_%d", index)
}

func argmax(scores []float64) int {
	top := 0
	for i, s := range scores {
		if s > scores[top] {
			top = i
		}
	}
	return top
}
