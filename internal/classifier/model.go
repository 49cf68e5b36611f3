package classifier

import "context"

// Batch is a single preprocessed image batch in NHWC layout with pixel values
// scaled to [0,1]. N is always 1 for the triage flow; the layout keeps the
// door open for batch scoring.
type Batch struct {
	N        int
	Height   int
	Width    int
	Channels int
	Data     []float32
}

// Model is an opaque handle over a loaded classification model. The concrete
// implementation lives behind an inference backend; the adapter only needs
// shape introspection and per-class scores.
type Model interface {
	// InputShape reports the model's declared input height/width.
	// ok is false when the model carries no usable shape metadata.
	InputShape() (height, width int, ok bool)

	// ClassNames returns optional index-to-label metadata, nil when absent.
	ClassNames() []string

	// Predict scores the batch and returns the per-class score vector for
	// its single instance.
	Predict(ctx context.Context, batch Batch) ([]float64, error)
}

// Loader materializes a Model from a model artifact path.
type Loader func(path string) (Model, error)
