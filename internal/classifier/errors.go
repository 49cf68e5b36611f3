package classifier

import "errors"

var (
	// ErrModelNotLoaded is returned when Predict is called before LoadModel.
	ErrModelNotLoaded = errors.New("classifier: no model loaded")

	// ErrEmptyScores is returned when the model produces no class scores.
	ErrEmptyScores = errors.New("classifier: model returned empty score vector")
)
