package compressor

import "errors"

var (
	// ErrModelLoad indicates the encoder or embedding model failed to load.
	ErrModelLoad = errors.New("model load failed")

	// ErrInference indicates a forward pass failed.
	ErrInference = errors.New("inference failed")

	// ErrInvalidConfig indicates invalid compressor configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidRatio indicates a target ratio outside (0, 1].
	ErrInvalidRatio = errors.New("invalid target ratio")
)
