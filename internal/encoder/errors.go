package encoder

import "errors"

var (
	// ErrModelLoad indicates the tokenizer, the ONNX runtime, or the model
	// graph could not be loaded.
	ErrModelLoad = errors.New("model load failed")

	// ErrInference indicates a forward pass failed.
	ErrInference = errors.New("inference failed")

	// ErrUnsupportedPlatform indicates the current OS/arch has no ONNX
	// runtime release archive.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)
