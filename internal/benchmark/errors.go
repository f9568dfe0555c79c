package benchmark

import "errors"

var (
	// ErrNoChoices is returned when the chat API responds without any
	// completion choices.
	ErrNoChoices = errors.New("no choices in chat response")

	// ErrEmptyDataset is returned when a dataset file holds no items.
	ErrEmptyDataset = errors.New("dataset contains no items")

	// ErrInvalidConfig is returned for unusable client configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
)
