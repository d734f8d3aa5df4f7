package svm

import "errors"

var (
	// ErrLengthMismatch is returned when example-indexed arrays, the
	// coefficient vector or a feature vector have inconsistent lengths.
	ErrLengthMismatch = errors.New("svm: length mismatch")

	// ErrInvalidLabel is returned for a label other than +1 or -1.
	ErrInvalidLabel = errors.New("svm: label must be +1 or -1")

	// ErrInvalidPenalty is returned for a negative, NaN or Inf penalty.
	ErrInvalidPenalty = errors.New("svm: penalty must be finite and >= 0")

	// ErrInvalidMargin is returned for a NaN or Inf margin.
	ErrInvalidMargin = errors.New("svm: margin must be finite")

	// ErrInvalidDimension is returned when the weight dimension is not positive.
	ErrInvalidDimension = errors.New("svm: dimension must be > 0")
)
