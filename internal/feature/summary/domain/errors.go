// Package domain はsummaryフィーチャーで共有されるエラーを定義します。
package domain

import "errors"

var (
	// ErrEmptyInput is returned when the input holds no text after cleaning.
	ErrEmptyInput = errors.New("input is empty")

	// ErrInvalidTokenLimit is returned when a non-positive token ceiling is requested.
	ErrInvalidTokenLimit = errors.New("token limit must be positive")

	// ErrExtractionFailed is returned when a PDF cannot be decoded.
	ErrExtractionFailed = errors.New("pdf text extraction failed")

	// ErrGenerationFailed is returned when the model call fails or returns no text.
	ErrGenerationFailed = errors.New("failed to generate summary")

	// ErrUploadNotFound is returned when an upload token is unknown or expired.
	ErrUploadNotFound = errors.New("upload not found")
)

var (
	// ErrTranscriptTooLong is returned when a submitted transcript exceeds the token ceiling.
	ErrTranscriptTooLong = errors.New("transcript exceeds the maximum allowed tokens")

	// ErrMissingData is returned when the company name or text needed for a summary is absent.
	ErrMissingData = errors.New("missing required data")
)
