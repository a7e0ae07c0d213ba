package doc2quiz

import (
	"errors"
	"fmt"
)

// Conversion failure kinds. Every error returned by Converter.Convert after
// input validation wraps exactly one of these inside a *ConversionError.
var (
	ErrConverterUnavailable = errors.New("no document converter available")
	ErrRenderFailure        = errors.New("document rendering failed")
	ErrParseFailure         = errors.New("rendered markup could not be parsed")
	ErrIOFailure            = errors.New("workspace I/O failed")
)

// Input validation errors, returned before any work starts.
var (
	ErrEmptyPath            = errors.New("input path cannot be empty")
	ErrUnsupportedExtension = errors.New("unsupported document extension (want .doc or .docx)")
	ErrInvalidFormat        = errors.New("invalid output format")
)

// Review sheet errors.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrStyleNotFound  = errors.New("style not found")
)

// ConversionError reports which stage of a conversion failed and for which input.
// errors.Is matches both Kind and the underlying cause.
type ConversionError struct {
	Kind error  // one of ErrConverterUnavailable, ErrRenderFailure, ErrParseFailure, ErrIOFailure
	Path string // input document
	Err  error  // cause, may be nil
}

func (e *ConversionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Path, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Path, e.Kind, e.Err)
}

func (e *ConversionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newConversionError(kind error, path string, err error) *ConversionError {
	return &ConversionError{Kind: kind, Path: path, Err: err}
}
