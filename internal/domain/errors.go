package domain

import "errors"

// Errors are classified by origin. Callers wrap them with %w and the request
// handler maps them to HTTP statuses with errors.Is.
var (
	// ErrInput signals that the required pdf field is absent or empty.
	ErrInput = errors.New("no PDF data provided")
	// ErrTransport signals a body that is not a JSON object.
	ErrTransport = errors.New("invalid request body")
	// ErrDecode signals a pdf field that is not valid base64.
	ErrDecode = errors.New("invalid base64 PDF payload")
	// ErrTooLarge signals a decoded document above the configured size cap.
	ErrTooLarge = errors.New("PDF exceeds allowed size")
	// ErrConversion signals that the conversion libraries rejected the document.
	ErrConversion = errors.New("PDF conversion failed")
)
