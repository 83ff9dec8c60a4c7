package domain

import "encoding/base64"

// ConvertRequest is the JSON body accepted by the conversion endpoint.
// Fields other than pdf are ignored.
type ConvertRequest struct {
	PDF string `json:"pdf" validate:"required"`
}

// Envelope is the JSON body of every response.
type Envelope struct {
	Success bool   `json:"success"`
	DOCX    string `json:"docx,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Succeeded wraps converted document bytes.
func Succeeded(docx []byte) Envelope {
	return Envelope{Success: true, DOCX: base64.StdEncoding.EncodeToString(docx)}
}

// Failed wraps a client-facing error message.
func Failed(msg string) Envelope {
	return Envelope{Success: false, Error: msg}
}
