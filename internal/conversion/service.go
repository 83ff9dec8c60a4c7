// Package conversion implements the PDF to DOCX request contract independent
// of any HTTP framework: bytes of a JSON body in, a status and an envelope out.
package conversion

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"pdf2docx/internal/config"
	"pdf2docx/internal/convert"
	"pdf2docx/internal/domain"
	"pdf2docx/internal/infra/cache"
	"pdf2docx/internal/infra/logging"
)

// Response is the outcome of one conversion request.
type Response struct {
	Status int
	Body   domain.Envelope
}

// Service bundles configuration and dependencies for conversions.
type Service struct {
	Config    *config.Config
	Converter convert.Converter
	Pool      *convert.Pool
	Cache     *cache.DocxCache
}

var validate = validator.New()

// NewService wires a Service. A nil cache disables result caching.
func NewService(cfg config.Config, conv convert.Converter, pool *convert.Pool, dc *cache.DocxCache) *Service {
	return &Service{
		Config:    &cfg,
		Converter: conv,
		Pool:      pool,
		Cache:     dc,
	}
}

// Handle parses body, converts the embedded PDF and builds the response.
// It never panics on bad input; every failure maps to a status and an error envelope.
func (s *Service) Handle(ctx context.Context, body []byte, requestID string) Response {
	docx, err := s.convert(ctx, body)
	if err != nil {
		status := StatusFor(err)
		msg := s.publicMessage(err)
		if status >= http.StatusInternalServerError {
			logging.Error("Conversion request failed", "status", status, "error", err, "request_id", requestID)
		} else {
			logging.Warn("Conversion request rejected", "status", status, "error", err, "request_id", requestID)
		}
		return Response{Status: status, Body: domain.Failed(msg)}
	}

	logging.Info("DOCX generated", "bytes", len(docx), "request_id", requestID)
	return Response{Status: http.StatusOK, Body: domain.Succeeded(docx)}
}

func (s *Service) convert(ctx context.Context, body []byte) ([]byte, error) {
	var req domain.ConvertRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	if err := validate.Struct(req); err != nil {
		return nil, domain.ErrInput
	}

	pdf, err := DecodePDF(req.PDF)
	if err != nil {
		return nil, err
	}
	if len(pdf) > s.Config.Limits.MaxPDFBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", domain.ErrTooLarge, len(pdf), s.Config.Limits.MaxPDFBytes)
	}

	key := cache.Key(pdf)
	if docx, ok := s.Cache.Get(ctx, key); ok {
		return docx, nil
	}

	if s.Config.Convert.TimeoutSecs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.Config.Convert.TimeoutSecs)*time.Second)
		defer cancel()
	}

	run := func() ([]byte, error) { return s.Converter.Convert(ctx, pdf) }
	var docx []byte
	if s.Pool != nil {
		docx, err = s.Pool.Run(ctx, run)
	} else {
		docx, err = run()
	}
	if err != nil {
		if !errors.Is(err, domain.ErrConversion) {
			err = fmt.Errorf("%w: %w", domain.ErrConversion, err)
		}
		return nil, err
	}

	s.Cache.Set(ctx, key, docx)
	return docx, nil
}

// DecodePDF decodes a standard base64 payload, ignoring ASCII whitespace.
func DecodePDF(payload string) ([]byte, error) {
	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, payload)

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}
	return data, nil
}

// StatusFor maps an error to the HTTP status of its class.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage returns the client-facing text for err. Conversion library
// messages are withheld unless expose_errors is set.
func (s *Service) publicMessage(err error) string {
	if errors.Is(err, domain.ErrConversion) && !s.Config.Convert.ExposeErrors {
		return domain.ErrConversion.Error()
	}
	return err.Error()
}
