// Package domain contains the core concepts of the pdf2docx service: the
// request/response envelopes and the error taxonomy.
// Keep this package free of transport (HTTP) and infrastructure (Redis, PDF libraries) concerns.
package domain
