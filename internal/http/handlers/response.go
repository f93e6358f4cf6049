// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response helpers shared by every endpoint. All errors
// leave through one envelope:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": 1001,
//	  "key": "userNotFound",
//	  "kind": "not_found",
//	  "message": "User not found"
//	}
//
// failWith renders catalog failures (status from the failure kind) and fail
// renders transport-only errors (no code). Both log 5xx with the
// request-scoped logger.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-error-catalog/internal/errcat"
	"github.com/tbourn/go-error-catalog/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Catalog code; absent for transport-only errors
	Code int `json:"code,omitempty" example:"1001"`
	// Catalog key, or a transport key such as not_found
	Key string `json:"key" example:"userNotFound"`
	// Failure kind: bad_request, not_found, internal_server or unauthorized
	Kind string `json:"kind,omitempty" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"User not found"`
	// Optional hint about which input was rejected
	Detail string `json:"detail,omitempty" example:"source is empty"`
}

// failWith renders a catalog failure and counts it in
// catalog_failures_total.
func failWith(c *gin.Context, f *errcat.Failure) { failDetail(c, f, "") }

// failDetail is failWith with a detail line.
func failDetail(c *gin.Context, f *errcat.Failure, detail string) {
	status := StatusFor(f.Kind)
	middleware.ObserveFailure(f.Key.String(), f.Kind.String())

	if c.Request != nil {
		span := trace.SpanFromContext(c.Request.Context())
		span.SetAttributes(
			attribute.String("catalog.key", f.Key.String()),
			attribute.Int("catalog.code", f.Code),
			attribute.String("catalog.kind", f.Kind.String()),
		)
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, f.Error())
		}
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("key", f.Key.String()).
			Int("code", f.Code).
			Str("kind", f.Kind.String()).
			Str("detail", detail).
			Msg("catalog failure")
	}
	render(c, status, f, detail)
}

// render writes f without logging or counting it.
func render(c *gin.Context, status int, f *errcat.Failure, detail string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: middleware.GetRequestID(c),
		Code:      f.Code,
		Key:       f.Key.String(),
		Kind:      f.Kind.String(),
		Message:   f.Message,
		Detail:    detail,
	})
}

// fail aborts with a transport-only error.
func fail(c *gin.Context, status int, key, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("key", key).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: middleware.GetRequestID(c),
		Key:       key,
		Kind:      kindForStatus(status),
		Message:   msg,
	})
}

// Fail is the exported variant of fail for the router's NoRoute/NoMethod.
func Fail(c *gin.Context, status int, key, msg string) { fail(c, status, key, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// notModified sets the ETag and reports whether If-None-Match matched, in
// which case a 304 has been written.
func notModified(c *gin.Context, etag string) bool {
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}
