// This file holds the fluent builder for JSON responses and the error
// helpers every handler uses.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"softy/internal/core"
	"softy/internal/fx"
	"softy/internal/log"
)

// ResponseBuilder assembles a JSON response.
type ResponseBuilder struct {
	statusCode int
	payload    any
	headers    map[string]string
}

// NewResponse creates a builder with a 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON sets the value encoded as the body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.payload = v
	return b
}

// Write sends the response. A nil payload writes headers only.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.payload == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.payload)
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse builds {"error": message} with the given status.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).JSON(errorBody{Error: message})
}

func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func UnprocessableEntityError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func InternalServerError() *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "internal server error")
}

// MethodNotAllowedError lists the allowed methods in the Allow header.
func MethodNotAllowedError(allowedMethods string) *ResponseBuilder {
	return ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").
		Header("Allow", allowedMethods)
}

func TooManyRequestsError() *ResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later")
}

// errorFor maps a service error to a response. Unknown errors become a
// generic 500 and are logged with their cause.
func errorFor(r *http.Request, op string, err error) *ResponseBuilder {
	switch {
	case errors.Is(err, core.ErrEntryNotFound):
		return NotFoundError("entry not found")
	case errors.Is(err, core.ErrDuplicateDate):
		return ErrorResponse(http.StatusConflict, core.ErrDuplicateDate.Error())
	case errors.Is(err, core.ErrInvalidDate):
		return UnprocessableEntityError("entry_date must be a date in YYYY-MM-DD format")
	case errors.Is(err, core.ErrInvalidPeriod):
		return BadRequestError(err.Error())
	case errors.Is(err, core.ErrEmptyEntryID):
		return BadRequestError("missing entry id")
	case errors.Is(err, fx.ErrUnsupportedCurrency):
		return BadRequestError(err.Error())
	}

	if op == log.OpConvert {
		log.LogError(r.Context(), "Exchange rate lookup failed", err, op, nil)
		return ErrorResponse(http.StatusBadGateway, "exchange rate service unavailable, try again later")
	}
	log.LogError(r.Context(), "Request failed", err, op, log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, ""))
	return InternalServerError()
}
