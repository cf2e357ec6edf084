// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package usig

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// UpstreamError representa errores de los servicios USIG / EPOK.
type UpstreamError struct {
	Type       ErrorType
	Service    string
	StatusCode int
	Message    string
	Err        error
}

// ErrorType define tipos de errores de los servicios externos.
type ErrorType int

const (
	// ErrorTypeUnknown error desconocido.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeNetwork error de red (conexión rechazada, DNS, TLS).
	ErrorTypeNetwork
	// ErrorTypeTimeout timeout de la llamada.
	ErrorTypeTimeout
	// ErrorTypeStatus respuesta HTTP distinta de 2xx.
	ErrorTypeStatus
	// ErrorTypeNotFound recurso no encontrado (404).
	ErrorTypeNotFound
	// ErrorTypeFormat la respuesta no es JSON o no tiene la forma esperada.
	ErrorTypeFormat
	// ErrorTypeRejected el servicio respondió, pero informó un error en el cuerpo.
	ErrorTypeRejected
)

var errorTypeNames = map[ErrorType]string{
	ErrorTypeUnknown:  "unknown",
	ErrorTypeNetwork:  "network",
	ErrorTypeTimeout:  "timeout",
	ErrorTypeStatus:   "status",
	ErrorTypeNotFound: "not_found",
	ErrorTypeFormat:   "format",
	ErrorTypeRejected: "rejected",
}

func (t ErrorType) String() string {
	if s, ok := errorTypeNames[t]; ok {
		return s
	}

	return fmt.Sprintf("ErrorType(%d)", int(t))
}

func (e *UpstreamError) Error() string {
	msg := e.Message
	if e.Service != "" {
		msg = e.Service + ": " + msg
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func asUpstreamError(err error) (*UpstreamError, bool) {
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return upErr, true
	}

	return nil, false
}

// IsTimeoutError verifica si el error es por timeout.
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}

	if upErr, ok := asUpstreamError(err); ok {
		return upErr.Type == ErrorTypeTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// IsNetworkError verifica si el error es una falla de red o timeout.
func IsNetworkError(err error) bool {
	if upErr, ok := asUpstreamError(err); ok {
		return upErr.Type == ErrorTypeNetwork || upErr.Type == ErrorTypeTimeout
	}

	return IsTimeoutError(err)
}

// IsFormatError verifica si la respuesta no pudo interpretarse.
func IsFormatError(err error) bool {
	if upErr, ok := asUpstreamError(err); ok {
		return upErr.Type == ErrorTypeFormat
	}

	return false
}

// IsNotFoundError verifica si el servicio respondió 404.
func IsNotFoundError(err error) bool {
	if upErr, ok := asUpstreamError(err); ok {
		return upErr.Type == ErrorTypeNotFound
	}

	return false
}

// ClassifyHTTPError clasifica una respuesta HTTP no exitosa.
func ClassifyHTTPError(statusCode int, detail string) *UpstreamError {
	e := &UpstreamError{
		Type:       ErrorTypeStatus,
		StatusCode: statusCode,
	}

	switch {
	case statusCode == http.StatusNotFound:
		e.Type = ErrorTypeNotFound
		e.Message = "recurso no encontrado"
	case statusCode >= 300 && statusCode < 400:
		e.Message = fmt.Sprintf("redirección no esperada (código %d)", statusCode)
	case statusCode == http.StatusBadRequest:
		e.Message = "request inválido"
	case statusCode == http.StatusTooManyRequests:
		e.Message = "límite de tasa alcanzado"
	case statusCode == http.StatusServiceUnavailable,
		statusCode == http.StatusBadGateway,
		statusCode == http.StatusGatewayTimeout:
		e.Message = fmt.Sprintf("servicio no disponible (código %d)", statusCode)
	default:
		e.Message = fmt.Sprintf("error HTTP %d", statusCode)
	}

	if detail = strings.TrimSpace(detail); detail != "" {
		e.Message += " - " + detail
	}

	return e
}
