package api

import (
	"errors"
	"fmt"
)

const genericConnectionError = "Error de conexión con el servidor. Intente de nuevo."

// codigo values the backend attaches to 409 responses.
const codigoGrupoLleno = "GRUPO_LLENO"

// AuthenticationError covers a rejected login and any 401-class response.
// The gateway tears the session down before returning it, except for the
// login endpoint itself where no token was attached.
type AuthenticationError struct {
	Mensaje string
}

func (e *AuthenticationError) Error() string {
	if e.Mensaje == "" {
		return "autenticación rechazada"
	}
	return e.Mensaje
}

// ConflictError signals the action was already applied, e.g. attendance
// already recorded for a group+date. It is a warning, not a hard failure.
type ConflictError struct {
	Mensaje string
}

func (e *ConflictError) Error() string { return e.Mensaje }

// CapacityError signals a resource limit was reached, e.g. enrolling into a
// full group.
type CapacityError struct {
	Mensaje string
}

func (e *CapacityError) Error() string { return e.Mensaje }

// TransportError wraps network failures and undecodable responses.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transporte: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// APIError is any other non-2xx response.
type APIError struct {
	Status  int
	Codigo  string
	Mensaje string
}

func (e *APIError) Error() string {
	if e.Mensaje != "" {
		return e.Mensaje
	}
	return fmt.Sprintf("el servidor respondió %d", e.Status)
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Mensaje string `json:"mensaje"`
	Codigo  string `json:"codigo"`
}

func mapError(status int, body errorBody) error {
	switch {
	case status == 401:
		return &AuthenticationError{Mensaje: body.Mensaje}
	case status == 409 && body.Codigo == codigoGrupoLleno:
		return &CapacityError{Mensaje: body.Mensaje}
	case status == 409:
		return &ConflictError{Mensaje: body.Mensaje}
	default:
		return &APIError{Status: status, Codigo: body.Codigo, Mensaje: body.Mensaje}
	}
}

// UserMessage renders an error for the chat: the server-provided mensaje
// when there is one, a generic connection message for transport failures.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var transport *TransportError
	if errors.As(err, &transport) {
		return genericConnectionError
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Mensaje == "" {
		return genericConnectionError
	}

	return err.Error()
}

func IsAuthentication(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}

func IsConflict(err error) bool {
	var conflictErr *ConflictError
	return errors.As(err, &conflictErr)
}

func IsCapacity(err error) bool {
	var capErr *CapacityError
	return errors.As(err, &capErr)
}
