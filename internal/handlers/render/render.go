package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nkiryanov/blogapi/internal/apperrors"
)

const (
	ValidationErrorType = "validation_failed"
	DecodingErrorType   = "decoding_failed"
	ServiceErrorType    = "service_error"
)

// Limit for request bodies decoded by Bind
const MaxBodySize = 8 << 10

type Struct any

type ErrorResponse struct {
	Status  int               `json:"status"`
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, data any) {
	JSONWithStatus(w, data, http.StatusOK)
}

// Render ServiceError
func ServiceError(w http.ResponseWriter, error string, code int) {
	response := ErrorResponse{
		Status:  code,
		Error:   ServiceErrorType,
		Message: error,
	}

	JSONWithStatus(w, response, code)
}

// Render json DecodeError
func DecodeError(w http.ResponseWriter, err error) {
	response := ErrorResponse{
		Status:  http.StatusBadRequest,
		Error:   DecodingErrorType,
		Message: "",
	}

	// Try to provide more specific error message based on error type
	var typeErr *json.UnmarshalTypeError
	var sizeErr *http.MaxBytesError
	switch {
	case errors.As(err, &sizeErr):
		response.Status = http.StatusRequestEntityTooLarge
		response.Message = fmt.Sprintf("Request body is too large (maximum %d bytes)", sizeErr.Limit)
	case errors.As(err, &typeErr):
		response.Message = fmt.Sprintf("Invalid data type for field '%s'", typeErr.Field)
	default:
		response.Message = fmt.Sprintf("Failed to parse JSON: %s", err.Error())
	}

	JSONWithStatus(w, response, response.Status)
}

// Render malformed fields
func ValidationErrors(w http.ResponseWriter, fields map[string]string) {
	response := ErrorResponse{
		Status:  http.StatusBadRequest,
		Error:   ValidationErrorType,
		Message: "Request validation failed",
		Fields:  fields,
	}

	JSONWithStatus(w, response, http.StatusBadRequest)
}

// Render service error with status chosen by its class
// Return the status code written
func Error(w http.ResponseWriter, err error) int {
	var vErr *apperrors.ValidationError

	switch {
	case errors.As(err, &vErr):
		ValidationErrors(w, vErr.Fields)
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrConflict):
		conflict(w, err)
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		ServiceError(w, "Invalid username or password", http.StatusUnauthorized)
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrUnauthorized):
		ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		return http.StatusUnauthorized
	default:
		ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return http.StatusInternalServerError
	}
}

// Render conflict reporting every taken field
func conflict(w http.ResponseWriter, err error) {
	taken := []struct {
		field   string
		err     error
		message string
	}{
		{"email", apperrors.ErrEmailTaken, "Email already registered"},
		{"username", apperrors.ErrUsernameTaken, "Username not available"},
	}

	response := ErrorResponse{
		Status: http.StatusConflict,
		Error:  ServiceErrorType,
		Fields: make(map[string]string),
	}

	messages := make([]string, 0, len(taken))
	for _, t := range taken {
		if errors.Is(err, t.err) {
			response.Fields[t.field] = t.message
			messages = append(messages, t.message)
		}
	}

	response.Message = strings.Join(messages, ". ")
	if response.Message == "" {
		response.Message = "User already exists"
	}

	JSONWithStatus(w, response, http.StatusConflict)
}

// Bind decodes JSON request body into type T.
// Writes decoding error response if body is not valid JSON of T or exceeds MaxBodySize.
func Bind[T Struct](w http.ResponseWriter, r *http.Request) (T, error) {
	var value T

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	err := json.NewDecoder(r.Body).Decode(&value)
	if err != nil {
		DecodeError(w, err)
		return value, err
	}

	return value, nil
}

// JSONWithStatus sends data as json and enforces status code
func JSONWithStatus(w http.ResponseWriter, data any, code int) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)

	if err := enc.Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}
