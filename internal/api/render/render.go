// Package render decodes and validates JSON request bodies and writes JSON
// responses. Validation failures are reported per field so clients can map
// messages back onto their form inputs.
package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

const (
	ValidationErrorType = "validation_failed"
	DecodingErrorType   = "decoding_failed"
)

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, data any, code int) {
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

// DecodeError reports a malformed JSON body.
func DecodeError(w http.ResponseWriter, err error) {
	response := ErrorResponse{Error: DecodingErrorType}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		response.Message = fmt.Sprintf("Invalid data type for field '%s'", typeErr.Field)
	} else {
		response.Message = fmt.Sprintf("Failed to parse JSON: %s", err.Error())
	}

	JSON(w, response, http.StatusBadRequest)
}

// ValidationErrors reports per-field validation failures.
func ValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	response := ErrorResponse{
		Error:   ValidationErrorType,
		Message: "Request validation failed",
		Fields:  make(map[string]string, len(errs)),
	}

	for _, fieldError := range errs {
		var message string
		switch fieldError.Tag() {
		case "required":
			message = "This field is required"
		case "notblank":
			message = "This field must not be blank"
		case "gt":
			message = fmt.Sprintf("Value must be greater than %s", fieldError.Param())
		case "max":
			message = fmt.Sprintf("Value is too long (maximum %s)", fieldError.Param())
		case "oneof":
			message = fmt.Sprintf("Value must be one of: %s", fieldError.Param())
		default:
			message = "Invalid value"
		}

		response.Fields[fieldError.Field()] = message
	}

	JSON(w, response, http.StatusBadRequest)
}

// BindAndValidate decodes the JSON request body into T and validates it using
// struct tags, writing the appropriate error response on failure.
func BindAndValidate[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var value T

	if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
		DecodeError(w, err)
		return value, err
	}

	if err := validate.Struct(value); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			ValidationErrors(w, errs)
			return value, err
		}
		JSON(w, ErrorResponse{Error: ValidationErrorType, Message: err.Error()}, http.StatusBadRequest)
		return value, err
	}

	return value, nil
}
