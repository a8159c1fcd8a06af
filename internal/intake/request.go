package intake

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/joao-fontenele/order-intake/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeRequest parses and validates a submission body. The body must hold
// exactly one JSON document.
func DecodeRequest(body io.Reader) (*domain.SubmitRequest, error) {
	dec := json.NewDecoder(body)

	var req domain.SubmitRequest
	if err := dec.Decode(&req); err != nil {
		return nil, &MalformedRequestError{Reason: "invalid request body: " + err.Error()}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, &MalformedRequestError{Reason: "invalid request body: unexpected data after the request document"}
	}

	if err := ValidateRequest(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// ValidateRequest checks that every field the pipeline reads is present.
func ValidateRequest(req *domain.SubmitRequest) error {
	if req == nil {
		return &MalformedRequestError{Reason: "request is required"}
	}

	if err := validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return &MalformedRequestError{Reason: "validation failed", Fields: fieldErrors(ve)}
		}
		return &MalformedRequestError{Reason: err.Error()}
	}
	return nil
}

func fieldErrors(errs validator.ValidationErrors) []FieldError {
	out := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		var message string
		switch e.Tag() {
		case "required":
			message = "is required"
		case "gt":
			message = "must be greater than " + e.Param()
		default:
			message = "is invalid"
		}

		// Namespace is prefixed with the root struct name.
		field := e.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}

		out = append(out, FieldError{Field: field, Message: message})
	}
	return out
}
