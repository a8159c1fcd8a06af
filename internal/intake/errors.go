package intake

import "strings"

// MalformedRequestError reports a submission whose shape does not match the
// order envelope. The store is never contacted when it is returned.
type MalformedRequestError struct {
	Reason string
	Fields []FieldError
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *MalformedRequestError) Error() string {
	if len(e.Fields) == 0 {
		return "malformed request: " + e.Reason
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "malformed request: " + strings.Join(parts, "; ")
}

// PersistenceError wraps any failure returned by the store. Its message is the
// store's own message so callers see it verbatim.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
