package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Clark-Hu/book-reviews/internal/apperror"
	"github.com/Clark-Hu/book-reviews/internal/validate"
)

const maxRequestBody = 1 << 20 // 1 MiB

const (
	msgInvalidFormat = "Invalid data format"
	msgMalformedJSON = "Malformed JSON payload"
)

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Error().Err(err).Msg("http: failed to encode response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string, details []string) {
	s.respondJSON(w, status, errorResponse{Error: message, Details: details})
}

type validatable interface {
	Validate() validate.Errors
}

// decodeValid decodes the body into dst and runs its checks. Decode problems
// on individual members are reported together with the rule violations. It
// writes the error response itself and reports whether the handler may
// continue.
func (s *Server) decodeValid(w http.ResponseWriter, r *http.Request, dst validatable) bool {
	decoded, err := decodeJSONBody(w, r, dst)
	if err != nil {
		s.writeError(w, r, err)
		return false
	}
	if err := mergeFieldErrors(dst, decoded, dst.Validate()).Err(); err != nil {
		s.writeError(w, r, err)
		return false
	}
	return true
}

// decodeJSONBody reads at most maxRequestBody bytes holding a single JSON
// object and assigns its members to the json-tagged fields of the struct dst
// points to. Unknown members and members of the wrong type come back as field
// errors and leave their field zero. An empty body decodes as an empty object.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) (validate.Errors, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	var members map[string]json.RawMessage
	if err := dec.Decode(&members); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, decodeError(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, decodeError(err)
		}
		return nil, apperror.BadRequest(msgMalformedJSON)
	}

	v := reflect.ValueOf(dst).Elem()
	fields := jsonFields(v.Type())
	var errs validate.Errors
	for name, raw := range members {
		idx, ok := fields[name]
		if !ok {
			errs = append(errs, validate.FieldError{Field: name, Message: fmt.Sprintf("%q is not allowed", name)})
			continue
		}
		field := v.Field(idx)
		if err := json.Unmarshal(raw, field.Addr().Interface()); err != nil {
			field.Set(reflect.Zero(field.Type()))
			errs = append(errs, validate.FieldError{
				Field:   name,
				Message: fmt.Sprintf("%q must be %s", name, jsonTypeName(field.Type(), raw)),
			})
		}
	}
	return errs, nil
}

func decodeError(err error) error {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return apperror.BadRequest("Request body too large")
	case errors.As(err, &syntaxError), errors.Is(err, io.ErrUnexpectedEOF):
		return apperror.BadRequest(msgMalformedJSON)
	case errors.As(err, &typeError):
		return apperror.Validation([]string{`"value" must be of type object`})
	default:
		return apperror.BadRequest("Unable to parse request body")
	}
}

// mergeFieldErrors combines decode errors with rule violations in struct
// field order. A field that failed to decode only reports the decode error.
// Unknown members follow, sorted by name.
func mergeFieldErrors(dst any, decoded, checked validate.Errors) validate.Errors {
	if len(decoded) == 0 {
		return checked
	}
	failed := make(map[string]bool, len(decoded))
	for _, fe := range decoded {
		failed[fe.Field] = true
	}
	out := append(validate.Errors{}, decoded...)
	for _, fe := range checked {
		if !failed[fe.Field] {
			out = append(out, fe)
		}
	}

	fields := jsonFields(reflect.TypeOf(dst).Elem())
	sort.SliceStable(out, func(i, j int) bool {
		a, aKnown := fields[out[i].Field]
		b, bKnown := fields[out[j].Field]
		switch {
		case aKnown && bKnown:
			return a < b
		case aKnown != bKnown:
			return aKnown
		default:
			return out[i].Field < out[j].Field
		}
	})
	return out
}

// jsonFields maps json member names to struct field indexes.
func jsonFields(t reflect.Type) map[string]int {
	fields := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		fields[name] = i
	}
	return fields
}

// jsonTypeName describes the JSON type t expects. Integer fields given a
// number are described as integers.
func jsonTypeName(t reflect.Type, raw json.RawMessage) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if isJSONNumber(raw) {
			return "an integer"
		}
		return "a number"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "an object"
	}
}

func isJSONNumber(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed != "" && (trimmed[0] == '-' || (trimmed[0] >= '0' && trimmed[0] <= '9'))
}

// uuidParam parses a path parameter. Malformed ids are a client error.
func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperror.BadRequest(msgInvalidFormat)
	}
	return id, nil
}
