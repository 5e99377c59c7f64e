package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their JSON names
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

// decodeBody reads and validates a JSON body. An empty body decodes to the zero value.
// It writes the 400 response itself and reports false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid request body", nil)
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make(map[string]string, len(validationErrors))
			for _, e := range validationErrors {
				switch e.Tag() {
				case "required":
					fields[e.Field()] = "field is required"
				case "min":
					fields[e.Field()] = "must be at least " + e.Param()
				case "max":
					fields[e.Field()] = "must be at most " + e.Param()
				case "oneof":
					fields[e.Field()] = "must be one of " + e.Param()
				default:
					fields[e.Field()] = "validation failed on " + e.Tag()
				}
			}
			badRequest(w, "validation failed", fields)
			return false
		}
		badRequest(w, err.Error(), nil)
		return false
	}

	return true
}

// queryInt parses an optional non-negative integer query parameter
func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		badRequest(w, "invalid "+name, map[string]string{name: "must be a non-negative integer"})
		return 0, false
	}
	return v, true
}

func sessionID(r *http.Request) string {
	return chi.URLParam(r, "sessionID")
}
