package apierr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrForbidden maps to HTTP 403. Services return it when the caller's role
// does not permit the operation.
var ErrForbidden = errors.New("forbidden")

// ErrNotFound maps to HTTP 404. Also returned for resources outside the
// caller's visibility scope, so existence is not leaked across owners.
var ErrNotFound = errors.New("not found")

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// Fields is a validation error keyed by field name. It maps to HTTP 400 with
// a body of the form {"errors": {"field": "message"}}.
type Fields map[string]string

func (f Fields) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsFields unwraps err into Fields if it is one.
func AsFields(err error) (Fields, bool) {
	var f Fields
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
