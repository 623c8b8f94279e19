package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxRequestBodyBytes bounds the size of JSON request bodies.
const MaxRequestBodyBytes = 1 << 20

// ErrInvalidBody is returned by DecodeJSON for a body that is not a single
// JSON value of the expected shape.
var ErrInvalidBody = errors.New("invalid request body")

// DecodeJSON decodes the request body into v. The body is limited to
// MaxRequestBodyBytes. Unknown fields are ignored; trailing data after the
// first JSON value is rejected. Every failure wraps ErrInvalidBody.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, MaxRequestBodyBytes)
	dec := json.NewDecoder(body)

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected data after JSON value", ErrInvalidBody)
	}
	return nil
}
