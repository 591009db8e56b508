package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/baechuer/account-service/internal/domain"
)

// DecodeJSON decodes exactly one JSON value from the request body into dst.
// Numbers decode as json.Number so a submitted "007" keeps its digits when
// the value is later handled as text.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.ErrInvalidJSON(fmt.Errorf("body exceeds %d bytes", tooLarge.Limit))
		}
		return domain.ErrInvalidJSON(err)
	}
	if dec.More() {
		return domain.ErrInvalidJSON(errors.New("trailing data after JSON value"))
	}
	return nil
}
