package dto

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/transport/http/response"
)

const maxBodyBytes = 64 << 10

// DecodeRaw reads a form or JSON body into a flat field map. JSON bodies
// must be one object whose values are strings, numbers or booleans. For
// repeated form keys the first value wins.
func DecodeRaw(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		return decodeJSONObject(r)
	}

	if err := r.ParseForm(); err != nil {
		return nil, domain.ErrInvalidForm(err)
	}
	out := make(map[string]string, len(r.PostForm))
	for k, vs := range r.PostForm {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out, nil
}

func decodeJSONObject(r *http.Request) (map[string]string, error) {
	var body map[string]any
	if err := response.DecodeJSON(r, &body); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(body))
	for k, v := range body {
		switch x := v.(type) {
		case string:
			out[k] = x
		case bool:
			out[k] = strconv.FormatBool(x)
		case json.Number:
			out[k] = x.String()
		case nil:
			out[k] = ""
		default:
			return nil, domain.ErrInvalidJSON(errors.New("field " + k + " must be a scalar"))
		}
	}
	return out, nil
}
