package response

import (
	"encoding/json"
	"net/http"

	"github.com/baechuer/account-service/internal/i18n"
)

type Envelope struct {
	Data     any             `json:"data"`
	Messages []i18n.Rendered `json:"messages"`
}

// WriteJSON writes v as JSON with the given status code.
// It sets Content-Type to application/json; charset=utf-8 if not already set.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a 200 response with {"data": ..., "messages": [...]}.
func OK(w http.ResponseWriter, data any, msgs []i18n.Rendered) {
	write(w, http.StatusOK, data, msgs)
}

// Created writes a 201 response with {"data": ..., "messages": [...]}.
func Created(w http.ResponseWriter, data any, msgs []i18n.Rendered) {
	write(w, http.StatusCreated, data, msgs)
}

func write(w http.ResponseWriter, status int, data any, msgs []i18n.Rendered) {
	if msgs == nil {
		msgs = []i18n.Rendered{}
	}
	WriteJSON(w, status, Envelope{Data: data, Messages: msgs})
}
