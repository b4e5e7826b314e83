package httpapi

import (
	"encoding/json"
	"net/http"
)

// Machine-readable error codes carried in the error envelope.
const (
	CodeAuthInvalid  = "AUTH_INVALID"
	CodeRateLimited  = "RATE_LIMITED"
	CodeUserExists   = "USER_EXISTS"
	CodeUserNotFound = "USER_NOT_FOUND"
	CodeInvalidInput = "INVALID_INPUT"
	CodeNotFound     = "NOT_FOUND"
	CodeInternal     = "INTERNAL"
)

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The envelope types cannot fail to marshal; a broken connection is the
	// client's problem at this point.
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, successEnvelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorEnvelope{Success: false, Error: msg, Code: code})
}
