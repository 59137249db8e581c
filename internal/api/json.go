package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Request bodies are small JSON documents (note content, folder names,
// chat messages); anything past this is a client bug.
const maxBodyBytes = 10 << 20

// writeJSON writes v as the response body. Encoding failures are logged
// rather than surfaced: the status line is already on the wire.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// decodeBody decodes the request body into v, answering 400 itself on
// malformed input. Callers bail out when it returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// errResponse is the error envelope every non-2xx response carries.
type errResponse struct {
	Error string `json:"error"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}
