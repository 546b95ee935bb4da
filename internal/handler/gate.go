package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
)

// gateRequest is the body of POST /api/gate.
type gateRequest struct {
	Password string `json:"password"`
}

// CheckGate handles POST /api/gate: the static app-gate password check.
// The stored value is a sha256 hex of the shared password, never the
// cleartext. When no hash is configured the gate admits everyone — the
// reference deployment's observed fallback, kept as-is.
func (s *Server) CheckGate(w http.ResponseWriter, r *http.Request) {
	if s.gateHash == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var req gateRequest
	if err := decodeBody(r, &req); err != nil {
		writeRequestError(w, "invalid request body")
		return
	}

	sum := sha256.Sum256([]byte(req.Password))
	if hex.EncodeToString(sum[:]) != s.gateHash {
		writeError(w, http.StatusUnauthorized, "unauthorized", "wrong password")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
