package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"hirfa/pkg/logger"
	"io"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

const InternalSignatureHeader = "X-Hirfa-Signature"

// InternalSignature guards service-to-service routes with an HMAC-SHA256 of
// the raw body, sent as "sha256=<hex>".
func InternalSignature(secret string, log *logger.Logger, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		signature := extractSignature(r)
		if signature == "" || secret == "" {
			rejectSignature(w, log, r, "Missing "+InternalSignatureHeader+" header")
			return
		}

		body, err := readAndRestoreBody(r)
		if err != nil {
			rejectSignature(w, log, r, "Failed to read request body")
			return
		}

		if !VerifySignature(body, signature, secret) {
			rejectSignature(w, log, r, "Invalid signature")
			return
		}

		next(w, r, ps)
	}
}

func extractSignature(r *http.Request) string {
	header := r.Header.Get(InternalSignatureHeader)
	if signature, found := strings.CutPrefix(header, "sha256="); found {
		return signature
	}
	return header
}

func readAndRestoreBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	return body, nil
}

func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifySignature(body []byte, receivedSignature string, secret string) bool {
	return hmac.Equal([]byte(Sign(body, secret)), []byte(receivedSignature))
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}

func rejectSignature(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	log.Warn("Internal request verification failed",
		"request_id", RequestIDFrom(r.Context()),
		"reason", reason,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
	)

	writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
}
