package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/diarybot/diarybot/internal/api/response"
)

// BodyLimitRecorder counts requests rejected by MaxBody.
type BodyLimitRecorder interface {
	RecordRequestBodyTooLarge(ctx context.Context)
}

// MaxBody caps request bodies at maxBytes; maxBytes <= 0 disables the cap.
//
// Record creation (POST, PUT, PATCH) is buffered: if the handler read past the limit its
// response is dropped and a 413 problem document is sent instead, whatever status the handler
// chose. Other methods stream straight through. recorder may be nil.
func MaxBody(maxBytes int64, recorder BodyLimitRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body := &limitedBody{ReadCloser: http.MaxBytesReader(w, r.Body, maxBytes)}
			r.Body = body

			if !carriesRecord(r.Method) {
				next.ServeHTTP(w, r)

				return
			}

			held := &heldResponse{ResponseWriter: w}
			next.ServeHTTP(held, r)

			if !body.exceeded {
				held.release()

				return
			}

			if recorder != nil {
				recorder.RecordRequestBodyTooLarge(r.Context())
			}

			response.RespondError(w, http.StatusRequestEntityTooLarge,
				"Request Entity Too Large", "request body exceeds maximum allowed size")
		})
	}
}

func carriesRecord(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

// limitedBody notes when the underlying MaxBytesReader refused to read further. Read errors
// are returned as-is so io.EOF keeps its meaning for callers.
type limitedBody struct {
	io.ReadCloser

	exceeded bool
}

func (b *limitedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		b.exceeded = true
	}

	return n, err //nolint:wrapcheck // io.Reader contract
}

// heldResponse keeps the status and body written by a handler until release.
type heldResponse struct {
	http.ResponseWriter

	status int
	body   bytes.Buffer
}

func (h *heldResponse) WriteHeader(code int) {
	if h.status == 0 {
		h.status = code
	}
}

func (h *heldResponse) Write(p []byte) (int, error) {
	if h.status == 0 {
		h.status = http.StatusOK
	}

	return h.body.Write(p) //nolint:wrapcheck // bytes.Buffer writes only fail on OOM
}

func (h *heldResponse) release() {
	if h.status != 0 {
		h.ResponseWriter.WriteHeader(h.status)
	}

	_, _ = h.body.WriteTo(h.ResponseWriter)
}
