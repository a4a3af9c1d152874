package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/gemaluna/storefront-client/pkg/errors"
)

// ServerErrorBody mirrors the error envelope returned by the storefront
// backend. The backend is not fully consistent: some handlers return
// {"error": "..."}, others {"message": "..."}, so both are tried.
type ServerErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// BestMessage returns the most useful human-readable text from the body.
func (b ServerErrorBody) BestMessage() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into a ClientError. If the body matches the backend's error envelope the
// server message is preserved verbatim; otherwise a generic rejection carrying
// the status code and raw body is returned.
//
// The caller should only invoke this when resp.StatusCode indicates an error.
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return apperrors.Transport(fmt.Errorf("read error body (status %d): %w", resp.StatusCode, err))
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return apperrors.AuthRequired()
	}

	var body ServerErrorBody
	if json.Unmarshal(bodyBytes, &body) == nil && body.BestMessage() != "" {
		return apperrors.BusinessRejected(body.BestMessage())
	}

	// Fallback: unstructured error body.
	return apperrors.BusinessRejected(fmt.Sprintf("server returned status %d: %s", resp.StatusCode, string(bodyBytes)))
}
