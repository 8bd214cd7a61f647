package embeddings

import (
	"errors"
	"net/http"
)

// Provider failure classes. Provider clients wrap their SDK errors with one of these so that
// callers can branch with errors.Is without knowing which provider is configured.
var (
	ErrProviderAuth        = errors.New("embedding provider rejected credentials")
	ErrProviderRateLimited = errors.New("embedding provider rate limit exceeded")
	ErrMalformedResponse   = errors.New("embedding provider returned a malformed response")
	ErrProviderUnavailable = errors.New("embedding provider unavailable")
)

// ValidateResponse checks a provider vector: the expected number of dimensions (when dims > 0)
// and finite components. Failures wrap ErrMalformedResponse.
func ValidateResponse(vec []float32, dims int) error {
	if len(vec) == 0 {
		return errors.Join(ErrMalformedResponse, ErrEmptyVector)
	}

	if dims > 0 && len(vec) != dims {
		return errors.Join(ErrMalformedResponse, &DimensionError{Got: len(vec), Want: dims})
	}

	if err := Validate(vec); err != nil {
		return errors.Join(ErrMalformedResponse, err)
	}

	return nil
}

// ClassifyStatus maps an HTTP status returned by a provider API to its failure class. Statuses
// outside the classified ones return nil and callers keep the SDK error as is.
func ClassifyStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrProviderAuth
	case status == http.StatusTooManyRequests:
		return ErrProviderRateLimited
	case status >= http.StatusInternalServerError:
		return ErrProviderUnavailable
	default:
		return nil
	}
}
