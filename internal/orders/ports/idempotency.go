package ports

import "context"

// StoredResponse is the response replayed when a create request is retried
// with the same Idempotency-Key.
type StoredResponse struct {
	StatusCode int
	Body       []byte
	OrderID    string
	// Fingerprint is a digest of the request body the response was produced for.
	Fingerprint string
}

// IdempotencyStore ensures create operations can be retried safely.
// Get returns nil, nil for unknown keys. Save keeps the first response per key.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*StoredResponse, error)
	Save(ctx context.Context, key string, response StoredResponse) error
}
