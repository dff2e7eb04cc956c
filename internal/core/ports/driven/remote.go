package driven

import (
	"context"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
)

// RemoteAPI is the backend's per-resource collection API.
// Any returned error means the call did not take effect as far as the
// client can tell; callers fall back to the offline path.
type RemoteAPI interface {
	// Create POSTs /{resource}/ and returns the server's body.
	Create(ctx context.Context, resource domain.Resource, data domain.Fields, opts ...RequestOption) (domain.Fields, error)

	// Update PUTs /{resource}/{id} and returns the server's body.
	Update(ctx context.Context, resource domain.Resource, id int64, data domain.Fields, opts ...RequestOption) (domain.Fields, error)

	// Delete DELETEs /{resource}/{id}.
	Delete(ctx context.Context, resource domain.Resource, id int64, opts ...RequestOption) error

	// List GETs /{resource}/.
	List(ctx context.Context, resource domain.Resource) ([]domain.Fields, error)
}

// RequestOptions carries per-request metadata.
type RequestOptions struct {
	// IdempotencyKey lets the server drop duplicate replays.
	IdempotencyKey string
}

// RequestOption mutates RequestOptions.
type RequestOption func(*RequestOptions)

// WithIdempotencyKey attaches an idempotency key to a request.
func WithIdempotencyKey(key string) RequestOption {
	return func(o *RequestOptions) {
		o.IdempotencyKey = key
	}
}

// ApplyRequestOptions folds opts into a RequestOptions value.
func ApplyRequestOptions(opts ...RequestOption) RequestOptions {
	var o RequestOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
