package pos

import "errors"

// Sentinel errors for the adapter layer. Vendor-specific detail (including
// the vendor's raw error body where available) is attached by wrapping, so
// callers branch with errors.Is and still surface the full text.
var (
	// ErrNotConfigured means the vendor's application credentials or
	// environment selector are missing. Fatal at construction time, never
	// retried.
	ErrNotConfigured = errors.New("provider credentials not configured")

	// ErrExchangeFailed means the vendor rejected an authorization-code
	// exchange (expired code, already used, wrong redirect URI).
	ErrExchangeFailed = errors.New("token exchange failed")

	// ErrRefreshFailed means the vendor rejected a refresh-token grant. The
	// caller flips the connection status to error but does not delete it.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrNoLocations means the merchant has no usable location. Fatal to the
	// connect flow.
	ErrNoLocations = errors.New("no locations found for merchant")

	// ErrNoRefreshToken means a refresh was attempted without a stored
	// refresh token. Some vendors (e.g. Lightspeed via plain API key) never
	// issue one.
	ErrNoRefreshToken = errors.New("no refresh token available")

	// ErrUnknownProvider means no adapter is registered under the requested
	// discriminator.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrNotSupported means the adapter does not implement the requested
	// operation (partial integrations: manual credential entry only).
	ErrNotSupported = errors.New("operation not supported by this provider")
)
