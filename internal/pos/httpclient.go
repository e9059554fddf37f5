package pos

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// NewHTTPClient builds the HTTP client shared by vendor adapters: a small
// retry budget for transient connection errors and 5xx responses, plus a
// hard per-call timeout so a hung vendor cannot stall a whole sync batch.
func NewHTTPClient() *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = 30 * time.Second
	rc.Logger = nil

	return rc.StandardClient()
}
