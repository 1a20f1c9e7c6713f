// Package httputil provides retry helpers for outbound HTTP calls.
//
// Wrap transient failures (connection errors, 5xx responses) in a
// [RetryableError] and pass the call to [Retry]:
//
//	err := httputil.Retry(ctx, 3, 200*time.Millisecond, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// Any other error stops the loop immediately. The delay doubles after each
// failed attempt and waiting honors ctx cancellation.
package httputil
