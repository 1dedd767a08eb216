// Package httputil holds the retry policy for outbound HTTP calls.
//
// Callers classify each failure themselves: transient ones (connection
// errors, 5xx and 429 responses) are wrapped with [Retryable], everything
// else is returned as is and ends the retry loop at once.
//
//	err := httputil.Backoff{Attempts: 3, Delay: time.Second, MaxDelay: 10 * time.Second}.Do(ctx,
//	    func(attempt int) error {
//	        resp, err := client.Do(req)
//	        if err != nil {
//	            return httputil.Retryable(err)
//	        }
//	        ...
//	    })
package httputil
