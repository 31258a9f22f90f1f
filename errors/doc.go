/*
Package errors provides the semantic error taxonomy for the itemstore
library.

Every error scenario has a sentinel, a typed error carrying context, a
constructor and an Is helper, so callers can use errors.Is() or the helper
functions interchangeably:

	cmd, err := provider.Update(ctx, id, pk)
	if err != nil {
	    if errors.IsPreconditionFailed(err) {
	        // stale read; re-read and retry
	    }
	    return err
	}

Validation and configuration errors are produced locally, before any backend
I/O. Conflict, not-found, precondition-failed and failed-dependency errors
are translated 1:1 from backend status codes via FromStatus; backends are
never expected to return Go errors for per-item semantic failures.
*/
package errors
