package graph

import "github.com/aretw0/digest/pkg/domain"

// ValidationRouter decides what follows the validate step.
//
// Priority is error, then approved, then exhausted once retryCount has reached
// maxRetries, then rejected.
func ValidationRouter(maxRetries int) Router {
	return func(rec domain.Record) string {
		switch {
		case rec.ErrorMessage != "":
			return domain.LabelError
		case rec.Approved():
			return domain.LabelApproved
		case rec.RetryCount >= maxRetries:
			return domain.LabelExhausted
		default:
			return domain.LabelRejected
		}
	}
}
