// Package txn provides scoped, revertible transactions over the host
// document: RAII-style transaction scopes, the transaction group manager that
// batches multiple scopes into one undo entry, and the failure preprocessor
// that keeps warning dialogs from blocking headless execution.
package txn

import (
	"archagent/internal/logger"
	"archagent/pkg/agenttypes"
)

// WarningSwallower is a failure preprocessor that deletes non-fatal warnings
// raised by the host during a transaction so they never surface as blocking
// dialogs. Errors are deliberately left alone: the host's automatic rollback
// for severity-error failures must still happen.
type WarningSwallower struct{}

// PreprocessFailures deletes every warning and lets errors proceed to the
// host's default rollback.
func (WarningSwallower) PreprocessFailures(accessor agenttypes.FailureAccessor) agenttypes.FailureResolution {
	hasError := false
	for _, failure := range accessor.Failures() {
		switch failure.Severity {
		case agenttypes.SeverityWarning:
			logger.Debug("Swallowing transaction warning", "description", failure.Description)
			accessor.DeleteWarning(failure)
		case agenttypes.SeverityError:
			hasError = true
		}
	}
	if hasError {
		return agenttypes.ResolutionProceedWithRollback
	}
	return agenttypes.ResolutionContinue
}
