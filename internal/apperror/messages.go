package apperror

// messages maps error codes to human-readable messages.
var messages = map[Code]string{
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	CodeConfigurationError: "Configuration error",

	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	CodeRPCConnectionFailed:   "Failed to connect to RPC node",
	CodeUpstreamError:         "Upstream provider error",
	CodeUpstreamTimeout:       "Upstream provider timed out",
	CodeTokenResolutionFailed: "Failed to resolve token metadata",
	CodeNoRouteFound:          "No viable swap route found",
	CodeQuoteFailed:           "Failed to get venue quote",
	CodeGasPriceFailed:        "Failed to get gas price",
	CodeUnknownVenue:          "Unknown venue identifier",
	CodeContractCallFailed:    "Smart contract call failed",

	CodeInvalidAmount:     "Invalid trade amount",
	CodeEvaluationFailed:  "Opportunity evaluation failed",
	CodeRateLimitExceeded: "Rate limit exceeded",
	CodeCircuitOpen:       "Circuit breaker is open",

	CodeStorageError:     "Storage operation failed",
	CodeRecordNotFound:   "Record not found",
	CodeBroadcastFailed:  "Failed to broadcast message",
	CodeConnectionClosed: "Connection closed",
	CodeMigrationFailed:  "Database migration failed",
}
