package apperror

// Code represents a unique error code for the application.
type Code string

// General error codes
const (
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration errors are fatal at startup.
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Quote provider and chain access error codes
const (
	CodeRPCConnectionFailed   Code = "RPC_CONNECTION_FAILED"
	CodeUpstreamError         Code = "UPSTREAM_ERROR"
	CodeUpstreamTimeout       Code = "UPSTREAM_TIMEOUT"
	CodeTokenResolutionFailed Code = "TOKEN_RESOLUTION_FAILED"
	CodeNoRouteFound          Code = "NO_ROUTE_FOUND"
	CodeQuoteFailed           Code = "QUOTE_FAILED"
	CodeGasPriceFailed        Code = "GAS_PRICE_FAILED"
	CodeUnknownVenue          Code = "UNKNOWN_VENUE"
	CodeContractCallFailed    Code = "CONTRACT_CALL_FAILED"
)

// Evaluation error codes
const (
	CodeInvalidAmount     Code = "INVALID_AMOUNT"
	CodeEvaluationFailed  Code = "EVALUATION_FAILED"
	CodeRateLimitExceeded Code = "RATE_LIMIT_EXCEEDED"
	CodeCircuitOpen       Code = "CIRCUIT_OPEN"
)

// Storage error codes
const (
	CodeStorageError      Code = "STORAGE_ERROR"
	CodeRecordNotFound    Code = "RECORD_NOT_FOUND"
	CodeBroadcastFailed   Code = "BROADCAST_FAILED"
	CodeConnectionClosed  Code = "CONNECTION_CLOSED"
	CodeMigrationFailed   Code = "MIGRATION_FAILED"
)

// cycleCodes are the error classes that the monitor and the on-demand check
// path treat as "no opportunity this cycle" rather than as faults.
var cycleCodes = map[Code]bool{
	CodeTokenResolutionFailed: true,
	CodeNoRouteFound:          true,
	CodeQuoteFailed:           true,
	CodeGasPriceFailed:        true,
	CodeUpstreamError:         true,
	CodeUpstreamTimeout:       true,
	CodeContractCallFailed:    true,
	CodeCircuitOpen:           true,
}

// IsCycleError reports whether err belongs to the per-cycle error taxonomy:
// recoverable quote/gas failures that end one evaluation without implying a
// system fault.
func IsCycleError(err error) bool {
	return cycleCodes[GetCode(err)]
}
