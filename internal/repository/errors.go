package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/aws/smithy-go"
)

// ErrorKind is the closed classification of store failures. Every error that
// leaves the data-access layer carries exactly one kind; callers never see a
// driver-native error type.
type ErrorKind string

const (
	KindConditionalCheckFailed          ErrorKind = "CONDITIONAL_CHECK_FAILED"
	KindItemCollectionSizeLimitExceeded ErrorKind = "ITEM_COLLECTION_SIZE_LIMIT_EXCEEDED"
	KindLimitExceeded                   ErrorKind = "LIMIT_EXCEEDED"
	KindProvisionedThroughputExceeded   ErrorKind = "PROVISIONED_THROUGHPUT_EXCEEDED"
	KindRequestLimitExceeded            ErrorKind = "REQUEST_LIMIT_EXCEEDED"
	KindResourceNotFound                ErrorKind = "RESOURCE_NOT_FOUND"
	KindServiceUnavailable              ErrorKind = "SERVICE_UNAVAILABLE"
	KindThrottling                      ErrorKind = "THROTTLING"
	KindUnrecognizedClient              ErrorKind = "UNRECOGNIZED_CLIENT"
	KindValidation                      ErrorKind = "VALIDATION"
	KindAccessDenied                    ErrorKind = "ACCESS_DENIED"
	KindInternalServerError             ErrorKind = "INTERNAL_SERVER_ERROR"
	KindTransactionConflict             ErrorKind = "TRANSACTION_CONFLICT"
	KindTransactionCanceled             ErrorKind = "TRANSACTION_CANCELED"
	KindTransactionInProgress           ErrorKind = "TRANSACTION_IN_PROGRESS"
	KindNetworkError                    ErrorKind = "NETWORK_ERROR"
	KindTimeout                         ErrorKind = "TIMEOUT"
	KindUnknown                         ErrorKind = "UNKNOWN"
)

// kindsByCode translates the driver's error code discriminator into a kind.
// Built once at startup; unlisted codes fall through to KindUnknown.
var kindsByCode = map[string]ErrorKind{
	"ConditionalCheckFailedException":          KindConditionalCheckFailed,
	"ItemCollectionSizeLimitExceededException": KindItemCollectionSizeLimitExceeded,
	"LimitExceededException":                   KindLimitExceeded,
	"ProvisionedThroughputExceededException":   KindProvisionedThroughputExceeded,
	"RequestLimitExceeded":                     KindRequestLimitExceeded,
	"ResourceNotFoundException":                KindResourceNotFound,
	"ServiceUnavailable":                       KindServiceUnavailable,
	"ServiceUnavailableException":              KindServiceUnavailable,
	"ThrottlingException":                      KindThrottling,
	"Throttling":                               KindThrottling,
	"UnrecognizedClientException":              KindUnrecognizedClient,
	"ValidationException":                      KindValidation,
	"AccessDeniedException":                    KindAccessDenied,
	"InternalServerError":                      KindInternalServerError,
	"InternalFailure":                          KindInternalServerError,
	"TransactionConflictException":             KindTransactionConflict,
	"TransactionCanceledException":             KindTransactionCanceled,
	"TransactionInProgressException":           KindTransactionInProgress,
	"RequestTimeout":                           KindTimeout,
	"RequestTimeoutException":                  KindTimeout,
}

// retryableKinds is the exact set of kinds worth another attempt. Everything
// else is terminal: retrying cannot change the outcome.
var retryableKinds = map[ErrorKind]bool{
	KindProvisionedThroughputExceeded: true,
	KindRequestLimitExceeded:          true,
	KindServiceUnavailable:            true,
	KindThrottling:                    true,
	KindInternalServerError:           true,
	KindNetworkError:                  true,
	KindTimeout:                       true,
}

// Retryable reports whether operations failing with this kind may be retried.
func (k ErrorKind) Retryable() bool {
	return retryableKinds[k]
}

// Classify maps a raw driver error to its kind and retryability. It is a pure
// mapping; logging is the caller's responsibility. Already-classified errors
// keep their kind.
func Classify(err error) (ErrorKind, bool) {
	if err == nil {
		return KindUnknown, false
	}

	var dae *DataAccessError
	if errors.As(err, &dae) {
		return dae.Kind, dae.Retryable
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if kind, ok := kindsByCode[apiErr.ErrorCode()]; ok {
			return kind, kind.Retryable()
		}
		return KindUnknown, false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout, true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout, true
		}
		return KindNetworkError, true
	}

	return KindUnknown, false
}

// OperationContext carries enough typed call context to reproduce and
// diagnose a failure from logs alone.
type OperationContext struct {
	Table     string
	Index     string
	Key       *Key
	ItemCount int
}

// DataAccessError is the single structured error type surfaced by the
// data-access layer.
type DataAccessError struct {
	Kind      ErrorKind
	Operation string
	Context   OperationContext
	Timestamp time.Time
	Retryable bool
	Cause     error
}

func (e *DataAccessError) Error() string {
	msg := fmt.Sprintf("[%s] %s on table %q", e.Kind, e.Operation, e.Context.Table)
	if e.Context.Key != nil {
		msg += fmt.Sprintf(" key (%s, %s)", e.Context.Key.PK, e.Context.Key.SK)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *DataAccessError) Unwrap() error {
	return e.Cause
}

// NewDataAccessError classifies cause and wraps it with operation context.
func NewDataAccessError(operation string, opCtx OperationContext, cause error) *DataAccessError {
	kind, retryable := Classify(cause)
	return &DataAccessError{
		Kind:      kind,
		Operation: operation,
		Context:   opCtx,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
		Cause:     cause,
	}
}

// KindOf returns the classified kind of err, KindUnknown for foreign errors.
func KindOf(err error) ErrorKind {
	kind, _ := Classify(err)
	return kind
}

// IsConditionalCheckFailed reports whether err means the write was not
// applied because its precondition failed. Surfaced to users as "someone
// else already changed this, please retry your edit".
func IsConditionalCheckFailed(err error) bool {
	return KindOf(err) == KindConditionalCheckFailed
}

// IsTransactionCanceled reports whether an all-or-nothing batch was aborted.
func IsTransactionCanceled(err error) bool {
	return KindOf(err) == KindTransactionCanceled
}

// IsThrottled reports whether err is a capacity or rate kind that callers
// may surface as "system busy, try again shortly".
func IsThrottled(err error) bool {
	switch KindOf(err) {
	case KindThrottling, KindProvisionedThroughputExceeded, KindRequestLimitExceeded, KindServiceUnavailable:
		return true
	}
	return false
}
