package skip

import "errors"

// ReasonCode explains why skip-objects is unavailable for a plate.
type ReasonCode string

const (
	ReasonNone                ReasonCode = ""
	ReasonMetadataUnavailable ReasonCode = "metadata_unavailable"
	ReasonSkipMetaMissing     ReasonCode = "skip_meta_missing"
	ReasonPlateUnavailable    ReasonCode = "plate_unavailable"
	ReasonObjectCountTooLow   ReasonCode = "object_count_too_low"
	ReasonObjectCountTooHigh  ReasonCode = "object_count_too_high"
	ReasonRemainingTooLow     ReasonCode = "remaining_too_low"
)

// Message returns the operator-facing status line for the reason.
func (r ReasonCode) Message() string {
	switch r {
	case ReasonNone:
		return ""
	case ReasonMetadataUnavailable:
		return "Print metadata is not available yet"
	case ReasonSkipMetaMissing:
		return "This file has no skip-object data"
	case ReasonPlateUnavailable:
		return "Skipping is not available for this plate"
	case ReasonObjectCountTooLow:
		return "Plate has only one object"
	case ReasonObjectCountTooHigh:
		return "Plate has more than 64 objects"
	case ReasonRemainingTooLow:
		return "Only one object is still printing"
	default:
		return string(r)
	}
}

var (
	// ErrSelectionInvalid rejects a selection that would leave no object printing.
	ErrSelectionInvalid = errors.New("at least one object must keep printing")
	// ErrPickMapDecodeFailed marks a pick-map that could not be fetched or decoded.
	ErrPickMapDecodeFailed = errors.New("pick map unavailable")
	// ErrCommandDispatchFailed wraps transport or device rejections of a skip command.
	ErrCommandDispatchFailed = errors.New("skip command failed")
	// ErrDispatchInFlight is returned while a previous command is still being sent.
	ErrDispatchInFlight = errors.New("skip command already in progress")
	// ErrNothingPending is returned when apply is requested with no selection.
	ErrNothingPending = errors.New("no objects selected")
	// ErrNotAvailable is returned when apply is requested for an unavailable plate.
	ErrNotAvailable = errors.New("skip objects unavailable")
)
