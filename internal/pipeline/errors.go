package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"gridtrace/internal/runstore"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrDecode        = errors.New("decode error")
	ErrInvariant     = errors.New("invariant violation")
	ErrValidation    = errors.New("validation error")
	ErrExternalTool  = errors.New("external tool error")
	ErrOutput        = errors.New("output error")
)

// Stage names used in wrapped errors and log fields.
const (
	StageClassify = "classify"
	StageDecode   = "decode"
	StageScan     = "scan"
	StageReport   = "report"
	StagePrepare  = "prepare"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later status classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrDecode
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps a per-file error to the run status persisted after the
// file fails. Invariant and validation failures mean the recording does not
// fit the configured geometry and needs a human to recalibrate.
func FailureStatus(err error) runstore.Status {
	switch {
	case errors.Is(err, ErrInvariant), errors.Is(err, ErrValidation):
		return runstore.StatusReview
	default:
		return runstore.StatusFailed
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "scan failure"
	}
	return strings.Join(parts, ": ")
}
