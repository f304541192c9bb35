package models

import "errors"

// Verdict is the classifier result handed back to the caller as-is.
type Verdict struct {
	Status             VerdictStatus `json:"status"`
	Detected           string        `json:"detected"`
	Confidence         float64       `json:"confidence"`
	Reason             string        `json:"reason"`
	PreventiveMeasures string        `json:"preventiveMeasures"`
	Label              string        `json:"label,omitempty"`
}

// DetectionContext ties a detection to one crop of one farmer. CropID takes
// precedence over CropIndex when both are given.
type DetectionContext struct {
	Phone     string
	CropIndex *int
	CropID    string
	// CropIndexErr is set when the caller sent a crop index that could not
	// be parsed. The crop outcome is then failed instead of skipped.
	CropIndexErr error
}

// Complete reports whether the context addresses a single crop.
func (c *DetectionContext) Complete() bool {
	if c == nil || c.Phone == "" {
		return false
	}
	return c.CropID != "" || c.CropIndex != nil
}

type OutcomeStatus string

const (
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeApplied OutcomeStatus = "applied"
	OutcomeFailed  OutcomeStatus = "failed"
)

type Outcome struct {
	Status OutcomeStatus `json:"status"`
	Error  string        `json:"error,omitempty"`
}

func Skipped() Outcome { return Outcome{Status: OutcomeSkipped} }

func Applied() Outcome { return Outcome{Status: OutcomeApplied} }

func Failed(err error) Outcome {
	if err == nil {
		err = errors.New("unknown failure")
	}
	return Outcome{Status: OutcomeFailed, Error: err.Error()}
}

// IngestionResult carries the untouched verdict plus what happened to the
// bookkeeping writes behind it.
type IngestionResult struct {
	Verdict       Verdict `json:"verdict"`
	Report        *Report `json:"report,omitempty"`
	ReportOutcome Outcome `json:"reportOutcome"`
	CropOutcome   Outcome `json:"cropOutcome"`
}
