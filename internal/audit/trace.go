// Package audit persists write-once decision traces and the human overrides
// attached to them.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	ModelVersion    = "v1.0"
	PipelineVersion = "phase2.4"
)

var (
	ErrNotFound  = errors.New("decision trace not found")
	ErrExists    = errors.New("decision trace already exists")
	ErrInvalidID = errors.New("invalid decision id")
)

// Trace is the immutable record of one evaluation. Overrides are never
// stored inside it; stores attach them on Load.
type Trace struct {
	DecisionID      string          `json:"decision_id"`
	Timestamp       time.Time       `json:"timestamp_utc"`
	ResumeHash      string          `json:"resume_hash"`
	JDHash          string          `json:"jd_hash"`
	Role            string          `json:"role"`
	BaseScore       float64         `json:"base_score"`
	AdjustedScore   float64         `json:"bias_adjusted_score"`
	RiskBand        string          `json:"risk_band"`
	Matched         []string        `json:"matched_skills"`
	Missing         []string        `json:"missing_skills"`
	BiasFlags       map[string]bool `json:"bias_flags"`
	FinalDecision   string          `json:"final_decision"`
	Explanation     string          `json:"explanation"`
	ModelVersion    string          `json:"model_version"`
	PipelineVersion string          `json:"pipeline_version"`

	Overrides []Override `json:"overrides,omitempty"`
}

// Override is a validated human decision appended to a trace.
type Override struct {
	DecisionID string    `json:"decision_id"`
	Decision   string    `json:"human_decision"`
	Reason     string    `json:"human_reason"`
	ReviewerID string    `json:"reviewer_id"`
	Timestamp  time.Time `json:"timestamp_utc"`
}

// Decision is what the pipeline knows at the time a trace is written.
type Decision struct {
	ResumeText    string
	JDText        string
	Role          string
	BaseScore     float64
	AdjustedScore float64
	RiskBand      string
	Matched       []string
	Missing       []string
	BiasFlags     map[string]bool
	FinalDecision string
	Explanation   string
}

// NewTrace stamps d with a fresh id and hashes of the source texts. The texts
// themselves are not kept.
func NewTrace(d Decision, now time.Time) Trace {
	return Trace{
		DecisionID:      uuid.NewString(),
		Timestamp:       now.UTC(),
		ResumeHash:      Hash(d.ResumeText),
		JDHash:          Hash(d.JDText),
		Role:            d.Role,
		BaseScore:       d.BaseScore,
		AdjustedScore:   d.AdjustedScore,
		RiskBand:        d.RiskBand,
		Matched:         nonNil(d.Matched),
		Missing:         nonNil(d.Missing),
		BiasFlags:       d.BiasFlags,
		FinalDecision:   d.FinalDecision,
		Explanation:     d.Explanation,
		ModelVersion:    ModelVersion,
		PipelineVersion: PipelineVersion,
	}
}

// Hash is the hex sha256 of text.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// EffectiveDecision is the latest override's decision, or the pipeline's
// decision when nobody has overridden it.
func (t Trace) EffectiveDecision() string {
	if n := len(t.Overrides); n > 0 {
		return t.Overrides[n-1].Decision
	}
	return t.FinalDecision
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidID, id, err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
