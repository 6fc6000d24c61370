// Package governance enforces the rules around human decisions: override
// validation and the final risk-aware decision profile.
package governance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/spigell/skillfit/internal/audit"
)

var (
	ErrInvalidDecision  = errors.New("invalid override decision")
	ErrReasonTooShort   = errors.New("Override reason must be at least 10 characters.") //nolint:stylecheck
	ErrReviewerRequired = errors.New("reviewer id is required for governance")
	ErrMissingDecision  = errors.New("decision id is required")
)

// Override is a reviewer's request to replace the pipeline's decision.
type Override struct {
	DecisionID string `json:"decision_id" validate:"required"`
	Decision   string `json:"human_decision" validate:"required,oneof=HIRE REJECT HOLD"`
	Reason     string `json:"human_reason" validate:"min=10"`
	ReviewerID string `json:"reviewer_id" validate:"required"`
}

//nolint:gochecknoglobals
var validate = validator.New()

// Validate checks the override and maps the first violation onto one of the
// package's sentinel errors. Surrounding whitespace in the reason does not
// count towards its length.
func (o Override) Validate() error {
	o.Reason = strings.TrimSpace(o.Reason)
	o.ReviewerID = strings.TrimSpace(o.ReviewerID)

	err := validate.Struct(o)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate override: %w", err)
	}

	switch fe := verrs[0]; fe.Field() {
	case "DecisionID":
		return ErrMissingDecision
	case "Decision":
		return fmt.Errorf("%w: %q", ErrInvalidDecision, o.Decision)
	case "Reason":
		return ErrReasonTooShort
	case "ReviewerID":
		return ErrReviewerRequired
	default:
		return fmt.Errorf("override field %s failed %q", fe.Field(), fe.Tag())
	}
}

// Submit validates o and appends it to the decision's trace. The original
// trace is left untouched.
func Submit(ctx context.Context, store audit.Store, o Override, now time.Time) (audit.Override, error) {
	if err := o.Validate(); err != nil {
		return audit.Override{}, err
	}

	rec := audit.Override{
		DecisionID: o.DecisionID,
		Decision:   o.Decision,
		Reason:     strings.TrimSpace(o.Reason),
		ReviewerID: strings.TrimSpace(o.ReviewerID),
		Timestamp:  now.UTC(),
	}
	if err := store.AppendOverride(ctx, rec); err != nil {
		return audit.Override{}, fmt.Errorf("append override for %s: %w", o.DecisionID, err)
	}

	return rec, nil
}
