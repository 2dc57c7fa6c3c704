package guardrail

import (
	"testing"
	"time"

	"github.com/mdliss/finsight/internal/common"
	"github.com/mdliss/finsight/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reviewedAt = time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

func adultProfile(consent bool) *model.UserProfile {
	return &model.UserProfile{
		ID:             "u1",
		Name:           "Adult User",
		BirthDate:      time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		ConsentGranted: consent,
	}
}

func cleanCandidate() model.Recommendation {
	return model.Recommendation{
		ID:         "rec-1",
		UserID:     "u1",
		Title:      "Understanding your credit utilization",
		Rationale:  "We noticed your card is at 68.0% utilization. You can bring it down over time.",
		Disclaimer: "This is educational information, not financial advice.",
		Status:     model.StatusPending,
	}
}

func oneSignal() []model.Signal {
	return []model.Signal{{UserID: "u1", Type: model.SignalCreditUtilization}}
}

func TestReviewConsentFailsClosed(t *testing.T) {
	e := NewEngine(DefaultEligibilityConfig())

	tests := []struct {
		name    string
		profile *model.UserProfile
	}{
		{"consent revoked", adultProfile(false)},
		{"profile missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviewed, err := e.Review(tt.profile, 100, oneSignal(), []model.Recommendation{cleanCandidate()}, reviewedAt)
			assert.ErrorIs(t, err, common.ErrConsentRequired)
			assert.Nil(t, reviewed)
		})
	}
}

func TestReviewCleanCandidatePassesUntouched(t *testing.T) {
	e := NewEngine(DefaultEligibilityConfig())

	reviewed, err := e.Review(adultProfile(true), 100, oneSignal(), []model.Recommendation{cleanCandidate()}, reviewedAt)
	require.NoError(t, err)
	require.Len(t, reviewed, 1)

	assert.Equal(t, model.StatusPending, reviewed[0].Status)
	assert.Empty(t, reviewed[0].ReviewReasons)
}

func TestReviewToneViolationFlagsForReview(t *testing.T) {
	e := NewEngine(DefaultEligibilityConfig())

	bad := cleanCandidate()
	bad.Rationale = "You made terrible choices and are drowning in debt at 68% utilization."

	reviewed, err := e.Review(adultProfile(true), 100, oneSignal(), []model.Recommendation{bad}, reviewedAt)
	require.NoError(t, err)
	require.Len(t, reviewed, 1)

	// Flagged, never dropped.
	assert.Equal(t, model.StatusReview, reviewed[0].Status)
	assert.Contains(t, reviewed[0].ReviewReasons, "tone:shaming:terrible choices")
	assert.Contains(t, reviewed[0].ReviewReasons, "tone:fear:drowning in debt")
}

func TestReviewContentSafetyViolation(t *testing.T) {
	e := NewEngine(DefaultEligibilityConfig())

	bad := cleanCandidate()
	bad.Rationale = "We noticed a shortfall of $300. You can consider a payday loan to bridge it."

	reviewed, err := e.Review(adultProfile(true), 100, oneSignal(), []model.Recommendation{bad}, reviewedAt)
	require.NoError(t, err)
	require.Len(t, reviewed, 1)

	assert.Equal(t, model.StatusReview, reviewed[0].Status)
	assert.Contains(t, reviewed[0].ReviewReasons, "content_safety:prohibited_product:payday loan")
}

func TestReviewCitationAndDisclaimerChecks(t *testing.T) {
	e := NewEngine(DefaultEligibilityConfig())

	noNumber := cleanCandidate()
	noNumber.Rationale = "We noticed things changed. You can review your spending."
	noDisclaimer := cleanCandidate()
	noDisclaimer.Disclaimer = ""

	reviewed, err := e.Review(adultProfile(true), 100, oneSignal(),
		[]model.Recommendation{noNumber, noDisclaimer}, reviewedAt)
	require.NoError(t, err)
	require.Len(t, reviewed, 2)

	assert.Contains(t, reviewed[0].ReviewReasons, "citation:rationale_missing_numeric_value")
	assert.Contains(t, reviewed[1].ReviewReasons, "citation:missing_disclaimer")
}

func TestReviewEligibilityFlagsButKeeps(t *testing.T) {
	e := NewEngine(DefaultEligibilityConfig())

	tests := []struct {
		name       string
		profile    *model.UserProfile
		history    int
		signals    []model.Signal
		wantReason string
	}{
		{
			name: "under minimum age",
			profile: &model.UserProfile{
				ID: "u1", ConsentGranted: true,
				BirthDate: time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
			},
			history:    100,
			signals:    oneSignal(),
			wantReason: "eligibility:minimum_age:16",
		},
		{
			name:       "thin transaction history",
			profile:    adultProfile(true),
			history:    4,
			signals:    oneSignal(),
			wantReason: "eligibility:transaction_history:4",
		},
		{
			name:       "no detected signals",
			profile:    adultProfile(true),
			history:    100,
			signals:    nil,
			wantReason: "eligibility:detected_signals:0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviewed, err := e.Review(tt.profile, tt.history, tt.signals,
				[]model.Recommendation{cleanCandidate()}, reviewedAt)
			require.NoError(t, err)
			require.Len(t, reviewed, 1)

			assert.Equal(t, model.StatusReview, reviewed[0].Status)
			assert.False(t, reviewed[0].EligibilityMet)
			assert.Contains(t, reviewed[0].ReviewReasons, tt.wantReason)
		})
	}
}
