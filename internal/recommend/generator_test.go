package recommend

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mdliss/finsight/internal/common"
	"github.com/mdliss/finsight/internal/model"
	"github.com/mdliss/finsight/internal/persona"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var createdAt = time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

func utilizationSet(maxPct float64, minPaymentOnly bool) persona.Set {
	return persona.NewSet([]model.Signal{{
		UserID:     "u1",
		WindowDays: 180,
		Type:       model.SignalCreditUtilization,
		Value:      maxPct,
		Details: map[string]any{
			"max_utilization_pct": maxPct,
			"min_payment_only":    minPaymentOnly,
			"overdue":             false,
			"interest_charged":    false,
			"cards": []map[string]any{
				{"account_id": "card-a", "name": "Card", "balance": 3400.0, "limit": 5000.0, "utilization_pct": maxPct},
			},
		},
	}})
}

func TestGenerateHighUtilizationCandidates(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)

	recs := g.Generate("u1", model.PersonaHighUtilization, utilizationSet(68.0, false), nil, 180, createdAt)

	// overview, paydown plan, autopay, interest cost; minimum-payment
	// template stays out because the flag is off.
	require.Len(t, recs, 4)
	ids := make(map[string]bool)
	for _, r := range recs {
		ids[r.TemplateID] = true

		assert.Equal(t, "u1", r.UserID)
		assert.Equal(t, model.PersonaHighUtilization, r.Persona)
		assert.Equal(t, model.ContentEducation, r.ContentType)
		assert.Equal(t, model.StatusPending, r.Status)
		assert.Equal(t, Disclaimer, r.Disclaimer)
		assert.Equal(t, 180, r.WindowDays)
		assert.Equal(t, createdAt, r.CreatedAt)
		assert.True(t, r.CitesValue(), "rationale %q must cite a number", r.Rationale)
		assert.NotContains(t, r.Rationale, "{")
	}
	assert.False(t, ids["hu_min_payment"])

	// The filled rationale carries the actual utilization value.
	assert.Contains(t, recs[0].Rationale, "68.0%")
}

func TestGenerateFewerThanTargetIsAccepted(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)

	// Only net-inflow is known, so just one savings template is eligible.
	set := persona.NewSet([]model.Signal{{
		UserID:     "u1",
		WindowDays: 180,
		Type:       model.SignalSavingsGrowth,
		Details:    map[string]any{"monthly_net_inflow": 250.0},
	}})

	recs := g.Generate("u1", model.PersonaSavingsBuilder, set, nil, 180, createdAt)

	require.Len(t, recs, 1)
	assert.Equal(t, "sb_momentum", recs[0].TemplateID)
}

func TestGenerateNoPersonaMatchYieldsNothing(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)

	recs := g.Generate("u1", model.PersonaSubscriptionHeavy, persona.NewSet(nil), nil, 180, createdAt)
	assert.Empty(t, recs)
}

func TestGenerateDeterministicIDs(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)

	set := utilizationSet(68.0, false)
	first := g.Generate("u1", model.PersonaHighUtilization, set, nil, 180, createdAt)
	second := g.Generate("u1", model.PersonaHighUtilization, set, nil, 180, createdAt)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}

	// Window length participates in the identity.
	short := g.Generate("u1", model.PersonaHighUtilization, set, nil, 30, createdAt)
	require.NotEmpty(t, short)
	assert.NotEqual(t, first[0].ID, short[0].ID)
}

func TestValidateCatalog(t *testing.T) {
	assert.NoError(t, ValidateCatalog(Catalog()))

	tests := []struct {
		name      string
		templates []Template
	}{
		{
			name: "template without citation placeholder",
			templates: []Template{
				{ID: "bad", Persona: model.PersonaHighUtilization, Title: "Bad", Rationale: "No numbers here."},
			},
		},
		{
			name: "persona below the three template floor",
			templates: []Template{
				{ID: "only", Persona: model.PersonaHighUtilization, Title: "Only", Rationale: "Value {max_utilization}."},
			},
		},
		{
			name: "template missing a title",
			templates: []Template{
				{ID: "untitled", Persona: model.PersonaHighUtilization, Rationale: "Value {max_utilization}."},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCatalog(tt.templates)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestValidateOffersRejectsPredatoryProducts(t *testing.T) {
	assert.NoError(t, ValidateOffers(OfferCatalog()))

	err := ValidateOffers([]OfferTemplate{
		{ID: "bad", Product: "payday loan", Title: "Fast cash", Rationale: "Get {monthly_income} now."},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestGenerateOffersIncomeFloor(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)

	incomeSet := func(monthly float64) persona.Set {
		return persona.NewSet([]model.Signal{{
			UserID:     "u1",
			WindowDays: 180,
			Type:       model.SignalIncomeStability,
			Details: map[string]any{
				"median_pay_gap_days": 14.0,
				"monthly_income":      monthly,
			},
		}})
	}

	// Above the HYSA floor and no savings account on file.
	offers := g.GenerateOffers("u1", model.PersonaPaycheckToPaycheck, incomeSet(2400), nil, 180, createdAt)
	require.Len(t, offers, 1)
	assert.Equal(t, "offer_hysa", offers[0].TemplateID)
	assert.Equal(t, model.ContentPartnerOffer, offers[0].ContentType)
	assert.Contains(t, offers[0].Rationale, "2400.00")

	// Below the floor: no offers at all.
	offers = g.GenerateOffers("u1", model.PersonaPaycheckToPaycheck, incomeSet(1200), nil, 180, createdAt)
	assert.Empty(t, offers)
}

func TestGenerateOffersDeduplicatesExistingAccounts(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)

	set := persona.NewSet([]model.Signal{{
		UserID:     "u1",
		WindowDays: 180,
		Type:       model.SignalIncomeStability,
		Details: map[string]any{
			"median_pay_gap_days": 14.0,
			"monthly_income":      3000.0,
		},
	}})
	accounts := []model.Account{
		{ID: "sav", UserID: "u1", Type: model.AccountTypeDepository, Subtype: model.AccountSubtypeSavings},
	}

	offers := g.GenerateOffers("u1", model.PersonaPaycheckToPaycheck, set, accounts, 180, createdAt)
	for _, o := range offers {
		assert.NotEqual(t, "offer_hysa", o.TemplateID, "user already holds a savings account")
	}
}

func TestGenerateOffersPersonaTargeting(t *testing.T) {
	g, err := NewGenerator()
	require.NoError(t, err)

	set := persona.NewSet([]model.Signal{
		{
			UserID:     "u1",
			WindowDays: 180,
			Type:       model.SignalCreditUtilization,
			Details: map[string]any{
				"max_utilization_pct": 68.0,
				"cards": []map[string]any{
					{"account_id": "card-a", "name": "Card", "balance": 3400.0, "limit": 5000.0, "utilization_pct": 68.0},
				},
			},
		},
		{
			UserID:     "u1",
			WindowDays: 180,
			Type:       model.SignalIncomeStability,
			Details: map[string]any{
				"median_pay_gap_days": 14.0,
				"monthly_income":      3000.0,
			},
		},
	})

	// The balance-transfer offer targets the high-utilization persona only.
	offers := g.GenerateOffers("u1", model.PersonaHighUtilization, set, nil, 180, createdAt)
	ids := make(map[string]bool)
	for _, o := range offers {
		ids[o.TemplateID] = true
	}
	assert.True(t, ids["offer_balance_transfer"])

	offers = g.GenerateOffers("u1", model.PersonaSavingsBuilder, set, nil, 180, createdAt)
	for _, o := range offers {
		assert.NotEqual(t, "offer_balance_transfer", o.TemplateID)
	}
}

func TestBuildFactsFromStoredSignal(t *testing.T) {
	// A signal read back from a stored snapshot decodes its cards detail
	// as []any rather than []map[string]any; card facts must survive.
	signals := []model.Signal{{
		UserID:     "u1",
		WindowDays: 180,
		Type:       model.SignalCreditUtilization,
		Details: map[string]any{
			"max_utilization_pct": 68.0,
			"cards": []map[string]any{
				{"account_id": "card-a", "name": "Card", "balance": 3400.0, "limit": 5000.0, "utilization_pct": 68.0},
			},
		},
	}}

	raw, err := json.Marshal(signals)
	require.NoError(t, err)
	var stored []model.Signal
	require.NoError(t, json.Unmarshal(raw, &stored))

	facts := BuildFacts(persona.NewSet(stored), nil)
	assert.True(t, facts.Has("card_balance"))
	assert.True(t, facts.Has("card_limit"))

	filled, ok := facts.Fill("balance {card_balance} of {card_limit}")
	require.True(t, ok)
	assert.Equal(t, "balance 3400.00 of 5000.00", filled)
}

func TestFactsFillReportsUnresolvedPlaceholders(t *testing.T) {
	facts := BuildFacts(persona.NewSet(nil), nil)

	_, ok := facts.Fill("utilization is {max_utilization}%")
	assert.False(t, ok)

	filled, ok := facts.Fill("no placeholders at all")
	assert.True(t, ok)
	assert.Equal(t, "no placeholders at all", filled)
}
