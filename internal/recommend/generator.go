package recommend

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mdliss/finsight/internal/model"
	"github.com/mdliss/finsight/internal/persona"
)

const (
	// targetPerUser is how many recommendations we aim to produce. Falling
	// short is an accepted degraded mode, never a reason to force an
	// ineligible template through.
	targetPerUser = 3
	maxPerUser    = 5
)

// recommendationNamespace seeds deterministic (v5) recommendation IDs so
// identical inputs always produce identical output rows.
var recommendationNamespace = uuid.MustParse("9f2c1a4e-6b7d-4e8a-9c3f-2d5e8b1a7c40")

// Generator selects and fills templates for a user's primary persona.
type Generator struct {
	catalog []Template
	offers  []OfferTemplate
}

// NewGenerator builds a generator over the fixed rule tables, validating
// them up front. A broken catalog is fatal.
func NewGenerator() (*Generator, error) {
	catalog := Catalog()
	if err := ValidateCatalog(catalog); err != nil {
		return nil, err
	}
	offers := OfferCatalog()
	if err := ValidateOffers(offers); err != nil {
		return nil, err
	}
	return &Generator{catalog: catalog, offers: offers}, nil
}

// Generate produces up to five education candidates for the primary
// persona, filtered by each template's eligibility predicate. Fewer than
// three eligible templates is logged and accepted; zero yields an empty
// list. Candidates start pending and carry the standard disclaimer.
func (g *Generator) Generate(userID string, primary model.PersonaType, set persona.Set, accounts []model.Account, windowDays int, at time.Time) []model.Recommendation {
	facts := BuildFacts(set, accounts)

	var out []model.Recommendation
	for _, t := range g.catalog {
		if t.Persona != primary || len(out) >= maxPerUser {
			continue
		}
		if t.Eligible != nil && !t.Eligible(facts) {
			continue
		}
		rec, err := g.instantiate(t, facts, userID, windowDays, at)
		if err != nil {
			slog.Warn("Skipping template with unresolved citation",
				"template", t.ID, "user", userID, "error", err)
			continue
		}
		out = append(out, rec)
	}

	if len(out) < targetPerUser {
		slog.Info("Fewer recommendations than target",
			"user", userID, "persona", primary, "count", len(out), "target", targetPerUser)
	}
	return out
}

// instantiate fills one template and enforces the citation invariant.
func (g *Generator) instantiate(t Template, facts Facts, userID string, windowDays int, at time.Time) (model.Recommendation, error) {
	rationale, ok := facts.Fill(t.Rationale)
	if !ok {
		return model.Recommendation{}, fmt.Errorf("template %s has unresolved placeholders", t.ID)
	}

	rec := model.Recommendation{
		ID:             recommendationID(userID, t.ID, windowDays),
		UserID:         userID,
		Persona:        t.Persona,
		ContentType:    t.ContentType,
		TemplateID:     t.ID,
		WindowDays:     windowDays,
		Title:          t.Title,
		Rationale:      rationale,
		Disclaimer:     Disclaimer,
		EligibilityMet: true,
		Status:         model.StatusPending,
		CreatedAt:      at,
	}
	if !rec.CitesValue() {
		return model.Recommendation{}, fmt.Errorf("template %s produced a rationale with no numeric citation", t.ID)
	}
	return rec, nil
}

func recommendationID(userID, templateID string, windowDays int) string {
	return uuid.NewSHA1(recommendationNamespace,
		[]byte(fmt.Sprintf("%s:%s:%d", userID, templateID, windowDays))).String()
}
