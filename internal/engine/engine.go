// Package engine orchestrates the per-user behavioral inference pipeline:
// windows, signal detection, persona classification, recommendation
// generation, and guardrail review, in that order.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mdliss/finsight/internal/guardrail"
	"github.com/mdliss/finsight/internal/model"
	"github.com/mdliss/finsight/internal/persona"
	"github.com/mdliss/finsight/internal/recommend"
	"github.com/mdliss/finsight/internal/service"
	"github.com/mdliss/finsight/internal/signal"
	"github.com/mdliss/finsight/internal/window"
)

// Config holds pipeline options.
type Config struct {
	Windows     []int // Analysis window lengths in days, longest last
	Workers     int   // Batch worker pool size
	Eligibility guardrail.EligibilityConfig
}

// DefaultConfig returns the standard pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Windows:     []int{window.Short, window.Long},
		Workers:     4,
		Eligibility: guardrail.DefaultEligibilityConfig(),
	}
}

// Engine runs the inference pipeline for one user at a time. Independent
// users share no mutable state, so a batch fans out across a worker pool.
type Engine struct {
	store      service.Storage
	detectors  []signal.Detector
	classifier *persona.Classifier
	generator  *recommend.Generator
	guard      *guardrail.Engine
	config     Config
}

// New creates a pipeline engine, validating the rule tables up front.
// Broken rule tables are fatal here, not at first use.
func New(store service.Storage, config Config) (*Engine, error) {
	generator, err := recommend.NewGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to load recommendation catalog: %w", err)
	}
	if len(config.Windows) == 0 {
		config = DefaultConfig()
	}
	return &Engine{
		store:      store,
		detectors:  signal.DefaultDetectors(),
		classifier: persona.NewClassifier(),
		generator:  generator,
		guard:      guardrail.NewEngine(config.Eligibility),
		config:     config,
	}, nil
}

// Guardrails exposes the guardrail engine (for the standalone tone check).
func (e *Engine) Guardrails() *guardrail.Engine {
	return e.guard
}

// WindowResult is one window's pipeline output for a user.
type WindowResult struct {
	Days     int
	Signals  []model.Signal
	Personas []model.PersonaAssignment
}

// Result is the pipeline output for one user.
type Result struct {
	UserID          string
	ConsentDenied   bool
	Windows         []WindowResult
	Recommendations []model.Recommendation
}

// AnalyzeUser runs the full pipeline for one user anchored at the given
// reference date. Consent is checked before anything is computed; a
// non-consenting user produces no signals, personas, or recommendations.
func (e *Engine) AnalyzeUser(ctx context.Context, userID string, reference time.Time) (*Result, error) {
	profile, err := e.store.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	if !profile.ConsentGranted {
		slog.Info("Skipping non-consenting user", "user", userID)
		return &Result{UserID: userID, ConsentDenied: true}, nil
	}

	accounts, err := e.store.GetAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	liabilities, err := e.store.GetLiabilities(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load liabilities: %w", err)
	}

	longest := e.longestWindow()
	txns, err := e.store.GetTransactions(ctx, userID, reference.AddDate(0, 0, -longest), reference)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	result := &Result{UserID: userID}
	for _, days := range e.config.Windows {
		wr, err := e.analyzeWindow(ctx, userID, txns, accounts, liabilities, reference, days)
		if err != nil {
			return nil, err
		}
		result.Windows = append(result.Windows, *wr)
	}

	// Recommendations come from the longest window that produced a primary
	// persona; shorter windows may legitimately be too sparse to classify.
	recWindow := e.recommendationWindow(result.Windows)
	if recWindow == nil {
		slog.Info("No persona matched in any window", "user", userID)
		return result, nil
	}

	primary := persona.Primary(recWindow.Personas)
	set := persona.NewSet(recWindow.Signals)
	candidates := e.generator.Generate(userID, primary.Type, set, accounts, recWindow.Days, reference)
	candidates = append(candidates,
		e.generator.GenerateOffers(userID, primary.Type, set, accounts, recWindow.Days, reference)...)

	historyCount, err := e.store.GetTransactionCount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count history: %w", err)
	}

	reviewed, err := e.guard.Review(profile, historyCount, recWindow.Signals, candidates, reference)
	if err != nil {
		// The guardrail is the last line of defense; consent was already
		// checked above, so this only fires if the flag changed mid-run.
		slog.Warn("Guardrail rejected all candidates", "user", userID, "error", err)
		result.ConsentDenied = true
		return result, nil
	}

	// Freeze the triggering signals and persona decision into each
	// recommendation so the decision trace survives later recomputation;
	// live signal and persona rows are superseded on every run.
	for i := range reviewed {
		reviewed[i].SignalSnapshot = recWindow.Signals
		reviewed[i].PersonaSnapshot = recWindow.Personas
	}

	if err := e.store.SaveRecommendations(ctx, reviewed); err != nil {
		return nil, fmt.Errorf("failed to save recommendations: %w", err)
	}
	result.Recommendations = reviewed

	slog.Info("Pipeline complete",
		"user", userID,
		"primary_persona", primary.Type,
		"recommendations", len(reviewed))
	return result, nil
}

// analyzeWindow extracts one window, runs the detectors concurrently,
// classifies, and persists the window's outputs.
func (e *Engine) analyzeWindow(ctx context.Context, userID string, txns []model.Transaction, accounts []model.Account, liabilities []model.Liability, reference time.Time, days int) (*WindowResult, error) {
	w := window.Extract(txns, accounts, liabilities, reference, days)

	signals, err := signal.RunAll(ctx, e.detectors, w)
	if err != nil {
		return nil, fmt.Errorf("signal detection failed for %s/%dd: %w", userID, days, err)
	}
	if err := e.store.ReplaceSignals(ctx, userID, days, signals); err != nil {
		return nil, fmt.Errorf("failed to save signals: %w", err)
	}

	assignments := e.classifier.Classify(userID, days, signals, reference)
	if err := e.store.ReplacePersonaAssignments(ctx, userID, days, assignments); err != nil {
		return nil, fmt.Errorf("failed to save personas: %w", err)
	}

	slog.Debug("Window analyzed",
		"user", userID, "window_days", days,
		"signals", len(signals), "personas", len(assignments))

	return &WindowResult{Days: days, Signals: signals, Personas: assignments}, nil
}

func (e *Engine) longestWindow() int {
	longest := 0
	for _, d := range e.config.Windows {
		if d > longest {
			longest = d
		}
	}
	return longest
}

func (e *Engine) recommendationWindow(windows []WindowResult) *WindowResult {
	var best *WindowResult
	for i := range windows {
		if persona.Primary(windows[i].Personas) == nil {
			continue
		}
		if best == nil || windows[i].Days > best.Days {
			best = &windows[i]
		}
	}
	return best
}
