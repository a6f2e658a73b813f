package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/snabb-assistant/internal/assistant"
	appconfig "github.com/wolfman30/snabb-assistant/internal/config"
	"github.com/wolfman30/snabb-assistant/internal/observability/metrics"
	"github.com/wolfman30/snabb-assistant/internal/snabb"
	"github.com/wolfman30/snabb-assistant/pkg/logging"
)

var errNoSpecialists = errors.New("no specialists matched the query")

func main() {
	if err := appconfig.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting snabb booking assistant",
		"env", cfg.Env,
		"base_url", cfg.SnabbBaseURL,
		"dry_run", cfg.DryRun,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := run(ctx, cfg, logger, prometheus.NewRegistry()); err != nil {
		logger.Error("booking flow failed", "error", err)
		os.Exit(1)
	}
}

// run drives the login, search, slots, suggest and book steps and returns the
// confirmation, or nil in dry-run mode. The call and step counters collected
// in reg are logged when the flow ends, whether or not it succeeded.
func run(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, reg *prometheus.Registry) (*assistant.BookingConfirmation, error) {
	m := metrics.NewBookingMetrics(reg)
	defer logMetricsSummary(logger, reg)
	client := snabb.NewClient(cfg.SnabbBaseURL, logger,
		snabb.WithTimeout(cfg.SnabbTimeout),
		snabb.WithMetrics(m),
	)

	profile := assistant.UserProfile{
		FullName:        cfg.PatientFullName,
		NationalID:      cfg.PatientRUT,
		Email:           cfg.PatientEmail,
		Phone:           cfg.PatientPhone,
		DateOfBirth:     cfg.PatientDateOfBirth,
		ServicePassword: cfg.SnabbPassword,
	}
	orch, err := assistant.NewOrchestrator(profile, client,
		assistant.WithLogger(logger),
		assistant.WithMetrics(m),
	)
	if err != nil {
		return nil, err
	}

	if _, err := orch.Authenticate(ctx); err != nil {
		return nil, err
	}
	logger.Info("assistant state", "snapshot", orch.Snapshot().Profile, "authenticated", orch.Authenticated())

	specialistID := cfg.SpecialistID
	if specialistID == "" {
		specialists, err := orch.SearchSpecialists(ctx, cfg.SearchQuery)
		if err != nil {
			return nil, err
		}
		if len(specialists) == 0 {
			return nil, fmt.Errorf("%w: %q", errNoSpecialists, cfg.SearchQuery)
		}
		specialistID = specialists[0].ID
		logger.Info("specialist selected", "id", specialists[0].ID, "name", specialists[0].Name)
	}

	start, end := cfg.DateRange(time.Now())
	slots, err := orch.FetchAvailableSlots(ctx, specialistID, start, end)
	if err != nil {
		return nil, err
	}
	suggestions, err := orch.SuggestSlots(slots, cfg.SuggestLimit)
	if err != nil {
		return nil, err
	}
	for i, s := range suggestions {
		logger.Info("suggested slot", "rank", i+1, "slot_id", s.ID, "datetime", s.DateTime, "doctor", s.DoctorName)
	}
	if len(suggestions) == 0 {
		logger.Warn("no slots available", "specialist_id", specialistID, "start_date", start, "end_date", end)
		return nil, nil
	}

	if cfg.DryRun {
		logger.Info("dry run enabled, skipping booking", "slot_id", suggestions[0].ID)
		return nil, nil
	}

	confirmation, err := orch.BookSlot(ctx, suggestions[0].ID)
	if err != nil {
		return nil, err
	}
	logger.Info("booking confirmed", "booking_id", confirmation.ID, "slot_id", suggestions[0].ID)
	return confirmation, nil
}

func logMetricsSummary(logger *logging.Logger, g prometheus.Gatherer) {
	samples, err := metrics.Counters(g, metrics.RequestsTotalName, metrics.StepsTotalName)
	if err != nil {
		logger.Warn("metrics summary unavailable", "error", err)
		return
	}
	for _, s := range samples {
		logger.Info("metric", "name", s.Name, "labels", s.Labels, "value", s.Value)
	}
}
