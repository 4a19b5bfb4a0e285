package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	availabilityerrors "slotkeeper/internal/availability/errors"
	"slotkeeper/internal/availability/validator"
	"slotkeeper/internal/scheduling"
	"slotkeeper/pkg/clock"
	"slotkeeper/pkg/config"
	apperrors "slotkeeper/pkg/errors"
	"slotkeeper/pkg/logger"
	"slotkeeper/pkg/model"
)

// ────────────────────────────────────────────────
// In-memory repository
// ────────────────────────────────────────────────

type memoryAvailabilityRepository struct {
	mu      sync.Mutex
	stored  *model.Availability
	inserts int
	getErr  error
}

func (m *memoryAvailabilityRepository) Get(ctx context.Context) (*model.Availability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.stored == nil {
		return nil, availabilityerrors.ErrNotFound
	}
	copied := *m.stored
	return &copied, nil
}

func (m *memoryAvailabilityRepository) Insert(ctx context.Context, a *model.Availability) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stored != nil {
		return availabilityerrors.ErrAlreadyExists
	}
	m.inserts++
	a.ID = model.AvailabilityID
	copied := *a
	m.stored = &copied
	return nil
}

func (m *memoryAvailabilityRepository) Replace(ctx context.Context, a *model.Availability, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stored == nil || m.stored.Version != expectedVersion {
		return availabilityerrors.ErrVersionConflict
	}
	a.ID = model.AvailabilityID
	copied := *a
	m.stored = &copied
	return nil
}

type countingPurger struct{ calls int }

func (p *countingPurger) Purge() { p.calls++ }

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo *memoryAvailabilityRepository, purger Purger) AvailabilityService {
	log := logger.Discard()
	cfg := &config.Config{
		Log:             log,
		DefaultTimezone: "America/New_York",
	}
	return NewAvailabilityService(repo, validator.NewAvailabilityValidator(log), cfg, clock.NewManual(fixedNow), purger)
}

func validInput() *model.AvailabilityInput {
	return &model.AvailabilityInput{
		Timezone: "Europe/Berlin",
		WeeklySchedule: []model.DaySchedule{
			{Day: 2, IsEnabled: true, TimeSlots: []model.TimeRange{{Start: "13:00", End: "17:00"}, {Start: "09:00", End: "13:00"}}},
			{Day: 1, IsEnabled: true, TimeSlots: []model.TimeRange{{Start: "10:00", End: "12:00"}}},
		},
		BufferTimeBefore: 10,
		BufferTimeAfter:  5,
	}
}

// ────────────────────────────────────────────────
// Tests
// ────────────────────────────────────────────────

func TestGet_CreatesDefaultOnce(t *testing.T) {
	repo := &memoryAvailabilityRepository{}
	svc := newTestService(repo, nil)

	first, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Timezone != "America/New_York" || first.Version != 1 {
		t.Errorf("unexpected default %+v", first)
	}
	if len(first.WeeklySchedule) != 7 {
		t.Errorf("default schedule has %d days", len(first.WeeklySchedule))
	}

	if _, err := svc.Get(context.Background()); err != nil {
		t.Fatal(err)
	}
	if repo.inserts != 1 {
		t.Errorf("default inserted %d times", repo.inserts)
	}
}

func TestGet_StorageTimeoutIsTransient(t *testing.T) {
	repo := &memoryAvailabilityRepository{getErr: context.DeadlineExceeded}
	svc := newTestService(repo, nil)

	_, err := svc.Get(context.Background())
	if !apperrors.HasCode(err, apperrors.CodeTransient) {
		t.Errorf("got %v, want TRANSIENT_ERROR", err)
	}
}

func TestReplace_NormalizesAndBumpsVersion(t *testing.T) {
	repo := &memoryAvailabilityRepository{}
	purger := &countingPurger{}
	svc := newTestService(repo, purger)

	if _, err := svc.Get(context.Background()); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Replace(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}

	if got.Version != 2 {
		t.Errorf("version = %d, want 2", got.Version)
	}
	if len(got.WeeklySchedule) != 2 || got.WeeklySchedule[0].Day != 1 {
		t.Fatalf("schedule not sorted by day: %+v", got.WeeklySchedule)
	}
	tuesday := got.WeeklySchedule[1].TimeSlots
	if len(tuesday) != 1 || tuesday[0].Start != "09:00" || tuesday[0].End != "17:00" {
		t.Errorf("touching windows not merged: %+v", tuesday)
	}
	if purger.calls != 1 {
		t.Errorf("cache purged %d times", purger.calls)
	}

	tpl, err := svc.Template(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if tpl.Version != 2 || tpl.BufferBefore != 10*time.Minute || tpl.Loc().String() != "Europe/Berlin" {
		t.Errorf("template not replaced: %+v", tpl)
	}
	if tpl.ResolveDay(scheduling.Wednesday).Enabled {
		t.Error("omitted weekday must be unavailable after replace")
	}
}

func TestReplace_VersionMismatch(t *testing.T) {
	repo := &memoryAvailabilityRepository{}
	svc := newTestService(repo, nil)

	stale := int64(7)
	input := validInput()
	input.Version = &stale

	_, err := svc.Replace(context.Background(), input)
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("got %v, want CONFLICT", err)
	}
}

func TestReplace_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *model.AvailabilityInput)
	}{
		{"unknown timezone", func(in *model.AvailabilityInput) { in.Timezone = "Atlantis/Capital" }},
		{"inverted window", func(in *model.AvailabilityInput) {
			in.WeeklySchedule[0].TimeSlots = []model.TimeRange{{Start: "17:00", End: "09:00"}}
		}},
		{"bad time format", func(in *model.AvailabilityInput) {
			in.WeeklySchedule[0].TimeSlots = []model.TimeRange{{Start: "9am", End: "17:00"}}
		}},
		{"weekday out of range", func(in *model.AvailabilityInput) { in.WeeklySchedule[0].Day = 7 }},
		{"duplicate weekday", func(in *model.AvailabilityInput) { in.WeeklySchedule[1].Day = in.WeeklySchedule[0].Day }},
		{"negative buffer", func(in *model.AvailabilityInput) { in.BufferTimeAfter = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memoryAvailabilityRepository{}
			svc := newTestService(repo, nil)

			input := validInput()
			tt.mutate(input)

			_, err := svc.Replace(context.Background(), input)
			if !apperrors.HasCode(err, apperrors.CodeValidation) {
				t.Errorf("got %v, want VALIDATION_ERROR", err)
			}
			if repo.stored != nil {
				t.Error("rejected input must not be stored")
			}
		})
	}
}

func TestTemplate_InvalidStoredDocument(t *testing.T) {
	repo := &memoryAvailabilityRepository{stored: &model.Availability{
		ID:       model.AvailabilityID,
		Timezone: "Not/AZone",
		Version:  3,
	}}
	svc := newTestService(repo, nil)

	_, err := svc.Template(context.Background())
	if !apperrors.HasCode(err, apperrors.CodeInvalidConfiguration) {
		t.Errorf("got %v, want INVALID_CONFIGURATION", err)
	}
	if errors.Is(err, availabilityerrors.ErrNotFound) {
		t.Error("unexpected not found")
	}
}
