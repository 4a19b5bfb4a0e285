package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	eventtypeserrors "slotkeeper/internal/eventtypes/errors"
	"slotkeeper/internal/eventtypes/validator"
	"slotkeeper/pkg/clock"
	"slotkeeper/pkg/config"
	apperrors "slotkeeper/pkg/errors"
	"slotkeeper/pkg/logger"
	"slotkeeper/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memoryEventTypeRepository struct {
	mu       sync.Mutex
	byID     map[string]*model.EventType
	storeErr error
}

func newMemoryRepo() *memoryEventTypeRepository {
	return &memoryEventTypeRepository{byID: make(map[string]*model.EventType)}
}

func (m *memoryEventTypeRepository) slugTaken(slug, exceptID string) bool {
	for id, et := range m.byID {
		if et.Slug == slug && id != exceptID {
			return true
		}
	}
	return false
}

func (m *memoryEventTypeRepository) Create(ctx context.Context, et *model.EventType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return m.storeErr
	}
	if m.slugTaken(et.Slug, "") {
		return eventtypeserrors.ErrSlugTaken
	}
	et.ID = primitive.NewObjectID().Hex()
	copied := *et
	m.byID[et.ID] = &copied
	return nil
}

func (m *memoryEventTypeRepository) FindByID(ctx context.Context, id string) (*model.EventType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("%w: %s", eventtypeserrors.ErrInvalidID, id)
	}
	et, ok := m.byID[id]
	if !ok {
		return nil, eventtypeserrors.ErrNotFound
	}
	copied := *et
	return &copied, nil
}

func (m *memoryEventTypeRepository) FindActiveBySlug(ctx context.Context, slug string) (*model.EventType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, et := range m.byID {
		if et.Slug == slug && et.IsActive {
			copied := *et
			return &copied, nil
		}
	}
	return nil, eventtypeserrors.ErrNotFound
}

func (m *memoryEventTypeRepository) FindActive(ctx context.Context) ([]*model.EventType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return nil, m.storeErr
	}
	out := []*model.EventType{}
	for _, et := range m.byID {
		if et.IsActive {
			copied := *et
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memoryEventTypeRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.EventType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.EventType{}
	for _, id := range ids {
		if et, ok := m.byID[id]; ok {
			copied := *et
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memoryEventTypeRepository) Update(ctx context.Context, id string, et *model.EventType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return eventtypeserrors.ErrNotFound
	}
	if m.slugTaken(et.Slug, id) {
		return eventtypeserrors.ErrSlugTaken
	}
	copied := *et
	m.byID[id] = &copied
	return nil
}

func (m *memoryEventTypeRepository) Deactivate(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return fmt.Errorf("%w: %s", eventtypeserrors.ErrInvalidID, id)
	}
	et, ok := m.byID[id]
	if !ok {
		return eventtypeserrors.ErrNotFound
	}
	et.IsActive = false
	et.UpdatedAt = at
	return nil
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo *memoryEventTypeRepository) EventTypeService {
	log := logger.Discard()
	cfg := &config.Config{Log: log}
	return NewEventTypeService(repo, validator.NewEventTypeValidator(log), cfg, clock.NewManual(fixedNow))
}

func create(t *testing.T, svc EventTypeService, name string, duration int) *model.EventType {
	t.Helper()
	et := &model.EventType{Name: name, Duration: duration}
	if err := svc.Create(context.Background(), et); err != nil {
		t.Fatalf("Create(%q) failed: %v", name, err)
	}
	return et
}

func TestCreate_DerivesSlugAndDefaults(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	et := create(t, svc, "  30 Minute Meeting ", 30)

	if et.ID == "" {
		t.Fatal("expected an id to be assigned")
	}
	if et.Name != "30 Minute Meeting" {
		t.Errorf("Name = %q", et.Name)
	}
	if et.Slug != "30-minute-meeting" {
		t.Errorf("Slug = %q", et.Slug)
	}
	if et.Color != defaultColor {
		t.Errorf("Color = %q, want %q", et.Color, defaultColor)
	}
	if !et.IsActive {
		t.Error("new event types must be active")
	}
	if !et.CreatedAt.Equal(fixedNow) || !et.UpdatedAt.Equal(fixedNow) {
		t.Errorf("timestamps = %s / %s", et.CreatedAt, et.UpdatedAt)
	}
}

func TestCreate_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		et   model.EventType
	}{
		{"missing name", model.EventType{Duration: 30}},
		{"zero duration", model.EventType{Name: "Chat"}},
		{"duration over a day", model.EventType{Name: "Chat", Duration: 1441}},
		{"bad color", model.EventType{Name: "Chat", Duration: 30, Color: "#zzzzzz"}},
		{"name too long", model.EventType{Name: strings.Repeat("a", 101), Duration: 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newMemoryRepo())
			et := tt.et
			err := svc.Create(context.Background(), &et)
			if !apperrors.HasCode(err, apperrors.CodeValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreate_DuplicateSlugIsConflict(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	create(t, svc, "Intro Call", 15)

	err := svc.Create(context.Background(), &model.EventType{Name: "Intro  call", Duration: 30, Slug: "intro-call"})
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if apperrors.AsAppError(err).Message != "Slug already exists" {
		t.Errorf("message = %q", apperrors.AsAppError(err).Message)
	}
}

func TestCreate_StorageErrorsAreClassified(t *testing.T) {
	repo := newMemoryRepo()
	repo.storeErr = errors.New("disk on fire")
	svc := newTestService(repo)

	err := svc.Create(context.Background(), &model.EventType{Name: "Chat", Duration: 30})
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Errorf("expected internal error, got %v", err)
	}
}

func TestGetBySlug_OnlyActive(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	et := create(t, svc, "Deep Dive", 60)

	got, err := svc.GetBySlug(context.Background(), "deep-dive")
	if err != nil {
		t.Fatalf("GetBySlug failed: %v", err)
	}
	if got.ID != et.ID {
		t.Errorf("got id %s, want %s", got.ID, et.ID)
	}

	if err := svc.Delete(context.Background(), et.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err = svc.GetBySlug(context.Background(), "deep-dive")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found after soft delete, got %v", err)
	}
}

func TestDelete_KeepsRecordForHistory(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	et := create(t, svc, "Retro", 45)

	if err := svc.Delete(context.Background(), et.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, err := svc.GetByID(context.Background(), et.ID)
	if err != nil {
		t.Fatalf("GetByID after delete failed: %v", err)
	}
	if got.IsActive {
		t.Error("deleted event type should be inactive")
	}

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("List returned %d inactive event types", len(list))
	}
}

func TestGetByID_Errors(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	tests := []struct {
		name string
		id   string
		code string
	}{
		{"empty", "", apperrors.CodeInvalidInput},
		{"malformed", "not-an-id", apperrors.CodeInvalidInput},
		{"missing", primitive.NewObjectID().Hex(), apperrors.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetByID(context.Background(), tt.id)
			if !apperrors.HasCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestUpdate_MergesFields(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	et := create(t, svc, "Sync", 30)

	duration := 45
	description := "Weekly sync"
	updated, err := svc.Update(context.Background(), et.ID, &model.EventTypeUpdate{
		Duration:    &duration,
		Description: &description,
		Color:       "FF0000",
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Name != "Sync" || updated.Slug != "sync" {
		t.Errorf("untouched fields changed: %+v", updated)
	}
	if updated.Duration != 45 || updated.Description != "Weekly sync" || updated.Color != "#ff0000" {
		t.Errorf("updates not applied: %+v", updated)
	}
}

func TestUpdate_Rejections(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	first := create(t, svc, "First", 30)
	create(t, svc, "Second", 30)

	zero := 0
	_, err := svc.Update(context.Background(), first.ID, &model.EventTypeUpdate{Duration: &zero})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected validation error for zero duration, got %v", err)
	}

	negative := -5
	_, err = svc.Update(context.Background(), first.ID, &model.EventTypeUpdate{Duration: &negative})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}

	_, err = svc.Update(context.Background(), first.ID, &model.EventTypeUpdate{Slug: "second"})
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("expected conflict on taken slug, got %v", err)
	}

	_, err = svc.Update(context.Background(), primitive.NewObjectID().Hex(), &model.EventTypeUpdate{Name: "x"})
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestUpdate_NormalizesLikeCreate(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	et := create(t, svc, "Sync", 30)

	description := "  Agenda first  "
	updated, err := svc.Update(context.Background(), et.ID, &model.EventTypeUpdate{
		Name:        "  Weekly   Sync ",
		Slug:        "My-Slug",
		Color:       " #ABCDEF ",
		Description: &description,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Slug != "my-slug" {
		t.Errorf("slug = %q, want my-slug", updated.Slug)
	}
	if updated.Color != "#abcdef" {
		t.Errorf("color = %q, want #abcdef", updated.Color)
	}
	if updated.Name != "Weekly Sync" {
		t.Errorf("name = %q, want %q", updated.Name, "Weekly Sync")
	}
	if updated.Description != "Agenda first" {
		t.Errorf("description = %q", updated.Description)
	}

	_, err = svc.Update(context.Background(), et.ID, &model.EventTypeUpdate{Slug: "!!!"})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected validation error for unusable slug, got %v", err)
	}
}

func TestGetByIDs(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	a := create(t, svc, "A", 15)
	b := create(t, svc, "B", 30)

	got, err := svc.GetByIDs(context.Background(), []string{a.ID, b.ID, primitive.NewObjectID().Hex()})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[a.ID] == nil || got[b.ID] == nil {
		t.Errorf("unexpected lookup result: %v", got)
	}
}
