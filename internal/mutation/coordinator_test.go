package mutation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mamacare-sync/internal/cache"
	"mamacare-sync/internal/gateway"
	"mamacare-sync/internal/models"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	gw        *MockGateway
	cache     *recordingCache
	selection *recordingSelection
	publisher *recordingPublisher
	recorder  *recordingRecorder
	coord     *Coordinator
}

func newHarness() *harness {
	h := &harness{
		gw:        &MockGateway{},
		cache:     &recordingCache{},
		selection: &recordingSelection{},
		publisher: &recordingPublisher{},
		recorder:  &recordingRecorder{},
	}
	h.coord = NewCoordinator(h.gw, h.cache, h.selection, zap.NewNop(),
		WithPublisher(h.publisher),
		WithRecorder(h.recorder),
		WithOrigin("session-a"),
		WithClock(func() time.Time { return fixedNow }),
	)
	return h
}

func validGrowth(childID string) models.GrowthInput {
	return models.GrowthInput{
		ChildID: childID,
		Date:    models.MustParseDate("2024-05-01"),
		Weight:  6.2,
		Height:  62,
	}
}

func TestCoordinator_InvalidatesExactlyAffectedScope(t *testing.T) {
	ctx := context.Background()
	reminder := &models.Reminder{ID: "r1", ChildID: "c1"}
	tests := []struct {
		name  string
		setup func(gw *MockGateway)
		run   func(c *Coordinator) error
		want  []cache.Key
		event string
	}{
		{
			name: "child create",
			setup: func(gw *MockGateway) {
				gw.On("CreateChild", ctx, mock.Anything).Return(&models.Child{ID: "c9"}, nil)
			},
			run: func(c *Coordinator) error {
				_, err := c.CreateChild(ctx, models.ChildInput{
					Name: "Ana", DateOfBirth: models.MustParseDate("2024-01-01"), Gender: models.GenderFemale,
				})
				return err
			},
			want:  []cache.Key{cache.ChildrenKey()},
			event: models.EventChildCreated,
		},
		{
			name: "child update",
			setup: func(gw *MockGateway) {
				gw.On("UpdateChild", ctx, "c1", mock.Anything).Return(&models.Child{ID: "c1"}, nil)
			},
			run: func(c *Coordinator) error {
				name := "Bia"
				_, err := c.UpdateChild(ctx, "c1", models.ChildPatch{Name: &name})
				return err
			},
			want:  []cache.Key{cache.ChildrenKey()},
			event: models.EventChildUpdated,
		},
		{
			name: "growth create",
			setup: func(gw *MockGateway) {
				gw.On("CreateGrowthRecord", ctx, validGrowth("c1")).Return(&models.GrowthRecord{ID: "g1", ChildID: "c1"}, nil)
			},
			run: func(c *Coordinator) error {
				_, err := c.CreateGrowthRecord(ctx, validGrowth("c1"))
				return err
			},
			want:  []cache.Key{cache.GrowthKey("c1")},
			event: models.EventGrowthCreated,
		},
		{
			name: "vaccination update",
			setup: func(gw *MockGateway) {
				gw.On("UpdateVaccinationRecord", ctx, "v1", mock.Anything).Return(&models.VaccinationRecord{ID: "v1"}, nil)
			},
			run: func(c *Coordinator) error {
				_, err := c.UpdateVaccinationRecord(ctx, "c1", "v1", models.VaccinationPatch{Status: models.VaccinationCompleted})
				return err
			},
			want:  []cache.Key{cache.VaccinationsKey("c1")},
			event: models.EventVaccinationUpdated,
		},
		{
			name: "prescription create",
			setup: func(gw *MockGateway) {
				gw.On("CreatePrescription", ctx, mock.Anything).Return(&models.Prescription{ID: "p1"}, nil)
			},
			run: func(c *Coordinator) error {
				_, err := c.CreatePrescription(ctx, models.PrescriptionInput{
					ChildID: "c1", MedicationName: "Ben-u-ron", Dosage: "2.5ml", Frequency: "8/8h",
					StartDate: models.MustParseDate("2024-05-01"),
				})
				return err
			},
			want:  []cache.Key{cache.PrescriptionsKey("c1")},
			event: models.EventPrescriptionCreated,
		},
		{
			name: "prescription update",
			setup: func(gw *MockGateway) {
				gw.On("UpdatePrescription", ctx, "p1", mock.Anything).Return(&models.Prescription{ID: "p1"}, nil)
			},
			run: func(c *Coordinator) error {
				active := false
				_, err := c.UpdatePrescription(ctx, "c1", "p1", models.PrescriptionPatch{IsActive: &active})
				return err
			},
			want:  []cache.Key{cache.PrescriptionsKey("c1")},
			event: models.EventPrescriptionUpdated,
		},
		{
			name: "prescription delete",
			setup: func(gw *MockGateway) {
				gw.On("DeletePrescription", ctx, "p1").Return(nil)
			},
			run: func(c *Coordinator) error {
				return c.DeletePrescription(ctx, "c1", "p1")
			},
			want:  []cache.Key{cache.PrescriptionsKey("c1")},
			event: models.EventPrescriptionDeleted,
		},
		{
			name: "reminder create",
			setup: func(gw *MockGateway) {
				gw.On("CreateReminder", ctx, mock.Anything).Return(reminder, nil)
			},
			run: func(c *Coordinator) error {
				_, err := c.CreateReminder(ctx, models.ReminderInput{
					ChildID: "c1", Title: "Consulta", Type: models.ReminderAppointment, DateTime: fixedNow,
				})
				return err
			},
			want:  []cache.Key{cache.RemindersKey("c1")},
			event: models.EventReminderCreated,
		},
		{
			name: "reminder toggle",
			setup: func(gw *MockGateway) {
				done := true
				gw.On("UpdateReminder", ctx, "r1", models.ReminderPatch{IsCompleted: &done}).Return(reminder, nil)
			},
			run: func(c *Coordinator) error {
				_, err := c.ToggleReminderCompleted(ctx, *reminder)
				return err
			},
			want:  []cache.Key{cache.RemindersKey("c1")},
			event: models.EventReminderUpdated,
		},
		{
			name: "reminder delete",
			setup: func(gw *MockGateway) {
				gw.On("DeleteReminder", ctx, "r1").Return(nil)
			},
			run: func(c *Coordinator) error {
				return c.DeleteReminder(ctx, "c1", "r1")
			},
			want:  []cache.Key{cache.RemindersKey("c1")},
			event: models.EventReminderDeleted,
		},
		{
			name: "recommendation create",
			setup: func(gw *MockGateway) {
				gw.On("CreateRecommendation", ctx, mock.Anything).Return(&models.Recommendation{ID: "x1", ChildID: "c1"}, nil)
			},
			run: func(c *Coordinator) error {
				_, err := c.CreateRecommendation(ctx, models.RecommendationInput{
					ChildID: "c1", Title: "Sono", Category: models.CategorySleep, Priority: models.PriorityLow,
				})
				return err
			},
			want:  []cache.Key{cache.RecommendationsKey()},
			event: models.EventRecommendationCreated,
		},
		{
			name: "recommendation mark read",
			setup: func(gw *MockGateway) {
				gw.On("MarkRecommendationRead", ctx, "x1").Return(&models.Recommendation{ID: "x1", ChildID: "c1", IsRead: true}, nil)
			},
			run: func(c *Coordinator) error {
				_, err := c.MarkRecommendationRead(ctx, "x1")
				return err
			},
			want:  []cache.Key{cache.RecommendationsKey()},
			event: models.EventRecommendationRead,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			tt.setup(h.gw)

			require.NoError(t, tt.run(h.coord))
			assert.Equal(t, tt.want, h.cache.invalidated)
			assert.Empty(t, h.cache.dropped)
			require.Len(t, h.publisher.events, 1)
			assert.Equal(t, tt.event, h.publisher.events[0].EventType)
			assert.Equal(t, "session-a", h.publisher.events[0].Origin)
			assert.Equal(t, fixedNow.Unix(), h.publisher.events[0].Timestamp)
			h.gw.AssertExpectations(t)
		})
	}
}

func TestCoordinator_DeleteChildDropsScopesAndSelection(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.gw.On("DeleteChild", ctx, "c1").Return(nil)

	require.NoError(t, h.coord.DeleteChild(ctx, "c1"))
	assert.Equal(t, []string{"c1"}, h.cache.dropped)
	assert.Equal(t, []cache.Key{cache.ChildrenKey()}, h.cache.invalidated)
	assert.Equal(t, []string{"c1"}, h.selection.cleared)
	assert.Equal(t, []string{"children/delete/ok"}, h.recorder.results)
}

func TestCoordinator_FailureInvalidatesNothing(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	apiErr := &gateway.APIError{Kind: gateway.ErrNetwork, Method: "POST", Path: "/growth"}
	h.gw.On("CreateGrowthRecord", ctx, validGrowth("c1")).Return(nil, apiErr)
	h.gw.On("DeleteChild", ctx, "c1").Return(&gateway.APIError{Kind: gateway.ErrNotFound})

	rec, err := h.coord.CreateGrowthRecord(ctx, validGrowth("c1"))
	assert.Nil(t, rec)
	assert.Same(t, apiErr, err, "gateway error is returned unchanged")
	assert.ErrorIs(t, err, gateway.ErrNetwork)

	err = h.coord.DeleteChild(ctx, "c1")
	assert.ErrorIs(t, err, gateway.ErrNotFound)

	assert.Empty(t, h.cache.invalidated)
	assert.Empty(t, h.cache.dropped)
	assert.Empty(t, h.selection.cleared)
	assert.Empty(t, h.publisher.events)
	assert.Equal(t, []string{"growth/create/error", "children/delete/error"}, h.recorder.results)
	h.gw.AssertNumberOfCalls(t, "CreateGrowthRecord", 1)
}

func TestCoordinator_FailedGrowthCreateLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	store := cache.NewStore(cache.LoaderFunc(func(context.Context, cache.Key) (interface{}, error) {
		t.Error("no refetch expected")
		return nil, nil
	}), zap.NewNop())
	defer store.Close()
	before := []models.GrowthRecord{{ID: "g1", ChildID: "c1"}}
	store.Set(cache.GrowthKey("c1"), before)
	gen := store.Get(cache.GrowthKey("c1")).Generation

	gw := &MockGateway{}
	gw.On("CreateGrowthRecord", ctx, mock.Anything).Return(nil, &gateway.APIError{Kind: gateway.ErrValidation, StatusCode: 422})
	coord := NewCoordinator(gw, store, nil, zap.NewNop())

	_, err := coord.CreateGrowthRecord(ctx, validGrowth("c1"))
	assert.ErrorIs(t, err, gateway.ErrValidation)
	store.Wait()

	e := store.Get(cache.GrowthKey("c1"))
	assert.Equal(t, gen, e.Generation)
	assert.False(t, e.Stale)
	assert.Equal(t, before, e.Data)
}

func TestCoordinator_GrowthInvalidationIsScopedToChild(t *testing.T) {
	ctx := context.Background()
	var loads []cache.Key
	store := cache.NewStore(cache.LoaderFunc(func(_ context.Context, key cache.Key) (interface{}, error) {
		loads = append(loads, key)
		return []models.GrowthRecord{{ID: "new", ChildID: key.Scope}}, nil
	}), zap.NewNop())
	defer store.Close()
	store.Set(cache.GrowthKey("A"), []models.GrowthRecord{{ID: "a1", ChildID: "A"}})
	store.Set(cache.GrowthKey("B"), []models.GrowthRecord{{ID: "b1", ChildID: "B"}})
	genB := store.Get(cache.GrowthKey("B")).Generation

	gw := &MockGateway{}
	gw.On("CreateGrowthRecord", ctx, mock.Anything).Return(&models.GrowthRecord{ID: "a2", ChildID: "A"}, nil)
	coord := NewCoordinator(gw, store, nil, zap.NewNop())

	_, err := coord.CreateGrowthRecord(ctx, validGrowth("A"))
	require.NoError(t, err)
	store.Wait()

	assert.Equal(t, []cache.Key{cache.GrowthKey("A")}, loads)
	b := store.Get(cache.GrowthKey("B"))
	assert.Equal(t, genB, b.Generation)
	assert.Equal(t, []models.GrowthRecord{{ID: "b1", ChildID: "B"}}, b.Data)
}

func TestCoordinator_ValidationRejectsBeforeRequest(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.coord.CreateChild(ctx, models.ChildInput{Gender: "unknown"})
	require.ErrorIs(t, err, gateway.ErrValidation)
	var apiErr *gateway.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, apiErr.Fields, "name")
	assert.Contains(t, apiErr.Fields, "dateOfBirth")
	assert.Contains(t, apiErr.Fields, "gender")

	in := validGrowth("c1")
	in.Weight = 0
	_, err = h.coord.CreateGrowthRecord(ctx, in)
	assert.ErrorIs(t, err, gateway.ErrValidation)

	_, err = h.coord.CreateReminder(ctx, models.ReminderInput{ChildID: "c1", Title: "x", Type: "party", DateTime: fixedNow, IsRecurring: true})
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Fields, "type")
	assert.Contains(t, apiErr.Fields, "recurringPattern")

	_, err = h.coord.CreateRecommendation(ctx, models.RecommendationInput{ChildID: "c1", Title: "t", Category: "sleep", Priority: "urgent"})
	assert.ErrorIs(t, err, gateway.ErrValidation)

	end := models.MustParseDate("2024-01-01")
	_, err = h.coord.CreatePrescription(ctx, models.PrescriptionInput{
		ChildID: "c1", MedicationName: "m", Dosage: "d", Frequency: "f",
		StartDate: models.MustParseDate("2024-02-01"), EndDate: &end,
	})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, map[string]string{"endDate": "before start date"}, apiErr.Fields)

	h.gw.AssertNotCalled(t, "CreateChild", mock.Anything, mock.Anything)
	h.gw.AssertNotCalled(t, "CreateGrowthRecord", mock.Anything, mock.Anything)
	assert.Empty(t, h.cache.invalidated)
}

func TestCoordinator_RecordWritesRequireChildID(t *testing.T) {
	ctx := context.Background()
	done := true
	tests := []struct {
		name string
		call func(c *Coordinator) error
	}{
		{"update vaccination", func(c *Coordinator) error {
			_, err := c.UpdateVaccinationRecord(ctx, "", "v1", models.VaccinationPatch{})
			return err
		}},
		{"update prescription", func(c *Coordinator) error {
			_, err := c.UpdatePrescription(ctx, "", "p1", models.PrescriptionPatch{})
			return err
		}},
		{"delete prescription", func(c *Coordinator) error {
			return c.DeletePrescription(ctx, " ", "p1")
		}},
		{"update reminder", func(c *Coordinator) error {
			_, err := c.UpdateReminder(ctx, "", "r1", models.ReminderPatch{IsCompleted: &done})
			return err
		}},
		{"toggle reminder", func(c *Coordinator) error {
			_, err := c.ToggleReminderCompleted(ctx, models.Reminder{ID: "r1"})
			return err
		}},
		{"delete reminder", func(c *Coordinator) error {
			return c.DeleteReminder(ctx, "", "r1")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()

			err := tt.call(h.coord)
			require.ErrorIs(t, err, gateway.ErrValidation)
			var apiErr *gateway.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, map[string]string{"childId": "required"}, apiErr.Fields)

			assert.Empty(t, h.gw.Calls, "gateway must not be called")
			assert.Empty(t, h.cache.invalidated)
			assert.Empty(t, h.publisher.events)
		})
	}
}

func TestCoordinator_PublishFailureDoesNotFailMutation(t *testing.T) {
	h := newHarness()
	h.publisher.err = errors.New("broker down")
	ctx := context.Background()
	h.gw.On("DeleteReminder", ctx, "r1").Return(nil)

	require.NoError(t, h.coord.DeleteReminder(ctx, "c1", "r1"))
	assert.Equal(t, []cache.Key{cache.RemindersKey("c1")}, h.cache.invalidated)
}

func TestApplyRemoteChange(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		event   models.ChangeEvent
		applied bool
		want    []cache.Key
		dropped []string
	}{
		{"own origin skipped", models.ChangeEvent{EventType: models.EventGrowthCreated, ChildID: "c1", Origin: "session-a"}, false, nil, nil},
		{"growth", models.ChangeEvent{EventType: models.EventGrowthCreated, ChildID: "c1", Origin: "b"}, true, []cache.Key{cache.GrowthKey("c1")}, nil},
		{"vaccination", models.ChangeEvent{EventType: models.EventVaccinationUpdated, ChildID: "c2"}, true, []cache.Key{cache.VaccinationsKey("c2")}, nil},
		{"prescription", models.ChangeEvent{EventType: models.EventPrescriptionDeleted, ChildID: "c1"}, true, []cache.Key{cache.PrescriptionsKey("c1")}, nil},
		{"reminder", models.ChangeEvent{EventType: models.EventReminderUpdated, ChildID: "c1"}, true, []cache.Key{cache.RemindersKey("c1")}, nil},
		{"recommendation", models.ChangeEvent{EventType: models.EventRecommendationRead}, true, []cache.Key{cache.RecommendationsKey()}, nil},
		{"child updated", models.ChangeEvent{EventType: models.EventChildUpdated, ChildID: "c1"}, true, []cache.Key{cache.ChildrenKey()}, nil},
		{"child deleted", models.ChangeEvent{EventType: models.EventChildDeleted, ChildID: "c1"}, true, []cache.Key{cache.ChildrenKey()}, []string{"c1"}},
		{"scoped without child", models.ChangeEvent{EventType: models.EventReminderCreated}, false, nil, nil},
		{"unknown type", models.ChangeEvent{EventType: "diaper.changed", ChildID: "c1"}, false, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			assert.Equal(t, tt.applied, h.coord.ApplyRemoteChange(ctx, tt.event))
			assert.Equal(t, tt.want, h.cache.invalidated)
			assert.Equal(t, tt.dropped, h.cache.dropped)
			h.gw.AssertExpectations(t)
		})
	}
}
