package availability

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doctora/clinic-api/internal/model"
	"github.com/doctora/clinic-api/internal/repository"
	apperrors "github.com/doctora/clinic-api/pkg/errors"
	"github.com/doctora/clinic-api/pkg/logger"
)

type fakeTxRunner struct{}

func (fakeTxRunner) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeDoctorRepo struct {
	repository.DoctorRepository
	doctors map[int64]*model.Doctor
}

func (f *fakeDoctorRepo) Get(_ context.Context, id int64) (*model.Doctor, error) {
	d, ok := f.doctors[id]
	if !ok {
		return nil, apperrors.NotFound("doctor", nil)
	}
	return d, nil
}

type fakeAvailabilityRepo struct {
	repository.AvailabilityRepository
	windows map[int64]*model.Availability
	nextID  int64
	listErr error
}

func (f *fakeAvailabilityRepo) Create(_ context.Context, a *model.Availability) error {
	f.nextID++
	a.ID = f.nextID
	f.windows[a.ID] = a
	return nil
}

func (f *fakeAvailabilityRepo) GetForDoctor(_ context.Context, id, doctorID int64) (*model.Availability, error) {
	a, ok := f.windows[id]
	if !ok || a.DoctorID != doctorID {
		return nil, apperrors.NotFound("availability", nil)
	}
	return a, nil
}

func (f *fakeAvailabilityRepo) Update(_ context.Context, a *model.Availability) error {
	f.windows[a.ID] = a
	return nil
}

func (f *fakeAvailabilityRepo) Delete(_ context.Context, id int64) error {
	delete(f.windows, id)
	return nil
}

func (f *fakeAvailabilityRepo) ListByDoctor(_ context.Context, doctorID int64) ([]*model.Availability, error) {
	var out []*model.Availability
	for _, a := range f.windows {
		if a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAvailabilityRepo) ListByDoctorAndDay(_ context.Context, doctorID int64, day int) ([]*model.Availability, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*model.Availability
	for _, a := range f.windows {
		if a.DoctorID == doctorID && a.DayOfWeek == day {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeOutboxRepo struct {
	repository.OutboxRepository
	events []*model.OutboxEvent
}

func (f *fakeOutboxRepo) Create(_ context.Context, e *model.OutboxEvent) error {
	f.events = append(f.events, e)
	return nil
}

func newTestService() (*Service, *fakeAvailabilityRepo, *fakeOutboxRepo) {
	repo := &fakeAvailabilityRepo{windows: map[int64]*model.Availability{}}
	outbox := &fakeOutboxRepo{}
	doctors := &fakeDoctorRepo{doctors: map[int64]*model.Doctor{
		1: {ID: 1, IsActive: true},
	}}
	log := logger.New(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	return NewService(repo, doctors, outbox, fakeTxRunner{}, log), repo, outbox
}

func addReq(day int, start, end string) *model.AddAvailabilityRequest {
	return &model.AddAvailabilityRequest{DayOfWeek: day, StartTime: start, EndTime: end}
}

func TestAddAvailability(t *testing.T) {
	svc, _, outbox := newTestService()
	ctx := context.Background()

	a, err := svc.Add(ctx, 1, addReq(1, "09:00", "12:00"))
	require.NoError(t, err)
	assert.True(t, a.IsActive)
	assert.Equal(t, "09:00-12:00", a.TimeRange())
	assert.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventAvailabilityChanged, outbox.events[0].EventType)
}

func TestAddAvailabilityUnknownDoctor(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Add(context.Background(), 42, addReq(1, "09:00", "12:00"))
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestAddAvailabilityValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  *model.AddAvailabilityRequest
	}{
		{"day too small", addReq(0, "09:00", "12:00")},
		{"day too large", addReq(8, "09:00", "12:00")},
		{"bad start format", addReq(1, "9am", "12:00")},
		{"bad end format", addReq(1, "09:00", "noon")},
		{"start equals end", addReq(1, "09:00", "09:00")},
		{"start after end", addReq(1, "12:00", "09:00")},
		{"before opening", addReq(1, "05:00", "08:00")},
		{"after closing", addReq(1, "20:00", "23:00")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(ctx, 1, tt.req)
			assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
		})
	}
}

func TestAddAvailabilityOverlap(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, 1, addReq(1, "09:00", "12:00"))
	require.NoError(t, err)

	tests := []struct {
		name       string
		start, end string
		overlaps   bool
	}{
		{"starts inside", "10:00", "13:00", true},
		{"ends inside", "08:00", "10:00", true},
		{"contains existing", "08:00", "13:00", true},
		{"contained by existing", "10:00", "11:00", true},
		{"identical", "09:00", "12:00", true},
		{"adjacent after", "12:00", "14:00", false},
		{"adjacent before", "07:00", "09:00", false},
		{"disjoint", "14:00", "16:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(ctx, 1, addReq(1, tt.start, tt.end))
			if tt.overlaps {
				assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAddAvailabilityOtherDayNoConflict(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, 1, addReq(1, "09:00", "12:00"))
	require.NoError(t, err)

	_, err = svc.Add(ctx, 1, addReq(2, "09:00", "12:00"))
	assert.NoError(t, err)
}

func TestUpdateAvailabilityExcludesSelf(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Add(ctx, 1, addReq(1, "09:00", "12:00"))
	require.NoError(t, err)

	// Shrinking the same window must not conflict with itself.
	updated, err := svc.Update(ctx, 1, a.ID, addReq(1, "09:30", "11:30"))
	require.NoError(t, err)
	assert.Equal(t, "09:30", updated.StartTime)
	assert.Equal(t, "11:30", updated.EndTime)
}

func TestUpdateAvailabilityConflictsWithOther(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, 1, addReq(1, "09:00", "12:00"))
	require.NoError(t, err)
	b, err := svc.Add(ctx, 1, addReq(1, "14:00", "16:00"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, 1, b.ID, addReq(1, "11:00", "15:00"))
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestUpdateAvailabilityWrongDoctor(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Add(ctx, 1, addReq(1, "09:00", "12:00"))
	require.NoError(t, err)

	repo.windows[a.ID].DoctorID = 99
	_, err = svc.Update(ctx, 1, a.ID, addReq(1, "09:00", "11:00"))
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestDeleteAvailability(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Add(ctx, 1, addReq(1, "09:00", "12:00"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 1, a.ID))
	assert.Empty(t, repo.windows)

	err = svc.Delete(ctx, 1, a.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestHasAvailabilityOnDate(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	// 2026-09-07 is a Monday.
	_, err := svc.Add(ctx, 1, addReq(1, "09:00", "12:00"))
	require.NoError(t, err)

	assert.True(t, svc.HasAvailabilityOnDate(ctx, 1, "2026-09-07"))
	assert.False(t, svc.HasAvailabilityOnDate(ctx, 1, "2026-09-08"))

	// Fail-open paths read as no availability.
	assert.False(t, svc.HasAvailabilityOnDate(ctx, 1, "not-a-date"))
	repo.listErr = assert.AnError
	assert.False(t, svc.HasAvailabilityOnDate(ctx, 1, "2026-09-07"))
}

func TestWindowsOverlapPredicate(t *testing.T) {
	// Existing [540,720) vs candidates.
	assert.True(t, windowsOverlap(540, 720, 600, 780))
	assert.True(t, windowsOverlap(540, 720, 480, 600))
	assert.True(t, windowsOverlap(540, 720, 480, 780))
	assert.False(t, windowsOverlap(540, 720, 720, 840))
	assert.False(t, windowsOverlap(540, 720, 420, 540))
}
