package appointment

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doctora/clinic-api/internal/model"
	"github.com/doctora/clinic-api/internal/repository"
	apperrors "github.com/doctora/clinic-api/pkg/errors"
	"github.com/doctora/clinic-api/pkg/logger"
)

var testNow = time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

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

type fakeUserRepo struct {
	repository.UserRepository
	users map[int64]*model.User
}

func (f *fakeUserRepo) Get(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	return u, nil
}

type fakeAppointmentRepo struct {
	repository.AppointmentRepository
	appointments map[int64]*model.Appointment
	nextID       int64
}

func (f *fakeAppointmentRepo) Create(_ context.Context, a *model.Appointment) error {
	f.nextID++
	a.ID = f.nextID
	f.appointments[a.ID] = a
	return nil
}

func (f *fakeAppointmentRepo) Get(_ context.Context, id int64) (*model.Appointment, error) {
	a, ok := f.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(_ context.Context, id int64, status model.AppointmentStatus) error {
	a, ok := f.appointments[id]
	if !ok {
		return apperrors.NotFound("appointment", nil)
	}
	a.Status = status
	return nil
}

func (f *fakeAppointmentRepo) FindConflicting(_ context.Context, doctorID int64, start, end time.Time) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range f.appointments {
		if a.DoctorID != doctorID {
			continue
		}
		if a.Status != model.AppointmentStatusPending && a.Status != model.AppointmentStatusConfirmed {
			continue
		}
		s1, e1 := a.AppointmentDatetime, a.End()
		if (!s1.After(start) && e1.After(start)) ||
			(s1.Before(end) && !e1.Before(end)) ||
			(!s1.Before(start) && !e1.After(end)) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListByDoctorBetween(_ context.Context, doctorID int64, start, end time.Time) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range f.appointments {
		if a.DoctorID != doctorID || a.Status == model.AppointmentStatusCancelled {
			continue
		}
		if !a.AppointmentDatetime.Before(start) && !a.AppointmentDatetime.After(end) {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeBookingRepo struct {
	repository.BookingInfoRepository
	infos    []*model.PatientBookingInfo
	maxQueue string
}

func (f *fakeBookingRepo) Create(_ context.Context, info *model.PatientBookingInfo) error {
	info.ID = int64(len(f.infos) + 1)
	f.infos = append(f.infos, info)
	return nil
}

func (f *fakeBookingRepo) MaxQueueNumber(_ context.Context) (string, error) {
	return f.maxQueue, nil
}

type fakeOutboxRepo struct {
	repository.OutboxRepository
	events []*model.OutboxEvent
}

func (f *fakeOutboxRepo) Create(_ context.Context, e *model.OutboxEvent) error {
	f.events = append(f.events, e)
	return nil
}

type fakeEmailService struct {
	created   []string
	confirmed []string
	cancelled []string
}

func (f *fakeEmailService) SendBookingCreated(_ context.Context, to string, _ *model.Appointment) error {
	f.created = append(f.created, to)
	return nil
}

func (f *fakeEmailService) SendBookingConfirmed(_ context.Context, to string, _ *model.Appointment) error {
	f.confirmed = append(f.confirmed, to)
	return nil
}

func (f *fakeEmailService) SendBookingCancelled(_ context.Context, to string, _ *model.Appointment) error {
	f.cancelled = append(f.cancelled, to)
	return nil
}

type fixture struct {
	svc     *Service
	repo    *fakeAppointmentRepo
	booking *fakeBookingRepo
	outbox  *fakeOutboxRepo
	email   *fakeEmailService
}

func newFixture() *fixture {
	repo := &fakeAppointmentRepo{appointments: map[int64]*model.Appointment{}}
	booking := &fakeBookingRepo{}
	outbox := &fakeOutboxRepo{}
	mail := &fakeEmailService{}
	doctors := &fakeDoctorRepo{doctors: map[int64]*model.Doctor{
		1: {ID: 1, UserID: 10, IsActive: true, DoctorName: "Alice Reyes", SpecialtyName: "Cardiology"},
		2: {ID: 2, UserID: 11, IsActive: true, DoctorName: "Ben Okoro", SpecialtyName: "Cardiology"},
		3: {ID: 3, UserID: 12, IsActive: false},
	}}
	users := &fakeUserRepo{users: map[int64]*model.User{
		10: {ID: 10, Email: "alice@clinic.test"},
		11: {ID: 11, Email: "ben@clinic.test"},
		100: {ID: 100, Email: "pat@example.test", FirstName: "Pat", LastName: "Lee"},
		101: {ID: 101, Email: "sam@example.test", FirstName: "Sam", LastName: "Chu"},
	}}

	log := logger.New(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	svc := NewService(repo, doctors, users, booking, outbox, fakeTxRunner{}, mail, log)
	svc.now = func() time.Time { return testNow }

	return &fixture{svc: svc, repo: repo, booking: booking, outbox: outbox, email: mail}
}

func createReq(doctorID int64, at time.Time) *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{DoctorID: doctorID, AppointmentDatetime: at}
}

func TestCreateAppointment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	apt, err := f.svc.Create(ctx, 100, createReq(1, testNow.Add(24*time.Hour)))
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusPending, apt.Status)
	assert.Equal(t, model.DefaultAppointmentMinutes, apt.DurationMinutes)
	assert.Equal(t, "Pat Lee", apt.PatientName)
	assert.Equal(t, []string{"pat@example.test"}, f.email.created)
	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, model.EventAppointmentCreated, f.outbox.events[0].EventType)
}

func TestCreateAppointmentRejectsPastTime(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), 100, createReq(1, testNow.Add(-time.Hour)))
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	// Exactly "now" is not in the future either.
	_, err = f.svc.Create(context.Background(), 100, createReq(1, testNow))
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestCreateAppointmentInactiveDoctor(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), 100, createReq(3, testNow.Add(24*time.Hour)))
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestCreateAppointmentUnknownDoctor(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), 100, createReq(77, testNow.Add(24*time.Hour)))
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestCreateAppointmentShortDuration(t *testing.T) {
	f := newFixture()
	dur := 10

	req := createReq(1, testNow.Add(24*time.Hour))
	req.DurationMinutes = &dur
	_, err := f.svc.Create(context.Background(), 100, req)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestCreateAppointmentConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	at := testNow.Add(24 * time.Hour)

	_, err := f.svc.Create(ctx, 100, createReq(1, at))
	require.NoError(t, err)

	// Same doctor, overlapping interval.
	_, err = f.svc.Create(ctx, 101, createReq(1, at.Add(15*time.Minute)))
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	// Back-to-back slot is free.
	_, err = f.svc.Create(ctx, 101, createReq(1, at.Add(30*time.Minute)))
	assert.NoError(t, err)

	// Another doctor at the same time is fine.
	_, err = f.svc.Create(ctx, 101, createReq(2, at))
	assert.NoError(t, err)
}

func TestCreateAppointmentCancelledSlotReusable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	at := testNow.Add(24 * time.Hour)

	apt, err := f.svc.Create(ctx, 100, createReq(1, at))
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, apt.ID, 100)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, 101, createReq(1, at))
	assert.NoError(t, err)
}

func withInfoReq(doctorID int64, at time.Time) *model.CreateAppointmentWithPatientInfoRequest {
	return &model.CreateAppointmentWithPatientInfoRequest{
		CreateAppointmentRequest: *createReq(doctorID, at),
		PatientFirstName:         "Pat",
		PatientLastName:          "Lee",
	}
}

func TestCreateWithPatientInfoQueueNumbers(t *testing.T) {
	tests := []struct {
		name     string
		maxQueue string
		want     string
	}{
		{"first booking", "", "001"},
		{"increments", "007", "008"},
		{"grows past padding", "999", "1000"},
		{"unparseable restarts", "A12", "001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.booking.maxQueue = tt.maxQueue

			result, err := f.svc.CreateWithPatientInfo(context.Background(), 100, withInfoReq(1, testNow.Add(24*time.Hour)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.PatientInfo.QueueNumber)
		})
	}
}

func TestCreateWithPatientInfoExplicitQueueNumber(t *testing.T) {
	f := newFixture()

	req := withInfoReq(1, testNow.Add(24*time.Hour))
	req.QueueNumber = " 042 "
	result, err := f.svc.CreateWithPatientInfo(context.Background(), 100, req)
	require.NoError(t, err)
	assert.Equal(t, "042", result.PatientInfo.QueueNumber)
}

func TestCreateWithPatientInfoDefaults(t *testing.T) {
	f := newFixture()

	result, err := f.svc.CreateWithPatientInfo(context.Background(), 100, withInfoReq(1, testNow.Add(24*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "manual", result.PatientInfo.BookingType)
	assert.Nil(t, result.PatientInfo.PatientDateOfBirth)
	assert.Equal(t, result.Appointment.ID, result.PatientInfo.AppointmentID)
}

func TestCreateWithPatientInfoBadDateOfBirth(t *testing.T) {
	f := newFixture()

	req := withInfoReq(1, testNow.Add(24*time.Hour))
	req.PatientDateOfBirth = "01/02/1990"
	_, err := f.svc.CreateWithPatientInfo(context.Background(), 100, req)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestConfirmAppointment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	apt, err := f.svc.Create(ctx, 100, createReq(1, testNow.Add(24*time.Hour)))
	require.NoError(t, err)

	confirmed, err := f.svc.Confirm(ctx, apt.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, confirmed.Status)
	assert.Equal(t, []string{"pat@example.test"}, f.email.confirmed)

	// Confirming twice fails: no longer PENDING.
	_, err = f.svc.Confirm(ctx, apt.ID, 1)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestConfirmAppointmentWrongDoctor(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	apt, err := f.svc.Create(ctx, 100, createReq(1, testNow.Add(24*time.Hour)))
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, apt.ID, 2)
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuthorization))
}

func TestCancelAppointmentAuthorization(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	apt, err := f.svc.Create(ctx, 100, createReq(1, testNow.Add(24*time.Hour)))
	require.NoError(t, err)

	// A stranger may not cancel.
	_, err = f.svc.Cancel(ctx, apt.ID, 101)
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuthorization))

	// The owning doctor's user may.
	cancelled, err := f.svc.Cancel(ctx, apt.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
}

func TestCancelAppointmentByPatient(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	apt, err := f.svc.Create(ctx, 100, createReq(1, testNow.Add(24*time.Hour)))
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, apt.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
	assert.Equal(t, []string{"pat@example.test"}, f.email.cancelled)

	// Terminal status cannot be cancelled again.
	_, err = f.svc.Cancel(ctx, apt.ID, 100)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestListByDoctorAndDate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	at := time.Date(2026, 9, 2, 9, 0, 0, 0, time.Local)
	_, err := f.svc.Create(ctx, 100, createReq(1, at))
	require.NoError(t, err)

	appointments, err := f.svc.ListByDoctorAndDate(ctx, 1, "2026-09-02")
	require.NoError(t, err)
	assert.Len(t, appointments, 1)

	appointments, err = f.svc.ListByDoctorAndDate(ctx, 1, "2026-09-03")
	require.NoError(t, err)
	assert.Empty(t, appointments)

	_, err = f.svc.ListByDoctorAndDate(ctx, 1, "02-09-2026")
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestBookedSlots(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	at := time.Date(2026, 9, 2, 9, 0, 0, 0, time.Local)
	apt, err := f.svc.Create(ctx, 100, createReq(1, at))
	require.NoError(t, err)

	slots, err := f.svc.BookedSlots(ctx, 1, "2026-09-02")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, apt.ID, slots[0].AppointmentID)
	assert.Equal(t, at, slots[0].StartTime)
	assert.Equal(t, model.DefaultAppointmentMinutes, slots[0].DurationMinutes)
}

func TestNextQueueNumberPadding(t *testing.T) {
	f := newFixture()

	f.booking.maxQueue = "9"
	n, err := f.svc.nextQueueNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "010", n)
}
