package doctor

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doctora/clinic-api/internal/model"
	"github.com/doctora/clinic-api/internal/repository"
	"github.com/doctora/clinic-api/internal/service/appointment"
	"github.com/doctora/clinic-api/internal/service/availability"
	apperrors "github.com/doctora/clinic-api/pkg/errors"
	"github.com/doctora/clinic-api/pkg/logger"
)

type fakeTxRunner struct{}

func (fakeTxRunner) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeDoctorRepo struct {
	repository.DoctorRepository
	doctors  map[int64]*model.Doctor
	byName   map[string][]*model.Doctor
	licenses map[string]bool
	nextID   int64
}

func newFakeDoctorRepo() *fakeDoctorRepo {
	return &fakeDoctorRepo{
		doctors:  map[int64]*model.Doctor{},
		byName:   map[string][]*model.Doctor{},
		licenses: map[string]bool{},
	}
}

func (f *fakeDoctorRepo) Create(_ context.Context, d *model.Doctor) error {
	f.nextID++
	d.ID = f.nextID
	f.doctors[d.ID] = d
	f.licenses[d.LicenseNumber] = true
	return nil
}

func (f *fakeDoctorRepo) Get(_ context.Context, id int64) (*model.Doctor, error) {
	d, ok := f.doctors[id]
	if !ok {
		return nil, apperrors.NotFound("doctor", nil)
	}
	return d, nil
}

func (f *fakeDoctorRepo) GetByUserID(_ context.Context, userID int64) (*model.Doctor, error) {
	for _, d := range f.doctors {
		if d.UserID == userID {
			return d, nil
		}
	}
	return nil, apperrors.NotFound("doctor", nil)
}

func (f *fakeDoctorRepo) Update(_ context.Context, d *model.Doctor) error {
	f.doctors[d.ID] = d
	return nil
}

func (f *fakeDoctorRepo) Delete(_ context.Context, id int64) error {
	delete(f.doctors, id)
	return nil
}

func (f *fakeDoctorRepo) ListBySpecialtyName(_ context.Context, name string) ([]*model.Doctor, error) {
	return f.byName[name], nil
}

func (f *fakeDoctorRepo) ExistsByLicense(_ context.Context, license string) (bool, error) {
	return f.licenses[license], nil
}

type fakeSpecialtyRepo struct {
	repository.SpecialtyRepository
	specialties map[int64]*model.Specialty
}

func (f *fakeSpecialtyRepo) Get(_ context.Context, id int64) (*model.Specialty, error) {
	s, ok := f.specialties[id]
	if !ok {
		return nil, apperrors.NotFound("specialty", nil)
	}
	return s, nil
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

func (f *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	delete(f.users, id)
	return nil
}

type fakeAvailabilityRepo struct {
	repository.AvailabilityRepository
	// windows maps doctor id to its available weekdays.
	windows map[int64][]int
	listErr error
}

func (f *fakeAvailabilityRepo) ListByDoctorAndDay(_ context.Context, doctorID int64, day int) ([]*model.Availability, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*model.Availability
	for _, d := range f.windows[doctorID] {
		if d == day {
			out = append(out, &model.Availability{DoctorID: doctorID, DayOfWeek: day})
		}
	}
	return out, nil
}

type fakeAppointmentRepo struct {
	repository.AppointmentRepository
	// queues maps doctor id to its appointments on the probed date.
	queues  map[int64][]*model.Appointment
	listErr error
}

func (f *fakeAppointmentRepo) ListByDoctorBetween(_ context.Context, doctorID int64, _, _ time.Time) ([]*model.Appointment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.queues[doctorID], nil
}

type fixture struct {
	svc         *Service
	doctors     *fakeDoctorRepo
	specialties *fakeSpecialtyRepo
	users       *fakeUserRepo
	windows     *fakeAvailabilityRepo
	queue       *fakeAppointmentRepo
}

func newFixture() *fixture {
	doctors := newFakeDoctorRepo()
	specialties := &fakeSpecialtyRepo{specialties: map[int64]*model.Specialty{
		1: {ID: 1, Name: "Cardiology"},
	}}
	users := &fakeUserRepo{users: map[int64]*model.User{
		10: {ID: 10, Role: model.RolePatient, FirstName: "Alice", LastName: "Reyes"},
	}}
	windows := &fakeAvailabilityRepo{windows: map[int64][]int{}}
	queue := &fakeAppointmentRepo{queues: map[int64][]*model.Appointment{}}

	log := logger.New(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	availabilitySvc := availability.NewService(windows, doctors, nil, fakeTxRunner{}, log)
	appointmentSvc := appointment.NewService(queue, doctors, users, nil, nil, fakeTxRunner{}, nil, log)

	svc := NewService(doctors, specialties, users, availabilitySvc, appointmentSvc, fakeTxRunner{}, log)
	return &fixture{
		svc:         svc,
		doctors:     doctors,
		specialties: specialties,
		users:       users,
		windows:     windows,
		queue:       queue,
	}
}

// addDoctor registers an active doctor in the Cardiology pool.
func (f *fixture) addDoctor(id int64) *model.Doctor {
	d := &model.Doctor{ID: id, UserID: id + 100, SpecialtyID: 1, IsActive: true}
	f.doctors.doctors[id] = d
	f.doctors.byName["Cardiology"] = append(f.doctors.byName["Cardiology"], d)
	if id >= f.doctors.nextID {
		f.doctors.nextID = id
	}
	return d
}

func pendingAppointments(n int) []*model.Appointment {
	out := make([]*model.Appointment, n)
	for i := range out {
		out[i] = &model.Appointment{Status: model.AppointmentStatusPending}
	}
	return out
}

// 2026-09-07 is a Monday.
const monday = "2026-09-07"

func TestSmartSelectNoDoctors(t *testing.T) {
	f := newFixture()

	sel, err := f.svc.SmartSelect(context.Background(), "Dermatology", "")
	require.NoError(t, err)
	assert.Nil(t, sel.Doctor)
	assert.Equal(t, "no doctors found for this specialty", sel.Message)
	assert.Zero(t, sel.TotalDoctors)
}

func TestSmartSelectWithoutDate(t *testing.T) {
	f := newFixture()
	f.addDoctor(1)
	f.addDoctor(2)
	f.addDoctor(3)
	f.svc.randIntn = func(n int) int { return n - 1 }

	sel, err := f.svc.SmartSelect(context.Background(), "Cardiology", "")
	require.NoError(t, err)
	require.NotNil(t, sel.Doctor)
	assert.EqualValues(t, 3, sel.Doctor.ID)
	assert.Equal(t, 3, sel.TotalDoctors)
	assert.Nil(t, sel.AvailableOnDate)
}

func TestSmartSelectNoAvailabilityOnDate(t *testing.T) {
	f := newFixture()
	f.addDoctor(1)
	f.addDoctor(2)

	sel, err := f.svc.SmartSelect(context.Background(), "Cardiology", monday)
	require.NoError(t, err)
	assert.Nil(t, sel.Doctor)
	assert.Equal(t, 2, sel.TotalDoctors)
	require.NotNil(t, sel.AvailableOnDate)
	assert.Zero(t, *sel.AvailableOnDate)
}

func TestSmartSelectFiltersByAvailability(t *testing.T) {
	f := newFixture()
	f.addDoctor(1)
	f.addDoctor(2)
	f.windows.windows[2] = []int{1}
	f.svc.randIntn = func(int) int { return 0 }

	sel, err := f.svc.SmartSelect(context.Background(), "Cardiology", monday)
	require.NoError(t, err)
	require.NotNil(t, sel.Doctor)
	assert.EqualValues(t, 2, sel.Doctor.ID)
	assert.Equal(t, 1, sel.TotalDoctors)
}

func TestSmartSelectPicksLeastBusy(t *testing.T) {
	f := newFixture()
	for id := int64(1); id <= 4; id++ {
		f.addDoctor(id)
		f.windows.windows[id] = []int{1}
	}
	f.queue.queues[1] = pendingAppointments(2)
	f.queue.queues[4] = pendingAppointments(1)

	// Doctors 2 and 3 are tied at zero; whichever way the tie breaks, the
	// selection stays inside that pair.
	f.svc.randIntn = func(int) int { return 0 }
	sel, err := f.svc.SmartSelect(context.Background(), "Cardiology", monday)
	require.NoError(t, err)
	require.NotNil(t, sel.Doctor)
	assert.EqualValues(t, 2, sel.Doctor.ID)
	assert.Equal(t, 4, sel.TotalDoctors)

	f.svc.randIntn = func(n int) int { return n - 1 }
	sel, err = f.svc.SmartSelect(context.Background(), "Cardiology", monday)
	require.NoError(t, err)
	require.NotNil(t, sel.Doctor)
	assert.EqualValues(t, 3, sel.Doctor.ID)
}

func TestSmartSelectIgnoresFinishedAppointments(t *testing.T) {
	f := newFixture()
	f.addDoctor(1)
	f.addDoctor(2)
	f.windows.windows[1] = []int{1}
	f.windows.windows[2] = []int{1}

	// Doctor 1 has only cancelled/completed appointments, doctor 2 one pending.
	f.queue.queues[1] = []*model.Appointment{
		{Status: model.AppointmentStatusCancelled},
		{Status: model.AppointmentStatusCompleted},
	}
	f.queue.queues[2] = pendingAppointments(1)
	f.svc.randIntn = func(int) int { return 0 }

	sel, err := f.svc.SmartSelect(context.Background(), "Cardiology", monday)
	require.NoError(t, err)
	assert.EqualValues(t, 1, sel.Doctor.ID)
}

func TestSmartSelectQueueLookupFailsOpen(t *testing.T) {
	f := newFixture()
	f.addDoctor(1)
	f.windows.windows[1] = []int{1}
	f.queue.listErr = assert.AnError
	f.svc.randIntn = func(int) int { return 0 }

	sel, err := f.svc.SmartSelect(context.Background(), "Cardiology", monday)
	require.NoError(t, err)
	require.NotNil(t, sel.Doctor)
	assert.EqualValues(t, 1, sel.Doctor.ID)
}

func TestCreateDoctor(t *testing.T) {
	f := newFixture()

	d, err := f.svc.Create(context.Background(), &model.CreateDoctorRequest{
		UserID:        10,
		SpecialtyID:   1,
		LicenseNumber: "MD-1001",
	})
	require.NoError(t, err)
	assert.True(t, d.IsActive)
	assert.Equal(t, DefaultConsultationFee, d.ConsultationFee)
	assert.Equal(t, model.RoleDoctor, f.users.users[10].Role)
}

func TestCreateDoctorDuplicateProfile(t *testing.T) {
	f := newFixture()
	d := f.addDoctor(1)
	f.users.users[d.UserID] = &model.User{ID: d.UserID, Role: model.RoleDoctor}

	_, err := f.svc.Create(context.Background(), &model.CreateDoctorRequest{
		UserID:        d.UserID,
		SpecialtyID:   1,
		LicenseNumber: "MD-1002",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindAlreadyExists))
}

func TestCreateDoctorDuplicateLicense(t *testing.T) {
	f := newFixture()
	f.doctors.licenses["MD-1001"] = true

	_, err := f.svc.Create(context.Background(), &model.CreateDoctorRequest{
		UserID:        10,
		SpecialtyID:   1,
		LicenseNumber: "MD-1001",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindAlreadyExists))
}

func TestCreateDoctorUnknownSpecialty(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), &model.CreateDoctorRequest{
		UserID:        10,
		SpecialtyID:   42,
		LicenseNumber: "MD-1001",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestUpdateProfileRestrictedFields(t *testing.T) {
	f := newFixture()
	d := f.addDoctor(1)
	d.Bio = "old"
	d.ConsultationFee = 500

	bio := "new bio"
	fee := 750.0
	updated, err := f.svc.UpdateProfile(context.Background(), d.ID, &model.UpdateDoctorProfileRequest{
		Bio:             &bio,
		ConsultationFee: &fee,
	})
	require.NoError(t, err)
	assert.Equal(t, "new bio", updated.Bio)
	assert.Equal(t, 750.0, updated.ConsultationFee)
}

func TestDeleteDoctorRemovesUser(t *testing.T) {
	f := newFixture()
	d := f.addDoctor(1)
	f.users.users[d.UserID] = &model.User{ID: d.UserID, Role: model.RoleDoctor}

	require.NoError(t, f.svc.Delete(context.Background(), d.ID))
	assert.NotContains(t, f.doctors.doctors, d.ID)
	assert.NotContains(t, f.users.users, d.UserID)
}
