package specialty

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

type fakeSpecialtyRepo struct {
	repository.SpecialtyRepository
	specialties map[int64]*model.Specialty
	names       map[string]bool
	listCalls   int
	nextID      int64
}

func newFakeSpecialtyRepo() *fakeSpecialtyRepo {
	return &fakeSpecialtyRepo{
		specialties: map[int64]*model.Specialty{},
		names:       map[string]bool{},
	}
}

func (f *fakeSpecialtyRepo) Get(_ context.Context, id int64) (*model.Specialty, error) {
	sp, ok := f.specialties[id]
	if !ok {
		return nil, apperrors.NotFound("specialty", nil)
	}
	return sp, nil
}

func (f *fakeSpecialtyRepo) List(_ context.Context) ([]*model.Specialty, error) {
	f.listCalls++
	out := make([]*model.Specialty, 0, len(f.specialties))
	for _, sp := range f.specialties {
		out = append(out, sp)
	}
	return out, nil
}

func (f *fakeSpecialtyRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	return f.names[name], nil
}

func (f *fakeSpecialtyRepo) Create(_ context.Context, sp *model.Specialty) error {
	f.nextID++
	sp.ID = f.nextID
	f.specialties[sp.ID] = sp
	f.names[sp.Name] = true
	return nil
}

func (f *fakeSpecialtyRepo) Update(_ context.Context, sp *model.Specialty) error {
	f.specialties[sp.ID] = sp
	return nil
}

func (f *fakeSpecialtyRepo) Delete(_ context.Context, id int64) error {
	delete(f.specialties, id)
	return nil
}

type fakeDoctorRepo struct {
	repository.DoctorRepository
	activeCounts map[int64]int
}

func (f *fakeDoctorRepo) CountActiveBySpecialty(_ context.Context, specialtyID int64) (int64, error) {
	return int64(f.activeCounts[specialtyID]), nil
}

func newTestService(repo *fakeSpecialtyRepo, doctors *fakeDoctorRepo) *Service {
	if doctors == nil {
		doctors = &fakeDoctorRepo{activeCounts: map[int64]int{}}
	}
	log := logger.New(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	return NewService(repo, doctors, log)
}

func TestListCachesResult(t *testing.T) {
	repo := newFakeSpecialtyRepo()
	require.NoError(t, repo.Create(context.Background(), &model.Specialty{Name: "Cardiology"}))
	svc := newTestService(repo, nil)
	repo.listCalls = 0

	first, err := svc.List(context.Background())
	require.NoError(t, err)
	second, err := svc.List(context.Background())
	require.NoError(t, err)

	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
	assert.Equal(t, 1, repo.listCalls)
}

func TestCreateInvalidatesCache(t *testing.T) {
	repo := newFakeSpecialtyRepo()
	svc := newTestService(repo, nil)

	_, err := svc.List(context.Background())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &model.CreateSpecialtyRequest{Name: "Neurology"})
	require.NoError(t, err)

	listed, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, listed, 1)
	assert.Equal(t, 2, repo.listCalls)
}

func TestCreateDuplicateName(t *testing.T) {
	repo := newFakeSpecialtyRepo()
	repo.names["Cardiology"] = true
	svc := newTestService(repo, nil)

	_, err := svc.Create(context.Background(), &model.CreateSpecialtyRequest{Name: "Cardiology"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindAlreadyExists))
}

func TestUpdateRenameToExistingName(t *testing.T) {
	repo := newFakeSpecialtyRepo()
	require.NoError(t, repo.Create(context.Background(), &model.Specialty{Name: "Cardiology"}))
	require.NoError(t, repo.Create(context.Background(), &model.Specialty{Name: "Neurology"}))
	svc := newTestService(repo, nil)

	_, err := svc.Update(context.Background(), 2, &model.CreateSpecialtyRequest{Name: "Cardiology"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindAlreadyExists))
}

func TestUpdateSameNameAllowed(t *testing.T) {
	repo := newFakeSpecialtyRepo()
	require.NoError(t, repo.Create(context.Background(), &model.Specialty{Name: "Cardiology"}))
	svc := newTestService(repo, nil)

	sp, err := svc.Update(context.Background(), 1, &model.CreateSpecialtyRequest{
		Name:        "Cardiology",
		Description: "heart and vessels",
	})
	require.NoError(t, err)
	assert.Equal(t, "heart and vessels", sp.Description)
}

func TestDeleteBlockedByActiveDoctors(t *testing.T) {
	repo := newFakeSpecialtyRepo()
	require.NoError(t, repo.Create(context.Background(), &model.Specialty{Name: "Cardiology"}))
	doctors := &fakeDoctorRepo{activeCounts: map[int64]int{1: 3}}
	svc := newTestService(repo, doctors)

	err := svc.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	assert.Contains(t, err.Error(), "3 active doctors")
}

func TestDeleteWithoutDoctors(t *testing.T) {
	repo := newFakeSpecialtyRepo()
	require.NoError(t, repo.Create(context.Background(), &model.Specialty{Name: "Cardiology"}))
	svc := newTestService(repo, nil)

	require.NoError(t, svc.Delete(context.Background(), 1))
	assert.Empty(t, repo.specialties)
}

func TestDeleteUnknownSpecialty(t *testing.T) {
	svc := newTestService(newFakeSpecialtyRepo(), nil)

	err := svc.Delete(context.Background(), 42)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
