package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/history"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	f := newFixture(t)
	created, err := f.statuses.SeedDefaults(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, created)

	list, err := f.statuses.List(f.ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(domain.DefaultStatuses()))
	assert.Equal(t, domain.StatusCodeNew, list[0].Code)
}

func TestDeleteStatusProtections(t *testing.T) {
	f := newFixture(t)

	err := f.statuses.Delete(f.ctx, f.admin, f.status(t, domain.StatusCodeNew).ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	custom, err := f.statuses.Create(f.ctx, f.admin, StatusInput{Name: "Voicemail", Code: "voicemail", Color: "#123456", Order: 15})
	require.NoError(t, err)
	c := f.assignedContact(t, "5143000001")
	_, err = f.contacts.UpdateStatus(f.ctx, f.tel, c.ID, custom.ID, "")
	require.NoError(t, err)

	err = f.statuses.Delete(f.ctx, f.admin, custom.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	attempted := f.status(t, "attempted")
	_, err = f.contacts.UpdateStatus(f.ctx, f.tel, c.ID, attempted.ID, "")
	require.NoError(t, err)
	require.NoError(t, f.statuses.Delete(f.ctx, f.admin, custom.ID))

	_, err = f.statuses.Get(f.ctx, custom.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestCreateStatusRejectsDuplicateCode(t *testing.T) {
	f := newFixture(t)
	_, err := f.statuses.Create(f.ctx, f.admin, StatusInput{Name: "Other new", Code: "new", Color: "#000000"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	attempted := f.status(t, "attempted")

	name, order, exclude := "  Tried once ", 0, true
	updated, err := f.statuses.Update(f.ctx, f.admin, attempted.ID, StatusUpdateInput{Name: &name, Order: &order, ExcludeFromCallList: &exclude})
	require.NoError(t, err)
	assert.Equal(t, "Tried once", updated.Name)
	assert.Equal(t, 0, updated.Order)
	assert.True(t, updated.ExcludeFromCallList)
	assert.Equal(t, "attempted", updated.Code)

	reloaded := f.status(t, "attempted")
	assert.Equal(t, "Tried once", reloaded.Name)

	entries, err := f.reader.ForDocument(f.ctx, domain.EntityContactStatus, attempted.ID, history.Query{Action: domain.ActionUpdate})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Len(t, entries[0].Changes, 3)
}

func TestUpdateStatusKeepsConvertedExcluded(t *testing.T) {
	f := newFixture(t)
	converted := f.status(t, domain.StatusCodeConverted)

	include := false
	_, err := f.statuses.Update(f.ctx, f.admin, converted.ID, StatusUpdateInput{ExcludeFromCallList: &include})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.True(t, f.status(t, domain.StatusCodeConverted).ExcludeFromCallList)

	color := "#00AA00"
	_, err = f.statuses.Update(f.ctx, f.admin, converted.ID, StatusUpdateInput{Color: &color})
	require.NoError(t, err)
	assert.Equal(t, color, f.status(t, domain.StatusCodeConverted).Color)
}

type brokenStatusRepo struct {
	repository.StatusRepository
}

func (brokenStatusRepo) GetByCode(context.Context, string) (*domain.ContactStatus, error) {
	return nil, errors.New("connection reset")
}

func TestSeedDefaultsStopsOnStoreFailure(t *testing.T) {
	store := repository.NewMemoryStore()
	statuses := NewStatusService(StatusDependencies{
		StatusRepo:  brokenStatusRepo{StatusRepository: repository.NewStatusRepository(store, nil)},
		ContactRepo: repository.NewContactRepository(store),
		Engine:      history.NewEngine(history.EngineDependencies{Store: store}),
	})

	created, err := statuses.SeedDefaults(context.Background())
	assert.Zero(t, created)
	assert.True(t, apperrors.HasCode(err, apperrors.CodePersistence))

	stored, err := repository.NewStatusRepository(store, nil).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
}
