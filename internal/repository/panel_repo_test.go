package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smpanel/internal/models"
)

func TestPanelRepositoryCRUD(t *testing.T) {
	db := newTestDB(t)
	repo := NewPanelRepository(db)

	p1 := seedPanel(t, db, "de-1")
	p2 := seedPanel(t, db, "nl-1")
	assert.Equal(t, models.PanelStatusActive, p1.Status)
	assert.Equal(t, models.PanelTypeXUI, p1.Type)

	err := repo.Create(&models.Panel{Name: "de-1"})
	assert.ErrorIs(t, err, ErrDuplicateName)

	n, err := repo.CountByName("nl-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	all, err := repo.FindAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, p1.ID, all[0].ID)
	assert.Equal(t, p2.ID, all[1].ID)

	require.NoError(t, repo.UpdateStatus(p1.ID, models.PanelStatusInactive))
	got, err := repo.FindByID(p1.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive())

	inactive, err := repo.CountByStatus(models.PanelStatusInactive)
	require.NoError(t, err)
	assert.Equal(t, int64(1), inactive)

	require.NoError(t, repo.Delete(p1.ID))
	_, err = repo.FindByID(p1.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(p1.ID), ErrNotFound)

	total, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestPanelRepositoryFindByIDsKeepsOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewPanelRepository(db)
	a := seedPanel(t, db, "a")
	b := seedPanel(t, db, "b")

	panels, err := repo.FindByIDs([]uint{b.ID, 999, a.ID})
	require.NoError(t, err)
	require.Len(t, panels, 2)
	assert.Equal(t, "b", panels[0].Name)
	assert.Equal(t, "a", panels[1].Name)
}

func TestPanelDeleteDetachesCategories(t *testing.T) {
	db := newTestDB(t)
	p := seedPanel(t, db, "p")
	cat, err := NewCategoryRepository(db).Create("gold", "", []uint{p.ID}, []int{443})
	require.NoError(t, err)

	require.NoError(t, NewPanelRepository(db).Delete(p.ID))

	got, err := NewCategoryRepository(db).FindByID(cat.ID)
	require.NoError(t, err)
	assert.Empty(t, got.PanelIDs)
}
