package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smpanel/internal/models"
)

func TestCategoryCreateRoundTrip(t *testing.T) {
	db := newTestDB(t)
	p1 := seedPanel(t, db, "p1")
	p2 := seedPanel(t, db, "p2")
	repo := NewCategoryRepository(db)

	_, err := repo.Create("Gold", "", []uint{p2.ID, p1.ID}, []int{80, 443})
	require.NoError(t, err)

	cats, err := repo.FindAll()
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Gold", cats[0].Name)
	assert.Equal(t, []int{80, 443}, cats[0].Ports())
	assert.Equal(t, []uint{p2.ID, p1.ID}, cats[0].PanelIDs)

	panels, err := repo.PanelsOf(cats[0].ID)
	require.NoError(t, err)
	require.Len(t, panels, 2)
	assert.Equal(t, "p2", panels[0].Name)
	assert.Equal(t, "p1", panels[1].Name)

	_, err = repo.Create("Gold", "", nil, nil)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestCategoryFindAllOrdersByNameAndToleratesBadJSON(t *testing.T) {
	db := newTestDB(t)
	repo := NewCategoryRepository(db)

	_, err := repo.Create("zeta", "", nil, []int{1})
	require.NoError(t, err)
	broken, err := repo.Create("alpha", "", nil, []int{2})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Category{}).Where("id = ?", broken.ID).
		Update("inbound_ports", "{not json").Error)

	cats, err := repo.FindAll()
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "alpha", cats[0].Name)
	assert.Equal(t, []int{}, cats[0].Ports())
	assert.Equal(t, []int{1}, cats[1].Ports())
}

func TestCategoryDeleteManyUncategorisesProducts(t *testing.T) {
	db := newTestDB(t)
	p := seedPanel(t, db, "p")
	cats := NewCategoryRepository(db)
	products := NewProductRepository(db)
	extra := NewExtraVolumeRepository(db)

	gold, err := cats.Create("gold", "", []uint{p.ID}, []int{443})
	require.NoError(t, err)
	silver, err := cats.Create("silver", "", []uint{p.ID}, []int{80})
	require.NoError(t, err)
	require.NoError(t, products.Create(&models.Product{Name: "1m", CategoryID: uintPtr(gold.ID)}))
	_, err = extra.Upsert(gold.ID, FieldPricePerGB, 5000)
	require.NoError(t, err)

	n, err := cats.DeleteMany([]uint{gold.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	all, err := products.FindAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Nil(t, all[0].CategoryID)
	assert.Equal(t, models.UncategorizedName, all[0].CategoryName)

	_, err = extra.FindByCategory(gold.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var links int64
	require.NoError(t, db.Model(&models.CategoryPanel{}).Where("category_id = ?", gold.ID).Count(&links).Error)
	assert.Zero(t, links)

	left, err := cats.FindAll()
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, silver.ID, left[0].ID)
}
