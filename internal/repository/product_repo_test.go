package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smpanel/internal/models"
)

func TestProductCreateValidates(t *testing.T) {
	db := newTestDB(t)
	cat, err := NewCategoryRepository(db).Create("gold", "", nil, nil)
	require.NoError(t, err)
	repo := NewProductRepository(db)

	p := &models.Product{Name: "1m 50GB", DataLimit: 50, Duration: 30, Price: 150000, CategoryID: uintPtr(cat.ID)}
	require.NoError(t, repo.Create(p))
	assert.Equal(t, 1, p.UsersLimit)
	assert.Equal(t, models.ProductStatusActive, p.Status)

	assert.ErrorIs(t, repo.Create(&models.Product{Name: "1m 50GB"}), ErrDuplicateName)
	assert.ErrorIs(t, repo.Create(&models.Product{Name: "other", CategoryID: uintPtr(999)}), ErrUnknownCategory)

	got, err := repo.FindByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "gold", got.CategoryName)
	assert.Equal(t, 50, got.DataLimit)
}

func TestProductListingAndUpdate(t *testing.T) {
	db := newTestDB(t)
	cat, err := NewCategoryRepository(db).Create("gold", "", nil, nil)
	require.NoError(t, err)
	repo := NewProductRepository(db)

	require.NoError(t, repo.Create(&models.Product{Name: "b", CategoryID: uintPtr(cat.ID)}))
	require.NoError(t, repo.Create(&models.Product{Name: "a", CategoryID: uintPtr(cat.ID)}))
	require.NoError(t, repo.Create(&models.Product{Name: "c"}))

	inCat, err := repo.FindByCategory(cat.ID)
	require.NoError(t, err)
	require.Len(t, inCat, 2)
	assert.Equal(t, "a", inCat[0].Name)

	loose, err := repo.FindUncategorized()
	require.NoError(t, err)
	require.Len(t, loose, 1)
	assert.Equal(t, models.UncategorizedName, loose[0].CategoryName)

	assert.ErrorIs(t, repo.Update(inCat[0].ID, map[string]interface{}{"name": "b"}), ErrDuplicateName)
	assert.ErrorIs(t, repo.Update(inCat[0].ID, map[string]interface{}{"category_id": uint(999)}), ErrUnknownCategory)
	require.NoError(t, repo.Update(inCat[0].ID, map[string]interface{}{"price": 99000.0, "data_limit": 0}))

	got, err := repo.FindByID(inCat[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 99000.0, got.Price)
	assert.Equal(t, 0, got.DataLimit)

	assert.ErrorIs(t, repo.Update(12345, map[string]interface{}{"price": 1}), ErrNotFound)
}

func TestProductDeleteManyDetachesOrders(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)

	var ids []uint
	for _, name := range []string{"p1", "p2", "p3", "p4", "p5"} {
		p := &models.Product{Name: name}
		require.NoError(t, repo.Create(p))
		ids = append(ids, p.ID)
	}
	require.NoError(t, db.Create(&models.Order{ProductID: uintPtr(ids[0]), UserID: 1, Status: "paid"}).Error)

	orders := NewOrderRepository(db)
	refs, err := orders.CountByProducts(ids[:2])
	require.NoError(t, err)
	assert.Equal(t, int64(1), refs)

	deleted, orphaned, err := repo.DeleteMany(ids[:2])
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Equal(t, int64(1), orphaned)

	left, err := repo.FindAll()
	require.NoError(t, err)
	require.Len(t, left, 3)
	assert.Equal(t, "p3", left[0].Name)

	total, err := orders.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	var order models.Order
	require.NoError(t, db.First(&order).Error)
	assert.Nil(t, order.ProductID)
}
