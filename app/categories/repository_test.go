package categories

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nazmulhossain17/niyenin-sub000/app/database"
)

func newMockRepository(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), database.GormConfig(false))
	require.NoError(t, err)

	return NewRepository(gormDB), mock
}

var categoryColumns = []string{"id", "name", "slug", "parent_id", "level", "sort_order", "is_active", "is_featured"}

func TestRepository_GetByID(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		id := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "categories" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows(categoryColumns).
				AddRow(id.String(), "Electronics", "electronics", nil, 0, 1, true, false))

		category, err := repo.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, category.ID)
		assert.Equal(t, "electronics", category.Slug)
		assert.Nil(t, category.ParentID)
		assert.Equal(t, 1, category.SortOrder)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectQuery(`SELECT \* FROM "categories" WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows(categoryColumns))

		category, err := repo.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.Nil(t, category)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_SlugExists(t *testing.T) {
	repo, mock := newMockRepository(t)
	exclude := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "categories" WHERE slug = \$1 AND id <> \$2`).
		WithArgs("phones", exclude).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "categories" WHERE slug = \$1`).
		WithArgs("laptops").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	exists, err := repo.SlugExists(context.Background(), "phones", &exclude)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.SlugExists(context.Background(), "laptops", nil)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List(t *testing.T) {
	t.Run("Empty count skips the page query", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "categories" WHERE is_active = \$1 AND parent_id IS NULL`).
			WithArgs(true).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		categories, total, err := repo.List(context.Background(), &ListFilters{
			RootOnly:   true,
			SortColumn: "sort_order",
			Page:       1,
			Limit:      20,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
		assert.NotNil(t, categories)
		assert.Empty(t, categories)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Sorted page", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		parent := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "categories" WHERE parent_id = \$1`).
			WithArgs(parent).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
		mock.ExpectQuery(`SELECT \* FROM "categories" WHERE parent_id = \$1 ORDER BY "name" DESC,name ASC,id ASC`).
			WillReturnRows(sqlmock.NewRows(categoryColumns).
				AddRow(uuid.NewString(), "Tablets", "tablets", parent.String(), 1, 0, true, false))

		categories, total, err := repo.List(context.Background(), &ListFilters{
			IncludeInactive: true,
			ParentID:        &parent,
			SortColumn:      "name",
			SortDesc:        true,
			Page:            2,
			Limit:           2,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, categories, 1)
		require.NotNil(t, categories[0].ParentID)
		assert.Equal(t, parent, *categories[0].ParentID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_CountOrphans(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "categories" WHERE parent_id IN \(\$1\) AND id NOT IN \(\$2\)`).
		WithArgs(id, id).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountOrphans(context.Background(), []uuid.UUID{id})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateSortOrder(t *testing.T) {
	t.Run("Updated", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "categories" SET "sort_order"=\$1,"updated_at"=\$2 WHERE id = \$3`).
			WithArgs(4, sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.UpdateSortOrder(context.Background(), id, 4))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing row", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "categories" SET "sort_order"=`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.UpdateSortOrder(context.Background(), uuid.New(), 4)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_SetLevels(t *testing.T) {
	repo, mock := newMockRepository(t)
	shallow, deep := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "categories" SET "level"=\$1,"updated_at"=\$2 WHERE id IN \(\$3\)`).
		WithArgs(1, sqlmock.AnyArg(), shallow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "categories" SET "level"=\$1,"updated_at"=\$2 WHERE id IN \(\$3\)`).
		WithArgs(2, sqlmock.AnyArg(), deep).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SetLevels(context.Background(), map[uuid.UUID]int{deep: 2, shallow: 1})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ReassignChildren(t *testing.T) {
	repo, mock := newMockRepository(t)
	from := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "categories" SET "parent_id"=\$1,"updated_at"=\$2 WHERE parent_id = \$3`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), from).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	moved, err := repo.ReassignChildren(context.Background(), from, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteMany(t *testing.T) {
	t.Run("No ids", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		deleted, err := repo.DeleteMany(context.Background(), nil)
		require.NoError(t, err)
		assert.Zero(t, deleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Single statement", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		child, parent := uuid.New(), uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "categories" WHERE id IN \(\$1,\$2\)`).
			WithArgs(child, parent).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		deleted, err := repo.DeleteMany(context.Background(), []uuid.UUID{child, parent})
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_LockHierarchy(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(hashtext\(\$1\)\)`).
		WithArgs(hierarchyLock).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Transaction(context.Background(), func(tx Repository) error {
		return tx.LockHierarchy(context.Background())
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_TransactionRollsBack(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "categories" WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := repo.Transaction(context.Background(), func(tx Repository) error {
		if err := tx.Delete(context.Background(), id); err != nil {
			return err
		}
		return assert.AnError
	})

	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
