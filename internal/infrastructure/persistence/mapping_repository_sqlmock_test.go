package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockMappingRepository creates a GormMappingRepository over a mocked postgres connection
func newMockMappingRepository(t *testing.T) (*GormMappingRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return NewGormMappingRepository(gormDB), mock, mockDB
}

func TestGormMappingRepository_Postgres(t *testing.T) {
	t.Run("find by id is tenant scoped", func(t *testing.T) {
		repo, mock, mockDB := newMockMappingRepository(t)
		defer mockDB.Close()

		tenantID, id := uuid.New(), uuid.New()
		rows := sqlmock.NewRows([]string{"id", "tenant_id", "record_type", "inbound", "outbound", "config"}).
			AddRow(id, tenantID, "USER", `[{"source":"Email","destination":"email"}]`, `[]`, `{"role_ids":["r1"]}`)
		mock.ExpectQuery(`SELECT \* FROM "integration_mappings" WHERE .*tenant_id = .* LIMIT .*`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 1).
			WillReturnRows(rows)

		m, err := repo.FindByID(context.Background(), tenantID, id)
		require.NoError(t, err)
		assert.Equal(t, integration.RecordTypeUser, m.RecordType)
		assert.Equal(t, integration.UserConfig{RoleIDs: []string{"r1"}}, m.Config)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, mockDB := newMockMappingRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "integration_mappings"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByID(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, integration.ErrMappingNotFound)
	})

	t.Run("update with no affected rows", func(t *testing.T) {
		repo, mock, mockDB := newMockMappingRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "integration_mappings" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		m, err := integration.NewMapping(uuid.New(), integration.RecordTypeAccount, nil, nil, nil)
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Update(context.Background(), m), integration.ErrMappingNotFound)
	})
}
