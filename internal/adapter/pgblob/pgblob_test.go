package pgblob

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDBTX struct {
	mock.Mock
}

func (m *mockDBTX) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDBTX) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

type mockRow struct {
	scanErr error
	scanFn  func(dest ...any) error
}

func (r *mockRow) Scan(dest ...any) error {
	if r.scanFn != nil {
		return r.scanFn(dest...)
	}
	return r.scanErr
}

func TestGet(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := new(mockDBTX)
		db.On("QueryRow", mock.Anything, selectSQL, []any{"assessments"}).
			Return(&mockRow{scanFn: func(dest ...any) error {
				*dest[0].(*[]byte) = []byte(`[]`)
				return nil
			}})

		data, found, err := New(db).Get(context.Background(), "assessments")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte(`[]`), data)
		db.AssertExpectations(t)
	})

	t.Run("missing", func(t *testing.T) {
		db := new(mockDBTX)
		db.On("QueryRow", mock.Anything, selectSQL, mock.Anything).
			Return(&mockRow{scanErr: pgx.ErrNoRows})

		data, found, err := New(db).Get(context.Background(), "assessments")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, data)
	})

	t.Run("query error", func(t *testing.T) {
		db := new(mockDBTX)
		db.On("QueryRow", mock.Anything, selectSQL, mock.Anything).
			Return(&mockRow{scanErr: errors.New("connection refused")})

		_, _, err := New(db).Get(context.Background(), "assessments")
		assert.ErrorContains(t, err, "connection refused")
	})
}

func TestPut(t *testing.T) {
	db := new(mockDBTX)
	payload := []byte(`{"1_2":[40]}`)
	db.On("Exec", mock.Anything, upsertSQL, []any{"location_history", payload}).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	require.NoError(t, New(db).Put(context.Background(), "location_history", payload))
	db.AssertExpectations(t)

	t.Run("exec error", func(t *testing.T) {
		db := new(mockDBTX)
		db.On("Exec", mock.Anything, upsertSQL, mock.Anything).
			Return(pgconn.CommandTag{}, context.DeadlineExceeded)

		err := New(db).Put(context.Background(), "location_history", payload)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestMigrate(t *testing.T) {
	db := new(mockDBTX)
	db.On("Exec", mock.Anything, createTableSQL, mock.Anything).
		Return(pgconn.NewCommandTag("CREATE TABLE"), nil)

	require.NoError(t, New(db).Migrate(context.Background()))
	require.NoError(t, New(db).Close())
	db.AssertExpectations(t)
}
