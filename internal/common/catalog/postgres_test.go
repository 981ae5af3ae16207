package catalog

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_ScrollKeyset(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresStore(db)
	query := regexp.QuoteMeta("SELECT id, payload FROM catalog_items")

	mock.ExpectQuery(query).
		WithArgs("fashion", "", 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "payload"}).
			AddRow("a", []byte(`{"colour":"Black"}`)).
			AddRow("b", []byte(`{"colour":"Red"}`)))
	mock.ExpectQuery(query).
		WithArgs("fashion", "b", 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "payload"}).
			AddRow("c", []byte(`{"colour":"Blue"}`)))

	var ids []string
	err = Walk(context.Background(), store, "fashion", 2, func(p Page) error {
		for _, r := range p.Records {
			ids = append(ids, r.ID)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, payload").WillReturnError(errors.New("relation does not exist"))

	_, err = NewPostgresStore(db).Scroll(context.Background(), "fashion", 10, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relation does not exist")
}

func TestPostgresStore_Put(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO catalog_items"))
	prep.ExpectExec().WithArgs("fashion", "p000", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs("fashion", "p001", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewPostgresStore(db).Put(context.Background(), "fashion", seedRecords(2)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS catalog_items")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewPostgresStore(db).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
