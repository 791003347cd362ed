package db

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
)

const sizeQuery = "SELECT SUM(data_length + index_length) AS size FROM information_schema.tables WHERE table_schema = ?"

func newMockCatalog(t *testing.T) (*Catalog, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	})
	catalog, err := openCatalog(context.Background(), dialector, time.Second)
	require.NoError(t, err)

	return catalog, mock
}

func TestCatalog_Databases(t *testing.T) {
	catalog, mock := newMockCatalog(t)

	mock.ExpectQuery(regexp.QuoteMeta("SHOW DATABASES")).
		WillReturnRows(sqlmock.NewRows([]string{"Database"}).
			AddRow("information_schema").
			AddRow("shop").
			AddRow("wp_blog"))
	mock.ExpectClose()

	names, err := catalog.Databases(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"information_schema", "shop", "wp_blog"}, names)

	require.NoError(t, catalog.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalog_CountTables(t *testing.T) {
	catalog, mock := newMockCatalog(t)

	rows := sqlmock.NewRows([]string{"Tables_in_shop"})
	for i := 0; i < 12; i++ {
		rows.AddRow("table_" + string(rune('a'+i)))
	}
	mock.ExpectExec(regexp.QuoteMeta("USE `shop`")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SHOW TABLES")).WillReturnRows(rows)

	count, err := catalog.CountTables(context.Background(), "shop")
	require.NoError(t, err)
	assert.Equal(t, 12, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalog_CountTables_UseFails(t *testing.T) {
	catalog, mock := newMockCatalog(t)

	mock.ExpectExec(regexp.QuoteMeta("USE `locked`")).WillReturnError(errors.New("access denied"))

	count, err := catalog.CountTables(context.Background(), "locked")
	assert.Error(t, err)
	assert.Zero(t, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalog_SizeBytes(t *testing.T) {
	testCases := []struct {
		name     string
		value    interface{}
		expected float64
	}{
		{name: "summed size", value: int64(4194304), expected: 4194304},
		{name: "no metadata", value: nil, expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			catalog, mock := newMockCatalog(t)

			mock.ExpectQuery(regexp.QuoteMeta(sizeQuery)).
				WithArgs("shop").
				WillReturnRows(sqlmock.NewRows([]string{"size"}).AddRow(tc.value))

			size, err := catalog.SizeBytes(context.Background(), "shop")
			require.NoError(t, err)
			assert.Equal(t, tc.expected, size)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCatalog_ServerVersion(t *testing.T) {
	catalog, mock := newMockCatalog(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT VERSION()")).
		WillReturnRows(sqlmock.NewRows([]string{"VERSION()"}).AddRow("8.0.36"))

	version, err := catalog.ServerVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "8.0.36", version)
}

func TestOpen_Unreachable(t *testing.T) {
	creds := Credentials{Host: "127.0.0.1", Port: "1", User: "root", Timeout: time.Second}

	catalog, err := Open(context.Background(), creds)
	assert.Error(t, err)
	assert.Nil(t, catalog)
}

func TestCredentials(t *testing.T) {
	creds := Credentials{Host: "localhost", Port: "3366", User: "root", Password: "s3cret", Timeout: 2 * time.Second}

	dsn := creds.DSN()
	assert.True(t, strings.HasPrefix(dsn, "root:s3cret@tcp(localhost:3366)/"), dsn)
	assert.Contains(t, dsn, "timeout=2s")
	assert.Contains(t, dsn, "readTimeout=2s")

	assert.Equal(t, "root@localhost:3366", creds.String())
	assert.NotContains(t, creds.String(), "s3cret")
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, "`shop`", quoteIdentifier("shop"))
	assert.Equal(t, "`we``ird`", quoteIdentifier("we`ird"))
}
