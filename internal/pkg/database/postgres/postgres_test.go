package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDSN(t *testing.T) {
	cfg := &Config{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "shop", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=shop sslmode=disable", cfg.DSN())
}

func TestMigrationNamesAreOrdered(t *testing.T) {
	names, err := migrationNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_init.sql", names[0])
}

func TestNoopTxManager(t *testing.T) {
	called := false
	err := NoopTxManager{}.WithinTx(context.Background(), func(ctx context.Context) error {
		called = true
		return errors.New("stop")
	})
	assert.True(t, called)
	assert.EqualError(t, err, "stop")
}

func TestAfterCommitRunsOnlyOnSuccess(t *testing.T) {
	ctx := context.Background()
	var ran []string

	err := NoopTxManager{}.WithinTx(ctx, func(ctx context.Context) error {
		AfterCommit(ctx, func(context.Context) { ran = append(ran, "outer") })
		return NoopTxManager{}.WithinTx(ctx, func(ctx context.Context) error {
			AfterCommit(ctx, func(context.Context) { ran = append(ran, "nested") })
			assert.Empty(t, ran, "hooks wait for the outermost transaction")
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "nested"}, ran)

	ran = nil
	err = NoopTxManager{}.WithinTx(ctx, func(ctx context.Context) error {
		AfterCommit(ctx, func(context.Context) { ran = append(ran, "rolled back") })
		return errors.New("stop")
	})
	require.Error(t, err)
	assert.Empty(t, ran)

	AfterCommit(ctx, func(context.Context) { ran = append(ran, "no tx") })
	assert.Equal(t, []string{"no tx"}, ran)
}
