package repo

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talx-hub/gopher-cashback/internal/model/parameters"
	"github.com/talx-hub/gopher-cashback/internal/serviceerrs"
)

func TestParametersRepository_Get(t *testing.T) {
	repo, ctx, cancel, _ := setupRepo(t, NewParametersRepository)
	defer cancel()

	p, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.True(t, p.IsCashbackActive)
	assert.True(t, decimal.RequireFromString("0.10").Equal(p.RedemptionLimit))
	assert.True(t, decimal.RequireFromString("0.05").Equal(p.ReturnRate))
}

func TestParametersRepository_Update(t *testing.T) {
	repo, ctx, cancel, _ := setupRepo(t, NewParametersRepository)
	defer cancel()

	inactive := false
	rate := decimal.RequireFromString("0.075")
	updated, err := repo.Update(ctx, parameters.Patch{
		IsCashbackActive: &inactive,
		ReturnRate:       &rate,
	})
	require.NoError(t, err)
	assert.False(t, updated.IsCashbackActive)
	assert.True(t, rate.Equal(updated.ReturnRate))
	assert.True(t, decimal.RequireFromString("0.10").Equal(updated.RedemptionLimit))

	stored, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, updated.IsCashbackActive, stored.IsCashbackActive)
	assert.True(t, updated.ReturnRate.Equal(stored.ReturnRate))
	assert.True(t, updated.RedemptionLimit.Equal(stored.RedemptionLimit))
}

func TestParametersRepository_notConfigured(t *testing.T) {
	repo, ctx, cancel, pool := setupRepo(t, NewParametersRepository)
	defer cancel()

	_, err := pool.Exec(ctx, `DELETE FROM parameters`)
	require.NoError(t, err)
	defer func() {
		_, err := pool.Exec(ctx, `INSERT INTO parameters (id) VALUES (1)`)
		require.NoError(t, err)
	}()

	_, err = repo.Get(ctx)
	assert.ErrorIs(t, err, serviceerrs.ErrNotConfigured)

	_, err = repo.Update(ctx, parameters.Patch{})
	assert.ErrorIs(t, err, serviceerrs.ErrNotConfigured)
}
