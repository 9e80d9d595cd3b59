package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoinsys/viite/internal/common"
	"github.com/avoinsys/viite/internal/model"
)

func TestSavePartner(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips identifiers", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		partner := &model.Partner{
			Name:        "ACME OY",
			CountryCode: "FI",
			IDNumbers: []model.IDNumber{
				{Category: model.IDNumberBusinessID, Value: "1234567-1"},
				{Category: "ovt", Value: "003712345671"},
			},
		}
		require.NoError(t, store.SavePartner(ctx, partner))
		require.NotZero(t, partner.ID)

		got, err := store.GetPartner(ctx, partner.ID)
		require.NoError(t, err)
		assert.Equal(t, "ACME OY", got.Name)
		assert.Equal(t, "FI", got.CountryCode)
		assert.Equal(t, "1234567-1", got.BusinessID())
		assert.Len(t, got.IDNumbers, 2)
	})

	t.Run("update rewrites identifier collection", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		partner := &model.Partner{
			Name: "ACME OY",
			IDNumbers: []model.IDNumber{
				{Category: model.IDNumberBusinessID, Value: "1234567-1"},
			},
		}
		require.NoError(t, store.SavePartner(ctx, partner))

		partner.Name = "ACME Group OY"
		partner.SetBusinessID("0000001-9")
		require.NoError(t, store.SavePartner(ctx, partner))

		got, err := store.GetPartner(ctx, partner.ID)
		require.NoError(t, err)
		assert.Equal(t, "ACME Group OY", got.Name)
		assert.Equal(t, "0000001-9", got.BusinessID())
		assert.Len(t, got.IDNumbers, 1)
	})

	t.Run("missing partner returns not found", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		_, err := store.GetPartner(ctx, 404)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}
