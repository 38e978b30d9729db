package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/phrazzld/kanacards/internal/domain"
	"github.com/phrazzld/kanacards/internal/platform/postgres"
	"github.com/phrazzld/kanacards/internal/store"
	"github.com/phrazzld/kanacards/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresCardStore(t *testing.T) {
	db := testdb.OpenPostgres(t)
	ctx := context.Background()
	due := time.Date(2024, 1, 24, 0, 0, 0, 0, time.UTC)
	kana := "ねこ"

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		cards := postgres.NewPostgresCardStore(tx, nil)

		card := &domain.Card{
			ID:           "猫",
			EaseFactor:   2.8,
			Interval:     16,
			Repetition:   3,
			DueDate:      due,
			CorrectCount: 3,
			Kana:         &kana,
		}
		require.NoError(t, cards.Create(ctx, card))

		// A failed statement aborts the transaction; contain it.
		_, err := tx.ExecContext(ctx, "SAVEPOINT duplicate")
		require.NoError(t, err)
		assert.ErrorIs(t, cards.Create(ctx, card), store.ErrCardExists)
		_, err = tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT duplicate")
		require.NoError(t, err)

		got, err := cards.GetForUpdate(ctx, "猫")
		require.NoError(t, err)
		assert.Equal(t, 2.8, got.EaseFactor)
		assert.Equal(t, 16, got.Interval)
		assert.True(t, due.Equal(got.DueDate))
		assert.Equal(t, "ねこ", got.KanaOrEmpty())

		dueCards, err := cards.ListDue(ctx, due, 0)
		require.NoError(t, err)
		found := false
		for _, c := range dueCards {
			found = found || c.ID == "猫"
		}
		assert.True(t, found, "inserted card should be due")

		require.NoError(t, cards.Delete(ctx, "猫"))
		_, err = cards.Get(ctx, "猫")
		assert.ErrorIs(t, err, store.ErrCardNotFound)
	})
}
