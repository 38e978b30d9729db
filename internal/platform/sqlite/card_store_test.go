package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/kanacards/internal/domain"
	"github.com/phrazzld/kanacards/internal/domain/srs"
	"github.com/phrazzld/kanacards/internal/platform/logger"
	"github.com/phrazzld/kanacards/internal/platform/sqlite"
	"github.com/phrazzld/kanacards/internal/store"
	"github.com/phrazzld/kanacards/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func kana(s string) *string { return &s }

// newTestStore opens a migrated in-memory database.
func newTestStore(t *testing.T) (*sql.DB, store.CardStore) {
	t.Helper()

	log, _ := logger.GetTestLogger(t)
	db := testdb.OpenSQLite(t)

	return db, sqlite.NewSQLiteCardStore(db, log)
}

func TestCardStoreRoundTrip(t *testing.T) {
	t.Parallel()
	_, cards := newTestStore(t)
	ctx := context.Background()

	card := &domain.Card{
		ID:           "猫",
		EaseFactor:   2.2234,
		Interval:     16,
		Repetition:   3,
		DueDate:      day("2024-01-24"),
		CorrectCount: 7,
		WrongCount:   2,
		Kana:         kana("ねこ"),
	}
	require.NoError(t, cards.Create(ctx, card))

	got, err := cards.Get(ctx, "猫")
	require.NoError(t, err)
	assert.Equal(t, card.ID, got.ID)
	assert.Equal(t, 2.2234, got.EaseFactor)
	assert.Equal(t, 16, got.Interval)
	assert.Equal(t, 3, got.Repetition)
	assert.True(t, day("2024-01-24").Equal(got.DueDate), "due date %v", got.DueDate)
	assert.Equal(t, 7, got.CorrectCount)
	assert.Equal(t, 2, got.WrongCount)
	require.NotNil(t, got.Kana)
	assert.Equal(t, "ねこ", *got.Kana)
}

func TestCardStoreCreateDuplicate(t *testing.T) {
	t.Parallel()
	_, cards := newTestStore(t)
	ctx := context.Background()

	card, err := domain.NewCard("犬", day("2024-01-01"))
	require.NoError(t, err)
	require.NoError(t, cards.Create(ctx, card))

	err = cards.Create(ctx, card)
	assert.ErrorIs(t, err, store.ErrCardExists)
	assert.True(t, store.IsDuplicateError(err))
}

func TestCardStoreCreateInvalid(t *testing.T) {
	t.Parallel()
	_, cards := newTestStore(t)

	err := cards.Create(context.Background(), &domain.Card{ID: " ", EaseFactor: 2.5, DueDate: day("2024-01-01")})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.ErrorIs(t, err, domain.ErrEmptyCardID)
}

func TestCardStoreCreateIfAbsentNeverOverwrites(t *testing.T) {
	t.Parallel()
	_, cards := newTestStore(t)
	ctx := context.Background()

	original := &domain.Card{ID: "鳥", EaseFactor: 1.9, Interval: 6, Repetition: 2, DueDate: day("2024-02-01")}
	inserted, err := cards.CreateIfAbsent(ctx, original)
	require.NoError(t, err)
	assert.True(t, inserted)

	fresh, err := domain.NewCard("鳥", day("2024-03-01"))
	require.NoError(t, err)
	inserted, err = cards.CreateIfAbsent(ctx, fresh)
	require.NoError(t, err)
	assert.False(t, inserted)

	got, err := cards.Get(ctx, "鳥")
	require.NoError(t, err)
	assert.Equal(t, 1.9, got.EaseFactor)
	assert.Equal(t, 6, got.Interval)
	assert.True(t, day("2024-02-01").Equal(got.DueDate))
}

func TestCardStoreNotFound(t *testing.T) {
	t.Parallel()
	_, cards := newTestStore(t)
	ctx := context.Background()

	_, err := cards.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrCardNotFound)

	err = cards.Update(ctx, &domain.Card{ID: "missing", EaseFactor: 2.5, DueDate: day("2024-01-01")})
	assert.ErrorIs(t, err, store.ErrCardNotFound)

	assert.ErrorIs(t, cards.UpdateKana(ctx, "missing", kana("x")), store.ErrCardNotFound)
	assert.ErrorIs(t, cards.Delete(ctx, "missing"), store.ErrCardNotFound)
}

func TestCardStoreUpdatePersistsVerbatim(t *testing.T) {
	t.Parallel()
	_, cards := newTestStore(t)
	ctx := context.Background()

	card, err := domain.NewCard("魚", day("2024-01-01"))
	require.NoError(t, err)
	require.NoError(t, cards.Create(ctx, card))

	// A negative interval can come out of a repaired record; the store keeps it.
	card.Interval = -8
	card.Repetition = 6
	card.EaseFactor = 1.3
	card.DueDate = day("2024-01-11")
	card.WrongCount = 4
	require.NoError(t, cards.Update(ctx, card))

	got, err := cards.Get(ctx, "魚")
	require.NoError(t, err)
	assert.Equal(t, -8, got.Interval)
	assert.Equal(t, 6, got.Repetition)
	assert.Equal(t, 1.3, got.EaseFactor)
	assert.Equal(t, 4, got.WrongCount)
	assert.True(t, day("2024-01-11").Equal(got.DueDate))
	assert.Nil(t, got.Kana)
}

func TestCardStoreUpdateKana(t *testing.T) {
	t.Parallel()
	_, cards := newTestStore(t)
	ctx := context.Background()

	card, err := domain.NewCard("水", day("2024-01-01"))
	require.NoError(t, err)
	require.NoError(t, cards.Create(ctx, card))

	require.NoError(t, cards.UpdateKana(ctx, "水", kana("みず")))
	got, err := cards.Get(ctx, "水")
	require.NoError(t, err)
	assert.Equal(t, "みず", got.KanaOrEmpty())

	require.NoError(t, cards.UpdateKana(ctx, "水", nil))
	got, err = cards.Get(ctx, "水")
	require.NoError(t, err)
	assert.Nil(t, got.Kana)
}

func TestCardStoreDelete(t *testing.T) {
	t.Parallel()
	_, cards := newTestStore(t)
	ctx := context.Background()

	card, err := domain.NewCard("火", day("2024-01-01"))
	require.NoError(t, err)
	require.NoError(t, cards.Create(ctx, card))

	require.NoError(t, cards.Delete(ctx, "火"))
	_, err = cards.Get(ctx, "火")
	assert.ErrorIs(t, err, store.ErrCardNotFound)
}

func TestCardStoreListDueAndCount(t *testing.T) {
	t.Parallel()
	_, cards := newTestStore(t)
	ctx := context.Background()

	for _, c := range []struct {
		id  string
		due string
	}{
		{"c", "2024-01-05"},
		{"a", "2024-01-03"},
		{"b", "2024-01-05"},
		{"d", "2024-01-06"},
		{"e", "2023-12-31"},
	} {
		card, err := domain.NewCard(c.id, day(c.due))
		require.NoError(t, err)
		require.NoError(t, cards.Create(ctx, card))
	}

	due, err := cards.ListDue(ctx, day("2024-01-05"), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"e", "a", "b", "c"}, ids(due))

	limited, err := cards.ListDue(ctx, day("2024-01-05"), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"e", "a"}, ids(limited))

	none, err := cards.ListDue(ctx, day("2023-01-01"), 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := cards.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"e", "a", "b", "c", "d"}, ids(all))

	n, err := cards.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestCardStoreFarFutureDueDates(t *testing.T) {
	t.Parallel()
	_, cards := newTestStore(t)
	ctx := context.Background()
	scheduler := srs.NewDefaultService()
	today := day("2024-01-01")

	mature, err := scheduler.Initialize("猫", today)
	require.NoError(t, err)
	for i := 0; i < 14; i++ {
		mature, err = scheduler.Review(mature, 5, today)
		require.NoError(t, err)
	}
	require.NoError(t, cards.Create(ctx, mature))

	fresh, err := domain.NewCard("犬", day("9000-06-01"))
	require.NoError(t, err)
	require.NoError(t, cards.Create(ctx, fresh))

	got, err := cards.Get(ctx, "猫")
	require.NoError(t, err)
	assert.Equal(t, domain.MaxInterval, got.Interval)
	assert.True(t, domain.MaxDate.Equal(got.DueDate), "due date %v", got.DueDate)

	locked, err := cards.GetForUpdate(ctx, "猫")
	require.NoError(t, err)
	assert.Equal(t, got, locked)

	due, err := cards.ListDue(ctx, domain.MaxDate, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"犬", "猫"}, ids(due))

	all, err := cards.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"犬", "猫"}, ids(all))

	beyond := got.Clone()
	beyond.DueDate = domain.MaxDate.AddDate(0, 0, 1)
	err = cards.Update(ctx, beyond)
	assert.ErrorIs(t, err, domain.ErrDueDateOutOfRange)
}

func TestCardStoreWithTxRollsBack(t *testing.T) {
	t.Parallel()
	db, cards := newTestStore(t)
	ctx := context.Background()

	card, err := domain.NewCard("山", day("2024-01-01"))
	require.NoError(t, err)
	require.NoError(t, cards.Create(ctx, card))

	errAbort := errors.New("abort")
	err = store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		txCards := cards.WithTx(tx)
		locked, err := txCards.GetForUpdate(ctx, "山")
		if err != nil {
			return err
		}
		locked.Interval = 99
		if err := txCards.Update(ctx, locked); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	got, err := cards.Get(ctx, "山")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Interval)
}

func TestCardStoreSerializesTransactions(t *testing.T) {
	t.Parallel()
	db, cards := newTestStore(t)
	ctx := context.Background()

	card, err := domain.NewCard("川", day("2024-01-01"))
	require.NoError(t, err)
	require.NoError(t, cards.Create(ctx, card))

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
				txCards := cards.WithTx(tx)
				c, err := txCards.GetForUpdate(ctx, "川")
				if err != nil {
					return err
				}
				c.CorrectCount++
				return txCards.Update(ctx, c)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := cards.Get(ctx, "川")
	require.NoError(t, err)
	assert.Equal(t, workers, got.CorrectCount)
}

func ids(cards []*domain.Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.ID)
	}
	return out
}
