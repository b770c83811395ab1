package blob

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/card-keeper/internal/errs"
	"github.com/and161185/card-keeper/internal/kv"
	"github.com/and161185/card-keeper/internal/kv/memory"
	"github.com/and161185/card-keeper/internal/model"
)

// flakyKV fails Put while failPut is set.
type flakyKV struct {
	*memory.Store
	failPut atomic.Bool
}

func (f *flakyKV) Put(ctx context.Context, entries ...kv.Entry) error {
	if f.failPut.Load() {
		return errors.New("disk full")
	}
	return f.Store.Put(ctx, entries...)
}

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T) (*Store, *flakyKV) {
	t.Helper()
	medium := &flakyKV{Store: memory.New()}
	clock := t0
	s := New(medium, zaptest.NewLogger(t), WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))
	return s, medium
}

func cardIn(id, code string) model.CardInput {
	return model.CardInput{
		Identifier:    id,
		Code:          code,
		FirstName:     "Ann",
		Surname:       "Lee",
		City:          "Rome",
		Identity:      "passport",
		Gender:        model.GenderFemale,
		MaritalStatus: model.MaritalSingle,
	}
}

func TestCards_CreateGetList(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	cards := s.Cards()

	list, err := cards.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	a, err := cards.Create(ctx, cardIn("001", "ABC"))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, a.ID)
	require.Equal(t, t0.Add(time.Minute), a.CreatedAt)

	b, err := cards.Create(ctx, cardIn("002", "DEF"))
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)

	got, err := cards.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, a, got)

	list, err = cards.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, a.ID, list[0].ID)
	require.Equal(t, b.ID, list[1].ID)

	_, err = cards.Get(ctx, uuid.Must(uuid.NewV4()))
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCards_StoreDoesNotEnforceUniqueness(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, err := s.Cards().Create(ctx, cardIn("001", "ABC"))
	require.NoError(t, err)
	_, err = s.Cards().Create(ctx, cardIn("001", "ABC"))
	require.NoError(t, err)

	list, err := s.Cards().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestCards_UpdateKeepsIDAndCreatedAt(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	c, err := s.Cards().Create(ctx, cardIn("001", "ABC"))
	require.NoError(t, err)

	city := "Oslo"
	up, err := s.Cards().Update(ctx, c.ID, model.CardPatch{City: &city})
	require.NoError(t, err)
	require.Equal(t, c.ID, up.ID)
	require.Equal(t, c.CreatedAt, up.CreatedAt)
	require.Equal(t, "Oslo", up.City)
	require.Equal(t, c.Identifier, up.Identifier)

	_, err = s.Cards().Update(ctx, uuid.Must(uuid.NewV4()), model.CardPatch{City: &city})
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCards_DeleteCascadesExactlyOwnedMedia(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	a, err := s.Cards().Create(ctx, cardIn("001", "ABC"))
	require.NoError(t, err)
	b, err := s.Cards().Create(ctx, cardIn("002", "DEF"))
	require.NoError(t, err)

	for _, owner := range []uuid.UUID{a.ID, b.ID, a.ID} {
		_, err := s.Media().Create(ctx, model.MediaInput{CardID: owner, Name: "x.png", Kind: model.MediaImage, Data: "data:image/png;base64,AA=="})
		require.NoError(t, err)
	}

	ok, err := s.Cards().Delete(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, ok)

	all, err := s.Media().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, b.ID, all[0].CardID)

	ok, err = s.Cards().Delete(ctx, a.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCards_DeleteFailureChangesNothing(t *testing.T) {
	s, medium := newStore(t)
	ctx := context.Background()

	c, err := s.Cards().Create(ctx, cardIn("001", "ABC"))
	require.NoError(t, err)
	_, err = s.Media().Create(ctx, model.MediaInput{CardID: c.ID, Name: "v.mp4", Kind: model.MediaVideo, Data: "data:video/mp4;base64,AA=="})
	require.NoError(t, err)

	medium.failPut.Store(true)
	_, err = s.Cards().Delete(ctx, c.ID)
	require.ErrorIs(t, err, errs.ErrStorage)
	medium.failPut.Store(false)

	_, err = s.Cards().Get(ctx, c.ID)
	require.NoError(t, err)
	owned, err := s.Media().ListByCard(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
}

func TestCards_CreateFailureLeavesStateUnchanged(t *testing.T) {
	s, medium := newStore(t)
	ctx := context.Background()

	medium.failPut.Store(true)
	_, err := s.Cards().Create(ctx, cardIn("001", "ABC"))
	require.ErrorIs(t, err, errs.ErrStorage)
	medium.failPut.Store(false)

	list, err := s.Cards().List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestStore_CorruptBlobIsStorageError(t *testing.T) {
	s, medium := newStore(t)
	ctx := context.Background()
	require.NoError(t, medium.Store.Put(ctx, kv.Entry{Key: KeyCards, Value: []byte("{not json")}))

	_, err := s.Cards().List(ctx)
	require.ErrorIs(t, err, errs.ErrStorage)
}

func TestSheets_CRUD(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	sheets := s.Sheets()

	data := [][]string{{"a", "b"}, {"c", "d"}}
	f, err := sheets.Create(ctx, model.SheetInput{Name: "budget.xlsx", Data: data})
	require.NoError(t, err)
	require.Equal(t, t0.Add(time.Minute), f.LastModified)

	data[0][0] = "mutated"
	got, err := sheets.Get(ctx, f.ID)
	require.NoError(t, err)
	require.Equal(t, "a", got.Data[0][0])

	name := "plan.xlsx"
	up, err := sheets.Update(ctx, f.ID, model.SheetPatch{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "plan.xlsx", up.Name)
	require.Equal(t, got.Data, up.Data)
	require.True(t, up.LastModified.After(f.LastModified))

	_, err = sheets.Update(ctx, f.ID, model.SheetPatch{Data: [][]string{{"a"}, {"b", "c"}}})
	require.ErrorIs(t, err, errs.ErrInvalid)

	_, err = sheets.Create(ctx, model.SheetInput{Name: "bad.xlsx", Data: [][]string{{"a", "b"}, {"c"}}})
	require.ErrorIs(t, err, errs.ErrInvalid)
	_, err = sheets.Create(ctx, model.SheetInput{Name: "hollow.xlsx", Data: [][]string{{}}})
	require.ErrorIs(t, err, errs.ErrInvalid)
	_, err = sheets.Update(ctx, f.ID, model.SheetPatch{Data: [][]string{{}, {}}})
	require.ErrorIs(t, err, errs.ErrInvalid)

	ok, err := sheets.Delete(ctx, f.ID)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = sheets.Delete(ctx, f.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMedia_OwnerAndKindChecked(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, err := s.Media().Create(ctx, model.MediaInput{CardID: uuid.Must(uuid.NewV4()), Name: "x", Kind: model.MediaImage})
	require.ErrorIs(t, err, errs.ErrNotFound)

	c, err := s.Cards().Create(ctx, cardIn("001", "ABC"))
	require.NoError(t, err)
	_, err = s.Media().Create(ctx, model.MediaInput{CardID: c.ID, Name: "x", Kind: "audio"})
	require.ErrorIs(t, err, errs.ErrInvalid)

	a, err := s.Media().Create(ctx, model.MediaInput{CardID: c.ID, Name: "x.png", Kind: model.MediaImage, Data: "payload"})
	require.NoError(t, err)
	got, err := s.Media().Get(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "payload", got.Data)

	ok, err := s.Media().Delete(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, ok)
	_, err = s.Media().Get(ctx, a.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSecrets_PINAndSessionKey(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	sec := s.Secrets()

	rec, err := sec.PIN(ctx)
	require.NoError(t, err)
	require.True(t, rec.Empty())

	want := model.PINRecord{Hash: []byte{1, 2, 3}, Salt: []byte{4, 5}}
	require.NoError(t, sec.SetPIN(ctx, want))
	rec, err = sec.PIN(ctx)
	require.NoError(t, err)
	require.Equal(t, want, rec)

	k1, err := sec.SessionKey(ctx)
	require.NoError(t, err)
	require.Len(t, k1, sessionKeyLen)
	k2, err := sec.SessionKey(ctx)
	require.NoError(t, err)
	require.Equal(t, k1, k2)

	k3, err := sec.RotateSessionKey(ctx)
	require.NoError(t, err)
	require.NotEqual(t, k1, k3)
	k4, err := sec.SessionKey(ctx)
	require.NoError(t, err)
	require.Equal(t, k3, k4)
}

func TestSecrets_ReplacePINIsAtomic(t *testing.T) {
	s, medium := newStore(t)
	ctx := context.Background()
	sec := s.Secrets()

	k1, err := sec.SessionKey(ctx)
	require.NoError(t, err)

	medium.failPut.Store(true)
	_, err = sec.ReplacePIN(ctx, model.PINRecord{Hash: []byte{9}, Salt: []byte{8}})
	require.ErrorIs(t, err, errs.ErrStorage)
	medium.failPut.Store(false)

	rec, err := sec.PIN(ctx)
	require.NoError(t, err)
	require.True(t, rec.Empty())
	k, err := sec.SessionKey(ctx)
	require.NoError(t, err)
	require.Equal(t, k1, k)

	want := model.PINRecord{Hash: []byte{9}, Salt: []byte{8}}
	k2, err := sec.ReplacePIN(ctx, want)
	require.NoError(t, err)
	require.Len(t, k2, sessionKeyLen)
	require.NotEqual(t, k1, k2)
	rec, err = sec.PIN(ctx)
	require.NoError(t, err)
	require.Equal(t, want, rec)
	k, err = sec.SessionKey(ctx)
	require.NoError(t, err)
	require.Equal(t, k2, k)
}

func TestSettings_DefaultAndSave(t *testing.T) {
	s, medium := newStore(t)
	ctx := context.Background()

	st, err := s.Settings().Settings(ctx)
	require.NoError(t, err)
	require.False(t, st.DarkMode)

	require.NoError(t, s.Settings().SaveSettings(ctx, model.Settings{DarkMode: true}))
	st, err = s.Settings().Settings(ctx)
	require.NoError(t, err)
	require.True(t, st.DarkMode)

	medium.failPut.Store(true)
	require.ErrorIs(t, s.Settings().SaveSettings(ctx, model.Settings{}), errs.ErrStorage)
}
