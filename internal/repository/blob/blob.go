// Package blob implements the repository interfaces on a kv.Store, keeping each
// collection as one JSON-encoded blob that is rewritten on every mutation.
//
// Writes are O(n) in collection size. That is fine for the few hundred records
// a person keeps by hand; past that an indexed store is the better fit.
package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/card-keeper/internal/errs"
	"github.com/and161185/card-keeper/internal/kv"
	"github.com/and161185/card-keeper/internal/model"
)

// Persisted keys.
const (
	KeyCards      = "app_cards"
	KeySheets     = "app_excel_files"
	KeyMedia      = "app_media_files"
	KeyPIN        = "app_pin"
	KeySettings   = "app_settings"
	KeySessionKey = "app_session_key"
)

// Store is the shared state of all blob repositories: the medium, a clock and
// the write lock. The lock only orders writers inside one process; a second
// process writing the same medium is not supported.
type Store struct {
	kv  kv.Store
	log *zap.Logger
	now func() time.Time

	mu sync.Mutex
}

// Option customizes a Store.
type Option func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New wraps a medium. A nil logger is replaced by a no-op one.
func New(medium kv.Store, log *zap.Logger, opts ...Option) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{kv: medium, log: log, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Cards returns the card repository.
func (s *Store) Cards() *CardRepo { return &CardRepo{s: s} }

// Sheets returns the tabular file repository.
func (s *Store) Sheets() *SheetRepo { return &SheetRepo{s: s} }

// Media returns the media asset repository.
func (s *Store) Media() *MediaRepo { return &MediaRepo{s: s} }

// Secrets returns the PIN and session key repository.
func (s *Store) Secrets() *SecretRepo { return &SecretRepo{s: s} }

// Settings returns the settings repository.
func (s *Store) Settings() *SettingsRepo { return &SettingsRepo{s: s} }

func (s *Store) stamp() time.Time { return s.now().UTC() }

// newID returns a UUIDv7: a millisecond timestamp followed by random bits.
func newID() (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generate id: %w", err)
	}
	return id, nil
}

// collection describes how one entity kind is laid out in the medium.
type collection[E any] struct {
	key string
	id  func(E) uuid.UUID
}

var (
	cardColl  = collection[model.Card]{key: KeyCards, id: func(c model.Card) uuid.UUID { return c.ID }}
	sheetColl = collection[model.Sheet]{key: KeySheets, id: func(f model.Sheet) uuid.UUID { return f.ID }}
	mediaColl = collection[model.MediaAsset]{key: KeyMedia, id: func(m model.MediaAsset) uuid.UUID { return m.ID }}
)

// load reads and decodes the whole collection. A missing key is an empty list.
func (c collection[E]) load(ctx context.Context, st kv.Store) ([]E, error) {
	raw, err := st.Get(ctx, c.key)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w: %w", c.key, errs.ErrStorage, err)
	}
	var out []E
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w: %w", c.key, errs.ErrStorage, err)
	}
	return out, nil
}

// entry encodes the whole collection for writing.
func (c collection[E]) entry(list []E) (kv.Entry, error) {
	if list == nil {
		list = []E{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return kv.Entry{}, fmt.Errorf("encode %s: %w: %w", c.key, errs.ErrStorage, err)
	}
	return kv.Entry{Key: c.key, Value: b}, nil
}

// index returns the position of id in list or -1.
func (c collection[E]) index(list []E, id uuid.UUID) int {
	for i, e := range list {
		if c.id(e) == id {
			return i
		}
	}
	return -1
}

// without returns list minus the element with id, and whether one was dropped.
func (c collection[E]) without(list []E, id uuid.UUID) ([]E, bool) {
	i := c.index(list, id)
	if i < 0 {
		return list, false
	}
	out := make([]E, 0, len(list)-1)
	out = append(out, list[:i]...)
	out = append(out, list[i+1:]...)
	return out, true
}

// put writes entries and tags medium failures with ErrStorage.
func (s *Store) put(ctx context.Context, entries ...kv.Entry) error {
	if err := s.kv.Put(ctx, entries...); err != nil {
		return fmt.Errorf("persist: %w: %w", errs.ErrStorage, err)
	}
	return nil
}

// save encodes one collection and writes it.
func save[E any](ctx context.Context, s *Store, c collection[E], list []E) error {
	e, err := c.entry(list)
	if err != nil {
		return err
	}
	return s.put(ctx, e)
}
