package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// Storage keys
const (
	archivePrefix = "archive:"
	previewPrefix = "preview:"
)

var (
	ErrArchiveNotFound    = errors.New("archive not found")
	ErrInvalidArchiveName = errors.New("invalid archive name")
)

var archiveName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)

// Archive is a saved game. State is the JSON projection at save time, kept verbatim
// so loading it returns exactly what was saved; PGN is what a restore replays.
type Archive struct {
	Name    string          `json:"name"`
	RoomID  string          `json:"roomId"`
	SavedAt time.Time       `json:"savedAt"`
	PGN     string          `json:"pgn"`
	State   json.RawMessage `json:"state"`
}

// Options configure where the store lives.
type Options struct {
	Dir      string
	InMemory bool
}

// Store wraps BadgerDB for archive persistence
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the archive database. Badger's own logging is routed to log.
func Open(o Options, log zerolog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(o.Dir)
	if o.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = badgerLogger{log: log.With().Str("component", "badger").Logger()}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open archive store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func ValidateName(name string) error {
	if !archiveName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidArchiveName, name)
	}
	return nil
}

// Save writes the archive and its PNG screenshot. An existing archive of the same name is
// overwritten, and an empty preview removes the old one.
func (s *Store) Save(a *Archive, preview []byte) error {
	if err := ValidateName(a.Name); err != nil {
		return err
	}
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(archivePrefix+a.Name), data); err != nil {
			return err
		}
		if len(preview) == 0 {
			return txn.Delete([]byte(previewPrefix + a.Name))
		}
		return txn.Set([]byte(previewPrefix+a.Name), preview)
	})
}

// Load returns the archive saved under name
func (s *Store) Load(name string) (*Archive, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	var a Archive
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(archivePrefix + name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrArchiveNotFound, name)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &a)
		})
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Preview returns the PNG saved with the archive.
func (s *Store) Preview(name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	var png []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(previewPrefix + name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: no preview for %s", ErrArchiveNotFound, name)
		}
		if err != nil {
			return err
		}
		png, err = item.ValueCopy(nil)
		return err
	})
	return png, err
}

// List returns archive names in lexical order.
func (s *Store) List() ([]string, error) {
	names := []string{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		prefix := []byte(archivePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), archivePrefix))
		}
		return nil
	})
	return names, err
}

// Delete removes the archive together with its preview.
func (s *Store) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(archivePrefix + name)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrArchiveNotFound, name)
		} else if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete([]byte(previewPrefix + name))
	})
}

// badgerLogger adapts zerolog to badger.Logger, one level down for info and debug.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Trace().Msgf(strings.TrimSpace(format), args...)
}
