// Package store persists document metadata in a badger database. It keeps two
// logical tables, documents (id -> encoded document) and hashes
// (content hash -> id), plus a persistent sequence that hands out ids.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/document"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/errors"
)

var (
	documentsPrefix = []byte("documents/")
	hashesPrefix    = []byte("hashes/")
	sequenceKey     = []byte("meta/next-id")
)

// Store is the durable source of truth for the library. It is not safe for
// concurrent writers; the library layer serialises mutations.
type Store struct {
	db     *badger.DB
	seq    *badger.Sequence
	path   string
	logger *slog.Logger
}

// Open opens or creates the store rooted at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, ioErr("creating store directory "+path, err)
	}
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithSyncWrites(true)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, ioErr("opening store at "+path, err)
	}
	seq, err := db.GetSequence(sequenceKey, 1)
	if err != nil {
		db.Close()
		return nil, ioErr("opening id sequence", err)
	}
	s := &Store{
		db:     db,
		seq:    seq,
		path:   path,
		logger: slog.Default().With("component", "store", "path", path),
	}
	s.logger.Debug("store opened")
	return s, nil
}

// Get returns the document stored under id.
func (s *Store) Get(id document.ID) (document.Document, error) {
	var doc document.Document
	err := s.db.View(func(txn *badger.Txn) error {
		raw, err := getValue(txn, documentKey(id))
		if err != nil {
			return err
		}
		doc, err = document.Decode(raw)
		return err
	})
	if err != nil {
		return doc, fmt.Errorf("getting document %s: %w", id, err)
	}
	return doc, nil
}

// Insert stores doc under a freshly allocated id. It fails with
// ErrDuplicateContent when another stored document has the same hash. Both
// table writes happen in one transaction.
func (s *Store) Insert(doc *document.Document) (document.ID, error) {
	var id document.ID
	err := s.db.Update(func(txn *badger.Txn) error {
		existing, err := liveHashTarget(txn, doc.Hash)
		switch {
		case err == nil:
			return fmt.Errorf("%w: the document with title %q cannot be inserted because the hash %s is already stored as %s",
				apperrors.ErrDuplicateContent, doc.Title, doc.Hash, existing)
		case !errors.Is(err, apperrors.ErrNotFound):
			return err
		}

		id, err = s.nextID()
		if err != nil {
			return err
		}
		if err := txn.Set(hashKey(doc.Hash), id[:]); err != nil {
			return ioErr("writing hash entry", err)
		}
		if err := txn.Set(documentKey(id), document.Encode(doc)); err != nil {
			return ioErr("writing document entry", err)
		}
		return nil
	})
	if err != nil {
		return document.ID{}, fmt.Errorf("inserting document: %w", err)
	}
	s.logger.Debug("document stored", "doc_id", id.String(), "hash", doc.Hash.String())
	return id, nil
}

// Remove deletes the document stored under id along with its hash entry.
// Removing an absent id succeeds without effect. A record that no longer
// decodes is still deleted; hash entries pointing at it are found by scanning.
func (s *Store) Remove(id document.ID) error {
	removed := false
	err := s.db.Update(func(txn *badger.Txn) error {
		raw, err := getValue(txn, documentKey(id))
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var hashKeys [][]byte
		if doc, err := document.Decode(raw); err == nil {
			hashKeys = [][]byte{hashKey(doc.Hash)}
		} else {
			s.logger.Warn("removing undecodable document", "doc_id", id.String(), "error", err)
			if hashKeys, err = hashKeysFor(txn, id); err != nil {
				return err
			}
		}
		if err := txn.Delete(documentKey(id)); err != nil {
			return ioErr("deleting document entry", err)
		}
		for _, key := range hashKeys {
			target, err := getValue(txn, key)
			switch {
			case errors.Is(err, apperrors.ErrNotFound):
			case err != nil:
				return err
			case string(target) == string(id[:]):
				if err := txn.Delete(key); err != nil {
					return ioErr("deleting hash entry", err)
				}
			}
		}
		removed = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("removing document %s: %w", id, err)
	}
	if removed {
		s.logger.Debug("document removed", "doc_id", id.String())
	}
	return nil
}

// hashKeysFor collects the hash entries that point at id.
func hashKeysFor(txn *badger.Txn, id document.ID) ([][]byte, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = hashesPrefix
	it := txn.NewIterator(opts)
	defer it.Close()
	var keys [][]byte
	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		matches := false
		err := item.Value(func(val []byte) error {
			matches = string(val) == string(id[:])
			return nil
		})
		if err != nil {
			return nil, ioErr("scanning hash entries", err)
		}
		if matches {
			keys = append(keys, item.KeyCopy(nil))
		}
	}
	return keys, nil
}

// Len counts the stored documents.
func (s *Store) Len() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = documentsPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, ioErr("counting documents", err)
	}
	return n, nil
}

// Path returns the directory the store lives in.
func (s *Store) Path() string {
	return s.path
}

// Close releases the id lease and closes the database.
func (s *Store) Close() error {
	var errs []error
	if err := s.seq.Release(); err != nil {
		errs = append(errs, ioErr("releasing id sequence", err))
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, ioErr("closing store", err))
	}
	return errors.Join(errs...)
}

// nextID skips zero so the first document gets id 1.
func (s *Store) nextID() (document.ID, error) {
	n, err := s.seq.Next()
	if err == nil && n == 0 {
		n, err = s.seq.Next()
	}
	if err != nil {
		return document.ID{}, ioErr("allocating document id", err)
	}
	return document.IDFromUint64(n), nil
}

// liveHashTarget resolves hash to an id whose document still exists. A hash
// entry pointing at a missing document is an orphan and reads as absent.
func liveHashTarget(txn *badger.Txn, hash document.Hash) (document.ID, error) {
	raw, err := getValue(txn, hashKey(hash))
	if err != nil {
		return document.ID{}, err
	}
	id, err := document.IDFromBytes(raw)
	if err != nil {
		return id, err
	}
	if _, err := txn.Get(documentKey(id)); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return id, fmt.Errorf("hash %s points at missing document %s: %w", hash, id, apperrors.ErrNotFound)
		}
		return id, ioErr("reading document entry", err)
	}
	return id, nil
}

func getValue(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, ioErr("reading key", err)
	}
	value, err := item.ValueCopy(nil)
	if err != nil {
		return nil, ioErr("copying value", err)
	}
	return value, nil
}

func documentKey(id document.ID) []byte {
	key := make([]byte, 0, len(documentsPrefix)+document.IDSize)
	key = append(key, documentsPrefix...)
	return append(key, id[:]...)
}

func hashKey(hash document.Hash) []byte {
	key := make([]byte, 0, len(hashesPrefix)+document.HashSize)
	key = append(key, hashesPrefix...)
	return append(key, hash[:]...)
}

func ioErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, apperrors.ErrIO, err)
}
