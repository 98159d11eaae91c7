package store

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/document"
)

// Iterator walks the documents table in id order inside one read
// transaction. Call Close when done.
//
//	it := s.Iter()
//	defer it.Close()
//	for it.Next() {
//		use(it.ID(), it.Document())
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator struct {
	txn     *badger.Txn
	it      *badger.Iterator
	started bool
	id      document.ID
	doc     document.Document
	err     error
}

// Iter returns a lazy iterator over every stored document.
func (s *Store) Iter() *Iterator {
	txn := s.db.NewTransaction(false)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = documentsPrefix
	return &Iterator{
		txn: txn,
		it:  txn.NewIterator(opts),
	}
}

// Next advances to the next record. It returns false at the end or after the
// first error; a record that fails to decode stops the iteration.
func (i *Iterator) Next() bool {
	if i.err != nil || i.it == nil {
		return false
	}
	if !i.started {
		i.it.Rewind()
		i.started = true
	} else {
		i.it.Next()
	}
	if !i.it.Valid() {
		return false
	}

	item := i.it.Item()
	key := item.KeyCopy(nil)
	id, err := document.IDFromBytes(key[len(documentsPrefix):])
	if err != nil {
		i.err = fmt.Errorf("iterating documents: %w", err)
		return false
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		i.err = ioErr("iterating documents", err)
		return false
	}
	doc, err := document.Decode(raw)
	if err != nil {
		i.err = fmt.Errorf("iterating documents at %s: %w", id, err)
		return false
	}
	i.id, i.doc = id, doc
	return true
}

func (i *Iterator) ID() document.ID {
	return i.id
}

func (i *Iterator) Document() document.Document {
	return i.doc
}

func (i *Iterator) Err() error {
	return i.err
}

// Close releases the underlying transaction. It is safe to call twice.
func (i *Iterator) Close() {
	if i.it == nil {
		return
	}
	i.it.Close()
	i.txn.Discard()
	i.it = nil
}

// ForEach calls fn for every stored document in id order, stopping at the
// first error from either the store or fn.
func (s *Store) ForEach(fn func(document.ID, document.Document) error) error {
	it := s.Iter()
	defer it.Close()
	for it.Next() {
		if err := fn(it.ID(), it.Document()); err != nil {
			return err
		}
	}
	return it.Err()
}
