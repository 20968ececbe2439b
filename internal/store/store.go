// Package store persists the bulletin corpus and its field indexes in a
// single BoltDB file.
package store

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RoaringBitmap/roaring"
	"github.com/boltdb/bolt"
	"github.com/golang/snappy"

	"harshagw/bulletins/internal/document"
	"harshagw/bulletins/internal/index"
)

// FileName is the database file created inside the data directory.
const FileName = "bulletins.db"

// ErrNotFound is returned when a document id is not stored.
var ErrNotFound = errors.New("document not found")

var (
	bucketDocuments = []byte("documents")
	bucketDocTable  = []byte("doctable")
	bucketFields    = []byte("fields")
	bucketMeta      = []byte("meta")
	keyEpoch        = []byte("epoch")
)

// Store provides persistent storage for documents and postings.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the store in dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	db, err := bolt.Open(filepath.Join(dir, FileName), 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketDocuments, bucketDocTable, bucketFields, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores docs in one transaction, replacing documents with the same id.
func (s *Store) Put(docs ...*document.Document) error {
	return s.Update(func(tx *Tx) error {
		for _, d := range docs {
			if err := tx.Put(d); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get returns the stored document id.
func (s *Store) Get(id string) (*document.Document, error) {
	var doc *document.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketDocuments).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		var err error
		doc, err = decodeDocument(data)
		return err
	})
	return doc, err
}

// Delete removes document id. Persisted postings are left untouched until
// the next SaveIndex.
func (s *Store) Delete(id string) error {
	return s.Update(func(tx *Tx) error {
		return tx.Delete(id)
	})
}

// All loads every stored document.
func (s *Store) All() (document.Collection, error) {
	docs := make(document.Collection)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDocuments).ForEach(func(k, v []byte) error {
			doc, err := decodeDocument(v)
			if err != nil {
				return fmt.Errorf("document %s: %w", k, err)
			}
			docs.Add(doc)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Len returns the number of stored documents.
func (s *Store) Len() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketDocuments).Stats().KeyN
		return nil
	})
	return n, err
}

// SaveIndex replaces the persisted document table and field postings.
func (s *Store) SaveIndex(table *index.DocTable, fields index.Fields) error {
	return s.Update(func(tx *Tx) error {
		if err := tx.SetDocTable(table); err != nil {
			return err
		}
		return tx.SetFields(fields)
	})
}

// LoadIndex reads back what SaveIndex wrote. A store that never saved an
// index yields an empty table and no fields.
func (s *Store) LoadIndex() (*index.DocTable, index.Fields, error) {
	table := index.NewDocTable()
	fields := make(index.Fields)
	err := s.db.View(func(tx *bolt.Tx) error {
		err := tx.Bucket(bucketDocTable).ForEach(func(k, v []byte) error {
			if want := binary.BigEndian.Uint32(k); table.Add(string(v)) != want {
				return fmt.Errorf("document table: gap before number %d", want)
			}
			return nil
		})
		if err != nil {
			return err
		}
		return tx.Bucket(bucketFields).ForEach(func(name, _ []byte) error {
			ix := index.New(table)
			err := tx.Bucket(bucketFields).Bucket(name).ForEach(func(token, data []byte) error {
				bm := roaring.New()
				if _, err := bm.ReadFrom(bytes.NewReader(data)); err != nil {
					return fmt.Errorf("field %s token %q: %w", name, token, err)
				}
				ix.Set(string(token), bm)
				return nil
			})
			if err != nil {
				return err
			}
			fields[string(name)] = ix
			return nil
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return table, fields, nil
}

// Epoch returns the number of committed write transactions.
func (s *Store) Epoch() (uint64, error) {
	var epoch uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(keyEpoch)
		if data == nil {
			return nil
		}
		epoch = binary.BigEndian.Uint64(data)
		return nil
	})
	return epoch, err
}

// Update runs fn within a write transaction and bumps the epoch.
func (s *Store) Update(fn func(*Tx) error) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		t := &Tx{tx: tx}
		if err := fn(t); err != nil {
			return err
		}
		_, err := t.incrementEpoch()
		return err
	})
}

// Tx provides write operations within a transaction.
type Tx struct {
	tx *bolt.Tx
}

// Put stores one document.
func (t *Tx) Put(doc *document.Document) error {
	if doc == nil || doc.ID == "" {
		return errors.New("document without id")
	}
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	return t.tx.Bucket(bucketDocuments).Put([]byte(doc.ID), data)
}

// Delete removes one document.
func (t *Tx) Delete(id string) error {
	b := t.tx.Bucket(bucketDocuments)
	if b.Get([]byte(id)) == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return b.Delete([]byte(id))
}

// SetDocTable replaces the persisted number to id mapping.
func (t *Tx) SetDocTable(table *index.DocTable) error {
	if err := t.resetBucket(bucketDocTable); err != nil {
		return err
	}
	b := t.tx.Bucket(bucketDocTable)
	for num := 0; num < table.Len(); num++ {
		key := make([]byte, 4)
		binary.BigEndian.PutUint32(key, uint32(num))
		if err := b.Put(key, []byte(table.ID(uint32(num)))); err != nil {
			return err
		}
	}
	return nil
}

// SetFields replaces the persisted postings, one nested bucket per field.
func (t *Tx) SetFields(fields index.Fields) error {
	if err := t.resetBucket(bucketFields); err != nil {
		return err
	}
	root := t.tx.Bucket(bucketFields)
	for name, ix := range fields {
		b, err := root.CreateBucket([]byte(name))
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		for _, token := range ix.Tokens() {
			var buf bytes.Buffer
			if _, err := ix.Get(token).WriteTo(&buf); err != nil {
				return err
			}
			if err := b.Put([]byte(token), buf.Bytes()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Tx) resetBucket(name []byte) error {
	if err := t.tx.DeleteBucket(name); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
		return err
	}
	_, err := t.tx.CreateBucket(name)
	return err
}

func (t *Tx) incrementEpoch() (uint64, error) {
	b := t.tx.Bucket(bucketMeta)
	var epoch uint64
	data := b.Get(keyEpoch)
	if data != nil {
		epoch = binary.BigEndian.Uint64(data)
	}
	epoch++
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, epoch)
	return epoch, b.Put(keyEpoch, buf)
}

// Documents are stored as snappy-compressed JSON.
func encodeDocument(doc *document.Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, data), nil
}

func decodeDocument(data []byte) (*document.Document, error) {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress document: %w", err)
	}
	var doc document.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
