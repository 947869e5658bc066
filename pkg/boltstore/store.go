// Package boltstore persists the world database in a bbolt file, with an
// in-memory cache as the live working copy.
package boltstore

import (
	"fmt"

	bbolt "go.etcd.io/bbolt"

	"github.com/crystal-mush/mushmatch/pkg/gamedb"
)

// Store wraps a bbolt database and an in-memory cache for ACID persistence.
type Store struct {
	bolt  *bbolt.DB
	cache *gamedb.Database
}

// Open opens or creates a bbolt database file and ensures all buckets exist.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("boltstore: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketMeta, bucketObjects, bucketAttrDefs} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("boltstore: create buckets: %w", err)
	}

	return &Store{
		bolt:  db,
		cache: gamedb.NewDatabase(),
	}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	if s.bolt != nil {
		return s.bolt.Close()
	}
	return nil
}

// DB returns the in-memory database cache.
func (s *Store) DB() *gamedb.Database {
	return s.cache
}

// Path returns the filesystem path of the underlying bbolt database.
func (s *Store) Path() string {
	if s.bolt != nil {
		return s.bolt.Path()
	}
	return ""
}

// Snapshot writes a consistent copy of the bbolt file to destPath.
func (s *Store) Snapshot(destPath string) error {
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		return tx.CopyFile(destPath, 0600)
	})
	if err != nil {
		return fmt.Errorf("boltstore: snapshot to %s: %w", destPath, err)
	}
	return nil
}

// PutObject persists a single object to bbolt (write-through).
func (s *Store) PutObject(obj *gamedb.Object) error {
	data, err := encodeObject(obj)
	if err != nil {
		return fmt.Errorf("boltstore: encode object #%d: %w", obj.DBRef, err)
	}
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketObjects).Put(refToKey(obj.DBRef), data)
	})
}

// PutObjects persists multiple objects in a single bbolt transaction.
func (s *Store) PutObjects(objs ...*gamedb.Object) error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketObjects)
		for _, obj := range objs {
			if obj == nil {
				continue
			}
			data, err := encodeObject(obj)
			if err != nil {
				return fmt.Errorf("boltstore: encode object #%d: %w", obj.DBRef, err)
			}
			if err := b.Put(refToKey(obj.DBRef), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteObject removes an object from bbolt.
func (s *Store) DeleteObject(ref gamedb.DBRef) error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketObjects).Delete(refToKey(ref))
	})
}

// PutAttrDef persists a user-defined attribute definition.
func (s *Store) PutAttrDef(def *gamedb.AttrDef) error {
	data, err := encodeAttrDef(def)
	if err != nil {
		return fmt.Errorf("boltstore: encode attrdef %d: %w", def.Number, err)
	}
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketAttrDefs).Put(intToKey(def.Number), data)
	})
}

// SaveAll writes a complete in-memory database into bbolt in one
// transaction, replacing the cache.
func (s *Store) SaveAll(db *gamedb.Database) error {
	err := s.bolt.Update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if err := meta.Put(keyVersion, encodeInt(db.Version)); err != nil {
			return err
		}
		if err := meta.Put(keySize, encodeInt(len(db.Objects))); err != nil {
			return err
		}
		if err := meta.Put(keyNextAttr, encodeInt(db.NextAttr)); err != nil {
			return err
		}

		objects := tx.Bucket(bucketObjects)
		for _, obj := range db.Objects {
			data, err := encodeObject(obj)
			if err != nil {
				return fmt.Errorf("encode object #%d: %w", obj.DBRef, err)
			}
			if err := objects.Put(refToKey(obj.DBRef), data); err != nil {
				return err
			}
		}

		defs := tx.Bucket(bucketAttrDefs)
		for _, def := range db.AttrNames {
			data, err := encodeAttrDef(def)
			if err != nil {
				return fmt.Errorf("encode attrdef %d: %w", def.Number, err)
			}
			if err := defs.Put(intToKey(def.Number), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("boltstore: save: %w", err)
	}
	s.cache = db
	return nil
}

// LoadAll reads the complete database from bbolt into the cache and
// returns it.
func (s *Store) LoadAll() (*gamedb.Database, error) {
	db := gamedb.NewDatabase()
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		db.Version = decodeInt(meta.Get(keyVersion))
		db.NextAttr = decodeInt(meta.Get(keyNextAttr))

		err := tx.Bucket(bucketObjects).ForEach(func(k, v []byte) error {
			obj, err := decodeObject(v)
			if err != nil {
				return fmt.Errorf("decode object %d: %w", keyToRef(k), err)
			}
			db.Objects[obj.DBRef] = obj
			return nil
		})
		if err != nil {
			return err
		}

		return tx.Bucket(bucketAttrDefs).ForEach(func(k, v []byte) error {
			def, err := decodeAttrDef(v)
			if err != nil {
				return fmt.Errorf("decode attrdef: %w", err)
			}
			db.AttrNames[def.Number] = def
			db.AttrByName[def.Name] = def
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: load: %w", err)
	}
	db.Size = len(db.Objects)
	s.cache = db
	return db, nil
}
