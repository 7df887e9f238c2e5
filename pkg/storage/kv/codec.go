package kv

import (
	"encoding/json"
	"errors"

	"github.com/dgraph-io/badger/v4"
)

func getJSON(txn *badger.Txn, key []byte, out interface{}) (bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
	return err == nil, err
}

func setJSON(txn *badger.Txn, key []byte, v interface{}) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, buf)
}

// scanPrefix. calls handle with every key/value under prefix, in key order.
func scanPrefix(txn *badger.Txn, prefix []byte, prefetch bool, handle func(key, val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = prefetch
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		key := item.KeyCopy(nil)
		if !prefetch {
			if err := handle(key, nil); err != nil {
				return err
			}
			continue
		}
		err := item.Value(func(val []byte) error {
			return handle(key, val)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
