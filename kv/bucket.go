// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Bucket provides logical bucket for kv store.
type Bucket string

// NewStore creates a bucket store from the source store.
// All keys accessed through the returned store are transparently prefixed.
func (b Bucket) NewStore(src GetPutter) GetPutter {
	return &bucketStore{b, src}
}

type bucketStore struct {
	bucket Bucket
	src    GetPutter
}

func (s *bucketStore) makeKey(key []byte) []byte {
	return append(append(make([]byte, 0, len(s.bucket)+len(key)), s.bucket...), key...)
}

func (s *bucketStore) Get(key []byte) ([]byte, error) {
	return s.src.Get(s.makeKey(key))
}

func (s *bucketStore) Has(key []byte) (bool, error) {
	return s.src.Has(s.makeKey(key))
}

func (s *bucketStore) IsNotFound(err error) bool {
	return s.src.IsNotFound(err)
}

func (s *bucketStore) Put(key, value []byte) error {
	return s.src.Put(s.makeKey(key), value)
}

func (s *bucketStore) Delete(key []byte) error {
	return s.src.Delete(s.makeKey(key))
}
