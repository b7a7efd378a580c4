package ledger

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// MemoryStore implements Store with in-memory maps. Used for tests and
// development; nothing survives a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string][]byte // collection -> id -> document
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string][]byte)}
}

func (s *MemoryStore) put(collection, id string, doc []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.docs[collection]
	if !ok {
		c = make(map[string][]byte)
		s.docs[collection] = c
	}
	c[id] = doc
}

func (s *MemoryStore) get(collection, id string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[collection][id]
}

func (s *MemoryStore) GetPosition(_ context.Context, collection, symbol string) (*Position, error) {
	doc := s.get(collection, symbol)
	if doc == nil {
		return nil, nil
	}
	var p Position
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *MemoryStore) PutPosition(_ context.Context, collection string, p *Position) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return err
	}
	s.put(collection, p.Symbol, doc)
	return nil
}

func (s *MemoryStore) Positions(_ context.Context, collection string) ([]*Position, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.docs[collection]))
	for id := range s.docs[collection] {
		if id != sequenceDocID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	docs := make([][]byte, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, s.docs[collection][id])
	}
	s.mu.RUnlock()

	positions := make([]*Position, 0, len(docs))
	for _, doc := range docs {
		var p Position
		if err := json.Unmarshal(doc, &p); err != nil {
			return nil, err
		}
		positions = append(positions, &p)
	}
	return positions, nil
}

func (s *MemoryStore) PutChain(_ context.Context, collection, ticker string, seq int, doc []byte) error {
	s.put(collection, ChainKey(ticker, seq), doc)
	return nil
}

func (s *MemoryStore) GetChain(_ context.Context, collection, ticker string, seq int) ([]byte, error) {
	return s.get(collection, ChainKey(ticker, seq)), nil
}

func (s *MemoryStore) Sequence(_ context.Context, collection string) (int, bool, error) {
	doc := s.get(collection, sequenceDocID)
	if doc == nil {
		return 0, false, nil
	}
	var n int
	if err := json.Unmarshal(doc, &n); err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func (s *MemoryStore) SetSequence(_ context.Context, collection string, n int) error {
	doc, err := json.Marshal(n)
	if err != nil {
		return err
	}
	s.put(collection, sequenceDocID, doc)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
