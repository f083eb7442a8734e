package store

import (
	"encoding/json"
	"sort"
)

// Codec converts a collection to and from its persisted form.
type Codec[T Entity] interface {
	Encode(items []T) ([]byte, error)
	Decode(raw []byte) ([]T, error)
}

// SequenceCodec persists the collection as a JSON array in store order.
type SequenceCodec[T Entity] struct{}

func (SequenceCodec[T]) Encode(items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}

func (SequenceCodec[T]) Decode(raw []byte) ([]T, error) {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return compact(items), nil
}

// KeyedCodec persists the collection as a JSON object keyed by entity id.
// Decoded entities are ordered by id, which for generated ids is creation order.
type KeyedCodec[T Entity] struct{}

func (KeyedCodec[T]) Encode(items []T) ([]byte, error) {
	m := make(map[string]T, len(items))
	for _, it := range items {
		m[it.EntityID()] = it
	}
	return json.Marshal(m)
}

func (KeyedCodec[T]) Decode(raw []byte) ([]T, error) {
	var m map[string]T
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	items := make([]T, 0, len(keys))
	for _, k := range keys {
		it := m[k]
		if isNil(it) {
			continue
		}
		if it.EntityID() == "" {
			it.SetEntityID(k)
		}
		items = append(items, it)
	}
	return items, nil
}

func compact[T Entity](items []T) []T {
	out := items[:0]
	for _, it := range items {
		if !isNil(it) {
			out = append(out, it)
		}
	}
	return out
}

func isNil[T Entity](e T) bool {
	b, err := json.Marshal(e)
	return err != nil || string(b) == "null"
}
