package study

import "strings"

// Store exposes study content retrieval for HTTP handlers.
type Store interface {
	Tips(topic string) []Tip
	Resources(topic string) []Resource
}

// MemoryStore implements Store with in-memory slices; the content is static
// product data, so nothing fancier is needed.
type MemoryStore struct {
	tips      []Tip
	resources []Resource
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied content.
func NewMemoryStore(tips []Tip, resources []Resource) *MemoryStore {
	return &MemoryStore{
		tips:      append([]Tip(nil), tips...),
		resources: append([]Resource(nil), resources...),
	}
}

// Tips returns tips matching topic, or all tips when topic is empty.
func (s *MemoryStore) Tips(topic string) []Tip {
	out := make([]Tip, 0, len(s.tips))
	for _, t := range s.tips {
		if topic == "" || strings.EqualFold(t.Topic, topic) {
			out = append(out, t)
		}
	}
	return out
}

// Resources returns resources matching topic, or all when topic is empty.
func (s *MemoryStore) Resources(topic string) []Resource {
	out := make([]Resource, 0, len(s.resources))
	for _, r := range s.resources {
		if topic == "" || strings.EqualFold(r.Topic, topic) {
			out = append(out, r)
		}
	}
	return out
}
