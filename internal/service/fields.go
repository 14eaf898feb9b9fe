package service

import (
	"errors"
	"fmt"

	"github.com/pointshade/server/internal/data/field"
)

// ErrUnknownField is returned for field IDs that were never registered.
var ErrUnknownField = errors.New("unknown field")

// FieldInfo describes a registered field for API responses.
type FieldInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Count       int    `json:"count"`
	Categorical bool   `json:"categorical"`
}

// FieldRegistry holds readers for all configured fields in config order.
type FieldRegistry struct {
	readers      map[string]*field.Reader
	order        []string
	defaultField string
}

// NewFieldRegistry creates an empty registry.
func NewFieldRegistry() *FieldRegistry {
	return &FieldRegistry{readers: make(map[string]*field.Reader)}
}

// Register adds a reader. The first registered field becomes the default.
func (r *FieldRegistry) Register(id string, reader *field.Reader) {
	if _, ok := r.readers[id]; !ok {
		r.order = append(r.order, id)
	}
	r.readers[id] = reader
	if r.defaultField == "" {
		r.defaultField = id
	}
}

// Get returns the reader for id.
func (r *FieldRegistry) Get(id string) (*field.Reader, error) {
	if id == "" {
		id = r.defaultField
	}
	reader, ok := r.readers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, id)
	}
	return reader, nil
}

// DefaultFieldID returns the default field ID.
func (r *FieldRegistry) DefaultFieldID() string {
	return r.defaultField
}

// Fields returns field info in registration order.
func (r *FieldRegistry) Fields() []FieldInfo {
	infos := make([]FieldInfo, 0, len(r.order))
	for _, id := range r.order {
		md := r.readers[id].Metadata()
		infos = append(infos, FieldInfo{
			ID:          id,
			Name:        md.Name,
			Count:       md.Count,
			Categorical: md.Categorical,
		})
	}
	return infos
}

// Close closes every reader.
func (r *FieldRegistry) Close() {
	for _, reader := range r.readers {
		reader.Close()
	}
}
