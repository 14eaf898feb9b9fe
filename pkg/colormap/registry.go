package colormap

import "sync/atomic"

type active struct {
	kind    Kind
	palette Palette
}

// Registry holds the default palette and the default label palette a
// renderer falls back to when a call site does not carry its own. Readers
// get an immutable snapshot; writers swap it atomically.
type Registry struct {
	current atomic.Pointer[active]
	labels  atomic.Pointer[Labels]
}

// NewRegistry returns a registry defaulting to Jet and a fresh label table.
func NewRegistry() *Registry {
	r := &Registry{}
	r.current.Store(&active{kind: KindJet, palette: Jet{}})
	r.labels.Store(NewLabels())
	return r
}

// Palette returns the active palette.
func (r *Registry) Palette() Palette {
	return r.current.Load().palette
}

// Kind returns the kind of the active palette.
func (r *Registry) Kind() Kind {
	return r.current.Load().kind
}

// Labels returns the active label palette. It is independent of Palette.
func (r *Registry) Labels() *Labels {
	return r.labels.Load()
}

// SetPalette replaces the active palette with a new instance of kind and
// returns the kind actually installed. Unrecognized kinds install Jet.
func (r *Registry) SetPalette(kind Kind) Kind {
	if kind < KindGray || kind > KindLabel {
		kind = KindJet
	}
	r.current.Store(&active{kind: kind, palette: New(kind)})
	return kind
}

// SetLabels replaces the active label palette. nil installs a fresh table.
func (r *Registry) SetLabels(l *Labels) {
	if l == nil {
		l = NewLabels()
	}
	r.labels.Store(l)
}
