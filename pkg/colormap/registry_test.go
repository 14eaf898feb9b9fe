package colormap

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryDefaults(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	assert.Equal(t, KindJet, r.Kind())
	assert.IsType(t, Jet{}, r.Palette())
	assert.Equal(t, NewLabels().Table(), r.Labels().Table())
}

func TestRegistrySetLabelBehavesLikeFreshLabels(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	assert.Equal(t, KindLabel, r.SetPalette(KindLabel))

	fresh := NewLabels()
	active := r.Palette()
	for i := 0; i <= 128; i++ {
		v := float64(i) / 128
		assert.Equal(t, fresh.Color(v), active.Color(v), "value %v", v)
	}
}

func TestRegistryUnknownKindFallsBackToJet(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.SetPalette(KindHot)
	assert.Equal(t, KindJet, r.SetPalette(Kind(99)))
	assert.Equal(t, KindJet, r.Kind())
	assert.Equal(t, Jet{}.Color(0.3), r.Palette().Color(0.3))
}

func TestRegistryLabelsIndependentOfPalette(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	before := r.Labels()
	r.SetPalette(KindGray)
	assert.Same(t, before, r.Labels())

	custom := NewLabels()
	r.SetLabels(custom)
	assert.Same(t, custom, r.Labels())
	assert.Equal(t, KindGray, r.Kind())

	r.SetLabels(nil)
	assert.NotNil(t, r.Labels())
}

func TestRegistryConcurrentSwap(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(k Kind) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.SetPalette(k)
			}
		}(Kinds()[i%len(Kinds())])
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = r.Palette().Color(0.5)
			}
		}()
	}
	wg.Wait()
}
