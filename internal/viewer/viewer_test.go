package viewer

import (
	"strings"
	"testing"

	"github.com/pointshade/server/pkg/colormap"
	"github.com/stretchr/testify/assert"
)

type countingNotifier struct {
	geometry int
	render   int
}

func (n *countingNotifier) UpdateGeometry() { n.geometry++ }
func (n *countingNotifier) UpdateRender()   { n.render++ }

func TestHandleKeyRedrawRules(t *testing.T) {
	n := &countingNotifier{}
	v := New(nil, n)

	v.RegisterKeyCallback(Key('A'), func(*Viewer) bool { return true }, "recolor")
	v.RegisterKeyCallback(Key('B'), func(*Viewer) bool { return false }, "")

	assert.True(t, v.HandleKey(Key('A'), Press))
	assert.Equal(t, 1, n.geometry)
	assert.Equal(t, 1, n.render)

	assert.True(t, v.HandleKey(Key('B'), Repeat))
	assert.Equal(t, 1, n.geometry)
	assert.Equal(t, 2, n.render)
}

func TestHandleKeyFallback(t *testing.T) {
	n := &countingNotifier{}
	v := New(nil, n)

	var seen []Key
	v.Fallback = func(k Key, a Action) { seen = append(seen, k) }
	v.RegisterKeyCallback(Key('A'), func(*Viewer) bool { return true }, "")

	assert.False(t, v.HandleKey(Key('A'), Release))
	assert.False(t, v.HandleKey(Key('Z'), Press))
	assert.Equal(t, []Key{Key('A'), Key('Z')}, seen)
	assert.Zero(t, n.render)
}

func TestHandleKeyWithoutNotifierOrFallback(t *testing.T) {
	v := New(nil, nil)
	v.RegisterKeyCallback(KeySpace, func(*Viewer) bool { return true }, "")
	assert.True(t, v.HandleKey(KeySpace, Press))
	assert.False(t, v.HandleKey(KeyEnter, Press))
}

func TestBindPaletteKeys(t *testing.T) {
	n := &countingNotifier{}
	reg := colormap.NewRegistry()
	v := New(reg, n)
	v.BindPaletteKeys()

	assert.True(t, v.HandleKey(Key('5'), Press))
	assert.Equal(t, colormap.KindHot, reg.Kind())
	assert.Equal(t, 1, n.geometry)

	assert.True(t, v.HandleKey(Key('C'), Press))
	assert.Equal(t, colormap.KindLabel, reg.Kind())
	assert.True(t, v.HandleKey(Key('C'), Press))
	assert.Equal(t, colormap.KindGray, reg.Kind())

	assert.True(t, v.HandleKey(Key('2'), Press))
	assert.Equal(t, colormap.KindJet, reg.Kind())
}

func TestSetPaletteNotifies(t *testing.T) {
	n := &countingNotifier{}
	v := New(nil, Notifiers{n, &countingNotifier{}})

	assert.Equal(t, colormap.KindJet, v.SetPalette(colormap.Kind(77)))
	assert.Equal(t, colormap.KindWinter, v.SetPalette(colormap.KindWinter))
	assert.Equal(t, colormap.KindWinter, v.Palettes().Kind())
	assert.Equal(t, 2, n.geometry)
	assert.Equal(t, 2, n.render)
}

func TestKeyName(t *testing.T) {
	cases := map[Key]string{
		KeySpace:       "Space",
		Key('A'):       "A",
		Key('\''):      "'",
		Key('`'):       "`",
		KeyEscape:      "Esc",
		KeyRight:       "Right arrow",
		KeyPageDown:    "Page down",
		KeyPrintScreen: "PrtScn",
		KeyF1:          "F1",
		Key(301):       "F12",
		KeyF25:         "F25",
		Key(33):        "Unknown",
		Key(500):       "Unknown",
	}
	for k, want := range cases {
		assert.Equal(t, want, KeyName(k), "key %d", k)
	}
}

func TestHelpListsKeysInOrder(t *testing.T) {
	v := New(nil, nil)
	v.BindPaletteKeys()

	help := v.Help()
	assert.True(t, strings.HasPrefix(help, "-- Keys registered for callback functions --"))
	assert.Contains(t, help, "[1] Use gray palette")
	assert.Contains(t, help, "[C] Cycle palettes")
	assert.Less(t, strings.Index(help, "[1]"), strings.Index(help, "[6]"))
	assert.Less(t, strings.Index(help, "[6]"), strings.Index(help, "[C]"))
}
