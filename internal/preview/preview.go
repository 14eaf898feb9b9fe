// Package preview draws the active palette in a terminal and forwards key
// presses to a viewer.
package preview

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/pointshade/server/internal/viewer"
	"github.com/pointshade/server/pkg/colormap"
	"github.com/rs/zerolog/log"
)

// Layout rows.
const (
	titleRow     = 0
	gradientTop  = 2
	gradientRows = 3
	labelRow     = gradientTop + gradientRows + 1
	helpTop      = labelRow + 2
)

type quitEvent struct{}

// Preview renders a viewer's palettes on a tcell screen. It satisfies
// viewer.RedrawNotifier so palette changes repaint the screen.
type Preview struct {
	screen tcell.Screen
	viewer *viewer.Viewer
}

// New creates a preview on an initialized screen. Attach it to a viewer
// with SetViewer before calling Run.
func New(screen tcell.Screen) *Preview {
	return &Preview{screen: screen}
}

// SetViewer sets the viewer whose palettes are drawn and which receives keys.
func (p *Preview) SetViewer(v *viewer.Viewer) {
	p.viewer = v
}

// UpdateGeometry requests a repaint.
func (p *Preview) UpdateGeometry() {
	p.post(nil)
}

// UpdateRender requests a repaint.
func (p *Preview) UpdateRender() {
	p.post(nil)
}

func (p *Preview) post(data interface{}) {
	if err := p.screen.PostEvent(tcell.NewEventInterrupt(data)); err != nil {
		log.Debug().Str("context", "preview").Err(err).Msg("event_dropped")
	}
}

// Draw paints the title, the active palette gradient, the label row and the
// key help.
func (p *Preview) Draw() {
	s := p.screen
	s.Clear()
	width, height := s.Size()
	if width <= 0 || height <= 0 {
		return
	}

	reg := p.viewer.Palettes()
	pal := reg.Palette()
	title := fmt.Sprintf("pointshade preview: %s (Esc to quit)", reg.Kind())
	drawText(s, 0, titleRow, tcell.StyleDefault.Bold(true), title)

	last := float64(width - 1)
	if last == 0 {
		last = 1
	}
	for x := 0; x < width; x++ {
		style := cellStyle(pal.Color(float64(x) / last))
		for y := gradientTop; y < gradientTop+gradientRows && y < height; y++ {
			s.SetContent(x, y, ' ', nil, style)
		}
	}

	if labelRow < height {
		labels := reg.Labels()
		for x := 0; x < width; x++ {
			idx := uint32(x * colormap.LabelCount / width)
			s.SetContent(x, labelRow, ' ', nil, cellStyle(labels.ColorIndex(idx)))
		}
	}

	for i, line := range strings.Split(strings.TrimRight(p.viewer.Help(), "\n"), "\n") {
		if helpTop+i >= height {
			break
		}
		drawText(s, 0, helpTop+i, tcell.StyleDefault, line)
	}

	s.Show()
}

// Run processes events until Esc, Ctrl-C or ctx is done.
func (p *Preview) Run(ctx context.Context) error {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	defer wg.Wait()
	defer close(done)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
			p.post(quitEvent{})
		case <-done:
		}
	}()

	p.Draw()
	for {
		ev := p.screen.PollEvent()
		if ev == nil {
			return nil
		}

		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
				return nil
			}
			if key, ok := MapKey(ev); ok {
				p.viewer.HandleKey(key, viewer.Press)
			}
		case *tcell.EventResize:
			p.screen.Sync()
			p.Draw()
		case *tcell.EventInterrupt:
			if _, quit := ev.Data().(quitEvent); quit {
				return nil
			}
			p.Draw()
		}
	}
}

var specialKeys = map[tcell.Key]viewer.Key{
	tcell.KeyEnter:      viewer.KeyEnter,
	tcell.KeyTab:        viewer.KeyTab,
	tcell.KeyBackspace:  viewer.KeyBackspace,
	tcell.KeyBackspace2: viewer.KeyBackspace,
	tcell.KeyInsert:     viewer.KeyInsert,
	tcell.KeyDelete:     viewer.KeyDelete,
	tcell.KeyRight:      viewer.KeyRight,
	tcell.KeyLeft:       viewer.KeyLeft,
	tcell.KeyDown:       viewer.KeyDown,
	tcell.KeyUp:         viewer.KeyUp,
	tcell.KeyPgUp:       viewer.KeyPageUp,
	tcell.KeyPgDn:       viewer.KeyPageDown,
	tcell.KeyHome:       viewer.KeyHome,
	tcell.KeyEnd:        viewer.KeyEnd,
	tcell.KeyPrint:      viewer.KeyPrintScreen,
	tcell.KeyPause:      viewer.KeyPause,
}

// MapKey converts a terminal key event to a viewer key code. Letters map to
// their upper-case code.
func MapKey(ev *tcell.EventKey) (viewer.Key, bool) {
	if ev.Key() == tcell.KeyRune {
		r := unicode.ToUpper(ev.Rune())
		if r == ' ' {
			return viewer.KeySpace, true
		}
		if r >= 39 && r <= 96 {
			return viewer.Key(r), true
		}
		return 0, false
	}
	if ev.Key() >= tcell.KeyF1 && ev.Key() <= tcell.KeyF1+24 {
		return viewer.KeyF1 + viewer.Key(ev.Key()-tcell.KeyF1), true
	}
	key, ok := specialKeys[ev.Key()]
	return key, ok
}

func cellStyle(c colormap.RGB) tcell.Style {
	rgba := c.RGBA()
	return tcell.StyleDefault.Background(tcell.NewRGBColor(int32(rgba.R), int32(rgba.G), int32(rgba.B)))
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	width, _ := s.Size()
	for _, r := range text {
		if x >= width {
			return
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
