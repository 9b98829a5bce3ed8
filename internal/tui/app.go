package tui

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"borgtool/internal/input"
)

var (
	accentColor  = tcell.NewRGBColor(0, 135, 175)
	warningColor = tcell.NewRGBColor(234, 179, 8)
	errorColor   = tcell.NewRGBColor(239, 68, 68)
)

var newTUIApp = func() *tview.Application {
	app := tview.NewApplication()
	tview.Styles.PrimitiveBackgroundColor = tcell.ColorDefault
	tview.Styles.BorderColor = accentColor
	tview.Styles.TitleColor = accentColor
	return app
}

// screen runs one tview application until a primitive stops it, the
// operator presses Ctrl+C, or ctx is cancelled.
type screen struct {
	app     *tview.Application
	aborted atomic.Bool
}

func newScreen() *screen {
	s := &screen{app: newTUIApp()}
	s.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC {
			s.aborted.Store(true)
			s.app.Stop()
			return nil
		}
		return event
	})
	return s
}

func (s *screen) run(ctx context.Context, root, focus tview.Primitive) error {
	if err := ctx.Err(); err != nil {
		return input.ErrAborted
	}
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.aborted.Store(true)
			s.app.Stop()
		case <-done:
		}
	}()
	s.app.SetRoot(root, true).SetFocus(focus)
	if err := s.app.Run(); err != nil {
		return err
	}
	if s.aborted.Load() {
		return input.ErrAborted
	}
	return nil
}

func framed(title string, body tview.Primitive, header string) *tview.Flex {
	flex := tview.NewFlex().SetDirection(tview.FlexRow)
	if header != "" {
		text := tview.NewTextView().SetText(header).SetTextColor(tcell.ColorLightGray)
		flex.AddItem(text, strings.Count(header, "\n")+1, 0, false)
	}
	flex.AddItem(body, 0, 1, true)
	flex.SetBorder(true).SetTitle(" " + title + " ").SetTitleAlign(tview.AlignLeft)
	return flex
}
