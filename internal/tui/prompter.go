package tui

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"borgtool/internal/input"
)

const keyHint = "Enter to select, Esc to go back"

// Prompter renders each prompt as a short-lived full-screen tview
// application.
type Prompter struct{}

// New returns a terminal prompter.
func New() *Prompter { return &Prompter{} }

var _ input.Prompter = (*Prompter)(nil)

func (p *Prompter) Select(ctx context.Context, menu input.Menu) (int, error) {
	if len(menu.Options) == 0 {
		return 0, input.ErrBack
	}
	s := newScreen()
	choice := -1

	list := tview.NewList().ShowSecondaryText(false)
	list.SetSelectedBackgroundColor(accentColor)
	for i, opt := range menu.Options {
		list.AddItem(opt, "", shortcut(i), nil)
	}
	if menu.Default > 0 && menu.Default < len(menu.Options) {
		list.SetCurrentItem(menu.Default)
	}
	list.SetSelectedFunc(func(index int, _ string, _ string, _ rune) {
		choice = index
		s.app.Stop()
	})
	list.SetDoneFunc(func() { s.app.Stop() })

	title := menu.Title
	if title == "" {
		title = "borg-tool"
	}
	header := menu.Header
	if header != "" {
		header += "\n" + keyHint
	} else {
		header = keyHint
	}
	if err := s.run(ctx, framed(title, list, header), list); err != nil {
		return 0, err
	}
	if choice < 0 {
		return 0, input.ErrBack
	}
	return choice, nil
}

func (p *Prompter) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	s := newScreen()
	answer := def
	answered := false
	modal := tview.NewModal().
		SetText(question).
		AddButtons([]string{"Yes", "No"}).
		SetDoneFunc(func(index int, label string) {
			if index >= 0 {
				answer = label == "Yes"
				answered = true
			}
			s.app.Stop()
		})
	if !def {
		modal.SetFocus(1)
	}
	modal.SetBorder(true).SetTitle(" Confirm ")
	if err := s.run(ctx, modal, modal); err != nil {
		return false, err
	}
	if !answered {
		return false, input.ErrBack
	}
	return answer, nil
}

func (p *Prompter) Input(ctx context.Context, prompt, def string) (string, error) {
	return p.field(ctx, prompt, def, false)
}

func (p *Prompter) Password(ctx context.Context, prompt string) (string, error) {
	return p.field(ctx, prompt, "", true)
}

func (p *Prompter) field(ctx context.Context, prompt, def string, masked bool) (string, error) {
	s := newScreen()
	submitted := false
	field := tview.NewInputField().SetLabel(prompt + " ").SetText(def)
	if masked {
		field.SetMaskCharacter('*')
	}
	field.SetDoneFunc(func(key tcell.Key) {
		submitted = key == tcell.KeyEnter
		s.app.Stop()
	})
	if err := s.run(ctx, framed("Input", field, "Enter to accept, Esc to cancel"), field); err != nil {
		return "", err
	}
	if !submitted {
		return "", input.ErrBack
	}
	return field.GetText(), nil
}

func (p *Prompter) Notify(ctx context.Context, kind input.Kind, message string) error {
	s := newScreen()
	title, color := " Info ", accentColor
	switch kind {
	case input.Warning:
		title, color = " Warning ", warningColor
	case input.Failure:
		title, color = " Error ", errorColor
	}
	modal := tview.NewModal().
		SetText(message).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(int, string) { s.app.Stop() })
	modal.SetBorder(true).SetTitle(title).SetBorderColor(color).SetTitleColor(color)
	return s.run(ctx, modal, modal)
}

func shortcut(index int) rune {
	if index < 9 {
		return rune('1' + index)
	}
	return 0
}
