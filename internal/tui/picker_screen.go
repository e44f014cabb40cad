package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/agentwallet/internal/picker"
)

// PickerScreen browses the filesystem for a document of the allowed types.
// It pops itself with a pickResultMsg: the document, ErrCanceled, or a failure.
type PickerScreen struct {
	fp   filepicker.Model
	opts picker.Options
	hint string
}

func NewPickerScreen(dir string, opts picker.Options) *PickerScreen {
	fp := filepicker.New()
	fp.AllowedTypes = opts.Extensions()
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.ShowPermissions = false
	fp.AutoHeight = true
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = home
		} else {
			dir = "."
		}
	}
	fp.CurrentDirectory = dir
	return &PickerScreen{fp: fp, opts: opts}
}

func (s *PickerScreen) Title() string { return "Attach Document" }

func (s *PickerScreen) Init() tea.Cmd {
	return s.fp.Init()
}

func (s *PickerScreen) Update(msg tea.Msg) (Screen, tea.Cmd, bool) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(m, backKeys) {
			return s, pickResult(picker.Document{}, picker.ErrCanceled), true
		}
	case tea.WindowSizeMsg:
		m.Height -= 4
		msg = m
	}

	var cmd tea.Cmd
	s.fp, cmd = s.fp.Update(msg)

	if ok, path := s.fp.DidSelectFile(msg); ok {
		doc, err := picker.Open(path, s.opts)
		if errors.Is(err, picker.ErrNotAllowed) {
			s.hint = filepath.Base(path) + " is not a supported image"
			return s, cmd, false
		}
		return s, pickResult(doc, err), true
	}
	if ok, path := s.fp.DidSelectDisabledFile(msg); ok {
		s.hint = filepath.Base(path) + " is not a supported image"
	}
	return s, cmd, false
}

func (s *PickerScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(s.Title()))
	b.WriteString("  ")
	b.WriteString(mutedStyle.Render(s.fp.CurrentDirectory))
	b.WriteString("\n\n")
	b.WriteString(s.fp.View())
	if s.hint != "" {
		b.WriteString("\n")
		b.WriteString(toastErrStyle.Render(s.hint))
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("enter open/choose  ← back  esc cancel"))
	return b.String()
}

func pickResult(doc picker.Document, err error) tea.Cmd {
	return func() tea.Msg { return pickResultMsg{doc: doc, err: err} }
}
