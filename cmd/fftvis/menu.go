package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"fftvis/internal/fvz"
	"fftvis/internal/spectro"
)

type menuAction int

const (
	actionNone menuAction = iota
	actionDecode
	actionEncode
)

type menuModel struct {
	action menuAction
	input  textinput.Model
	result string
	errMsg string
	done   bool
}

func newMenuModel() menuModel {
	ti := textinput.New()
	ti.Placeholder = "path to file"
	ti.CharLimit = 512
	return menuModel{input: ti}
}

func (m menuModel) Init() tea.Cmd {
	return nil
}

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.action == actionNone {
				return m, tea.Quit
			}
		case "esc":
			return m, tea.Quit
		}

		if m.action == actionNone {
			switch msg.String() {
			case "1":
				m.action = actionDecode
				m.input.Placeholder = "path to .fvz file"
				m.input.Focus()
				return m, textinput.Blink
			case "2":
				m.action = actionEncode
				m.input.Placeholder = "path to audio file (wav/mp3/flac/ogg)"
				m.input.Focus()
				return m, textinput.Blink
			}
			return m, nil
		}

		if msg.String() == "enter" && !m.done {
			m.runAction()
			m.done = true
			return m, nil
		}
		if m.done {
			return m, tea.Quit
		}
	}

	if m.action != actionNone && !m.done {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *menuModel) runAction() {
	path := m.input.Value()
	switch m.action {
	case actionDecode:
		bundle, err := readBundle(path)
		if err != nil {
			m.errMsg = err.Error()
			return
		}
		m.result = fmt.Sprintf("decoded %d frames, %d bands, %d fps", len(bundle.Frames), bundle.Header.NumBands, bundle.Header.FrameRate)
	case actionEncode:
		cfg := fvz.Config{
			BarCount:        64,
			DBFloor:         -80,
			DBRange:         90,
			FrequencyMin:    20,
			FrequencyMax:    -1,
			Smoothness:      1,
			BinMapping:      spectro.Normalized,
			FFTResolution:   2048,
			FPS:             30,
			CompressionMask: fvz.MaskQuantize,
			QuantizeLevel:   fvz.Bit16,
		}
		enc := fvz.NewEncoder(cfg)
		if err := enc.LoadAudioFile(path); err != nil {
			m.errMsg = err.Error()
			return
		}
		if err := enc.GenerateFrames(context.Background(), nil); err != nil {
			m.errMsg = err.Error()
			return
		}
		out := path + ".fvz"
		if err := enc.SaveToFile(out); err != nil {
			m.errMsg = err.Error()
			return
		}
		m.result = fmt.Sprintf("wrote %s", out)
	}
}

func (m menuModel) View() string {
	if m.action == actionNone {
		return "\n  " + menuHeaderStyle.Render("fftvis") + "\n\n" +
			"  1-Decode\n  2-Encode\n\n" +
			"  " + menuHelpStyle.Render("q quit") + "\n"
	}

	var body string
	if m.done {
		if m.errMsg != "" {
			body = menuErrorStyle.Render(m.errMsg)
		} else {
			body = m.result
		}
		body += "\n\n  " + menuHelpStyle.Render("press any key to exit")
	} else {
		body = m.input.View()
	}

	return "\n  " + menuHeaderStyle.Render("fftvis") + "\n\n  " + body + "\n"
}

var (
	menuHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"})
	menuHelpStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})
	menuErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#A00000", Dark: "#FF8080"})
)

func runMenu(ctx context.Context) error {
	p := tea.NewProgram(newMenuModel())
	_, err := p.Run()
	return err
}
