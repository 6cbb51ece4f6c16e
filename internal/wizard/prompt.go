package wizard

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ErrQuit is returned when the user leaves the wizard.
var ErrQuit = errors.New("wizard closed by user")

// Choice is one entry of a select prompt.
type Choice struct {
	Label string
	Value string
}

// InputPrompt describes a free-text prompt.
type InputPrompt struct {
	Title       string
	Description string
	Placeholder string
	Value       string
	// CharLimit caps the input length in characters. Zero means no limit.
	CharLimit int
	// Multiline renders a text area instead of a single line.
	Multiline bool
	Validate  func(string) error
}

// Prompter asks the user for input. [HuhPrompter] renders terminal forms.
type Prompter interface {
	Input(p InputPrompt) (string, error)
	Select(title, description string, choices []Choice, value string) (string, error)
	MultiSelect(title, description string, choices []Choice, selected []string) ([]string, error)
}

// HuhPrompter implements [Prompter] with charmbracelet/huh forms.
type HuhPrompter struct {
	in         io.Reader
	out        io.Writer
	accessible bool
}

var _ Prompter = (*HuhPrompter)(nil)

// NewHuhPrompter returns a prompter reading from in and drawing on out.
// Accessible mode is used when in is not a terminal (tests, piped input).
func NewHuhPrompter(in io.Reader, out io.Writer) *HuhPrompter {
	return &HuhPrompter{in: in, out: out, accessible: !isTerminal(in)}
}

func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Input implements [Prompter].
func (p *HuhPrompter) Input(ip InputPrompt) (string, error) {
	value := ip.Value
	validate := ip.Validate
	if validate == nil {
		validate = func(string) error { return nil }
	}

	var field huh.Field
	if ip.Multiline && !p.accessible {
		t := huh.NewText().
			Title(ip.Title).
			Description(ip.Description).
			Placeholder(ip.Placeholder).
			Value(&value).
			Validate(validate)
		if ip.CharLimit > 0 {
			t = t.CharLimit(ip.CharLimit)
		}
		field = t
	} else {
		in := huh.NewInput().
			Title(ip.Title).
			Description(ip.Description).
			Placeholder(ip.Placeholder).
			Value(&value).
			Validate(validate)
		if ip.CharLimit > 0 {
			in = in.CharLimit(ip.CharLimit)
		}
		field = in
	}

	if err := p.run(field); err != nil {
		return "", err
	}
	return value, nil
}

// Select implements [Prompter].
func (p *HuhPrompter) Select(title, description string, choices []Choice, value string) (string, error) {
	options := make([]huh.Option[string], 0, len(choices))
	for _, c := range choices {
		options = append(options, huh.NewOption(c.Label, c.Value))
	}
	err := p.run(huh.NewSelect[string]().
		Title(title).
		Description(description).
		Options(options...).
		Value(&value))
	if err != nil {
		return "", err
	}
	return value, nil
}

// MultiSelect implements [Prompter].
func (p *HuhPrompter) MultiSelect(title, description string, choices []Choice, selected []string) ([]string, error) {
	picked := make(map[string]bool, len(selected))
	for _, v := range selected {
		picked[v] = true
	}
	options := make([]huh.Option[string], 0, len(choices))
	for _, c := range choices {
		options = append(options, huh.NewOption(c.Label, c.Value).Selected(picked[c.Value]))
	}

	var values []string
	err := p.run(huh.NewMultiSelect[string]().
		Title(title).
		Description(description).
		Options(options...).
		Value(&values))
	if err != nil {
		return nil, err
	}
	return values, nil
}

func (p *HuhPrompter) run(field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).
		WithInput(p.in).
		WithOutput(p.out)
	if p.accessible {
		form = form.WithAccessible(true)
	}
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrQuit
		}
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}
