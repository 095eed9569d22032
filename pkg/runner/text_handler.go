package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/barista/pkg/domain"
)

// TextHandler implements the standard text-based interface.
//
// Options are numbered. On steps with free input (name, quantity) the typed
// line is the input and options are reached with a slash: "/2" or "/back".
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer
	// ShowCart prints the order sidebar after every view.
	ShowCart bool

	inputChan chan inputResult
	startOnce sync.Once
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithCart toggles the order sidebar.
func WithCart(show bool) TextHandlerOption {
	return func(h *TextHandler) {
		h.ShowCart = show
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader:   bufio.NewReader(r),
		Writer:   w,
		ShowCart: true,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		h.stopped = make(chan struct{})
		go h.pump()
	})
}

// pump reads lines in the background so Input can honour context cancellation.
// It exits once Close is called, dropping a line nobody will ask for.
func (h *TextHandler) pump() {
	defer close(h.stopped)
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" && !h.send(inputResult{text: text}) {
			return
		}
		if err != nil {
			if err != io.EOF && !h.send(inputResult{err: err}) {
				return
			}
			close(h.inputChan)
			return
		}
	}
}

func (h *TextHandler) send(res inputResult) bool {
	select {
	case h.inputChan <- res:
		return true
	case <-h.done:
		return false
	}
}

// Close stops the background reader. A read already blocked on the
// underlying reader finishes first, then the reader goroutine exits.
func (h *TextHandler) Close() error {
	h.closeOnce.Do(func() { close(h.done) })
	return nil
}

func (h *TextHandler) render(md string) string {
	if h.Renderer == nil {
		return md
	}
	rendered, err := h.Renderer(md)
	if err != nil {
		return md
	}
	return rendered
}

// Output prints the view as Markdown followed by its numbered options.
func (h *TextHandler) Output(ctx context.Context, view domain.View) error {
	var b strings.Builder
	b.WriteString(view.Markdown())

	if len(view.Options) > 0 {
		b.WriteString("\n\n")
		prefix := ""
		if view.Input != nil {
			prefix = "/"
		}
		for i, opt := range view.Options {
			fmt.Fprintf(&b, "- `%s%d` %s\n", prefix, i+1, opt.Label)
		}
	}

	if h.ShowCart {
		b.WriteString("\n\n---\n\n")
		b.WriteString(view.CartMarkdown())
	}

	_, err := fmt.Fprintln(h.Writer, strings.TrimSpace(h.render(b.String())))
	return err
}

// Input reads lines until one maps to an action the view offers.
func (h *TextHandler) Input(ctx context.Context, view domain.View) (domain.Action, error) {
	h.initPump()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			fmt.Fprint(h.Writer, prompt(view))
		}

		var line string
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return nil, io.EOF
			}
			if res.err != nil {
				return nil, res.err
			}
			line = strings.TrimSpace(res.text)
		}

		clean, err := SanitizeInput(line)
		if err != nil {
			fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
			continue
		}

		if isQuit(clean) {
			return nil, ErrQuit
		}

		action, msg := ParseText(view, clean)
		if action == nil {
			fmt.Fprintln(h.Writer, msg)
			continue
		}
		return action, nil
	}
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "\n[!] %s\n", msg)
	return err
}

func prompt(view domain.View) string {
	if view.Input == nil {
		return "> "
	}
	if view.Input.Kind == domain.InputNumber {
		return fmt.Sprintf("%s (%d-%d, default %d): ", view.Input.Label, view.Input.Min, view.Input.Max, view.Input.Default)
	}
	return view.Input.Label + ": "
}

func isQuit(line string) bool {
	switch strings.ToLower(line) {
	case "exit", "quit", "/exit", "/quit":
		return true
	}
	return false
}

// ParseText maps one line of user text to an action offered by view.
// When the line cannot be mapped it returns nil and a hint for the user.
func ParseText(view domain.View, line string) (domain.Action, string) {
	if view.Input != nil {
		if strings.HasPrefix(line, "/") {
			return pickOption(view, strings.TrimPrefix(line, "/"))
		}
		return parseInput(view.Input, line)
	}
	return pickOption(view, line)
}

func parseInput(in *domain.InputRequest, line string) (domain.Action, string) {
	switch in.Kind {
	case domain.InputNumber:
		n := in.Default
		if line != "" {
			v, err := strconv.Atoi(line)
			if err != nil {
				return nil, "Please enter a whole number."
			}
			n = v
		}
		a, err := domain.ActionEnvelope{Type: in.Action, Quantity: n}.Action()
		if err != nil {
			return nil, err.Error()
		}
		return a, ""
	default:
		a, err := domain.ActionEnvelope{Type: in.Action, Name: line}.Action()
		if err != nil {
			return nil, err.Error()
		}
		return a, ""
	}
}

// pickOption accepts a 1-based number, a full label, or a fragment found in
// exactly one label.
func pickOption(view domain.View, choice string) (domain.Action, string) {
	hint := "Please choose one of the options."
	if len(view.Options) == 0 || choice == "" {
		return nil, hint
	}

	if n, err := strconv.Atoi(choice); err == nil {
		if n < 1 || n > len(view.Options) {
			return nil, hint
		}
		return envelopeAction(view.Options[n-1])
	}

	choice = strings.ToLower(choice)
	var match *domain.Option
	for i := range view.Options {
		label := strings.ToLower(view.Options[i].Label)
		if label == choice {
			return envelopeAction(view.Options[i])
		}
		if strings.Contains(label, choice) {
			if match != nil {
				return nil, hint
			}
			match = &view.Options[i]
		}
	}
	if match == nil {
		return nil, hint
	}
	return envelopeAction(*match)
}

func envelopeAction(opt domain.Option) (domain.Action, string) {
	a, err := opt.Action.Action()
	if err != nil {
		return nil, err.Error()
	}
	return a, ""
}
