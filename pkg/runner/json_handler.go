package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/barista/pkg/domain"
)

// Frame is one line written by JSONHandler.
type Frame struct {
	Type    string       `json:"type"`
	View    *domain.View `json:"view,omitempty"`
	Message string       `json:"message,omitempty"`
}

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
// Every output is a Frame; every input line is a domain.ActionEnvelope.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(ctx context.Context, view domain.View) error {
	return h.Encoder.Encode(Frame{Type: "view", View: &view})
}

// Input decodes the next non-blank line. Malformed lines are reported with a
// system frame and skipped.
func (h *JSONHandler) Input(ctx context.Context, view domain.View) (domain.Action, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := h.Reader.ReadString('\n')
		text = strings.TrimSpace(text)
		if text == "" {
			if err != nil {
				return nil, err
			}
			continue
		}

		clean, serr := SanitizeInput(text)
		if serr != nil {
			_ = h.SystemOutput(ctx, serr.Error())
			continue
		}

		var env domain.ActionEnvelope
		if jerr := json.Unmarshal([]byte(clean), &env); jerr != nil {
			_ = h.SystemOutput(ctx, fmt.Sprintf("invalid action: %v", jerr))
			if err != nil {
				return nil, err
			}
			continue
		}
		if env.Type == "quit" {
			return nil, ErrQuit
		}

		action, aerr := env.Action()
		if aerr != nil {
			_ = h.SystemOutput(ctx, aerr.Error())
			if err != nil {
				return nil, err
			}
			continue
		}
		return action, nil
	}
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(Frame{Type: "system", Message: msg})
}
