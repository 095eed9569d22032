// Package process hands confirmed order lines to a local program, such as
// a receipt printer script or a POS bridge.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/barista/pkg/domain"
)

// DefaultTimeout bounds one run of the command.
const DefaultTimeout = 10 * time.Second

// ErrNoCommand is returned by NewSink when no command is configured.
var ErrNoCommand = errors.New("process sink: command is required")

// Sink implements ports.OrderSink by running a fixed command once per
// record. The record arrives as one JSON object on stdin and as
// BARISTA_ORDER_* environment variables. Record fields never become
// command-line arguments, so customer input cannot inject flags.
type Sink struct {
	command string
	args    []string
	env     []string
	dir     string
	timeout time.Duration
}

// Option configures the sink.
type Option func(*Sink)

// WithEnv adds KEY=VALUE pairs to the command environment.
func WithEnv(env map[string]string) Option {
	return func(s *Sink) {
		for k, v := range env {
			s.env = append(s.env, k+"="+v)
		}
	}
}

// WithDir sets the working directory for executed processes.
func WithDir(dir string) Option {
	return func(s *Sink) {
		s.dir = dir
	}
}

// WithTimeout overrides DefaultTimeout. Zero or less keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(s *Sink) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewSink creates a sink running command with args.
func NewSink(command string, args []string, opts ...Option) (*Sink, error) {
	if strings.TrimSpace(command) == "" {
		return nil, ErrNoCommand
	}
	s := &Sink{
		command: command,
		args:    append([]string(nil), args...),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Append runs the command for one record. A non-zero exit is a failure and
// carries the command's stderr.
func (s *Sink) Append(ctx context.Context, record domain.OrderRecord) error {
	body, err := json.Marshal(record.Wire())
	if err != nil {
		return fmt.Errorf("marshal order line: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, s.command, s.args...)
	cmd.Dir = s.dir
	cmd.Env = append(append(cmd.Environ(), s.env...), recordEnv(record)...)
	cmd.Stdin = bytes.NewReader(append(body, '\n'))

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	// Children of a killed command may hold stderr open.
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		if runCtx.Err() != nil && ctx.Err() == nil {
			return fmt.Errorf("%s timed out after %s", s.command, s.timeout)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("%s: %w", s.command, err)
		}
		return fmt.Errorf("%s: %w: %s", s.command, err, msg)
	}
	return nil
}

func recordEnv(r domain.OrderRecord) []string {
	return []string{
		"BARISTA_ORDER_TIMESTAMP=" + r.FormattedTimestamp(),
		"BARISTA_ORDER_CUSTOMER=" + r.CustomerName,
		"BARISTA_ORDER_ITEM=" + r.ItemName,
		"BARISTA_ORDER_QUANTITY=" + strconv.Itoa(r.Quantity),
		"BARISTA_ORDER_UNIT_PRICE=" + strconv.Itoa(r.UnitPrice),
		"BARISTA_ORDER_LINE_TOTAL=" + strconv.Itoa(r.LineTotal),
		"BARISTA_ORDER_GRAND_TOTAL=" + strconv.Itoa(r.GrandTotal),
	}
}
