// Package notify shows the short-lived success and failure messages the
// controllers raise.
package notify

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Notifier receives one-line messages meant for the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// ColorMode represents color output mode
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q: must be auto, always, or never", s)
	}
}

// ResolveColors determines whether to use colors based on mode and environment
func ResolveColors(mode ColorMode, configColors bool) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false
		}
		if os.Getenv("TERM") == "dumb" {
			return false
		}

		return configColors
	}
}

// Printer writes messages to the terminal.
type Printer struct {
	mu        sync.Mutex
	out       io.Writer
	err       io.Writer
	useColors bool
}

func NewPrinter(out, err io.Writer, useColors bool) *Printer {
	return &Printer{out: out, err: err, useColors: useColors}
}

func (p *Printer) Success(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.useColors {
		color.New(color.FgGreen).Fprintf(p.out, "✓ %s\n", msg)
	} else {
		fmt.Fprintf(p.out, "[OK] %s\n", msg)
	}
}

func (p *Printer) Error(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.useColors {
		color.New(color.FgRed).Fprintf(p.err, "✗ %s\n", msg)
	} else {
		fmt.Fprintf(p.err, "[ERROR] %s\n", msg)
	}
}

// Info prints a plain informational line.
func (p *Printer) Info(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.useColors {
		color.New(color.FgCyan).Fprintf(p.out, format+"\n", args...)
	} else {
		fmt.Fprintf(p.out, format+"\n", args...)
	}
}

// Bold returns text in bold
func (p *Printer) Bold(text string) string {
	if p.useColors {
		return color.New(color.Bold).Sprint(text)
	}

	return text
}

// Dim returns dimmed text
func (p *Printer) Dim(text string) string {
	if p.useColors {
		return color.New(color.Faint).Sprint(text)
	}

	return text
}

// Kind tells a recorded message's severity.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

type Message struct {
	Kind Kind
	Text string
}

// Recorder keeps every message in order.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Success(msg string) { r.add(KindSuccess, msg) }

func (r *Recorder) Error(msg string) { r.add(KindError, msg) }

func (r *Recorder) add(k Kind, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = append(r.messages, Message{Kind: k, Text: msg})
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Message(nil), r.messages...)
}

// Last returns the most recent message, zero when none was recorded.
func (r *Recorder) Last() Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.messages) == 0 {
		return Message{}
	}

	return r.messages[len(r.messages)-1]
}

// Nop drops every message.
type Nop struct{}

func (Nop) Success(string) {}

func (Nop) Error(string) {}
