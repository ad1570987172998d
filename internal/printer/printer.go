// Package printer writes styled, line oriented CLI output.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/colonyops/violations/internal/core/styles"
)

type ctxKey struct{}

// Printer writes status lines to out and errors to errOut.
type Printer struct {
	out    io.Writer
	errOut io.Writer
}

// New returns a printer writing to out and errOut.
func New(out, errOut io.Writer) *Printer {
	return &Printer{out: out, errOut: errOut}
}

// NewContext stores p in ctx.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the printer stored in ctx, or one writing to stdout/stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stdout, os.Stderr)
}

// Printf writes an unstyled line.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}

// Section writes a bold heading.
func (p *Printer) Section(title string) {
	_, _ = fmt.Fprintln(p.out, styles.CommandHeaderStyle.Render(title))
}

func (p *Printer) Infof(format string, args ...any) {
	p.line(p.out, styles.MutedStyle.Render("•"), format, args...)
}

func (p *Printer) Successf(format string, args ...any) {
	p.line(p.out, styles.NotifyInfoStyle.Render("✔"), format, args...)
}

// Warnf writes a warning to the error stream.
func (p *Printer) Warnf(format string, args ...any) {
	p.line(p.errOut, styles.NotifyWarningStyle.Render("warning:"), format, args...)
}

// Errorf writes an error to the error stream.
func (p *Printer) Errorf(format string, args ...any) {
	p.line(p.errOut, styles.StatusOpenStyle.Render("✘"), format, args...)
}

func (p *Printer) line(w io.Writer, prefix, format string, args ...any) {
	_, _ = fmt.Fprintf(w, "%s %s\n", prefix, fmt.Sprintf(format, args...))
}
