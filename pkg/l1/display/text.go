// Package display provides text display sinks for the terminal.
package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/gate.go/pkg/l0/terminal"
)

// Default geometry of the character LCD.
const (
	DefaultRows = 2
	DefaultCols = 16
)

// Text models a character display. Text beyond the end of a row is clipped.
type Text struct {
	Rows int
	Cols int
	// Mirror receives a rendering of the panel after each change.
	Mirror io.Writer

	lock  sync.Mutex
	cells [][]byte
}

// NewText creates a Text with default geometry.
func NewText() *Text {
	return &Text{Rows: DefaultRows, Cols: DefaultCols}
}

// WithMirror sets Mirror.
func (d *Text) WithMirror(w io.Writer) *Text {
	d.Mirror = w
	return d
}

// Clear implements terminal.Display.
func (d *Text) Clear() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.reset()
	return d.render()
}

// WriteText implements terminal.Display.
func (d *Text) WriteText(text string, pos terminal.Position) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.cells == nil {
		d.reset()
	}
	if pos.Row < 0 || pos.Row >= len(d.cells) || pos.Col < 0 || pos.Col >= d.cols() {
		return fmt.Errorf("position %d,%d out of display", pos.Row, pos.Col)
	}
	copy(d.cells[pos.Row][pos.Col:], text)
	glog.V(2).Infof("LCD[%d,%d] %q", pos.Row, pos.Col, text)
	return d.render()
}

// Lines returns the panel content with trailing blanks trimmed.
func (d *Text) Lines() []string {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.cells == nil {
		d.reset()
	}
	lines := make([]string, len(d.cells))
	for n, row := range d.cells {
		lines[n] = strings.TrimRight(string(row), " ")
	}
	return lines
}

func (d *Text) cols() int {
	if d.Cols <= 0 {
		return DefaultCols
	}
	return d.Cols
}

func (d *Text) reset() {
	rows := d.Rows
	if rows <= 0 {
		rows = DefaultRows
	}
	d.cells = make([][]byte, rows)
	for n := range d.cells {
		d.cells[n] = []byte(strings.Repeat(" ", d.cols()))
	}
}

func (d *Text) render() error {
	if d.Mirror == nil {
		return nil
	}
	border := "+" + strings.Repeat("-", d.cols()) + "+\n"
	var sb strings.Builder
	sb.WriteString(border)
	for _, row := range d.cells {
		sb.WriteString("|")
		sb.Write(row)
		sb.WriteString("|\n")
	}
	sb.WriteString(border)
	_, err := io.WriteString(d.Mirror, sb.String())
	return err
}
