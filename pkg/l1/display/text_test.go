package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/gate.go/pkg/l0/terminal"
)

func TestTextWriteAndClip(t *testing.T) {
	d := NewText()
	require.Equal(t, []string{"", ""}, d.Lines())
	require.NoError(t, d.WriteText("Welcome", terminal.Position{}))
	require.NoError(t, d.WriteText("a-very-long-user-name", terminal.Position{Row: 1}))
	require.Equal(t, []string{"Welcome", "a-very-long-user"}, d.Lines())

	require.NoError(t, d.WriteText("!", terminal.Position{Row: 0, Col: 15}))
	require.Equal(t, "Welcome        !", d.Lines()[0])

	require.NoError(t, d.Clear())
	require.Equal(t, []string{"", ""}, d.Lines())
}

func TestTextRejectsOutOfRange(t *testing.T) {
	d := NewText()
	require.Error(t, d.WriteText("x", terminal.Position{Row: 2}))
	require.Error(t, d.WriteText("x", terminal.Position{Col: 16}))
	require.Error(t, d.WriteText("x", terminal.Position{Row: -1}))
}

func TestTextMirror(t *testing.T) {
	var out bytes.Buffer
	d := (&Text{Rows: 1, Cols: 4}).WithMirror(&out)
	require.NoError(t, d.WriteText("RD", terminal.Position{}))
	require.Equal(t, "+----+\n|RD  |\n+----+\n", out.String())
}

func TestTextAsMachineDisplay(t *testing.T) {
	d := NewText()
	m := terminal.NewMachine(terminal.NewPeripherals(0), d, nil)
	require.NoError(t, m.Start())
	require.Equal(t, terminal.TextReady, strings.TrimSpace(d.Lines()[0]))
}
