package sh

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/gate.go/pkg/l0/terminal"
	"github.com/robotalks/gate.go/pkg/l1/env"
)

func TestBenchSession(t *testing.T) {
	b, err := NewBench(env.NewConfig())
	require.NoError(t, err)
	require.NoError(t, b.Start())
	require.Equal(t, []string{terminal.TextReady, ""}, b.Display.Lines())

	accepted, err := b.Sensor()
	require.NoError(t, err)
	require.True(t, accepted)
	require.Equal(t, []string{"NG", "CK"}, b.Sent())

	accepted, err = b.Sensor()
	require.NoError(t, err)
	require.False(t, accepted)

	require.NoError(t, b.Recv("RUOK"))
	require.Equal(t, []string{"CF"}, b.Sent())
	require.NoError(t, b.Recv("Tfrank"))
	require.Equal(t, []string{terminal.TextWelcome, "frank"}, b.Display.Lines())

	require.NoError(t, b.Tick(501))
	require.Equal(t, terminal.Idle, b.Machine.State())
	require.Equal(t, []string{"RD"}, b.Sent())
	require.Nil(t, b.Sent())
	require.Len(t, b.Transitions, 3)
}

func TestBenchTimeout(t *testing.T) {
	conf := env.NewConfig()
	conf.CheckTimeout, conf.HoldTime = 10, 5
	b, err := NewBench(conf)
	require.NoError(t, err)
	_, err = b.Sensor()
	require.NoError(t, err)
	require.NoError(t, b.Tick(11))
	require.Equal(t, terminal.ResultFail, b.Machine.State())
	require.NoError(t, b.Tick(6))
	require.Equal(t, terminal.Idle, b.Machine.State())
}

func TestBenchRejectsInvalidConfig(t *testing.T) {
	conf := env.NewConfig()
	conf.CheckTimeout = 70000
	_, err := NewBench(conf)
	require.ErrorIs(t, err, env.ErrInvalidConfig)

	_, err = New(conf)
	require.ErrorIs(t, err, env.ErrInvalidConfig)
}
