package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarxCha/poa-dashboard/internal/domain/speech"
	"github.com/MarxCha/poa-dashboard/internal/infrastructure/recognizer"
)

func TestMatchCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"match", "ver mis gastos", "abrir el semáforo", "hola"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "show-expenses"))
	assert.True(t, strings.HasPrefix(lines[1], "open-compliance"))
	assert.True(t, strings.HasPrefix(lines[2], "unknown"))
}

func TestMatchCommand_RequiresText(t *testing.T) {
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"match"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil); rootCmd.SetErr(nil) })

	assert.Error(t, rootCmd.Execute())
}

func TestEOFRecognizer(t *testing.T) {
	rec := &eofRecognizer{Recognizer: recognizer.NewReaderRecognizer(strings.NewReader("mostrar ingresos\n"))}
	opts := speech.SingleShot(0)

	text, err := rec.Recognize(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, "mostrar ingresos", text)
	assert.False(t, rec.done.Load())

	_, err = rec.Recognize(context.Background(), opts)
	assert.ErrorIs(t, err, io.EOF)
	assert.True(t, rec.done.Load())
}
