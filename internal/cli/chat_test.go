package cli_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/tafel"
	"github.com/aretw0/tafel/internal/cli"
	"github.com/aretw0/tafel/pkg/dialogue"
	"github.com/aretw0/tafel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunChat_Conversation(t *testing.T) {
	in := strings.NewReader("Wann habt ihr geöffnet?\n\ntisch reservieren\nnein\nexit\nnie gelesen\n")
	var out bytes.Buffer

	err := cli.RunChat(context.Background(), tafel.New(nil), cli.ChatOptions{In: in, Out: &out})
	require.NoError(t, err)

	script := dialogue.DefaultScript()
	text := out.String()
	assert.Contains(t, text, "12:00 bis 22:00")
	assert.Contains(t, text, script.AskConfirmReservation)
	assert.Contains(t, text, script.CancelReservation)
	assert.Equal(t, 3, strings.Count(text, "\n"))
}

func TestRunChat_RenderAndPrompt(t *testing.T) {
	in := strings.NewReader("hallo\n")
	var out bytes.Buffer

	err := cli.RunChat(context.Background(), tafel.New(nil), cli.ChatOptions{
		In:     in,
		Out:    &out,
		Prompt: "> ",
		Render: func(s string) (string, error) { return "[" + s + "]\n", nil },
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.String(), "> ["))
}

type failingReplier struct{ err error }

func (f failingReplier) Reply(context.Context, string, string) (string, error) {
	return "", f.err
}

func TestRunChat_Errors(t *testing.T) {
	var out bytes.Buffer
	invalid := failingReplier{err: fmt.Errorf("%w: too large", domain.ErrInvalidInput)}
	err := cli.RunChat(context.Background(), invalid, cli.ChatOptions{In: strings.NewReader("x\n"), Out: &out})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "too large")

	boom := errors.New("store down")
	err = cli.RunChat(context.Background(), failingReplier{err: boom}, cli.ChatOptions{In: strings.NewReader("x\n"), Out: &out})
	assert.ErrorIs(t, err, boom)
}

func TestRunChat_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A reader that never returns data.
	r, w := io.Pipe()
	defer w.Close()
	err := cli.RunChat(ctx, tafel.New(nil), cli.ChatOptions{In: r, Out: &bytes.Buffer{}})
	assert.NoError(t, err)
}
