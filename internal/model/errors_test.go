package model

import (
	"errors"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestTerminal_Nil(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Terminal(nil))
}

func TestTerminal_WrapsCause(t *testing.T) {
	t.Parallel()

	cause := eris.Wrap(ErrRateLimited, "summarize: create message")
	err := Terminal(cause)

	assert.True(t, errors.Is(err, ErrTerminal))
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.Contains(t, err.Error(), "terminal failure")

	var te *TerminalError
	assert.True(t, errors.As(err, &te))
}

func TestTerminal_NotOtherSentinels(t *testing.T) {
	t.Parallel()

	err := Terminal(ErrExtraction)
	assert.False(t, errors.Is(err, ErrFetch))
}
