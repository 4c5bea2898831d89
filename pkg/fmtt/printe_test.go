package fmtt

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errRoot = errors.New("root cause")

func TestPrintErrChain(t *testing.T) {
	var buf bytes.Buffer
	PrintErrChain(&buf, fmt.Errorf("outer: %w", errRoot))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "outer: root cause")
	assert.Contains(t, lines[1], "[1] *errors.errorString: root cause")
}

func TestPrintErrChain_Nil(t *testing.T) {
	var buf bytes.Buffer
	PrintErrChain(&buf, nil)
	assert.Equal(t, "<nil>\n", buf.String())
}

func TestPrintErrChainDebug_MultiWrap(t *testing.T) {
	var buf bytes.Buffer
	other := errors.New("second")
	PrintErrChainDebug(&buf, fmt.Errorf("a: %w: %w", errRoot, other))

	out := buf.String()
	assert.Contains(t, out, "[0] *fmt.wrapErrors")
	assert.Contains(t, out, "Error(): root cause")
	assert.Contains(t, out, "Error(): second")
}
