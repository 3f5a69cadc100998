package output

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannel_Lines(t *testing.T) {
	var buf bytes.Buffer
	ch := NewChannel(&buf)

	ch.Line("$ fleet link:connections")
	ch.Printf("[%s] exit %d", "ab12cd34", 0)
	ch.Line("first\nsecond\n")

	assert.Equal(t, "$ fleet link:connections\n[ab12cd34] exit 0\nfirst\nsecond\n", buf.String())
}

func TestChannel_NilWriterDiscards(t *testing.T) {
	ch := NewChannel(nil)
	assert.NotPanics(t, func() { ch.Line("dropped") })
	assert.Len(t, ch.Session(), 36)
}

func TestChannel_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "fleetdeck.log")
	var buf bytes.Buffer
	ch := NewChannel(&buf)
	require.NoError(t, ch.OpenLogFile(path))

	ch.Line("hello")
	require.NoError(t, ch.Close())
	require.NoError(t, ch.Close(), "second Close is a no-op")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "=== session "+ch.Session())
	assert.Contains(t, string(data), " hello\n")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestChannel_Tee(t *testing.T) {
	var parentBuf, childBuf bytes.Buffer
	parent := NewChannel(&parentBuf)
	child := parent.Tee(&childBuf)

	child.Line("from child")
	parent.Line("from parent")

	assert.Equal(t, "from child\n", childBuf.String())
	assert.Equal(t, "from child\nfrom parent\n", parentBuf.String())
	assert.Equal(t, parent.Session(), child.Session())
}

func TestChannel_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	ch := NewChannel(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				ch.Line("line")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, bytes.Count(buf.Bytes(), []byte("line\n")))
}
