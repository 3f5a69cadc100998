package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Channel is the append-only log surface shared by every invocation of a
// process. Lines from concurrent invocations interleave in arrival order.
type Channel struct {
	mu      sync.Mutex
	out     io.Writer
	file    *os.File
	parent  *Channel
	session string
}

// NewChannel creates a channel writing to out. A nil out discards lines.
func NewChannel(out io.Writer) *Channel {
	if out == nil {
		out = io.Discard
	}
	return &Channel{out: out, session: uuid.NewString()}
}

// Session returns the id written at the top of the log file.
func (c *Channel) Session() string {
	return c.session
}

// OpenLogFile mirrors every line into path, appending. Lines in the file
// carry a timestamp.
func (c *Channel) OpenLogFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.file != nil {
		c.file.Close()
	}
	c.file = f
	fmt.Fprintf(f, "=== session %s started %s\n", c.session, time.Now().Format(time.RFC3339))
	return nil
}

// Tee returns a channel that writes to w and forwards every line to c.
// The MCP server uses it to return the log of one invocation.
func (c *Channel) Tee(w io.Writer) *Channel {
	return &Channel{out: w, parent: c, session: c.session}
}

// Line appends text. Multi-line text is written as separate lines.
func (c *Channel) Line(text string) {
	text = strings.TrimRight(text, "\n")
	c.mu.Lock()
	for _, l := range strings.Split(text, "\n") {
		fmt.Fprintln(c.out, l)
		if c.file != nil {
			fmt.Fprintf(c.file, "%s %s\n", time.Now().Format("15:04:05.000"), l)
		}
	}
	c.mu.Unlock()

	if c.parent != nil {
		c.parent.Line(text)
	}
}

// Printf formats and appends one line.
func (c *Channel) Printf(format string, args ...interface{}) {
	c.Line(fmt.Sprintf(format, args...))
}

// Write implements io.Writer so a channel can back a logger.
func (c *Channel) Write(p []byte) (int, error) {
	c.Line(string(p))
	return len(p), nil
}

// Close closes the log file, if any.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	return err
}
