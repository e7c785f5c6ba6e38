package resultlog

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogPrefixesTimestamp(t *testing.T) {
	now := time.Date(2025, 1, 2, 9, 8, 7, 0, time.Local)
	l := NewWithClock(func() time.Time { return now })

	l.Append("update /a: success: At revision 3.")
	now = now.Add(65 * time.Second)
	l.Appendf("operation failed %s: %v", "/b", "boom")

	assert.Equal(t, []string{
		"[09:08:07] update /a: success: At revision 3.",
		"[09:09:12] operation failed /b: boom",
	}, l.Lines())
	assert.Equal(t, "[09:08:07] update /a: success: At revision 3.\n[09:09:12] operation failed /b: boom\n", l.Render())
}

func TestLogClear(t *testing.T) {
	l := New()
	l.Append("one")
	l.Append("two")
	require.Equal(t, 2, l.Len())

	l.Clear()
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.Render())
}

func TestLogLinesIsACopy(t *testing.T) {
	l := New()
	l.Append("one")
	lines := l.Lines()
	lines[0] = "changed"
	assert.NotEqual(t, "changed", l.Lines()[0])
}

func TestLogConcurrentAppend(t *testing.T) {
	l := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				l.Append("line")
				_ = l.Render()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 400, l.Len())
}
