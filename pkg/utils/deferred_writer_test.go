package utils

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeferredWriter(t *testing.T) {
	d := &DeferredWriter{}

	var out bytes.Buffer
	require.NoError(t, d.Flush(&out), "flushing an empty buffer is a no-op")
	assert.Empty(t, out.String())

	_, _ = fmt.Fprint(d, "warning: one\n")
	_, _ = fmt.Fprint(d, "warning: two\n")
	assert.Equal(t, 26, d.Len())
	assert.Empty(t, out.String(), "nothing is written before Flush")

	require.NoError(t, d.Flush(&out))
	assert.Equal(t, "warning: one\nwarning: two\n", out.String())
	assert.Zero(t, d.Len())
}

func TestDeferredWriter_Concurrent(t *testing.T) {
	d := &DeferredWriter{}

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = d.Write([]byte("x"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, d.Len())
}
