//go:build !windows

package cli_test

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/digest/internal/cli"
)

func TestSignalContext_CapturesSignal(t *testing.T) {
	sc := cli.NewSignalContext(context.Background())
	defer sc.Cancel()

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))

	select {
	case <-sc.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled by SIGTERM")
	}
	assert.Equal(t, syscall.SIGTERM, sc.Signal())
	assert.Equal(t, 143, sc.ExitCode())
}
