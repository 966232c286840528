package main

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/blogapi/internal/testutil"
)

func noenv(string) string { return "" }

func Test_run(t *testing.T) {
	port, err := testutil.RandomPort()
	require.NoError(t, err, "failed to get random port to start server")
	listenAddr := fmt.Sprintf("localhost:%d", port)

	t.Run("stop with signal in memory", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond) // Half Second
		t.Cleanup(cancel)

		err := run(ctx, noenv, os.Getwd, []string{
			"--address", listenAddr,
			"--log-level", "debug",
			"--environment", "dev",
			"--access-secret", "access",
			"--refresh-secret", "refresh",
		})

		require.NoError(t, err, "on correct stop should not return error")
	})

	t.Run("stop with signal postgres", func(t *testing.T) {
		pg := testutil.StartPostgresContainer(t)
		t.Cleanup(pg.Terminate)

		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond) // Half Second
		t.Cleanup(cancel)

		err := run(ctx, noenv, os.Getwd, []string{
			"--address", listenAddr,
			"--database", pg.DSN,
			"--access-secret", "access",
			"--refresh-secret", "refresh",
		})

		require.NoError(t, err, "on correct stop should not return error")
	})

	t.Run("fail without secrets", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond) // Half Second
		t.Cleanup(cancel)

		err := run(ctx, noenv, os.Getwd, []string{
			"--address", listenAddr,
			"--access-secret", "access",
		})

		require.Error(t, err, "refresh secret is required")
	})

	t.Run("fail with unknown environment", func(t *testing.T) {
		err := run(t.Context(), noenv, os.Getwd, []string{
			"--address", listenAddr,
			"--environment", "staging",
			"--access-secret", "access",
			"--refresh-secret", "refresh",
		})

		require.Error(t, err)
	})
}
