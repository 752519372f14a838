package logging

import (
	"bytes"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestNewLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: "debug", Format: "json", Output: &buf})
	require.NoError(t, err)
	defer closer.Close()

	require.Equal(t, logrus.DebugLevel, logger.GetLevel())
	logger.WithField("target", "1.1.1.1").Debug("probe")
	require.Contains(t, buf.String(), `"target":"1.1.1.1"`)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, _, err := New(Options{Level: "chatty"})
	require.Error(t, err)
}

func TestNewWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	logger, closer, err := New(Options{Dir: dir, Output: &buf})
	require.NoError(t, err)

	logger.Info("hello")
	require.NoError(t, closer.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Contains(t, buf.String(), "hello")
}
