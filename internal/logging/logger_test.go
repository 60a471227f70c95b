package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"mealtracker/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, logging.GetLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, logging.GetLevel("WARN"))
	assert.Equal(t, logrus.WarnLevel, logging.GetLevel("warning"))
	assert.Equal(t, logrus.TraceLevel, logging.GetLevel(" trace "))
	assert.Equal(t, logrus.InfoLevel, logging.GetLevel(""))
	assert.Equal(t, logrus.InfoLevel, logging.GetLevel("loud"))
}

func TestSetup_File(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)

	name := filepath.Join(t.TempDir(), "server")
	logging.Setup(logging.Params{LogFileName: name, LogLevel: "info", LogFormatJSON: true})

	logrus.WithField("user_id", 7).Info("hello")

	b, err := os.ReadFile(name + ".log")
	require.NoError(t, err)
	assert.Contains(t, string(b), `"user_id":7`)
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}

func TestSetup_Stdout(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)

	out := logging.Setup(logging.Params{LogLevel: "debug"})
	assert.Equal(t, os.Stdout, out)
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}
