package logging_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/portcore/internal/domain"
	"github.com/openkraft/portcore/internal/logging"
)

func TestNew_LevelAndFormat(t *testing.T) {
	l := logging.New(domain.LoggingConfig{Level: "debug", Format: "json"})
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	l := logging.New(domain.LoggingConfig{Level: "loud"})
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portcore.log")
	l := logging.New(domain.LoggingConfig{Level: "info", Output: path})
	l.Info("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, logging.FromContext(context.Background()))

	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	ctx := logging.WithLogger(context.Background(), l.WithField("project", "Web.csproj"))

	logging.FromContext(ctx).Info("classified")
	assert.Contains(t, buf.String(), "project=Web.csproj")
	assert.Contains(t, buf.String(), "classified")
}
