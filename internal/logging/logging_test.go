package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLevelAndFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New("debug", "json", &buf)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	l.WithField("collection", "trades").Warn("degraded")
	assert.Contains(t, buf.String(), `"collection":"trades"`)

	assert.Equal(t, logrus.InfoLevel, New("loud", "text", &buf).GetLevel())
}

func TestForNil(t *testing.T) {
	t.Parallel()

	e := For(nil, "ledger")
	assert.Equal(t, "ledger", e.Data["component"])
	e.Info("goes nowhere")
}
