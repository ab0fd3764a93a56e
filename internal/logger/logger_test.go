package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := newWithOutput(&buf, "debug", true)

	For(l, "approval").WithField("request_id", "r1").Info("approved")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "approved", line["msg"])
	assert.Equal(t, "approval", line["component"])
	assert.Equal(t, "r1", line["request_id"])
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	l := newWithOutput(&bytes.Buffer{}, "loud", false)
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}
