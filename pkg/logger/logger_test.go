package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLevels(t *testing.T) {
	testCases := []struct {
		level string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"INFO", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"", logrus.InfoLevel},
		{"verbose", logrus.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			Init(tc.level, "json")
			assert.Equal(t, tc.want, GetLogger().GetLevel())
		})
	}
}

func TestJSONFields(t *testing.T) {
	Init("info", "json")
	var buf bytes.Buffer
	GetLogger().SetOutput(&buf)

	WithFields(logrus.Fields{"org": "angular", "repo": "core"}).Info("fetched contributors")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "angular", entry["org"])
	assert.Equal(t, "core", entry["repo"])
	assert.Equal(t, "fetched contributors", entry["msg"])
}

func TestTextFormat(t *testing.T) {
	Init("info", "text")
	_, ok := GetLogger().Formatter.(*logrus.TextFormatter)
	assert.True(t, ok)
}
