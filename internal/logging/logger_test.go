package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelDebug, Output: &buf})
	require.NotNil(t, logger)

	t.Run("Levels", func(t *testing.T) {
		for _, msg := range []string{"debug msg", "info msg", "warn msg", "error msg"} {
			buf.Reset()
			switch msg {
			case "debug msg":
				logger.Debug(msg)
			case "info msg":
				logger.Info(msg)
			case "warn msg":
				logger.Warn(msg)
			default:
				logger.Error(msg)
			}
			assert.Contains(t, buf.String(), msg)
		}
	})

	t.Run("DynamicLevel", func(t *testing.T) {
		logger.SetLevel(LevelError)
		assert.Equal(t, LevelError, logger.GetLevel())

		buf.Reset()
		logger.Info("should not appear")
		assert.Zero(t, buf.Len())

		logger.SetLevel(LevelDebug)
	})

	t.Run("WithComponent", func(t *testing.T) {
		buf.Reset()
		logger.WithComponent("NetIf").Info("opened channel", "interface", "eth0")
		line := buf.String()
		assert.Contains(t, line, "[info] netif: opened channel")
		assert.Contains(t, line, "interface=eth0")
		assert.NotContains(t, line, "component=")
	})

	t.Run("WithFields", func(t *testing.T) {
		buf.Reset()
		logger.WithFields(map[string]any{"family": "inet"}).Info("msg")
		assert.Contains(t, buf.String(), "family=inet")
	})

	t.Run("QuotedValues", func(t *testing.T) {
		buf.Reset()
		logger.Warn("commit", "error", "set mtu: invalid argument")
		assert.Contains(t, buf.String(), `error="set mtu: invalid argument"`)
	})
}

func TestPrefix(t *testing.T) {
	var buf bytes.Buffer
	defer SetPrefix(GetPrefix())

	SetPrefix("IFCONF-AUTOCONFD")
	New(Config{Level: LevelInfo, Output: &buf}).Info("started")
	assert.True(t, strings.Contains(buf.String(), "ifconf-autoconfd["))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestDefaultLogger(t *testing.T) {
	require.NotNil(t, Default())

	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Level = LevelDebug
	cfg.Output = &buf
	SetDefault(New(cfg))

	Debug("debug")
	Info("info")
	Warn("warn")
	Error("error")
	Errorf("error %s", "formatted")
	WithComponent("comp").Info("comp msg")

	out := buf.String()
	assert.Contains(t, out, "error formatted")
	assert.Contains(t, out, "comp: comp msg")
}

func TestSetDefault(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	var buf bytes.Buffer
	l := New(Config{Level: LevelInfo, Output: &buf})
	SetDefault(l)
	assert.Same(t, l, Default())

	WithComponent("dhcp").Info("lease bound")
	assert.Contains(t, buf.String(), "dhcp: lease bound")

	SetDefault(nil)
	fresh := Default()
	require.NotNil(t, fresh)
	assert.NotSame(t, l, fresh)
	assert.Equal(t, LevelWarn, fresh.GetLevel())
}

func TestJSONLogParsing(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelInfo, Output: &buf, JSON: true})

	l.Info("json test", "key", "value")

	var data map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, "json test", data["msg"])
	assert.Equal(t, "value", data["key"])
	assert.Equal(t, "INFO", data["level"])
}
