package stream

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
mqtt:
  url: tcp://broker:1883
  qos: 2
playback:
  fps: 60
  tickInterval: 10ms
storage:
  dir: /tmp/projects
`)

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "tcp://broker:1883", c.Mqtt.URL)
	assert.Equal(t, byte(2), c.Mqtt.Qos)
	assert.Equal(t, 60.0, c.Playback.FPS)
	assert.Equal(t, 10*time.Millisecond, c.Playback.TickInterval)
	assert.Equal(t, "keyframer/frames", c.Mqtt.Topics.Frames)
	assert.Equal(t, 10.0, c.Playback.DurationSecs)
	assert.Equal(t, "/tmp/projects", c.Storage.Dir)
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("MQTT_PASSWORD", "secret")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	path := writeConfig(t, "storage:\n  driver: redis\n")

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", c.Mqtt.Password)
	assert.Equal(t, "redis://localhost:6379/0", c.Storage.RedisURL)
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	for name, body := range map[string]string{
		"fps":      "playback:\n  fps: 0\n",
		"qos":      "mqtt:\n  qos: 3\n",
		"driver":   "storage:\n  driver: s3\n",
		"redisUrl": "storage:\n  driver: redis\n",
		"yaml":     "playback: [\n",
	} {
		_, err := LoadConfig(writeConfig(t, body))
		assert.Error(t, err, name)
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
