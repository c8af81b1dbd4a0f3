package stream

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is the server configuration read from YAML.
type Config struct {
	Mqtt struct {
		URL      string `yaml:"url"`
		ClientID string `yaml:"clientId"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Qos      byte   `yaml:"qos"`
		Topics   struct {
			Frames  string `yaml:"frames"`
			Control string `yaml:"control"`
		} `yaml:"topics"`
	} `yaml:"mqtt"`
	Playback struct {
		FPS          float64       `yaml:"fps"`
		DurationSecs float64       `yaml:"durationSecs"`
		Loop         bool          `yaml:"loop"`
		TickInterval time.Duration `yaml:"tickInterval"`
		AutoKey      bool          `yaml:"autoKey"`
		Transition   time.Duration `yaml:"transition"`
	} `yaml:"playback"`
	Storage struct {
		Driver   string        `yaml:"driver"`
		Dir      string        `yaml:"dir"`
		RedisURL string        `yaml:"redisUrl"`
		TTL      time.Duration `yaml:"ttl"`
		Project  string        `yaml:"project"`
	} `yaml:"storage"`
	API struct {
		Listen    string `yaml:"listen"`
		StaticDir string `yaml:"staticDir"`
	} `yaml:"api"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// DefaultConfig returns the settings used for anything the YAML leaves out.
func DefaultConfig() Config {
	var c Config
	c.Mqtt.ClientID = "keyframer"
	c.Mqtt.Topics.Frames = "keyframer/frames"
	c.Mqtt.Topics.Control = "keyframer/control"
	c.Playback.FPS = 30
	c.Playback.DurationSecs = 10
	c.Playback.Loop = true
	c.Playback.TickInterval = 16 * time.Millisecond
	c.Storage.Driver = "file"
	c.Storage.Dir = "projects"
	c.API.Listen = ":3000"
	c.API.StaticDir = "client/dist"
	c.Log.Level = "info"
	c.Log.Format = "console"
	return c
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return c, fmt.Errorf("error reading config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&c); err != nil {
		return c, fmt.Errorf("error parsing YAML: %w", err)
	}
	c.applyEnv()
	return c, c.Validate()
}

// applyEnv lets secrets come from the environment rather than the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("MQTT_URL"); v != "" {
		c.Mqtt.URL = v
	}
	if v := os.Getenv("MQTT_USERNAME"); v != "" {
		c.Mqtt.Username = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		c.Mqtt.Password = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Storage.RedisURL = v
	}
}

// Validate checks the settings that would otherwise fail at runtime.
func (c Config) Validate() error {
	if c.Playback.FPS <= 0 {
		return fmt.Errorf("playback.fps must be positive, got %v", c.Playback.FPS)
	}
	if c.Playback.DurationSecs < 0 {
		return fmt.Errorf("playback.durationSecs must not be negative, got %v", c.Playback.DurationSecs)
	}
	if c.Playback.TickInterval <= 0 {
		return fmt.Errorf("playback.tickInterval must be positive, got %v", c.Playback.TickInterval)
	}
	if c.Mqtt.Qos > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.Mqtt.Qos)
	}
	switch c.Storage.Driver {
	case "file", "redis":
	default:
		return fmt.Errorf("storage.driver must be file or redis, got %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "redis" && c.Storage.RedisURL == "" {
		return fmt.Errorf("storage.redisUrl is required for the redis driver")
	}
	return nil
}
