package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/annel0/sky-quest/internal/logging"
	"github.com/annel0/sky-quest/internal/world"
	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.
type Config struct {
	World   WorldConfig   `yaml:"world"`
	Audio   AudioConfig   `yaml:"audio"`
	Player  PlayerConfig  `yaml:"player"`
	Debug   DebugConfig   `yaml:"debug"`
	Logging LoggingConfig `yaml:"logging"`
}

type WorldConfig struct {
	Quality string `yaml:"quality"` // low | medium | high
	Width   int    `yaml:"width"`
	Depth   int    `yaml:"depth"`
	Seed    int64  `yaml:"seed"` // 0 - новый сид на каждую генерацию
	Pickups int    `yaml:"pickups"`
}

type AudioConfig struct {
	Enabled bool `yaml:"enabled"`
	Volume  int  `yaml:"volume"` // 0..10
}

type PlayerConfig struct {
	Speed       float32 `yaml:"speed"`
	Sensitivity float32 `yaml:"sensitivity"`
	Fov         int     `yaml:"fov"` // 1..10
}

type DebugConfig struct {
	APIPort        int    `yaml:"api_port"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
	OtelEnabled    bool   `yaml:"otel_enabled"`
	OtelEndpoint   string `yaml:"otel_endpoint"`
}

type LoggingConfig struct {
	ConsoleLevel string `yaml:"console_level"`
	File         bool   `yaml:"file"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Quality: world.QualityMedium.String(),
			Width:   world.WorldWidth,
			Depth:   world.WorldDepth,
			Pickups: world.DefaultPickupCount,
		},
		Audio:   AudioConfig{Enabled: true, Volume: 7},
		Player:  PlayerConfig{Speed: 12, Sensitivity: 0.00012, Fov: 5},
		Debug:   DebugConfig{MetricsEnabled: true},
		Logging: LoggingConfig{ConsoleLevel: "info", File: true},
	}
}

// GetAPIPort возвращает порт отладочного API с поддержкой fallback значений
func (d *DebugConfig) GetAPIPort() int {
	return getPortWithEnvFallback(d.APIPort, "SKYQUEST_API_PORT", 8088)
}

// GetQuality возвращает качество мира с поддержкой fallback значений
func (w *WorldConfig) GetQuality() (world.DisplayQuality, error) {
	return world.ParseQuality(getStringWithEnvFallback(w.Quality, "SKYQUEST_QUALITY", world.QualityMedium.String()))
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// getStringWithEnvFallback возвращает строку с приоритетом: config -> env -> default
func getStringWithEnvFallback(configValue, envVar, defaultValue string) string {
	if strings.TrimSpace(configValue) != "" {
		return configValue
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		return envVal
	}
	return defaultValue
}

// Validate проверяет значения и приводит мягкие нарушения к допустимым границам
func (c *Config) Validate() error {
	if _, err := c.World.GetQuality(); err != nil {
		return fmt.Errorf("world.quality: %w", err)
	}
	if c.World.Width < 0 || c.World.Depth < 0 {
		return fmt.Errorf("world size must be non-negative, got %dx%d", c.World.Width, c.World.Depth)
	}
	if c.World.Width == 0 {
		c.World.Width = world.WorldWidth
	}
	if c.World.Depth == 0 {
		c.World.Depth = world.WorldDepth
	}
	if c.World.Seed < 0 {
		return fmt.Errorf("world.seed must be >= 0, got %d", c.World.Seed)
	}
	if c.World.Pickups <= 0 {
		c.World.Pickups = world.DefaultPickupCount
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 10 {
		logging.Warn("⚠️ audio.volume=%d вне диапазона 0..10, значение ограничено", c.Audio.Volume)
		c.Audio.Volume = max(0, min(c.Audio.Volume, 10))
	}
	if c.Player.Fov < 1 || c.Player.Fov > 10 {
		c.Player.Fov = max(1, min(c.Player.Fov, 10))
	}
	if c.Player.Speed < 0 || c.Player.Sensitivity < 0 {
		return fmt.Errorf("player speed and sensitivity must be non-negative")
	}

	if port := c.Debug.APIPort; port < 0 || port > 65535 {
		return fmt.Errorf("debug.api_port out of range: %d", port)
	}
	if _, err := logging.ParseLevel(c.Logging.ConsoleLevel); err != nil {
		return fmt.Errorf("logging.console_level: %w", err)
	}
	return nil
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV SKYQUEST_CONFIG или возвращает nil, nil.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("SKYQUEST_CONFIG")
		if path == "" {
			return nil, nil // конфиг не задан, используем дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault возвращает конфигурацию из файла или значения по умолчанию
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = Default()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
