package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	UI       UIConfig       `mapstructure:"ui"`
	Swipe    SwipeConfig    `mapstructure:"swipe"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Role       string `mapstructure:"role"`
	Theme      string `mapstructure:"theme"`
	Timezone   string `mapstructure:"timezone"`
	DateFormat string `mapstructure:"date_format"`
}

// SwipeConfig tunes the swipe-to-reveal cards. Units are abstract; a mouse
// moving one terminal cell drags a card by UnitsPerCell.
type SwipeConfig struct {
	MaxReveal     float64 `mapstructure:"max_reveal"`
	OpenThreshold float64 `mapstructure:"open_threshold"`
	UnitsPerCell  float64 `mapstructure:"units_per_cell"`
	FPS           int     `mapstructure:"fps"`
}

// LogConfig holds logrus settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

const (
	RoleDoctor  = "doctor"
	RoleLab     = "lab"
	RolePatient = "patient"
)

// Load reads configuration from file and env. Env var overrides use prefix CLINICDESK_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("CLINICDESK_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "clinicdesk"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("CLINICDESK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.UI.Role = NormalizeRole(c.UI.Role)
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "clinicdesk", "clinicdesk.db"))
	v.SetDefault("ui.role", RoleDoctor)
	v.SetDefault("ui.theme", "light")
	v.SetDefault("ui.timezone", "Local")
	v.SetDefault("ui.date_format", "Jan 2, 2006")
	v.SetDefault("swipe.max_reveal", 150)
	v.SetDefault("swipe.open_threshold", 50)
	v.SetDefault("swipe.units_per_cell", 10)
	v.SetDefault("swipe.fps", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", defaultLogFile())
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "clinicdesk", "clinicdesk.log")
}

// NormalizeRole maps free-form role names onto the three home screens.
func NormalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleLab, "laboratory":
		return RoleLab
	case RolePatient, "profile":
		return RolePatient
	default:
		return RoleDoctor
	}
}

// Path returns where Save writes the config file.
func Path() string {
	if path := os.Getenv("CLINICDESK_CONFIG"); path != "" {
		return path
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "clinicdesk", "config.toml")
}

// Save writes the provided config to disk, creating the config directory if needed.
// The TUI calls it to remember the last opened role.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("ui.role", cfg.UI.Role)
	v.Set("ui.theme", cfg.UI.Theme)
	v.Set("ui.timezone", cfg.UI.Timezone)
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("swipe.max_reveal", cfg.Swipe.MaxReveal)
	v.Set("swipe.open_threshold", cfg.Swipe.OpenThreshold)
	v.Set("swipe.units_per_cell", cfg.Swipe.UnitsPerCell)
	v.Set("swipe.fps", cfg.Swipe.FPS)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.file", cfg.Log.File)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
