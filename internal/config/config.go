package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kass/capital-routes/pkg/arc"
	"github.com/kass/capital-routes/pkg/routes"
	"github.com/kass/capital-routes/pkg/style"
)

// Config holds the full application configuration.
type Config struct {
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Routes  RoutesConfig  `yaml:"routes" mapstructure:"routes"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Postgis PostgisConfig `yaml:"postgis" mapstructure:"postgis"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the capital dataset.
type DataConfig struct {
	Source      string `yaml:"source" mapstructure:"source"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Snapshot    string `yaml:"snapshot" mapstructure:"snapshot"`
}

// RoutesConfig configures route generation.
type RoutesConfig struct {
	Origin     string `yaml:"origin" mapstructure:"origin"`
	Theme      string `yaml:"theme" mapstructure:"theme"`
	PointCount int    `yaml:"point_count" mapstructure:"point_count"`
	StateFile  string `yaml:"state_file" mapstructure:"state_file"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// PostgisConfig configures the PostGIS export.
type PostgisConfig struct {
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml in the working directory, or
// from path when set, with CAPROUTES_ environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, eris.Wrapf(err, "config: %s", path)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CAPROUTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data.source", "data/capitals.json")
	v.SetDefault("data.timeout_secs", 15)
	v.SetDefault("data.snapshot", "capitals.gob")
	v.SetDefault("routes.origin", routes.DefaultOrigin)
	v.SetDefault("routes.theme", string(style.DefaultTheme))
	v.SetDefault("routes.point_count", arc.DefaultPointCount)
	v.SetDefault("routes.state_file", ".capital-routes.yaml")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("postgis.dsn", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the values that cannot be repaired with a fallback.
func (c *Config) Validate() error {
	if c.Data.Source == "" {
		return eris.New("config: data.source is required")
	}
	if c.Routes.PointCount < arc.MinPointCount {
		return eris.Errorf("config: routes.point_count must be at least %d, got %d", arc.MinPointCount, c.Routes.PointCount)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return eris.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

// SaveTheme persists the selected theme to the state file at path.
func SaveTheme(path string, theme style.Theme) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "config: create state dir")
		}
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("theme", string(theme))
	if err := v.WriteConfigAs(path); err != nil {
		return eris.Wrapf(err, "config: write state %s", path)
	}
	return nil
}

// LoadTheme reads the theme stored at path. A missing file or an unknown
// stored value yields fallback.
func LoadTheme(path string, fallback style.Theme) (style.Theme, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fallback, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fallback, eris.Wrapf(err, "config: read state %s", path)
	}

	theme, ok := style.ParseTheme(v.GetString("theme"))
	if !ok {
		zap.L().Warn("stored theme unknown, ignoring",
			zap.String("theme", v.GetString("theme")),
			zap.String("path", path),
		)
		return fallback, nil
	}
	return theme, nil
}
