package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data      DataConfig      `yaml:"data" mapstructure:"data"`
	Map       MapConfig       `yaml:"map" mapstructure:"map"`
	Branding  BrandingConfig  `yaml:"branding" mapstructure:"branding"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DataConfig points at the two boundary files and names their key columns.
type DataConfig struct {
	AdminPath    string `yaml:"admin_path" mapstructure:"admin_path"`
	AtollPath    string `yaml:"atoll_path" mapstructure:"atoll_path"`
	AtollField   string `yaml:"atoll_field" mapstructure:"atoll_field"`
	IDField      string `yaml:"id_field" mapstructure:"id_field"`
	DefaultField string `yaml:"default_field" mapstructure:"default_field"`
}

// MapConfig holds the fixed map viewport and colouring.
type MapConfig struct {
	Style      string  `yaml:"style" mapstructure:"style"`
	CenterLat  float64 `yaml:"center_lat" mapstructure:"center_lat"`
	CenterLon  float64 `yaml:"center_lon" mapstructure:"center_lon"`
	Zoom       float64 `yaml:"zoom" mapstructure:"zoom"`
	Width      int     `yaml:"width" mapstructure:"width"`
	Height     int     `yaml:"height" mapstructure:"height"`
	ColorScale string  `yaml:"color_scale" mapstructure:"color_scale"`
}

// BrandingConfig configures the page banners.
type BrandingConfig struct {
	Title       string   `yaml:"title" mapstructure:"title"`
	Intro       string   `yaml:"intro" mapstructure:"intro"`
	TopLogos    []string `yaml:"top_logos" mapstructure:"top_logos"`
	BottomLogos []string `yaml:"bottom_logos" mapstructure:"bottom_logos"`
}

// ServerConfig configures the dashboard HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	RateLimit      float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst      int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// TelemetryConfig configures OTLP trace export. Empty endpoint disables it.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint" mapstructure:"otlp_endpoint"`
	ServiceName  string `yaml:"service_name" mapstructure:"service_name"`
	Insecure     bool   `yaml:"insecure" mapstructure:"insecure"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DASHBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", "DASHBOARD_SERVER_PORT", "PORT"); err != nil {
		return nil, eris.Wrap(err, "config: bind port env")
	}

	// Defaults
	v.SetDefault("data.admin_path", "data/Admin_boundaries.geojson")
	v.SetDefault("data.atoll_path", "data/Atolls.geojson")
	v.SetDefault("data.atoll_field", "Atoll")
	v.SetDefault("data.id_field", "ID")
	v.SetDefault("data.default_field", "Population")
	v.SetDefault("map.style", "open-street-map")
	v.SetDefault("map.center_lat", 7.0)
	v.SetDefault("map.center_lon", 171.0)
	v.SetDefault("map.zoom", 4.0)
	v.SetDefault("map.width", 800)
	v.SetDefault("map.height", 600)
	v.SetDefault("map.color_scale", "YlOrRd")
	v.SetDefault("branding.title", "Coastal Migration & Adaptation of The Marshall Islands")
	v.SetDefault("branding.intro", "The effects of climate change have become an increasingly concerning issue for many small island developing states (SIDS) globally.")
	v.SetDefault("branding.top_logos", []string{})
	v.SetDefault("branding.bottom_logos", []string{})
	v.SetDefault("server.port", 8050)
	v.SetDefault("server.rate_limit", 0.0)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("telemetry.service_name", "atoll-dashboard")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
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

// Validate checks the settings a command needs before it starts.
// Mode is "serve" or "inspect".
func (c *Config) Validate(mode string) error {
	var errs []string

	if c.Data.AdminPath == "" {
		errs = append(errs, "data.admin_path is required")
	}
	if c.Data.AtollPath == "" {
		errs = append(errs, "data.atoll_path is required")
	}
	if c.Data.AtollField == "" {
		errs = append(errs, "data.atoll_field is required")
	}

	switch mode {
	case "inspect":
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server.rate_limit must be >= 0")
		}
		if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
			errs = append(errs, "server.rate_burst must be >= 1 when rate limiting")
		}
		if c.Map.Width <= 0 || c.Map.Height <= 0 {
			errs = append(errs, "map.width and map.height must be > 0")
		}
		if c.Map.Zoom < 0 || c.Map.Zoom > 22 {
			errs = append(errs, "map.zoom must be between 0 and 22")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.New("config: " + strings.Join(errs, "; "))
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
