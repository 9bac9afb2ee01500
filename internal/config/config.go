package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
	"travel-map-service/internal/domain"
	"travel-map-service/internal/services"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the process configuration. Values come from the environment
// (optionally through a .env file); the view tunables can be overridden by a YAML file.
type Config struct {
	Port     string
	LogLevel string

	DatabaseURL     string
	JournalAPIURL   string
	JournalAPIToken string
	SeedPath        string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	SessionIdleTimeout time.Duration

	View View
}

// View holds the map tunables.
type View struct {
	GranularityCutoff float64       `yaml:"granularity_cutoff"`
	PlaceCutoffMiles  float64       `yaml:"place_cutoff_miles"`
	PlaceZoom         float64       `yaml:"place_zoom"`
	HoverSuppression  time.Duration `yaml:"hover_suppression"`
	DefaultCenter     Center        `yaml:"default_center"`
	DefaultZoom       float64       `yaml:"default_zoom"`
	Palette           []string      `yaml:"palette"`
}

type Center struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

type file struct {
	View *View `yaml:"view"`
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads .env (when present), the environment and CONFIG_FILE.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		return Config{}, err
	}

	if path := Get("CONFIG_FILE", ""); path != "" {
		if err := cfg.ApplyFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv builds a Config from getenv without touching files.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		Port:            get("PORT", "8080"),
		LogLevel:        get("LOG_LEVEL", "info"),
		DatabaseURL:     get("DATABASE_URL", ""),
		JournalAPIURL:   get("JOURNAL_API_URL", ""),
		JournalAPIToken: get("JOURNAL_API_TOKEN", ""),
		SeedPath:        get("SEED_PATH", "data/seeds/journal.json"),
		RedisAddr:       get("REDIS_ADDR", ""),
		RedisPassword:   get("REDIS_PASSWORD", ""),
		View:            DefaultView(),
	}

	var err error
	if cfg.RedisDB, err = strconv.Atoi(get("REDIS_DB", "0")); err != nil || cfg.RedisDB < 0 {
		return Config{}, fmt.Errorf("config: REDIS_DB must be a non-negative integer, got %q", getenv("REDIS_DB"))
	}
	if cfg.CacheTTL, err = time.ParseDuration(get("CACHE_TTL", "5m")); err != nil {
		return Config{}, fmt.Errorf("config: CACHE_TTL: %w", err)
	}
	if cfg.SessionIdleTimeout, err = time.ParseDuration(get("SESSION_IDLE_TIMEOUT", services.DefaultSessionIdleTimeout.String())); err != nil {
		return Config{}, fmt.Errorf("config: SESSION_IDLE_TIMEOUT: %w", err)
	}

	return cfg, nil
}

func DefaultView() View {
	return View{
		GranularityCutoff: services.GranularityCutoff,
		PlaceCutoffMiles:  services.DefaultPlaceCutoffMiles,
		PlaceZoom:         services.DefaultPlaceZoom,
		HoverSuppression:  services.DefaultHoverSuppression,
		DefaultCenter:     Center{Lat: services.DefaultCenter.Lat, Lng: services.DefaultCenter.Lon},
		DefaultZoom:       services.DefaultZoom,
		Palette:           append([]string(nil), services.DefaultPalette...),
	}
}

// ApplyFile overlays the `view:` block of a YAML file onto c.View.
// Keys missing from the file keep their current values.
func (c *Config) ApplyFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %q: %w", path, err)
	}

	f := file{View: &c.View}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("config: parse %q: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("config: PORT must be numeric, got %q", c.Port)
	}
	if c.CacheTTL <= 0 {
		return errors.New("config: CACHE_TTL must be positive")
	}
	if c.SessionIdleTimeout <= 0 {
		return errors.New("config: SESSION_IDLE_TIMEOUT must be positive")
	}

	v := c.View
	if v.GranularityCutoff <= 0 {
		return errors.New("config: view.granularity_cutoff must be positive")
	}
	if v.PlaceCutoffMiles <= 0 {
		return errors.New("config: view.place_cutoff_miles must be positive")
	}
	if v.PlaceZoom <= 0 || v.DefaultZoom <= 0 {
		return errors.New("config: view zoom levels must be positive")
	}
	if v.HoverSuppression < 0 {
		return errors.New("config: view.hover_suppression must not be negative")
	}
	if v.DefaultCenter.Lat < -90 || v.DefaultCenter.Lat > 90 || v.DefaultCenter.Lng < -180 || v.DefaultCenter.Lng > 180 {
		return fmt.Errorf("config: view.default_center out of range: %+v", v.DefaultCenter)
	}
	if len(v.Palette) == 0 {
		return errors.New("config: view.palette must not be empty")
	}
	for _, color := range v.Palette {
		if !hexColor.MatchString(color) {
			return fmt.Errorf("config: view.palette: %q is not a #RRGGBB color", color)
		}
	}
	return nil
}

// ControllerOptions maps the view tunables onto the controller.
func (c Config) ControllerOptions() services.ControllerOptions {
	opts := services.DefaultControllerOptions()
	opts.GranularityCutoff = c.View.GranularityCutoff
	opts.PlaceCutoffMiles = c.View.PlaceCutoffMiles
	opts.PlaceZoom = c.View.PlaceZoom
	opts.InitialZoom = c.View.DefaultZoom
	opts.HoverSuppression = c.View.HoverSuppression
	opts.Palette = append([]string(nil), c.View.Palette...)
	return opts
}

func (c Config) InitialCenter() domain.Coordinates {
	return domain.Coordinates{Lat: c.View.DefaultCenter.Lat, Lon: c.View.DefaultCenter.Lng}
}
