// Package config provides functionality for managing configuration options
// for the application using command-line flags, an optional JSON file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the server's listening address (ip:port).
	Addr string `json:"address"`

	// Driver selects the store: "sqlite" or "postgres".
	Driver string `json:"driver"`

	// DatabaseDSN holds the database connection string (a file path for SQLite).
	DatabaseDSN string `json:"database_dsn"`

	// Config is the path to the Config file.
	Config string `json:"-"`

	// Apps are the URL prefixes the API is mounted under.
	Apps []string `json:"apps"`

	// AllowedOrigins are the CORS origins of the dashboard front-end.
	AllowedOrigins []string `json:"allowed_origins"`

	// AuthMode is "password" (username + password) or "token" (username only).
	AuthMode string `json:"auth_mode"`

	// RequireToken guards create, update and delete with a bearer token.
	RequireToken bool `json:"require_token"`

	// MaxPageLimit caps the page size of list requests.
	MaxPageLimit int `json:"max_page_limit"`

	// MaxConns is the size of the connection pool.
	MaxConns int `json:"max_conns"`

	// HealthInterval is how often the store is pinged.
	HealthInterval time.Duration `json:"-"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`
}

// Default values.
const (
	DefaultAddr           = "localhost:8080"
	DefaultDriver         = "sqlite"
	DefaultDSN            = "./db/articles.db"
	DefaultApps           = "vue-admin-template,vue-element-admin"
	DefaultAllowedOrigins = "http://localhost:9527,http://localhost:9528"
	DefaultMaxPageLimit   = 100
	DefaultHealthInterval = 30 * time.Second
)

// fileOptions mirrors Options for the JSON file, where the interval is a
// duration string such as "15s".
type fileOptions struct {
	*Options
	HealthInterval string `json:"health_interval"`
}

// Parse parses the process's command-line flags and environment variables.
func Parse() (*Options, error) {
	return ParseArgs(flag.CommandLine, os.Args[1:], os.Getenv)
}

// ParseArgs fills Options from args, then from the JSON config file when one
// exists, then from environment variables. Later sources win.
func ParseArgs(fs *flag.FlagSet, args []string, getenv func(string) string) (*Options, error) {
	options := &Options{}
	var apps, origins string

	fs.StringVar(&options.Addr, "a", DefaultAddr, "run on ip:port server")
	fs.StringVar(&options.Driver, "driver", DefaultDriver, "database driver: sqlite or postgres")
	fs.StringVar(&options.DatabaseDSN, "d", DefaultDSN, "db address")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	fs.StringVar(&apps, "apps", DefaultApps, "comma-separated URL prefixes")
	fs.StringVar(&origins, "origins", DefaultAllowedOrigins, "comma-separated CORS origins")
	fs.StringVar(&options.AuthMode, "auth", "password", "login mode: password or token")
	fs.BoolVar(&options.RequireToken, "require-token", false, "require a token for create, update and delete")
	fs.IntVar(&options.MaxPageLimit, "max-limit", DefaultMaxPageLimit, "maximum page size")
	fs.IntVar(&options.MaxConns, "max-conns", 1, "maximum open database connections")
	fs.DurationVar(&options.HealthInterval, "health-interval", DefaultHealthInterval, "store health check interval")
	fs.StringVar(&options.LogLevel, "log-level", "info", "log level")
	fs.StringVar(&options.TLSCert, "tls-cert", "", "TLS certificate file")
	fs.StringVar(&options.TLSKey, "tls-key", "", "TLS key file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	options.Apps = splitList(apps)
	options.AllowedOrigins = splitList(origins)

	// Override flags with environment variables if set
	if configPath := getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if err := options.loadFile(options.Config); err != nil {
			return nil, err
		}
	}

	if serverAddress := getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Addr = serverAddress
	}
	if driver := getenv("DATABASE_DRIVER"); driver != "" {
		options.Driver = driver
	}
	if dsn := getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if mode := getenv("AUTH_MODE"); mode != "" {
		options.AuthMode = mode
	}
	if level := getenv("LOG_LEVEL"); level != "" {
		options.LogLevel = level
	}
	if require := getenv("REQUIRE_TOKEN"); require != "" {
		v, err := strconv.ParseBool(require)
		if err != nil {
			return nil, fmt.Errorf("REQUIRE_TOKEN: %w", err)
		}
		options.RequireToken = v
	}

	return options, options.validate()
}

// loadFile overlays the JSON file at path. A missing file is not an error.
func (o *Options) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error while reading config file: %w", err)
	}

	fo := fileOptions{Options: o}
	if err := json.Unmarshal(data, &fo); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	if fo.HealthInterval != "" {
		d, err := time.ParseDuration(fo.HealthInterval)
		if err != nil {
			return fmt.Errorf("health_interval: %w", err)
		}
		o.HealthInterval = d
	}
	return nil
}

func (o *Options) validate() error {
	if o.MaxPageLimit <= 0 {
		return fmt.Errorf("max page limit must be positive, got %d", o.MaxPageLimit)
	}
	if o.MaxConns <= 0 {
		return fmt.Errorf("max conns must be positive, got %d", o.MaxConns)
	}
	if o.HealthInterval <= 0 {
		return fmt.Errorf("health interval must be positive, got %s", o.HealthInterval)
	}
	if (o.TLSCert == "") != (o.TLSKey == "") {
		return errors.New("tls cert and key must be set together")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
