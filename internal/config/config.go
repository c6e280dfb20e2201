// Package config provides functionality for managing configuration options
// for the application using command-line flags, a config file and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Options holds the configuration values for the application.
type Options struct {
	// Address defines the server's listening address (ip:port).
	Address string `mapstructure:"address"`
	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `mapstructure:"tls_cert"`
	TLSKey  string `mapstructure:"tls_key"`

	// DatabaseDSN holds the Postgres connection string.
	DatabaseDSN string `mapstructure:"dsn"`
	// UseInMemory swaps Postgres for the in-memory store.
	UseInMemory bool `mapstructure:"use_in_memory"`

	// JWTSecret verifies bearer tokens issued by the auth provider.
	JWTSecret string `mapstructure:"jwt_secret"`
	// ServiceKey authorizes calls to privileged functions.
	ServiceKey string `mapstructure:"service_key"`

	// StorageRoot is the directory holding the media buckets.
	StorageRoot string `mapstructure:"root"`
	// PublicBaseURL prefixes public media and share URLs.
	PublicBaseURL string `mapstructure:"public_base_url"`
	// FunctionsBaseURL is where the privileged functions are reachable.
	FunctionsBaseURL string `mapstructure:"functions_base_url"`

	// TrashRetention purges notes soft-deleted longer than this. Zero disables.
	TrashRetention time.Duration
	// TrashInterval is how often the purge runs.
	TrashInterval time.Duration

	// LogLevel is the zap level name.
	LogLevel string

	// Config is the path to the config file.
	Config string
}

const envPrefix = "NOTEKEEPER"

func defaults(v *viper.Viper) {
	v.SetDefault("server.address", "localhost:8080")
	v.SetDefault("database.use_in_memory", false)
	v.SetDefault("storage.root", "data/storage")
	v.SetDefault("storage.public_base_url", "http://localhost:8080")
	v.SetDefault("trash.retention", 30*24*time.Hour)
	v.SetDefault("trash.interval", time.Hour)
	v.SetDefault("log.level", "info")
}

// Parse reads the flags in args, the optional config file and the
// environment, in increasing order of precedence for file < env < flags
// that were set explicitly.
func Parse(args []string) (*Options, error) {
	fs := pflag.NewFlagSet("notekeeper", pflag.ContinueOnError)
	fs.StringP("address", "a", "localhost:8080", "run on ip:port server")
	fs.StringP("dsn", "d", "", "postgres DSN")
	fs.StringP("config", "c", "", "path to config file")
	fs.Bool("memory", false, "use the in-memory store instead of postgres")
	fs.String("log-level", "info", "log level")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	defaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath, _ := fs.GetString("config")
	if env := os.Getenv("CONFIG"); env != "" && !fs.Changed("config") {
		configPath = env
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	bind := map[string]string{
		"server.address":         "address",
		"database.dsn":           "dsn",
		"database.use_in_memory": "memory",
		"log.level":              "log-level",
	}
	for key, flag := range bind {
		if fs.Changed(flag) {
			if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", flag, err)
			}
		}
	}

	opts := &Options{
		Address:          v.GetString("server.address"),
		TLSCert:          v.GetString("server.tls_cert"),
		TLSKey:           v.GetString("server.tls_key"),
		DatabaseDSN:      v.GetString("database.dsn"),
		UseInMemory:      v.GetBool("database.use_in_memory"),
		JWTSecret:        v.GetString("auth.jwt_secret"),
		ServiceKey:       v.GetString("auth.service_key"),
		StorageRoot:      v.GetString("storage.root"),
		PublicBaseURL:    strings.TrimRight(v.GetString("storage.public_base_url"), "/"),
		FunctionsBaseURL: strings.TrimRight(v.GetString("functions.base_url"), "/"),
		TrashRetention:   v.GetDuration("trash.retention"),
		TrashInterval:    v.GetDuration("trash.interval"),
		LogLevel:         v.GetString("log.level"),
		Config:           configPath,
	}

	// SERVER_ADDRESS overrides the address unless -a was given; DATABASE_URL
	// fills in an empty DSN.
	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" && !fs.Changed("address") {
		opts.Address = serverAddress
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" && opts.DatabaseDSN == "" {
		opts.DatabaseDSN = dbURL
	}
	if opts.FunctionsBaseURL == "" {
		opts.FunctionsBaseURL = opts.PublicBaseURL
	}

	return opts, opts.validate()
}

func (o *Options) validate() error {
	if o.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if o.ServiceKey == "" {
		return errors.New("auth.service_key is required")
	}
	if !o.UseInMemory && o.DatabaseDSN == "" {
		return errors.New("database.dsn is required unless database.use_in_memory is set")
	}
	if (o.TLSCert == "") != (o.TLSKey == "") {
		return errors.New("server.tls_cert and server.tls_key must be set together")
	}
	return nil
}
