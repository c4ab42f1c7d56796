/*
Package config loads the settings shared by the blogstore executables.

Values are resolved, from lowest to highest priority, from:

  - struct defaults
  - `.env.local` and `.env` files in the working directory, which never override variables already set
  - `BLOG_*` environment variables, e.g. BLOG_DB_FILENAME
  - command line flags, e.g. --db-filename
  - the optional YAML file at --config-path
*/
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ardanlabs/conf"
	"github.com/joho/godotenv"
	"github.com/silktrader/blogstore/pkg/storage"
	"gopkg.in/yaml.v2"
)

const namespace = "BLOG"

// Configuration holds every setting; `conf` tags provide defaults and help, `yaml` tags the file keys.
type Configuration struct {
	Config struct {
		Path string `conf:"default:config.yml" yaml:"-"`
	} `yaml:"-"`
	Web struct {
		APIHost         string        `conf:"default:0.0.0.0:3000" yaml:"apiHost"`
		ReadTimeout     time.Duration `conf:"default:5s" yaml:"readTimeout"`
		WriteTimeout    time.Duration `conf:"default:5s" yaml:"writeTimeout"`
		ShutdownTimeout time.Duration `conf:"default:5s" yaml:"shutdownTimeout"`
	} `yaml:"web"`
	Debug bool `yaml:"debug"`
	DB    struct {
		Driver   string `conf:"default:sqlite,help:sqlite or postgres" yaml:"driver"`
		Filename string `conf:"default:/tmp/blogstore.db" yaml:"filename"`
		DSN      string `conf:"mask" yaml:"dsn"`
	} `yaml:"db"`
}

// Load resolves the configuration from args (usually os.Args[1:]) and the environment.
// With `--help` it prints the usage and returns conf.ErrHelpWanted.
func Load(args []string) (Configuration, error) {
	var cfg Configuration

	loadDotEnvs()

	if err := conf.Parse(args, namespace, &cfg); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			usage, err := conf.Usage(namespace, &cfg)
			if err != nil {
				return cfg, fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return cfg, conf.ErrHelpWanted
		}
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	// override values from the configuration file, when present
	fp, err := os.Open(cfg.Config.Path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("can't read the config file, while it exists: %w", err)
	} else if err == nil {
		defer fp.Close()
		yamlFile, err := io.ReadAll(fp)
		if err != nil {
			return cfg, fmt.Errorf("can't read config file: %w", err)
		}
		if err = yaml.Unmarshal(yamlFile, &cfg); err != nil {
			return cfg, fmt.Errorf("can't unmarshal config file: %w", err)
		}
	}

	return cfg, nil
}

// loadDotEnvs follows the dotenv convention; missing files are fine and set variables are never overwritten
func loadDotEnvs() {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")
}

// Storage extracts the database settings.
func (cfg Configuration) Storage() storage.Config {
	return storage.Config{
		Driver:   cfg.DB.Driver,
		Filename: cfg.DB.Filename,
		DSN:      cfg.DB.DSN,
		Debug:    cfg.Debug,
	}
}
