package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"cafe-orders/internal/tables"
)

const defaultJWTSecret = "change-me"

type Config struct {
	Env                string        `yaml:"env"`
	Port               int           `yaml:"port"`
	Store              string        `yaml:"store"`
	SQLitePath         string        `yaml:"sqlitePath"`
	PostgresDSN        string        `yaml:"postgresDSN"`
	RemoteURL          string        `yaml:"remoteURL"`
	JWTSecret          string        `yaml:"jwtSecret"`
	TokenTTL           time.Duration `yaml:"tokenTTL"`
	LogJSON            bool          `yaml:"logJSON"`
	PasswordProtection bool          `yaml:"passwordProtection"`
	AdminPassword      string        `yaml:"adminPassword"`
	RolePassword       string        `yaml:"rolePassword"`
	KitchenPoll        time.Duration `yaml:"kitchenPoll"`
	WaiterPoll         time.Duration `yaml:"waiterPoll"`
	CashierPoll        time.Duration `yaml:"cashierPoll"`
	Tables             []string      `yaml:"tables"`
	SeedProducts       bool          `yaml:"seedProducts"`
}

func Default() Config {
	return Config{
		Env:          "dev",
		Port:         5000,
		Store:        "memory",
		SQLitePath:   "./cafe-orders.db",
		RemoteURL:    "http://127.0.0.1:5000",
		JWTSecret:    defaultJWTSecret,
		TokenTTL:     12 * time.Hour,
		LogJSON:      true,
		RolePassword: "password123",
		KitchenPoll:  15 * time.Second,
		WaiterPoll:   15 * time.Second,
		CashierPoll:  30 * time.Second,
		Tables:       tables.DefaultNames(),
		SeedProducts: true,
	}
}

func EnvDefaults() Config {
	return fromEnv(Default())
}

// Load applies, in order, the defaults, the YAML file at path (if any) and the
// CAFE_* environment.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		var err error
		if c, err = LoadFile(path, c); err != nil {
			return Config{}, err
		}
	}
	c = fromEnv(c)
	return c, c.Validate()
}

// LoadFile overlays the keys present in a YAML file onto base.
func LoadFile(path string, base Config) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&base); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return base, nil
}

func (c Config) Validate() error {
	switch c.Store {
	case "memory", "sqlite":
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("config: postgres store needs a DSN")
		}
	default:
		return fmt.Errorf("config: unknown store %q", c.Store)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	if c.JWTSecret == "" {
		return errors.New("config: jwt secret is empty")
	}
	if c.Env == "prod" && c.JWTSecret == defaultJWTSecret {
		return errors.New("config: set CAFE_JWT_SECRET in prod")
	}
	if c.PasswordProtection && c.AdminPassword == "" {
		return errors.New("config: password protection needs an admin password")
	}
	return nil
}

func fromEnv(c Config) Config {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		switch os.Getenv(key) {
		case "1", "true", "TRUE":
			*dst = true
		case "0", "false", "FALSE":
			*dst = false
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	str("CAFE_ENV", &c.Env)
	if v := os.Getenv("CAFE_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	str("CAFE_STORE", &c.Store)
	str("CAFE_SQLITE_PATH", &c.SQLitePath)
	str("CAFE_POSTGRES_DSN", &c.PostgresDSN)
	str("CAFE_REMOTE_URL", &c.RemoteURL)
	str("CAFE_JWT_SECRET", &c.JWTSecret)
	duration("CAFE_TOKEN_TTL", &c.TokenTTL)
	boolean("CAFE_LOG_JSON", &c.LogJSON)
	boolean("CAFE_PASSWORD_PROTECTION", &c.PasswordProtection)
	str("CAFE_ADMIN_PASSWORD", &c.AdminPassword)
	str("CAFE_ROLE_PASSWORD", &c.RolePassword)
	duration("CAFE_KITCHEN_POLL", &c.KitchenPoll)
	duration("CAFE_WAITER_POLL", &c.WaiterPoll)
	duration("CAFE_CASHIER_POLL", &c.CashierPoll)
	if v := os.Getenv("CAFE_TABLES"); v != "" {
		var names []string
		for _, n := range strings.Split(v, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		c.Tables = names
	}
	boolean("CAFE_SEED_PRODUCTS", &c.SeedProducts)
	return c
}
