// Package config carga la configuración del servicio desde YAML con
// overrides por variables de entorno.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Storage struct {
		// postgres | mysql
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxConns        int    `yaml:"max_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
		MySQL struct {
			DriverName string `yaml:"driver_name"`
			DSN        string `yaml:"dsn"`
		} `yaml:"mysql"`
	} `yaml:"storage"`

	Cache struct {
		// memory | redis
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		// UserTTL es el TTL del read-through cache de user records.
		UserTTL string `yaml:"user_ttl"`
	} `yaml:"cache"`

	Rate struct {
		Enabled bool   `yaml:"enabled"`
		Limit   int    `yaml:"limit"`
		Window  string `yaml:"window"`
	} `yaml:"rate"`

	Admin struct {
		// APIKey protege el trigger de reload de provisión.
		APIKey string `yaml:"api_key"`
	} `yaml:"admin"`

	Azure struct {
		Enabled           bool   `yaml:"enabled"`
		ClientID          string `yaml:"client_id"`
		ClientSecret      string `yaml:"client_secret"`
		CallbackURL       string `yaml:"callback_url"`
		Tenant            string `yaml:"tenant"`
		Resource          string `yaml:"resource"`
		UseCommonEndpoint bool   `yaml:"use_common_endpoint"`
	} `yaml:"azure"`
}

func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "postgres"
	}
	if c.Storage.MySQL.DriverName == "" {
		c.Storage.MySQL.DriverName = "mysql"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.UserTTL == "" {
		c.Cache.UserTTL = "2m"
	}
	if c.Rate.Limit == 0 {
		c.Rate.Limit = 60
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}

	applyEnv(&c)
	return &c, nil
}

// applyEnv pisa valores del YAML con variables de entorno.
func applyEnv(c *Config) {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("STORAGE_PG_MAX_CONNS"); ok {
		c.Storage.Postgres.MaxConns = v
	}
	if v, ok := getEnvStr("STORAGE_MYSQL_DSN"); ok {
		c.Storage.MySQL.DSN = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("CACHE_REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("CACHE_REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("CACHE_REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("CACHE_REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}
	if v, ok := getEnvStr("CACHE_USER_TTL"); ok {
		c.Cache.UserTTL = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_LIMIT"); ok {
		c.Rate.Limit = v
	}
	if v, ok := getEnvStr("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}

	// ADMIN
	if v, ok := getEnvStr("ADMIN_API_KEY"); ok {
		c.Admin.APIKey = v
	}

	// AZURE
	if v, ok := getEnvBool("AZURE_ENABLED"); ok {
		c.Azure.Enabled = v
	}
	if v, ok := getEnvStr("AZURE_CLIENT_ID"); ok {
		c.Azure.ClientID = v
	}
	if v, ok := getEnvStr("AZURE_CLIENT_SECRET"); ok {
		c.Azure.ClientSecret = v
	}
	if v, ok := getEnvStr("AZURE_CALLBACK_URL"); ok {
		c.Azure.CallbackURL = v
	}
	if v, ok := getEnvStr("AZURE_TENANT"); ok {
		c.Azure.Tenant = v
	}
	if v, ok := getEnvStr("AZURE_RESOURCE"); ok {
		c.Azure.Resource = v
	}
}

// UserCacheTTL parsea Cache.UserTTL (fallback 2m).
func (c *Config) UserCacheTTL() time.Duration {
	if d, err := time.ParseDuration(c.Cache.UserTTL); err == nil && d > 0 {
		return d
	}
	return 2 * time.Minute
}

// RateWindow parsea Rate.Window (fallback 1m).
func (c *Config) RateWindow() time.Duration {
	if d, err := time.ParseDuration(c.Rate.Window); err == nil && d > 0 {
		return d
	}
	return time.Minute
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
