package config

import (
	"errors"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/locvowork/employee_management_sample/ems/internal/database"
	"github.com/locvowork/employee_management_sample/ems/internal/domain"
)

var DefaultEnvConfig *envConfig

type envConfig struct {
	// database config
	DB_DRIVER            string
	DB_HOST              string
	DB_PORT              int
	DB_USER              string
	DB_PASSWORD          string
	DB_NAME              string
	DB_SSL_MODE          string
	DB_TIMEZONE          string
	DB_OPTIONS           map[string]string
	DB_CONN_MAX_LIFETIME time.Duration
	DB_MAX_IDLE_CONNS    int
	DB_MAX_OPEN_CONNS    int
	// auth config
	ADMIN_USER     string
	ADMIN_PASSWORD string
	EMPLOYEE_LOGIN bool
	// logger config
	LOG_LEVEL     string
	LOG_FILE_PATH string
	// server config
	APP_PORT        int
	REPORT_TEMPLATE string
}

var defaults = map[string]interface{}{
	"DB_DRIVER":            "postgres",
	"DB_HOST":              "localhost",
	"DB_PORT":              5432,
	"DB_USER":              "postgres",
	"DB_PASSWORD":          "postgres",
	"DB_NAME":              "employeeData",
	"DB_SSL_MODE":          "disable",
	"DB_TIMEZONE":          "",
	"DB_OPTIONS":           "",
	"DB_CONN_MAX_LIFETIME": "20m",
	"DB_MAX_IDLE_CONNS":    10,
	"DB_MAX_OPEN_CONNS":    100,
	"ADMIN_USER":           "admin",
	"ADMIN_PASSWORD":       "",
	"EMPLOYEE_LOGIN":       true,
	"LOG_LEVEL":            "info",
	"LOG_FILE_PATH":        "",
	"APP_PORT":             8080,
	"REPORT_TEMPLATE":      "",
}

// LoadEnvConfig reads .env files (a missing file is not an error) and then
// the process environment, which wins over .env values.
func LoadEnvConfig(envFiles ...string) error {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg, err := fromViper(v)
	if err != nil {
		return err
	}
	DefaultEnvConfig = cfg
	return nil
}

func fromViper(v *viper.Viper) (*envConfig, error) {
	lifetime, err := parseDuration(v.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, err
	}
	options, err := parseOptions(v.GetString("DB_OPTIONS"))
	if err != nil {
		return nil, err
	}

	return &envConfig{
		DB_DRIVER:            v.GetString("DB_DRIVER"),
		DB_HOST:              v.GetString("DB_HOST"),
		DB_PORT:              v.GetInt("DB_PORT"),
		DB_USER:              v.GetString("DB_USER"),
		DB_PASSWORD:          v.GetString("DB_PASSWORD"),
		DB_NAME:              v.GetString("DB_NAME"),
		DB_SSL_MODE:          v.GetString("DB_SSL_MODE"),
		DB_TIMEZONE:          v.GetString("DB_TIMEZONE"),
		DB_OPTIONS:           options,
		DB_CONN_MAX_LIFETIME: lifetime,
		DB_MAX_IDLE_CONNS:    v.GetInt("DB_MAX_IDLE_CONNS"),
		DB_MAX_OPEN_CONNS:    v.GetInt("DB_MAX_OPEN_CONNS"),
		ADMIN_USER:           v.GetString("ADMIN_USER"),
		ADMIN_PASSWORD:       v.GetString("ADMIN_PASSWORD"),
		EMPLOYEE_LOGIN:       v.GetBool("EMPLOYEE_LOGIN"),
		LOG_LEVEL:            v.GetString("LOG_LEVEL"),
		LOG_FILE_PATH:        v.GetString("LOG_FILE_PATH"),
		APP_PORT:             v.GetInt("APP_PORT"),
		REPORT_TEMPLATE:      v.GetString("REPORT_TEMPLATE"),
	}, nil
}

// parseDuration accepts Go durations ("20m") and plain seconds ("1200").
func parseDuration(val string) (time.Duration, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d, nil
	}
	if i, err := strconv.Atoi(val); err == nil {
		return time.Duration(i) * time.Second, nil
	}
	return 0, errors.New("config: invalid duration " + strconv.Quote(val))
}

// parseOptions reads "k=v,k=v" into a map.
func parseOptions(val string) (map[string]string, error) {
	out := map[string]string{}
	for _, pair := range strings.Split(val, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, errors.New("config: invalid DB_OPTIONS entry " + strconv.Quote(pair))
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}

func (c *envConfig) DatabaseConfig() database.Config {
	return database.Config{
		Driver:          c.DB_DRIVER,
		Host:            c.DB_HOST,
		Port:            c.DB_PORT,
		User:            c.DB_USER,
		Password:        c.DB_PASSWORD,
		DBName:          c.DB_NAME,
		SSLMode:         c.DB_SSL_MODE,
		TimeZone:        c.DB_TIMEZONE,
		Options:         c.DB_OPTIONS,
		MaxOpenConns:    c.DB_MAX_OPEN_CONNS,
		MaxIdleConns:    c.DB_MAX_IDLE_CONNS,
		ConnMaxLifetime: c.DB_CONN_MAX_LIFETIME,
	}
}

func (c *envConfig) AuthPolicy() domain.AuthPolicy {
	return domain.AuthPolicy{
		AdminUser:     c.ADMIN_USER,
		AdminPassword: c.ADMIN_PASSWORD,
		EmployeeLogin: c.EMPLOYEE_LOGIN,
	}
}
