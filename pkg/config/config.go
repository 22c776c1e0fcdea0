// Package config reads run settings from the environment into explicit
// structs built once at start-up.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvPostgresUser    = "POSTGRES_USER"
	EnvPostgresHost    = "POSTGRES_HOST"
	EnvPostgresPort    = "POSTGRES_PORT"
	EnvPostgresDB      = "POSTGRES_DB"
	EnvPostgresSSLMode = "POSTGRES_SSLMODE"
	EnvPushgatewayURL  = "PUSHGATEWAY_URL"
	EnvLogLevel        = "TRAMITA_LOG_LEVEL"
)

// ErrMissingSetting is returned when a required environment variable is unset.
var ErrMissingSetting = errors.New("missing required setting")

// LookupFunc reads one environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Database holds the connection settings. No password is carried: the
// server is expected to authenticate the user by peer, trust or an external
// secret mechanism such as a pgpass file.
type Database struct {
	User    string
	Host    string
	Port    int
	Name    string
	SSLMode string
}

// DSN returns the connection URL postgresql://user@host:port/name.
func (d Database) DSN() string {
	dsn := url.URL{
		Scheme: "postgresql",
		User:   url.User(d.User),
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Name,
	}
	if d.SSLMode != "" {
		dsn.RawQuery = url.Values{"sslmode": []string{d.SSLMode}}.Encode()
	}
	return dsn.String()
}

// Runtime holds optional settings that do not affect the data produced.
type Runtime struct {
	PushgatewayURL string
	LogLevel       string
}

// DatabaseFromEnv builds the database settings, reporting every missing
// required variable at once.
func DatabaseFromEnv(lookup LookupFunc) (Database, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var missing []string
	require := func(key string) string {
		value, ok := lookup(key)
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			missing = append(missing, key)
		}
		return value
	}

	database := Database{
		User: require(EnvPostgresUser),
		Host: require(EnvPostgresHost),
		Name: require(EnvPostgresDB),
	}
	port := require(EnvPostgresPort)
	if len(missing) > 0 {
		return Database{}, fmt.Errorf("%w: %s", ErrMissingSetting, strings.Join(missing, ", "))
	}

	portNumber, err := strconv.Atoi(port)
	if err != nil || portNumber <= 0 || portNumber > 65535 {
		return Database{}, fmt.Errorf("invalid %s %q", EnvPostgresPort, port)
	}
	database.Port = portNumber

	if sslMode, ok := lookup(EnvPostgresSSLMode); ok {
		database.SSLMode = strings.TrimSpace(sslMode)
	}
	return database, nil
}

// RuntimeFromEnv reads the optional runtime settings.
func RuntimeFromEnv(lookup LookupFunc) Runtime {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	pushgatewayURL, _ := lookup(EnvPushgatewayURL)
	logLevel, _ := lookup(EnvLogLevel)
	return Runtime{
		PushgatewayURL: strings.TrimSpace(pushgatewayURL),
		LogLevel:       strings.TrimSpace(logLevel),
	}
}
