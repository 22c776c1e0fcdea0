package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func completeEnv() map[string]string {
	return map[string]string{
		EnvPostgresUser: "camara",
		EnvPostgresHost: "db.local",
		EnvPostgresPort: "5432",
		EnvPostgresDB:   "dados",
	}
}

func TestDatabaseFromEnv(t *testing.T) {
	database, err := DatabaseFromEnv(envMap(completeEnv()))
	require.NoError(t, err)
	assert.Equal(t, Database{User: "camara", Host: "db.local", Port: 5432, Name: "dados"}, database)
	assert.Equal(t, "postgresql://camara@db.local:5432/dados", database.DSN())
}

func TestDatabaseFromEnvSSLMode(t *testing.T) {
	env := completeEnv()
	env[EnvPostgresSSLMode] = "disable"

	database, err := DatabaseFromEnv(envMap(env))
	require.NoError(t, err)
	assert.Equal(t, "postgresql://camara@db.local:5432/dados?sslmode=disable", database.DSN())
}

func TestDatabaseFromEnvMissing(t *testing.T) {
	env := completeEnv()
	delete(env, EnvPostgresHost)
	env[EnvPostgresDB] = "  "

	_, err := DatabaseFromEnv(envMap(env))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingSetting))
	assert.Contains(t, err.Error(), EnvPostgresHost)
	assert.Contains(t, err.Error(), EnvPostgresDB)
}

func TestDatabaseFromEnvInvalidPort(t *testing.T) {
	for _, port := range []string{"postgres", "0", "70000"} {
		t.Run(port, func(t *testing.T) {
			env := completeEnv()
			env[EnvPostgresPort] = port
			_, err := DatabaseFromEnv(envMap(env))
			assert.Error(t, err)
		})
	}
}

func TestDSNIPv6Host(t *testing.T) {
	database := Database{User: "camara", Host: "::1", Port: 5432, Name: "dados"}
	assert.Equal(t, "postgresql://camara@[::1]:5432/dados", database.DSN())
}

func TestRuntimeFromEnv(t *testing.T) {
	runtime := RuntimeFromEnv(envMap(map[string]string{
		EnvPushgatewayURL: " http://push:9091 ",
		EnvLogLevel:       "debug",
	}))
	assert.Equal(t, Runtime{PushgatewayURL: "http://push:9091", LogLevel: "debug"}, runtime)

	assert.Equal(t, Runtime{}, RuntimeFromEnv(envMap(nil)))
}
