package main

import (
	"flag"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags() {
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	os.Args = []string{os.Args[0]}
}

func TestParseFlags_Default(t *testing.T) {
	resetFlags()

	path := parseFlags()
	assert.Equal(t, "config.env", path)
}

func TestParseFlags_Custom(t *testing.T) {
	resetFlags()
	os.Args = []string{os.Args[0], "-c", "custom.env"}

	path := parseFlags()
	assert.Equal(t, "custom.env", path)
}

func TestParseConfig_Defaults(t *testing.T) {
	appHost, appPort, logLevel,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		redisHost, redisPort, redisDB, redisPassword,
		jwtSecret, jwtAccessExpSecond, jwtRefreshExpSecond,
		revokedCacheExpSecond, prunerIntervalSecond,
		err := parseConfig("nonexistent.env")
	require.NoError(t, err)

	assert.Equal(t, "localhost", appHost)
	assert.Equal(t, "8080", appPort)
	assert.Equal(t, "info", logLevel)

	assert.Equal(t, "localhost", pgHost)
	assert.Equal(t, 5432, pgPort)
	assert.Equal(t, "user", pgUser)
	assert.Equal(t, "password", pgPassword)
	assert.Equal(t, "database", pgDB)
	assert.Equal(t, 16, pgMaxOpenConns)
	assert.Equal(t, 8, pgMaxIdleConns)

	assert.Equal(t, "localhost", redisHost)
	assert.Equal(t, 6379, redisPort)
	assert.Equal(t, 0, redisDB)
	assert.Equal(t, "", redisPassword)

	assert.Equal(t, "my_super_secret_key", jwtSecret)
	assert.Equal(t, 900, jwtAccessExpSecond)
	assert.Equal(t, 2592000, jwtRefreshExpSecond)

	assert.Equal(t, 900, revokedCacheExpSecond)
	assert.Equal(t, 3600, prunerIntervalSecond)
}

func TestParseConfig_EnvOverrides(t *testing.T) {
	t.Setenv("APP_HOST", "0.0.0.0")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_LOG_LEVEL", "debug")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("JWT_SECRET_KEY", "another_secret")
	t.Setenv("JWT_ACCESS_EXP_SECOND", "300")
	t.Setenv("DENYLIST_PRUNE_INTERVAL_SECOND", "0")

	appHost, appPort, logLevel,
		pgHost, pgPort, _, _, _,
		_, _,
		_, redisPort, _, _,
		jwtSecret, jwtAccessExpSecond, _,
		_, prunerIntervalSecond,
		err := parseConfig("nonexistent.env")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", appHost)
	assert.Equal(t, "9090", appPort)
	assert.Equal(t, "debug", logLevel)
	assert.Equal(t, "db.internal", pgHost)
	assert.Equal(t, 5433, pgPort)
	assert.Equal(t, 6380, redisPort)
	assert.Equal(t, "another_secret", jwtSecret)
	assert.Equal(t, 300, jwtAccessExpSecond)
	assert.Equal(t, 0, prunerIntervalSecond)
}

func TestParseConfig_FromFile(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "config-*.env")
	require.NoError(t, err)
	_, err = tmp.WriteString("APP_PORT=7070\nPOSTGRES_DB=authdb\n")
	require.NoError(t, err)
	require.NoError(t, tmp.Close())

	_, appPort, _,
		_, _, _, _, pgDB,
		_, _,
		_, _, _, _,
		_, _, _,
		_, _,
		parseErr := parseConfig(tmp.Name())
	require.NoError(t, parseErr)

	assert.Equal(t, "7070", appPort)
	assert.Equal(t, "authdb", pgDB)
}

func TestParseConfig_InvalidInt(t *testing.T) {
	t.Setenv("POSTGRES_PORT", "not-a-number")

	_, _, _,
		_, _, _, _, _,
		_, _,
		_, _, _, _,
		_, _, _,
		_, _,
		err := parseConfig("nonexistent.env")
	assert.Error(t, err)
}
