package testdb

import "os"

// Environment variables consulted by OpenPostgres, in order of preference.
const (
	EnvTestDatabaseURL = "KANACARDS_TEST_DATABASE_URL"
	EnvDatabaseURL     = "DATABASE_URL"
)

// ciEnvVars are set by the common CI providers.
var ciEnvVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS", "CIRCLECI"}

// IsCI reports whether the tests run under a CI provider.
func IsCI() bool {
	for _, name := range ciEnvVars {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// DatabaseURL returns the first configured test database URL, or "".
func DatabaseURL() string {
	return firstEnv(EnvTestDatabaseURL, EnvDatabaseURL)
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
