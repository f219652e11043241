// Package config reads server configuration from the environment,
// with .env file support for development.
package config

import (
	"net"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds settings shared by the openack binaries.
type Config struct {
	Host           string
	Port           string
	MessagesRoot   string
	PeopleFile     string
	AgentIDsFile   string
	TransactionLog string

	// WatchDirectory enables fsnotify auto-reload of the people and
	// agent id files.
	WatchDirectory bool
}

// Load reads configuration from OPENACK_* environment variables,
// loading a .env file first if one is present. defaultPort
// distinguishes the send and fetch binaries.
func Load(defaultPort string) *Config {
	_ = godotenv.Load()

	root := getEnv("OPENACK_MESSAGES_ROOT", "/messages")
	return &Config{
		Host:           getEnv("OPENACK_HOST", "0.0.0.0"),
		Port:           getEnv("OPENACK_PORT", defaultPort),
		MessagesRoot:   root,
		PeopleFile:     getEnv("OPENACK_PEOPLE_FILE", "/var/lib/openack/people.yml"),
		AgentIDsFile:   getEnv("OPENACK_AGENT_IDS_FILE", "/var/lib/openack/agent_ids.yml"),
		TransactionLog: getEnv("OPENACK_TRANSLOG", filepath.Join(root, "transactions.log")),
		WatchDirectory: getEnv("OPENACK_WATCH_DIRECTORY", "false") == "true",
	}
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
