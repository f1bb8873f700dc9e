package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent strata configuration stored as config.toml
// in the .strata/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version   int             `toml:"version"`
	Index     IndexConfig     `toml:"index"`
	Embedding EmbeddingConfig `toml:"embedding"`
	MCP       MCPConfig       `toml:"mcp"`
	API       APIConfig       `toml:"api"`
	Client    ClientConfig    `toml:"client"`
}

// IndexConfig holds connection settings for the index service.
type IndexConfig struct {
	Host     string `toml:"host,omitempty"`
	Port     int    `toml:"port,omitempty"`
	Name     string `toml:"name,omitempty"`
	Username string `toml:"username,omitempty"`
	Password string `toml:"password,omitempty"`
	UseTLS   bool   `toml:"use_tls,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider    string `toml:"provider,omitempty"`
	Endpoint    string `toml:"endpoint,omitempty"`
	Token       string `toml:"token,omitempty"`
	Model       string `toml:"model,omitempty"`
	Dimensions  uint   `toml:"dimensions,omitempty"`
	VectorField string `toml:"vector_field,omitempty"`
}

// MCPConfig holds MCP server settings.
type MCPConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to a running
// server. Values are full URLs (scheme + host + port).
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"index.host": {
		get: func(c *Config) string { return c.Index.Host },
		set: func(c *Config, v string) error { c.Index.Host = v; return nil },
	},
	"index.port": {
		get: func(c *Config) string {
			if c.Index.Port == 0 {
				return ""
			}
			return strconv.Itoa(c.Index.Port)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid value for index.port: %q", v)
			}
			c.Index.Port = n
			return nil
		},
	},
	"index.name": {
		get: func(c *Config) string { return c.Index.Name },
		set: func(c *Config, v string) error { c.Index.Name = v; return nil },
	},
	"index.username": {
		get: func(c *Config) string { return c.Index.Username },
		set: func(c *Config, v string) error { c.Index.Username = v; return nil },
	},
	"index.password": {
		get: func(c *Config) string { return c.Index.Password },
		set: func(c *Config, v string) error { c.Index.Password = v; return nil },
	},
	"index.use_tls": {
		get: func(c *Config) string { return strconv.FormatBool(c.Index.UseTLS) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for index.use_tls: %w", err)
			}
			c.Index.UseTLS = b
			return nil
		},
	},
	"embedding.provider": {
		get: func(c *Config) string { return c.Embedding.Provider },
		set: func(c *Config, v string) error { c.Embedding.Provider = v; return nil },
	},
	"embedding.endpoint": {
		get: func(c *Config) string { return c.Embedding.Endpoint },
		set: func(c *Config, v string) error { c.Embedding.Endpoint = v; return nil },
	},
	"embedding.token": {
		get: func(c *Config) string { return c.Embedding.Token },
		set: func(c *Config, v string) error { c.Embedding.Token = v; return nil },
	},
	"embedding.model": {
		get: func(c *Config) string { return c.Embedding.Model },
		set: func(c *Config, v string) error { c.Embedding.Model = v; return nil },
	},
	"embedding.dimensions": {
		get: func(c *Config) string {
			if c.Embedding.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Embedding.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.dimensions: %w", err)
			}
			c.Embedding.Dimensions = uint(n)
			return nil
		},
	},
	"embedding.vector_field": {
		get: func(c *Config) string { return c.Embedding.VectorField },
		set: func(c *Config, v string) error { c.Embedding.VectorField = v; return nil },
	},
	"mcp.listen": {
		get: func(c *Config) string { return c.MCP.Listen },
		set: func(c *Config, v string) error { c.MCP.Listen = v; return nil },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"client.api_target": {
		get: func(c *Config) string { return c.Client.APITarget },
		set: func(c *Config, v string) error { c.Client.APITarget = v; return nil },
	},
}
