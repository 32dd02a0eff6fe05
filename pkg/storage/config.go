package storage

import (
	"fmt"
	"os"
)

// DefaultContainer holds uploaded source documents unless configured otherwise.
const DefaultContainer = "source-documents"

// Config locates the blob container.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
}

// Env names the environment variables that override Config fields.
type Env struct {
	ContainerName    string
	ConnectionString string
}

// Finalize applies defaults, environment overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if c.ContainerName == "" {
		c.ContainerName = DefaultContainer
	}
	if env != nil {
		override(env.ContainerName, &c.ContainerName)
		override(env.ConnectionString, &c.ConnectionString)
	}

	switch {
	case c.ContainerName == "":
		return fmt.Errorf("container_name required")
	case c.ConnectionString == "":
		return fmt.Errorf("connection_string required")
	}
	return nil
}

// Merge takes the overlay's non-empty fields.
func (c *Config) Merge(overlay *Config) {
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
}

func override(name string, dst *string) {
	if name == "" {
		return
	}
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}
