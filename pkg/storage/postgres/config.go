package postgres

import (
	"fmt"
	"strings"
)

// Config holds the connection settings for the postgres backend. SSLMode is
// optional; when empty the driver default applies.
type Config struct {
	User     string
	Password string
	Host     string
	Port     string
	DBName   string
	SSLMode  string
}

func (c *Config) ConString() string {
	conStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s", c.User, c.Password, c.Host, c.Port, c.DBName)
	if c.SSLMode != "" {
		conStr += "?sslmode=" + c.SSLMode
	}

	return conStr
}

// String masks the password so the config can be logged.
func (c Config) String() string {
	c.Password = strings.Repeat("*", len(c.Password))
	return fmt.Sprintf("%#v", c)
}

func (c *Config) IsValid() bool {
	return c.User != "" && c.Password != "" && c.Host != "" && c.Port != "" && c.DBName != ""
}
