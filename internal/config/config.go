// Package config loads the crawler and query server's shared key/value
// configuration file.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ogsearch/ogsearch/internal/errs"
)

// Config holds every recognized key from the configuration file, with
// defaults applied for the keys that have one.
type Config struct {
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	StartURL   string
	CrawlDepth int

	ServerPort int

	// ResumeEnabled turns on the persisted crawl-resume seen-set (off by
	// default, see internal/resume). ResumePath is where it is opened.
	ResumeEnabled bool
	ResumePath    string
}

const (
	defaultDBPort     = 5432
	defaultCrawlDepth = 2
	defaultServerPort = 8080
	defaultResumePath = "crawl_resume.db"
)

// Load reads a line-based INI-style file: "#" and ";" begin comments, other
// non-empty lines are "key = value", trimmed on both sides of "=".
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open %s: %v", errs.ErrConfiguration, path, err)
	}
	defer f.Close()

	raw := make(map[string]string)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		idx := strings.Index(line, "=")
		if idx < 0 {
			continue
		}

		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		raw[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", errs.ErrConfiguration, path, err)
	}

	cfg := &Config{
		DBPort:     defaultDBPort,
		CrawlDepth: defaultCrawlDepth,
		ServerPort: defaultServerPort,
		ResumePath: defaultResumePath,
	}

	cfg.DBHost = raw["db_host"]
	cfg.DBName = raw["db_name"]
	cfg.DBUser = raw["db_user"]
	cfg.DBPassword = raw["db_password"]
	cfg.StartURL = raw["start_url"]
	cfg.ResumeEnabled = raw["resume"] == "true" || raw["resume"] == "1"
	if v, ok := raw["resume_path"]; ok {
		cfg.ResumePath = v
	}

	if v, ok := raw["db_port"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: db_port %q: %v", errs.ErrConfiguration, v, err)
		}
		cfg.DBPort = n
	}
	if v, ok := raw["crawl_depth"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: crawl_depth %q: %v", errs.ErrConfiguration, v, err)
		}
		cfg.CrawlDepth = n
	}
	if v, ok := raw["server_port"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: server_port %q: %v", errs.ErrConfiguration, v, err)
		}
		cfg.ServerPort = n
	}

	return cfg, nil
}

// RequireStoreFields validates that the keys the Store needs to connect are
// present, returning a descriptive error naming the missing key(s).
func (c *Config) RequireStoreFields() error {
	var missing []string
	if c.DBHost == "" {
		missing = append(missing, "db_host")
	}
	if c.DBName == "" {
		missing = append(missing, "db_name")
	}
	if c.DBUser == "" {
		missing = append(missing, "db_user")
	}
	if c.DBPassword == "" {
		missing = append(missing, "db_password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required key(s): %s", errs.ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}

// RequireStartURL validates the crawler-only required key.
func (c *Config) RequireStartURL() error {
	if c.StartURL == "" {
		return fmt.Errorf("%w: missing required key: start_url", errs.ErrConfiguration)
	}
	return nil
}
