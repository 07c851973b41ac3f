// Copyright (C) 2025 The Podkeep Authors.
//
// This file is part of Podkeep.
//
// Podkeep is free software: you can redistribute it and/or modify it under the
// terms of the GNU Affero General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.
//
// Podkeep is distributed in the hope that it will be useful, but WITHOUT ANY
// WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS
// FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License for
// more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with Podkeep.  If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/podkeep/podkeep"
	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Driver  string
	Source  string
	LogMode bool
}

type ClientConfig struct {
	CacheDir  string
	MaxAge    time.Duration
	UseCache  bool
	UserAgent string
}

func (c *ClientConfig) Merge(o ClientConfig) {
	if o.CacheDir != "" {
		c.CacheDir = o.CacheDir
	}
	c.MaxAge = o.MaxAge
	c.UseCache = o.UseCache
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
}

// PodindexConfig holds the upstream directory API settings. Key is the
// API key sent with every request.
type PodindexConfig struct {
	Endpoint string
	Key      string
	Client   ClientConfig
}

// CatalogConfig is the freshness and retention tuning surface. All values
// are read once at startup.
type CatalogConfig struct {
	DB DatabaseConfig

	// volatile tier
	CacheEnabled    bool
	CacheMaxEntries int

	// freshness
	EpisodeTTL     time.Duration
	WindowSize     int
	StaleThreshold time.Duration
	StaleBatchSize int

	// retention
	RetainCount int

	// scheduling
	FeaturedRefreshInterval time.Duration
	StaleRefreshInterval    time.Duration
	SweepSchedule           string // cron expression
	CacheCleanupInterval    time.Duration
	MisfireGrace            time.Duration
}

type ProgressConfig struct {
	DB DatabaseConfig
}

type Config struct {
	Catalog  CatalogConfig
	Client   ClientConfig
	DataDir  string
	Podindex PodindexConfig
	Progress ProgressConfig
}

func configDefaults(v *viper.Viper) {
	v.SetDefault("Client.CacheDir", ".httpcache")
	v.SetDefault("Client.MaxAge", "15m")
	v.SetDefault("Client.UseCache", "false")
	v.SetDefault("Client.UserAgent", userAgent())

	v.SetDefault("DataDir", ".")

	v.SetDefault("Podindex.Endpoint", "https://listen-api.listennotes.com/api/v2")
	v.SetDefault("Podindex.Key", "")
	v.SetDefault("Podindex.Client.MaxAge", "15m")
	v.SetDefault("Podindex.Client.UseCache", true)

	v.SetDefault("Catalog.DB.Driver", "sqlite3")
	v.SetDefault("Catalog.DB.Source", "catalog.db")
	v.SetDefault("Catalog.DB.LogMode", "false")
	v.SetDefault("Catalog.CacheEnabled", "true")
	v.SetDefault("Catalog.CacheMaxEntries", "2000")
	v.SetDefault("Catalog.EpisodeTTL", "6h")
	v.SetDefault("Catalog.WindowSize", "20")
	v.SetDefault("Catalog.StaleThreshold", "24h")
	v.SetDefault("Catalog.StaleBatchSize", "10")
	v.SetDefault("Catalog.RetainCount", "20")
	v.SetDefault("Catalog.FeaturedRefreshInterval", "2h")
	v.SetDefault("Catalog.StaleRefreshInterval", "4h")
	v.SetDefault("Catalog.SweepSchedule", "0 3 * * *") // daily at 3am
	v.SetDefault("Catalog.CacheCleanupInterval", "30m")
	v.SetDefault("Catalog.MisfireGrace", "10m")

	v.SetDefault("Progress.DB.Driver", "sqlite3")
	v.SetDefault("Progress.DB.Source", "progress.db")
	v.SetDefault("Progress.DB.LogMode", "false")
}

func userAgent() string {
	return podkeep.AppName + "/" + podkeep.Version + " ( " + podkeep.Contact + " ) "
}

func readConfig(v *viper.Viper) (*Config, error) {
	var config Config
	var pathRegexp = regexp.MustCompile(`(file|dir|source)$`)
	err := v.ReadInConfig()
	dir := filepath.Dir(v.ConfigFileUsed())
	for _, k := range v.AllKeys() {
		if pathRegexp.MatchString(k) {
			val := v.Get(k)
			if strings.HasPrefix(val.(string), "/") == false {
				val = fmt.Sprintf("%s/%s", dir, val.(string))
				v.Set(k, val)
			}
		}
	}
	if err == nil {
		err = v.Unmarshal(&config)
	}
	return &config, err
}

func TestConfig() (*Config, error) {
	testDir := os.Getenv("TEST_CONFIG")
	if testDir == "" {
		return nil, errors.New("missing test config")
	}
	v := viper.New()
	configDefaults(v)
	v.SetConfigFile(filepath.Join(testDir, "test.yaml"))
	v.SetDefault("Catalog.DB.Source", filepath.Join(testDir, "catalog.db"))
	v.SetDefault("Progress.DB.Source", filepath.Join(testDir, "progress.db"))
	return readConfig(v)
}

var configFile, configPath, configName string

func SetConfigFile(path string) {
	configFile = path
}

func AddConfigPath(path string) {
	configPath = path
}

func SetConfigName(name string) {
	configName = name
}

func GetConfig() (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	if configName != "" {
		v.SetConfigName(configName)
	}
	configDefaults(v)
	return readConfig(v)
}

func LoadConfig(dir string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	configDefaults(v)
	return readConfig(v)
}
