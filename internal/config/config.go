package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Addr          string        `yaml:"addr"`
	LogLevel      string        `yaml:"log_level"`
	LogJSON       bool          `yaml:"log_json"`
	SecureCookies bool          `yaml:"secure_cookies"`
	JwtTTL        time.Duration `yaml:"jwt_ttl"`
	PostsPerPage  int           `yaml:"posts_per_page"`
	CorsOrigins   []string      `yaml:"cors_origins"`
	TemplatesDir  string        `yaml:"templates_dir"`
	Uploads       Uploads       `yaml:"uploads"`
}

type Private struct {
	JwtKey string `yaml:"jwt_key"`
	Pg     Pg     `yaml:"pg"`
	Rcon   Rcon   `yaml:"rcon"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Rcon struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
}

// Uploads binds each upload category to its directory and acceptance policy.
type Uploads struct {
	BlogPosts UploadPolicy `yaml:"blog_posts"`
	Profiles  UploadPolicy `yaml:"profiles"`
}

type UploadPolicy struct {
	Dir               string   `yaml:"dir"`
	MaxSizeBytes      int64    `yaml:"max_size_bytes"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
	ThumbnailWidth    int      `yaml:"thumbnail_width"`
	ThumbnailHeight   int      `yaml:"thumbnail_height"`
}

// Policy returns the policy bound to the named category.
func (u Uploads) Policy(category string) (UploadPolicy, bool) {
	switch category {
	case "blog-posts":
		return u.BlogPosts, true
	case "profiles":
		return u.Profiles, true
	}
	return UploadPolicy{}, false
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func (c *Config) JwtTTL() time.Duration {
	return c.Public.JwtTTL
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic(fmt.Sprintf("can't unmarshal config file %s: %v", configPath, err))
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	return &Config{public, private}
}
