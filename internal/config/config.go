package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

type MongoConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
}

type DatabasesConfig struct {
	Topics        string `json:"topics"`
	UserProfiles  string `json:"userProfiles"`
	SessionEvents string `json:"sessionEvents"`
	Feedback      string `json:"feedback"`
}

type RedisConfig struct {
	Addr              string `json:"addr"`
	Password          string `json:"password"`
	DB                int    `json:"db"`
	SummaryTTLMinutes int    `json:"summaryTtlMinutes"`
}

type OpenAIConfig struct {
	APIURL       string `json:"apiUrl"`
	APIKey       string `json:"apiKey"`
	Organization string `json:"organization"`
	Model        string `json:"model"`
	Prompt       string `json:"prompt"`
	MaxTokens    int    `json:"maxTokens"`
}

type Config struct {
	Server struct {
		Host string `json:"host"`
		Port int    `json:"port"`
	} `json:"server"`
	Mongo     MongoConfig     `json:"mongo"`
	Databases DatabasesConfig `json:"databases"`
	Redis     RedisConfig     `json:"redis"`
	OpenAI    OpenAIConfig    `json:"openai"`
	Dialog    struct {
		DefaultService string   `json:"defaultService"`
		Services       []string `json:"services"`
	} `json:"dialog"`
}

var (
	once   sync.Once
	cfg    *Config
	cfgErr error
)

// LoadConfig reads config.json from disk (singleton). Secrets are never
// stored in the file; they come from the environment and override whatever
// the file says.
func LoadConfig(path string) (*Config, error) {
	once.Do(func() {
		raw, err := os.ReadFile(path)
		if err != nil {
			cfgErr = fmt.Errorf("failed to read config file: %w", err)
			return
		}
		var c Config
		if err := json.Unmarshal(raw, &c); err != nil {
			cfgErr = fmt.Errorf("invalid config format: %w", err)
			return
		}
		applyDefaults(&c)
		applyEnv(&c)
		if c.Mongo.URI == "" {
			cfgErr = errors.New("mongo.uri must be set in config or MONGO_URI")
			return
		}
		cfg = &c
	})
	return cfg, cfgErr
}

func applyDefaults(c *Config) {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "chatlearn"
	}
	if c.Databases.Topics == "" {
		c.Databases.Topics = "topics"
	}
	if c.Databases.UserProfiles == "" {
		c.Databases.UserProfiles = "user-profiles"
	}
	if c.Databases.SessionEvents == "" {
		c.Databases.SessionEvents = "user-session-events"
	}
	if c.Databases.Feedback == "" {
		c.Databases.Feedback = "feedback"
	}
	if c.Redis.SummaryTTLMinutes == 0 {
		c.Redis.SummaryTTLMinutes = 60
	}
	if c.OpenAI.APIURL == "" {
		c.OpenAI.APIURL = "https://api.openai.com/v1/chat/completions"
	}
	if c.OpenAI.MaxTokens == 0 {
		c.OpenAI.MaxTokens = 256
	}
	if c.Dialog.DefaultService == "" {
		c.Dialog.DefaultService = "dialog"
	}
	if len(c.Dialog.Services) == 0 {
		c.Dialog.Services = []string{c.Dialog.DefaultService}
	}
}

func applyEnv(c *Config) {
	if v := os.Getenv("MONGO_URI"); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv("MONGO_DATABASE"); v != "" {
		c.Mongo.Database = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = n
		}
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_ORGANIZATION"); v != "" {
		c.OpenAI.Organization = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.OpenAI.Model = v
	}
	if v := os.Getenv("OPENAI_MODEL_API"); v != "" {
		c.OpenAI.APIURL = v
	}
	if v := os.Getenv("OPENAI_PROMPT"); v != "" {
		c.OpenAI.Prompt = v
	}
	if v := os.Getenv("OPENAI_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.OpenAI.MaxTokens = n
		}
	}
}

// SummaryTTL is the redis lifetime of a cached exercise summary.
func (c *Config) SummaryTTL() time.Duration {
	return time.Duration(c.Redis.SummaryTTLMinutes) * time.Minute
}

// GetConfig returns the loaded config (must call LoadConfig first)
func GetConfig() *Config {
	return cfg
}

// ResetConfigForTest resets the singleton state (for testing only)
func ResetConfigForTest() {
	once = sync.Once{}
	cfg = nil
	cfgErr = nil
}
