package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig_Valid(t *testing.T) {
	ResetConfigForTest()
	tmp := "test_config.json"
	raw := []byte(`{
		"server": {
			"host": "localhost",
			"port": 9090
		},
		"mongo": {
			"uri": "mongodb://localhost:27017"
		},
		"redis": {
			"addr": "localhost:6379",
			"password": "",
			"db": 0
		},
		"dialog": {
			"defaultService": "dialog",
			"services": ["dialog", "dialog-2024-0312-dev"]
		}
	}`)
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		t.Fatalf("write tmp config: %v", err)
	}
	defer os.Remove(tmp)

	cfg, err := LoadConfig(tmp)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 9090 {
		t.Errorf("server config: %+v", cfg.Server)
	}
	if cfg.Mongo.URI != "mongodb://localhost:27017" {
		t.Errorf("mongo uri: %s", cfg.Mongo.URI)
	}
	if cfg.Mongo.Database != "chatlearn" {
		t.Errorf("mongo database default: %s", cfg.Mongo.Database)
	}
	if cfg.Databases.Topics != "topics" || cfg.Databases.UserProfiles != "user-profiles" {
		t.Errorf("database defaults: %+v", cfg.Databases)
	}
	if cfg.OpenAI.APIURL != "https://api.openai.com/v1/chat/completions" {
		t.Errorf("openai url default: %s", cfg.OpenAI.APIURL)
	}
	if len(cfg.Dialog.Services) != 2 {
		t.Errorf("services: %v", cfg.Dialog.Services)
	}
	if cfg.SummaryTTL() != 60*time.Minute {
		t.Errorf("summary ttl default: %v", cfg.SummaryTTL())
	}

	// Singleton: a second load returns the same instance.
	again, err := LoadConfig("does-not-matter.json")
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if again != cfg {
		t.Errorf("expected the cached config instance")
	}
	if GetConfig() != cfg {
		t.Errorf("GetConfig should return the loaded instance")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	ResetConfigForTest()
	if _, err := LoadConfig("no_such_config.json"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	ResetConfigForTest()
	tmp := "test_config_invalid.json"
	if err := os.WriteFile(tmp, []byte(`{invalid`), 0644); err != nil {
		t.Fatalf("write tmp config: %v", err)
	}
	defer os.Remove(tmp)

	if _, err := LoadConfig(tmp); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestLoadConfig_MissingMongoURI(t *testing.T) {
	ResetConfigForTest()
	tmp := "test_config_no_mongo.json"
	if err := os.WriteFile(tmp, []byte(`{}`), 0644); err != nil {
		t.Fatalf("write tmp config: %v", err)
	}
	defer os.Remove(tmp)

	if _, err := LoadConfig(tmp); err == nil {
		t.Fatal("expected error for missing mongo uri")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	ResetConfigForTest()
	tmp := "test_config_env.json"
	if err := os.WriteFile(tmp, []byte(`{"mongo": {"uri": "mongodb://file:27017"}}`), 0644); err != nil {
		t.Fatalf("write tmp config: %v", err)
	}
	defer os.Remove(tmp)

	t.Setenv("MONGO_URI", "mongodb://env:27017")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MAX_TOKENS", "512")

	cfg, err := LoadConfig(tmp)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Mongo.URI != "mongodb://env:27017" {
		t.Errorf("env should override file: %s", cfg.Mongo.URI)
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Errorf("api key: %s", cfg.OpenAI.APIKey)
	}
	if cfg.OpenAI.MaxTokens != 512 {
		t.Errorf("max tokens: %d", cfg.OpenAI.MaxTokens)
	}
}
