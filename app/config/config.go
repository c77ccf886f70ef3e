package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type ChunkingCfg struct {
	ChunkSize         int `yaml:"chunk_size" json:"chunk_size"`
	InterChunkDelayMs int `yaml:"inter_chunk_delay_ms" json:"inter_chunk_delay_ms"`
}

type GeminiCfg struct {
	Model              string  `yaml:"model" json:"model"`
	TimeoutSeconds     int     `yaml:"timeout_seconds" json:"timeout_seconds"`
	Temperature        float64 `yaml:"temperature" json:"temperature"`
	EnableGoogleSearch bool    `yaml:"enable_google_search" json:"enable_google_search"`
}

type CacheCfg struct {
	RedisTTLHours int `yaml:"redis_ttl_hours" json:"redis_ttl_hours"`
	MongoTTLHours int `yaml:"mongo_ttl_hours" json:"mongo_ttl_hours"`
	WarmUpLimit   int `yaml:"warmup_limit" json:"warmup_limit"`
}

type MatchingCfg struct {
	JWThreshold float64 `yaml:"jw_threshold" json:"jw_threshold"`
}

type PipelineCfg struct {
	Chunking ChunkingCfg `yaml:"chunking" json:"chunking"`
	Gemini   GeminiCfg   `yaml:"gemini" json:"gemini"`
	Cache    CacheCfg    `yaml:"cache" json:"cache"`
	Matching MatchingCfg `yaml:"matching" json:"matching"`
}

var C PipelineCfg

func Load(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, &C); err != nil {
		return err
	}
	// ENV overrides
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		C.Gemini.Model = model
	}
	switch os.Getenv("GEMINI_GOOGLE_SEARCH") {
	case "0":
		C.Gemini.EnableGoogleSearch = false
	case "1":
		C.Gemini.EnableGoogleSearch = true
	}
	return nil
}

func InterChunkDelay() time.Duration {
	if C.Chunking.InterChunkDelayMs <= 0 {
		return 1500 * time.Millisecond
	}
	return time.Duration(C.Chunking.InterChunkDelayMs) * time.Millisecond
}
