package etc

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"tagd/util"
)

// Config is the process-wide configuration. Every field has a default,
// used whenever the YAML document omits it or no config file is
// present.
type Config struct {
	Index    Index    `yaml:"index"`
	EventLog EventLog `yaml:"eventLog"`
	Server   Server   `yaml:"server"`
}

// Index holds the index's tuning constants: message and topic
// cutoffs, the inverse-tag creation threshold, plus sizing and
// throttling knobs.
type Index struct {
	MessageCutoff     uint32 `yaml:"messageCutoff"`
	TopicCutoff       uint32 `yaml:"topicCutoff"`
	InverseThreshold  int    `yaml:"inverseThreshold"`
	TopicEstimate     int    `yaml:"topicEstimate"`
	FlushIntervalSecs int    `yaml:"flushIntervalSeconds"`
}

// FlushInterval converts the configured flush-counts tick to a
// time.Duration, defaulting to a minute.
func (i Index) FlushInterval() time.Duration {
	if i.FlushIntervalSecs <= 0 {
		return time.Minute
	}
	return time.Duration(i.FlushIntervalSecs) * time.Second
}

// EventLog configures the Redis connection backing the external
// mutation log the index is rebuilt from at startup.
type EventLog struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

// Server configures the line-delimited JSON transport listener.
type Server struct {
	SocketPath string `yaml:"socketPath"`
	Workers    int    `yaml:"workers"`
}

var (
	config *Config
	once   sync.Once
)

func defaults() *Config {
	return &Config{
		Index: Index{
			MessageCutoff:     43200,
			TopicCutoff:       5 * 86400,
			InverseThreshold:  10000,
			TopicEstimate:     1024,
			FlushIntervalSecs: 60,
		},
		EventLog: EventLog{
			Addr: "127.0.0.1:6379",
			Key:  "tagd:mutations",
		},
		Server: Server{
			SocketPath: "/tmp/tagd.sock",
			Workers:    32,
		},
	}
}

// GetConfig loads the YAML config at path once per process and caches
// it behind a sync.Once-guarded singleton.
func GetConfig(path string) *Config {
	if config != nil {
		return config
	}
	once.Do(func() {
		createConfig(path)
	})
	return config
}

func createConfig(path string) {
	config = defaults()

	executablePath, err := os.Executable()
	if err != nil {
		util.Log.Fatalf("config: resolving executable path: %v", err)
	}
	configFilePath := filepath.Join(filepath.Dir(executablePath), path)

	yamlFile, err := os.ReadFile(configFilePath)
	if err != nil {
		util.Log.Printf("config: no config file at %s, using defaults", configFilePath)
		return
	}

	if err := yaml.Unmarshal(yamlFile, config); err != nil {
		util.Log.Fatalf("config: parsing %s: %v", configFilePath, err)
	}
}
