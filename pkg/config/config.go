// Package config loads and validates the YAML configuration file shared
// by the robustmq-meta and robustmq-broker binaries.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MetaRuntimeConfig tunes the multi-Raft layer and the cluster
// controller's heartbeat timing.
type MetaRuntimeConfig struct {
	OffsetRaftGroupNum    uint32 `yaml:"offset_raft_group_num"`
	DataRaftGroupNum      uint32 `yaml:"data_raft_group_num"`
	RaftWriteTimeoutSec   uint64 `yaml:"raft_write_timeout_sec"`
	HeartbeatTimeoutMs    uint64 `yaml:"heartbeat_timeout_ms"`
	HeartbeatCheckTimeMs  uint64 `yaml:"heartbeat_check_time_ms"`
}

// MqttSystemMonitorConfig controls the optional host resource watchdog.
type MqttSystemMonitorConfig struct {
	Enable              bool    `yaml:"enable"`
	OSCPUHighWatermark    float32 `yaml:"os_cpu_high_watermark"`
	OSMemoryHighWatermark float32 `yaml:"os_memory_high_watermark"`
}

// DelayTaskConfig tunes the delay-task engine's sharding and concurrency.
type DelayTaskConfig struct {
	DelayQueueNum           int `yaml:"delay_queue_num"`
	MaxHandlerConcurrency   int `yaml:"max_handler_concurrency"`
	LastWillDelayIntervalMs int `yaml:"last_will_delay_interval_ms"`
}

// Config is the top-level shape of the YAML file passed via --conf.
type Config struct {
	BrokerID   uint64            `yaml:"broker_id"`
	ClusterName string           `yaml:"cluster_name"`
	MetaAddrs  map[uint64]string `yaml:"meta_addrs"`

	MetaRuntime MetaRuntimeConfig       `yaml:"meta_runtime"`
	DelayTask   DelayTaskConfig         `yaml:"delay_task"`
	SystemMonitor MqttSystemMonitorConfig `yaml:"mqtt_system_monitor"`

	NodeIP        string `yaml:"node_ip"`
	NodeInnerAddr string `yaml:"node_inner_addr"`
	ExternAddr    string `yaml:"extern_addr"`

	// Ambient fields every binary needs regardless of domain role.
	DataDir  string `yaml:"data_dir"`
	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`
	GRPCAddr string `yaml:"grpc_addr"` // this node's own inner-RPC bind address
}

// Load reads and validates a Config from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.MetaRuntime.OffsetRaftGroupNum == 0 {
		c.MetaRuntime.OffsetRaftGroupNum = 1
	}
	if c.MetaRuntime.DataRaftGroupNum == 0 {
		c.MetaRuntime.DataRaftGroupNum = 1
	}
	// effective write timeout is max(cfg, 30s); store it pre-floored so
	// callers never have to repeat the max() themselves.
	if c.MetaRuntime.RaftWriteTimeoutSec < 30 {
		c.MetaRuntime.RaftWriteTimeoutSec = 30
	}
	if c.MetaRuntime.HeartbeatTimeoutMs == 0 {
		c.MetaRuntime.HeartbeatTimeoutMs = 30000
	}
	if c.MetaRuntime.HeartbeatCheckTimeMs == 0 {
		c.MetaRuntime.HeartbeatCheckTimeMs = c.MetaRuntime.HeartbeatTimeoutMs / 3
	}
	if c.DelayTask.DelayQueueNum == 0 {
		c.DelayTask.DelayQueueNum = 4
	}
	if c.DelayTask.MaxHandlerConcurrency == 0 {
		c.DelayTask.MaxHandlerConcurrency = 64
	}
	if c.ClusterName == "" {
		c.ClusterName = "default"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.GRPCAddr == "" {
		c.GRPCAddr = c.NodeInnerAddr
	}
}

// Validate checks the required fields spec.md names: broker_id is
// required, and the two raft group counts must be at least 1.
func (c *Config) Validate() error {
	if c.BrokerID == 0 {
		return fmt.Errorf("broker_id is required")
	}
	if c.MetaRuntime.OffsetRaftGroupNum < 1 {
		return fmt.Errorf("meta_runtime.offset_raft_group_num must be >= 1")
	}
	if c.MetaRuntime.DataRaftGroupNum < 1 {
		return fmt.Errorf("meta_runtime.data_raft_group_num must be >= 1")
	}
	if c.SystemMonitor.Enable {
		if c.SystemMonitor.OSCPUHighWatermark <= 0 || c.SystemMonitor.OSCPUHighWatermark > 100 {
			return fmt.Errorf("mqtt_system_monitor.os_cpu_high_watermark must be within (0,100]")
		}
		if c.SystemMonitor.OSMemoryHighWatermark <= 0 || c.SystemMonitor.OSMemoryHighWatermark > 100 {
			return fmt.Errorf("mqtt_system_monitor.os_memory_high_watermark must be within (0,100]")
		}
	}
	return nil
}
