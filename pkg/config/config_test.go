package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "robustmq.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MinimalConfigGetsDefaults(t *testing.T) {
	path := writeConfig(t, "broker_id: 1\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, uint64(1), cfg.BrokerID)
	require.Equal(t, uint32(1), cfg.MetaRuntime.OffsetRaftGroupNum)
	require.Equal(t, uint32(1), cfg.MetaRuntime.DataRaftGroupNum)
	require.Equal(t, uint64(30), cfg.MetaRuntime.RaftWriteTimeoutSec)
	require.Equal(t, "default", cfg.ClusterName)
}

func TestLoad_RaftWriteTimeoutFlooredAt30(t *testing.T) {
	path := writeConfig(t, "broker_id: 1\nmeta_runtime:\n  raft_write_timeout_sec: 5\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, uint64(30), cfg.MetaRuntime.RaftWriteTimeoutSec)
}

func TestLoad_RaftWriteTimeoutAboveFloorIsKept(t *testing.T) {
	path := writeConfig(t, "broker_id: 1\nmeta_runtime:\n  raft_write_timeout_sec: 90\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, uint64(90), cfg.MetaRuntime.RaftWriteTimeoutSec)
}

func TestLoad_MissingBrokerIDFails(t *testing.T) {
	path := writeConfig(t, "meta_addrs:\n  1: 127.0.0.1:9000\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_ParsesMetaAddrsAndFullMetaRuntime(t *testing.T) {
	path := writeConfig(t, `
broker_id: 7
meta_addrs:
  1: 127.0.0.1:9000
  2: 127.0.0.1:9001
meta_runtime:
  offset_raft_group_num: 3
  data_raft_group_num: 5
  heartbeat_timeout_ms: 30000
  heartbeat_check_time_ms: 10000
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, map[uint64]string{1: "127.0.0.1:9000", 2: "127.0.0.1:9001"}, cfg.MetaAddrs)
	require.EqualValues(t, 3, cfg.MetaRuntime.OffsetRaftGroupNum)
	require.EqualValues(t, 5, cfg.MetaRuntime.DataRaftGroupNum)
	require.EqualValues(t, 30000, cfg.MetaRuntime.HeartbeatTimeoutMs)
	require.EqualValues(t, 10000, cfg.MetaRuntime.HeartbeatCheckTimeMs)
}

func TestLoad_SystemMonitorRequiresWatermarksWhenEnabled(t *testing.T) {
	path := writeConfig(t, "broker_id: 1\nmqtt_system_monitor:\n  enable: true\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_SystemMonitorValidWhenWatermarksSet(t *testing.T) {
	path := writeConfig(t, `
broker_id: 1
mqtt_system_monitor:
  enable: true
  os_cpu_high_watermark: 85.5
  os_memory_high_watermark: 90.0
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.InDelta(t, 85.5, cfg.SystemMonitor.OSCPUHighWatermark, 0.001)
}

func TestLoad_AmbientFieldsGetDefaults(t *testing.T) {
	path := writeConfig(t, "broker_id: 1\nnode_inner_addr: 127.0.0.1:9100\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "data", cfg.DataDir)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "127.0.0.1:9100", cfg.GRPCAddr)
}

func TestLoad_UnreadableFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
}
