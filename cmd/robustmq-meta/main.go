package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/robustmq/robustmq/pkg/cluster"
	"github.com/robustmq/robustmq/pkg/config"
	"github.com/robustmq/robustmq/pkg/grpcpool"
	"github.com/robustmq/robustmq/pkg/kv"
	"github.com/robustmq/robustmq/pkg/log"
	"github.com/robustmq/robustmq/pkg/metrics"
	"github.com/robustmq/robustmq/pkg/nodecall"
	"github.com/robustmq/robustmq/pkg/raftgroup"
	"github.com/robustmq/robustmq/pkg/rpc"
	"github.com/robustmq/robustmq/pkg/storageadapter"
	"github.com/robustmq/robustmq/pkg/types"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "robustmq-meta",
	Short: "RobustMQ meta-service: hosts the metadata, offset and data Raft groups",
	RunE:  runMeta,
}

func init() {
	rootCmd.PersistentFlags().String("conf", "", "Path to the YAML config file")
	_ = rootCmd.MarkPersistentFlagRequired("conf")
}

func runMeta(cmd *cobra.Command, args []string) error {
	confPath, _ := cmd.Flags().GetString("conf")
	cfg, err := config.Load(confPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log.Init(log.Config{Level: log.Level(cfg.LogLevel), JSONOutput: cfg.LogJSON})
	logger := log.WithComponent("robustmq-meta")

	engine, err := kv.OpenBolt(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open kv engine: %w", err)
	}
	adapter := storageadapter.New(engine)

	// Every meta node in the cluster is configured with the same
	// meta_addrs map, so each independently derives the same multi-node
	// Raft peer set for every group/shard (see raftboot.go).
	metadataShards, err := bootstrapGroup(types.RaftGroupMetadata, 1, cfg.BrokerID, cfg.MetaAddrs, metadataPortOffset, cfg.DataDir, metadataApplier(engine))
	if err != nil {
		return fmt.Errorf("bootstrap metadata group: %w", err)
	}
	offsetShards, err := bootstrapGroup(types.RaftGroupOffset, int(cfg.MetaRuntime.OffsetRaftGroupNum), cfg.BrokerID, cfg.MetaAddrs, offsetPortOffset, cfg.DataDir, offsetApplier(adapter))
	if err != nil {
		return fmt.Errorf("bootstrap offset group: %w", err)
	}
	dataShards, err := bootstrapGroup(types.RaftGroupData, int(cfg.MetaRuntime.DataRaftGroupNum), cfg.BrokerID, cfg.MetaAddrs, dataPortOffset, cfg.DataDir, dataApplier())
	if err != nil {
		return fmt.Errorf("bootstrap data group: %w", err)
	}

	writeTimeout := time.Duration(cfg.MetaRuntime.RaftWriteTimeoutSec) * time.Second
	raftManager := raftgroup.NewMultiRaftManager(
		raftgroup.NewRaftGroup(types.RaftGroupMetadata, metadataShards, writeTimeout),
		raftgroup.NewRaftGroup(types.RaftGroupOffset, offsetShards, writeTimeout),
		raftgroup.NewRaftGroup(types.RaftGroupData, dataShards, writeTimeout),
	)

	registry := cluster.NewRegistry()
	metaServer := cluster.NewMetaServer(registry, raftManager)
	resourceServer := storageadapter.NewResourceServer(engine, adapter, metadataScope)
	composite := &metaServiceServer{MetaServer: metaServer, ResourceServer: resourceServer}

	pool := grpcpool.New(grpcpool.Config{})
	sender := nodecall.NewGRPCSender(pool, cfg.ClusterName)
	nodeCallMgr := nodecall.NewManager(registry, sender)

	heartbeatTimeout := time.Duration(cfg.MetaRuntime.HeartbeatTimeoutMs) * time.Millisecond
	checkInterval := time.Duration(cfg.MetaRuntime.HeartbeatCheckTimeMs) * time.Millisecond
	liveness := cluster.NewLivenessMonitor(registry, raftManager, nodeCallMgr, heartbeatTimeout, checkInterval)
	liveness.Start()

	collector := metrics.NewCollector(raftManager, pool)
	collector.Start()

	grpcServer := grpc.NewServer()
	rpc.RegisterMetaServiceServer(grpcServer, composite)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.GRPCAddr, err)
	}
	errCh := make(chan error, 1)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	logger.Info().Str("addr", cfg.GRPCAddr).Msg("meta service listening")

	metricsHost, metricsPortStr, err := net.SplitHostPort(cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("parse grpc_addr: %w", err)
	}
	metricsPort, err := strconv.Atoi(metricsPortStr)
	if err != nil {
		return fmt.Errorf("parse grpc_addr port: %w", err)
	}
	metricsAddr := net.JoinHostPort(metricsHost, strconv.Itoa(metricsPort+1))
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/health", metrics.HealthHandler())
		mux.Handle("/ready", metrics.ReadyHandler())
		mux.Handle("/live", metrics.LivenessHandler())
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			logger.Warn().Err(err).Msg("metrics server stopped")
		}
	}()
	logger.Info().Str("addr", metricsAddr).Msg("metrics endpoint listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigCh:
		logger.Info().Msg("shutting down")
	case err := <-errCh:
		logger.Error().Err(err).Msg("fatal error, shutting down")
	}

	liveness.Shutdown()
	nodeCallMgr.Shutdown()
	collector.Stop()
	grpcServer.GracefulStop()
	raftManager.Shutdown()
	_ = pool.Close()
	if err := adapter.Close(); err != nil {
		logger.Warn().Err(err).Msg("error closing storage adapter")
	}

	logger.Info().Msg("shutdown complete")
	return nil
}
