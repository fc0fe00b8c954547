package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/robustmq/robustmq/pkg/brokercache"
	"github.com/robustmq/robustmq/pkg/cluster"
	"github.com/robustmq/robustmq/pkg/config"
	"github.com/robustmq/robustmq/pkg/delaytask"
	"github.com/robustmq/robustmq/pkg/kv"
	"github.com/robustmq/robustmq/pkg/log"
	"github.com/robustmq/robustmq/pkg/metrics"
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
	Use:   "robustmq-broker",
	Short: "RobustMQ broker: registers with the cluster and serves Node-Call fan-out",
	RunE:  runBroker,
}

func init() {
	rootCmd.PersistentFlags().String("conf", "", "Path to the YAML config file")
	_ = rootCmd.MarkPersistentFlagRequired("conf")
}

// firstMetaAddr returns the lowest-numbered meta node's address, so
// startup dials a deterministic target instead of map iteration order.
func firstMetaAddr(addrs map[uint64]string) (string, error) {
	if len(addrs) == 0 {
		return "", fmt.Errorf("meta_addrs is empty")
	}
	ids := make([]uint64, 0, len(addrs))
	for id := range addrs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return addrs[ids[0]], nil
}

func runBroker(cmd *cobra.Command, args []string) error {
	confPath, _ := cmd.Flags().GetString("conf")
	cfg, err := config.Load(confPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log.Init(log.Config{Level: log.Level(cfg.LogLevel), JSONOutput: cfg.LogJSON})
	logger := log.WithComponent("robustmq-broker")

	metaAddr, err := firstMetaAddr(cfg.MetaAddrs)
	if err != nil {
		return fmt.Errorf("resolve meta address: %w", err)
	}
	metaConn, err := grpc.NewClient(metaAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("dial meta service %s: %w", metaAddr, err)
	}
	metaClient := rpc.NewMetaServiceClient(metaConn)

	node := types.BrokerNode{
		NodeID:        cfg.BrokerID,
		NodeIP:        cfg.NodeIP,
		NodeInnerAddr: cfg.NodeInnerAddr,
		ExternAddr:    cfg.ExternAddr,
		StartTime:     time.Now(),
	}
	controller := cluster.NewController(metaClient, cfg.ClusterName, node)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := controller.Register(ctx); err != nil {
		cancel()
		return fmt.Errorf("register with cluster: %w", err)
	}
	cancel()
	controller.StartHeartbeatLoop()

	readyCtx, readyCancel := context.WithCancel(context.Background())
	defer readyCancel()
	if err := controller.WaitForClusterReady(readyCtx); err != nil {
		return fmt.Errorf("wait for cluster ready: %w", err)
	}
	logger.Info().Msg("cluster ready")

	cache := brokercache.New()
	cacheServer := brokercache.NewServer(cache)

	// Session/last-will delay tasks are this broker's own client
	// connections; they persist to a local index and notify this node
	// in-process rather than fanning out through Node-Call.
	engine, err := kv.OpenBolt(filepath.Join(cfg.DataDir, "broker"))
	if err != nil {
		return fmt.Errorf("open local kv engine: %w", err)
	}
	adapter := storageadapter.New(engine)

	delayCfg := delaytask.Config{
		ShardCount:            cfg.DelayTask.DelayQueueNum,
		MaxHandlerConcurrency: cfg.DelayTask.MaxHandlerConcurrency,
		LastWillDelayInterval: time.Duration(cfg.DelayTask.LastWillDelayIntervalMs) * time.Millisecond,
	}
	delayMgr := delaytask.NewManager(delayCfg, adapter, cache.Sessions(), cache.LastWills(), brokercache.NewLocalNotifier(cacheServer))
	if err := delayMgr.Recover(); err != nil {
		return fmt.Errorf("recover delay tasks: %w", err)
	}

	// This process has no Raft shards or gRPC connection pool of its own
	// to sample; the collector degrades gracefully on nil sources.
	collector := metrics.NewCollector(nil, nil)
	collector.Start()

	grpcServer := grpc.NewServer()
	rpc.RegisterBrokerCommonServer(grpcServer, cacheServer)
	rpc.RegisterBrokerMqttServer(grpcServer, cacheServer)

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
	logger.Info().Str("addr", cfg.GRPCAddr).Msg("broker listening")

	host, portStr, err := net.SplitHostPort(cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("parse grpc_addr: %w", err)
	}
	basePort, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("parse grpc_addr port: %w", err)
	}
	metricsAddr := net.JoinHostPort(host, strconv.Itoa(basePort+1))
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

	controller.Shutdown()
	delayMgr.Shutdown()
	collector.Stop()
	grpcServer.GracefulStop()
	if err := adapter.Close(); err != nil {
		logger.Warn().Err(err).Msg("error closing local storage adapter")
	}
	_ = metaConn.Close()

	logger.Info().Msg("shutdown complete")
	return nil
}
