// Command node runs one member of the LMS Raft cluster: the
// replication engine, the application state machine, and the grpc
// surface peers and clients talk to.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mokshajmera002/aos-lms-system/internal/raft"
	"github.com/mokshajmera002/aos-lms-system/internal/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		id                   uint32
		addr                 string
		peers                string
		storePath            string
		dbPath               string
		llmAddr              string
		jwtSecret            string
		electionTimeoutMin   time.Duration
		electionTimeoutMax   time.Duration
		heartbeatInterval    time.Duration
		clientRequestTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "node",
		Short: "Run one member of the LMS Raft cluster",
		RunE: func(cmd *cobra.Command, args []string) error {
			peerAddrs, err := parsePeers(peers)
			if err != nil {
				return err
			}
			if jwtSecret == "" {
				return fmt.Errorf("node: --jwt-secret is required and must be identical across the cluster")
			}

			logger, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("node: build logger: %w", err)
			}
			defer logger.Sync()

			raftConfig := raft.DefaultConfig()
			if electionTimeoutMin > 0 {
				raftConfig.ElectionTimeoutMin = electionTimeoutMin
			}
			if electionTimeoutMax > 0 {
				raftConfig.ElectionTimeoutMax = electionTimeoutMax
			}
			if heartbeatInterval > 0 {
				raftConfig.HeartbeatInterval = heartbeatInterval
			}
			if clientRequestTimeout > 0 {
				raftConfig.ClientRequestTimeout = clientRequestTimeout
			}

			n, err := server.New(server.Config{
				ID:        id,
				SelfAddr:  addr,
				PeerAddrs: peerAddrs,
				StorePath: storePath,
				DBPath:    dbPath,
				LLMAddr:   llmAddr,
				JWTSecret: []byte(jwtSecret),
				Raft:      raftConfig,
				Logger:    logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			n.Run(ctx)
			logger.Info("node started", zap.Uint32("id", id), zap.String("addr", addr))

			<-ctx.Done()
			logger.Info("shutting down", zap.Uint32("id", id))
			n.Shutdown()
			return nil
		},
	}

	cmd.Flags().Uint32Var(&id, "id", 0, "this node's numeric id (must be > 0, unique in the cluster)")
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8000", "address this node listens on")
	cmd.Flags().StringVar(&peers, "peers", "", "comma-separated id=addr pairs for every other node, e.g. 2=127.0.0.1:8001,3=127.0.0.1:8002")
	cmd.Flags().StringVar(&storePath, "store", "raft.db", "path to this node's Raft persistent store (bbolt file)")
	cmd.Flags().StringVar(&dbPath, "db", "lms.db", "path to this node's local application database (sqlite file)")
	cmd.Flags().StringVar(&llmAddr, "llm-addr", "", "address of the external LLM adapter; empty disables LLM-targeted queries")
	cmd.Flags().StringVar(&jwtSecret, "jwt-secret", "", "cluster-wide shared secret for signing and verifying auth tokens")
	cmd.Flags().DurationVar(&electionTimeoutMin, "election-timeout-min", 0, "override the minimum election timeout")
	cmd.Flags().DurationVar(&electionTimeoutMax, "election-timeout-max", 0, "override the maximum election timeout")
	cmd.Flags().DurationVar(&heartbeatInterval, "heartbeat-interval", 0, "override the leader heartbeat interval")
	cmd.Flags().DurationVar(&clientRequestTimeout, "client-request-timeout", 0, "override how long ClientRequest blocks waiting for commit")
	cmd.MarkFlagRequired("id")

	return cmd
}

func parsePeers(s string) (map[uint32]string, error) {
	peers := make(map[uint32]string)
	if s == "" {
		return peers, nil
	}
	for _, pair := range strings.Split(s, ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("node: malformed --peers entry %q, want id=addr", pair)
		}
		id, err := strconv.ParseUint(parts[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("node: malformed peer id %q: %w", parts[0], err)
		}
		peers[uint32(id)] = parts[1]
	}
	return peers, nil
}
