// Command llmserver is a stub external LLM adapter: it implements
// internal/llmpb's Ask RPC with a canned, templated reply, standing in
// for the real model service a deployment would point at instead.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/mokshajmera002/aos-lms-system/internal/llmpb"
	"github.com/mokshajmera002/aos-lms-system/internal/raftpb"
)

type stubLLMServer struct {
	llmpb.UnimplementedLLMServer
	logger *zap.Logger
}

func (s *stubLLMServer) Ask(ctx context.Context, req *llmpb.AskRequest) (*llmpb.AskResponse, error) {
	s.logger.Info("llm query received", zap.Int("content_length", len(req.Content)))
	return &llmpb.AskResponse{
		Text: fmt.Sprintf("Automated response to: %q. A course instructor will follow up if more detail is needed.", req.Content),
	}, nil
}

func main() {
	var addr string
	cmd := &cobra.Command{
		Use:   "llmserver",
		Short: "Run the stub LLM adapter",
		RunE: func(cmd *cobra.Command, args []string) error {
			raftpb.RegisterCodec() // installs the gob codec every hand-written ServiceDesc in this module rides on

			logger, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer logger.Sync()

			listener, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("llmserver: listen on %s: %w", addr, err)
			}

			grpcServer := grpc.NewServer()
			llmpb.RegisterLLMServer(grpcServer, &stubLLMServer{logger: logger})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			go func() {
				<-ctx.Done()
				grpcServer.GracefulStop()
			}()

			logger.Info("llm adapter listening", zap.String("addr", addr))
			return grpcServer.Serve(listener)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:9100", "address to listen on")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
