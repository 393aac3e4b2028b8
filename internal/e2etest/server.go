package e2etest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/summitpulse/ventiscore/internal/logging"
)

// Server is a running instance of cmd/api started in-background for a test.
type Server struct {
	url        string
	client     *Client
	cancel     context.CancelCauseFunc
	serverDone chan struct{}
}

// LogAddrKey is the slog attribute key the server logs the address it bound to.
const LogAddrKey = "addr"

// StartServer runs the server's run function in the background, waits for it to log its
// bound address, and returns a Server wired with a ready client. logSink receives the
// server's log output; lookupEnv has the signature of os.LookupEnv.
func StartServer(
	t *testing.T,
	logSink io.Writer,
	lookupEnv func(string) (string, bool),
	run func(context.Context, *slog.Logger, func(string) (string, bool)) error,
) (*Server, error) {
	ctx := t.Context()
	ctx, cancel := context.WithCancelCause(ctx)
	serverDone := make(chan struct{})

	var server *Server
	t.Cleanup(func() {
		if server != nil {
			server.Shutdown()
		}
	})

	addrCh := make(chan string, 1)
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == LogAddrKey {
				addrCh <- a.Value.String()
			}
			return a
		},
	})))

	go func() {
		defer close(serverDone)
		if err := run(ctx, logger, lookupEnv); err != nil {
			cancel(err)
		}
	}()

	var addr string
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("context canceled: %w", context.Cause(ctx))
	case addr = <-addrCh:
	}

	serverURL := fmt.Sprintf("http://%s", addr)
	client, err := NewClient(serverURL, "localhost", serverURL)
	if err != nil {
		return nil, fmt.Errorf("new client: %w", err)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		return nil, fmt.Errorf("wait for ready: %w", err)
	}

	server = &Server{
		url:        serverURL,
		client:     client,
		cancel:     cancel,
		serverDone: serverDone,
	}
	return server, nil
}

func (s *Server) Client() *Client { return s.client }
func (s *Server) URL() string     { return s.url }

func (s *Server) Shutdown() {
	s.cancel(nil)
	<-s.serverDone
}
