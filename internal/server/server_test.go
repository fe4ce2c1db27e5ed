package server

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/ocrstream/ocrstream/api/ocrpb"
	"github.com/ocrstream/ocrstream/internal/governor"
	"github.com/ocrstream/ocrstream/internal/pool"
)

type echoRecognizer struct{}

func (echoRecognizer) Recognize(ctx context.Context, data []byte) (string, error) {
	return "ok:" + string(data), nil
}
func (echoRecognizer) Close() error      { return nil }
func (echoRecognizer) Rejuvenate() error { return nil }

func newTestServer(t *testing.T) (*Server, net.Listener) {
	t.Helper()
	p, err := pool.New(pool.Config{Workers: 2, QueueSize: 8}, func() (pool.Recognizer, error) {
		return echoRecognizer{}, nil
	})
	require.NoError(t, err)
	// Server.shutdown drains and closes p once Serve's context is cancelled,
	// so callers must not also Shutdown it.

	g := governor.New(1024 * 1024)

	s := New(Config{Address: "127.0.0.1:0", EnableHealthCheck: true}, p, g, nil)
	lis, err := s.Listen()
	require.NoError(t, err)
	return s, lis
}

func TestServerProcessesStreamEndToEnd(t *testing.T) {
	s, lis := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, lis)
	}()

	conn, err := grpc.Dial(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	client := ocrpb.NewOCRServiceClient(conn)
	stream, err := client.ProcessImages(context.Background())
	require.NoError(t, err)

	require.NoError(t, stream.Send(&ocrpb.ImageRequest{ImageId: "a", ImageData: []byte("x")}))
	require.NoError(t, stream.CloseSend())

	result, err := stream.Recv()
	require.NoError(t, err)
	require.Equal(t, "a", result.GetImageId())
	require.True(t, result.GetSuccess())

	_, err = stream.Recv()
	require.ErrorIs(t, err, io.EOF)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServerGracefulShutdownDrainsInFlight(t *testing.T) {
	s, lis := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, lis)
	}()

	conn, err := grpc.Dial(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	client := ocrpb.NewOCRServiceClient(conn)
	stream, err := client.ProcessImages(context.Background())
	require.NoError(t, err)

	require.NoError(t, stream.Send(&ocrpb.ImageRequest{ImageId: "b", ImageData: []byte("y")}))
	require.NoError(t, stream.CloseSend())

	cancel()

	result, err := stream.Recv()
	require.NoError(t, err)
	require.Equal(t, "b", result.GetImageId())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
