package bootstrap

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/Domenick1991/spacevoyager/config"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_ShutsDownOnCancel(t *testing.T) {
	logger, _ := test.NewNullLogger()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})

	jobStopped := make(chan struct{})
	job := func(ctx context.Context) {
		<-ctx.Done()
		close(jobStopped)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, lis, handler, logger, job) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + lis.Addr().String())
		return err == nil
	}, time.Second, 10*time.Millisecond)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
	select {
	case <-jobStopped:
	case <-time.After(time.Second):
		t.Fatal("background job did not stop")
	}
}

func TestRun_InvalidAddress(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := config.Default()
	cfg.HTTP.Address = "not-an-address"
	err := Run(context.Background(), &cfg, http.NotFoundHandler(), logger)
	assert.Error(t, err)
}
