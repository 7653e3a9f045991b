package metrics

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerExposesCounters(t *testing.T) {
	PacketsTotal.WithLabelValues("sent", "compressed", "ok").Inc()

	s := NewServer("127.0.0.1:0", "")
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { _ = s.Stop(context.Background()) })

	resp, err := http.Get("http://" + s.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "vjtap_packets_total")
}

func TestCounterIncrements(t *testing.T) {
	c := DesyncTotal.WithLabelValues("received")
	before := testutil.ToFloat64(c)
	c.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestStopWithoutStart(t *testing.T) {
	assert.NoError(t, NewServer(":0", "/m").Stop(context.Background()))
}
