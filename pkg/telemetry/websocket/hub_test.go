package websocket

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/robotalks/aldl.go/pkg/aldl"
	"github.com/robotalks/aldl.go/pkg/aldl/msgs"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub("")
	server := httptest.NewServer(hub)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, err := websocket.Dial(url, "", server.URL)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(msgs.FuelRateFrom(aldl.Sample{Timestamp: 2250, LbPerHour: 1.5})))
	require.NoError(t, hub.Publish(nil))

	var env Envelope
	require.NoError(t, websocket.JSON.Receive(conn, &env))
	require.Equal(t, "fuel", env.Type)
	var rate msgs.FuelRate
	require.NoError(t, json.Unmarshal(env.Data, &rate))
	require.Equal(t, int64(2250), rate.Timestamp)
	require.InDelta(t, 1.5, rate.LbPerHour, 1e-9)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubSlowClient(t *testing.T) {
	hub := NewHub("")
	hub.ClientBuffer = 2
	hub.WriteTimeout = time.Minute
	server := httptest.NewServer(hub)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	// slow never reads.
	slow, err := websocket.Dial(url, "", server.URL)
	require.NoError(t, err)
	defer slow.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	frame := []byte(`"` + strings.Repeat("x", 256<<10) + `"`)
	start := time.Now()
	missed := 0
	for i := 0; i < 100; i++ {
		missed += hub.broadcast(frame)
	}
	require.Less(t, time.Since(start), time.Second)
	require.Greater(t, missed, 0)
	require.Equal(t, 1, hub.Clients())

	fast, err := websocket.Dial(url, "", server.URL)
	require.NoError(t, err)
	defer fast.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, time.Second, 10*time.Millisecond)
	require.NoError(t, hub.Publish(&msgs.Heartbeat{}))
	var env Envelope
	require.NoError(t, websocket.JSON.Receive(fast, &env))
	require.Equal(t, "heartbeat", env.Type)
}
