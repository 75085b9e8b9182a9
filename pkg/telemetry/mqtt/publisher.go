package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/aldl.go/pkg/aldl/msgs"
	fx "github.com/robotalks/aldl.go/pkg/framework"
)

// Topic suffixes under <device-id>/.
const (
	TopicMeta      = "meta"
	TopicFuel      = "fuel"
	TopicECU       = "ecu"
	TopicHeartbeat = "heartbeat"
)

// Meta is published retained on <device-id>/meta while the device is
// online. The broker clears it through the will when the device drops.
type Meta struct {
	DeviceID string    `json:"device-id"`
	Started  time.Time `json:"started"`
}

// TopicFor returns the topic suffix of a telemetry message, or empty
// when the message is not published.
func TopicFor(msg fx.Message) string {
	switch msg.(type) {
	case *msgs.FuelRate:
		return TopicFuel
	case *msgs.ECUData:
		return TopicECU
	case *msgs.Heartbeat:
		return TopicHeartbeat
	}
	return ""
}

// SplitTopic splits a relative topic into device ID and suffix.
func SplitTopic(topic string) (deviceID, suffix string, ok bool) {
	items := strings.Split(topic, "/")
	if len(items) != 2 {
		return "", "", false
	}
	return items[0], items[1], true
}

// DefaultRetryInterval is the delay between failed connect attempts.
const DefaultRetryInterval = 5 * time.Second

// Publisher publishes telemetry of one device. Publishing before the
// broker is reachable drops messages instead of blocking.
type Publisher struct {
	Queue         *Queue
	DeviceID      string
	RetryInterval time.Duration

	meta []byte
}

// NewPublisher creates a Publisher from broker URL.
func NewPublisher(brokerURL, deviceID string) (*Publisher, error) {
	opts, prefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	meta, err := json.Marshal(&Meta{DeviceID: deviceID, Started: time.Now().UTC()})
	if err != nil {
		return nil, err
	}
	if opts.ClientID == "" {
		opts.SetClientID("aldl-" + deviceID)
	}
	opts.SetBinaryWill(prefix+deviceID+"/"+TopicMeta, nil, 1, true)
	p := &Publisher{DeviceID: deviceID, RetryInterval: DefaultRetryInterval, meta: meta}
	p.Queue = NewQueue(opts, prefix)
	p.Queue.OnConnect = p.announce
	return p, nil
}

// Run implements Runnable. It connects to the broker, retrying until it
// succeeds; later drops are handled by the client's auto-reconnect.
func (p *Publisher) Run(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		err := p.Queue.ConnectContext(ctx)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		glog.Warningf("mqtt connect attempt %d: %v, retry in %v", attempt, err, p.RetryInterval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.RetryInterval):
		}
	}
	glog.Infof("mqtt connected as %s", p.DeviceID)
	<-ctx.Done()
	return ctx.Err()
}

// Close clears the retained meta and disconnects.
func (p *Publisher) Close() error {
	if p.Queue.Client.IsConnected() {
		p.Queue.PubWith(p.topic(TopicMeta), nil, 1, true).WaitTimeout(time.Second)
	}
	return p.Queue.Close()
}

func (p *Publisher) topic(suffix string) string {
	return p.DeviceID + "/" + suffix
}

func (p *Publisher) announce(q *Queue) {
	token := q.PubWith(p.topic(TopicMeta), p.meta, 1, true)
	go func() {
		if token.Wait() && token.Error() != nil {
			glog.Errorf("mqtt meta: %v", token.Error())
		}
	}()
}

// Publish encodes a telemetry message and publishes it without waiting
// for delivery. Messages without a topic are ignored.
func (p *Publisher) Publish(msg fx.Message) error {
	suffix := TopicFor(msg)
	if suffix == "" {
		return nil
	}
	payload, err := msgs.Encode(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", suffix, err)
	}
	p.Queue.Pub(p.topic(suffix), payload)
	return nil
}
