package mqtt

import (
	"encoding/json"

	"github.com/golang/glog"

	"github.com/robotalks/aldl.go/pkg/aldl/msgs"
	fx "github.com/robotalks/aldl.go/pkg/framework"
)

// MessageHandler receives decoded telemetry of a device.
type MessageHandler func(deviceID string, msg fx.Message)

// MetaHandler receives device meta, nil when the device went offline.
type MetaHandler func(deviceID string, meta *Meta)

// SubscribeTelemetry subscribes telemetry from a device, or all devices
// when deviceID is "+".
func SubscribeTelemetry(q *Queue, deviceID string, handler MessageHandler) []*Subscription {
	h := func(topic string, payload []byte) {
		id, suffix, ok := SplitTopic(topic)
		if !ok || suffix == TopicMeta {
			return
		}
		msg, err := msgs.DecodeMessage(payload)
		if err != nil {
			glog.V(2).Infof("mqtt %s: %v", topic, err)
			return
		}
		handler(id, msg)
	}
	return []*Subscription{
		q.Sub(deviceID+"/"+TopicFuel, h),
		q.Sub(deviceID+"/"+TopicECU, h),
		q.Sub(deviceID+"/"+TopicHeartbeat, h),
	}
}

// SubscribeMeta subscribes device presence.
func SubscribeMeta(q *Queue, handler MetaHandler) *Subscription {
	return q.Sub("+/"+TopicMeta, func(topic string, payload []byte) {
		id, _, ok := SplitTopic(topic)
		if !ok {
			return
		}
		if len(payload) == 0 {
			handler(id, nil)
			return
		}
		var meta Meta
		if err := json.Unmarshal(payload, &meta); err != nil {
			glog.V(2).Infof("mqtt %s: %v", topic, err)
			return
		}
		handler(id, &meta)
	})
}
