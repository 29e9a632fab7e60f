// Package events owns the server-sent events hub. Two streams exist:
// "progress" carries per-image upload progress while a push is running, and
// "device" carries push outcomes and device reachability changes.
package events

import (
	"encoding/json"

	"github.com/r3labs/sse/v2"
)

const (
	StreamProgress = "progress"
	StreamDevice   = "device"
)

var Server *sse.Server

func Init() {
	server := sse.New()
	server.AutoReplay = false
	server.CreateStream(StreamProgress)
	server.CreateStream(StreamDevice)
	Server = server
}

// PublishProgress emits one upload progress tick.
func PublishProgress(uploaded, total int) {
	if Server == nil {
		return
	}
	payload, err := json.Marshal(map[string]int{"uploaded": uploaded, "total": total})
	if err != nil {
		return
	}
	Server.Publish(StreamProgress, &sse.Event{Data: payload})
}

// PublishDevice emits a device event such as a push result.
func PublishDevice(event string, detail string) {
	if Server == nil {
		return
	}
	payload, err := json.Marshal(map[string]string{"event": event, "detail": detail})
	if err != nil {
		return
	}
	Server.Publish(StreamDevice, &sse.Event{Data: payload})
}
