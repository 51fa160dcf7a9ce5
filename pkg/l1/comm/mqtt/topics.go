package mqtt

import (
	"strings"

	"github.com/robotalks/fmtx/pkg/l1"
)

// Leaves of the per-device topics <type>/<id>/<leaf>.
const (
	// LeafMeta carries the retained l1.DeviceMeta JSON while the device is
	// online. It is cleared by the will message.
	LeafMeta = "meta"
	// LeafStatus carries the retained last StatusChanged event.
	LeafStatus = "status"
	// LeafCmd carries commands to the device.
	LeafCmd = "cmd"
	// LeafMsg carries replies and events from the device.
	LeafMsg = "msg"
)

// DeviceTopic returns the topic of leaf for the device.
func DeviceTopic(ref l1.DeviceRef, leaf string) string {
	return ref.Name() + "/" + leaf
}

// DevicePattern matches leaf of every device.
func DevicePattern(leaf string) string {
	return "+/+/" + leaf
}

// ParseDeviceTopic splits a per-device topic.
func ParseDeviceTopic(topic string) (ref l1.DeviceRef, leaf string, ok bool) {
	items := strings.Split(topic, "/")
	if len(items) != 3 {
		return
	}
	ref = l1.DeviceRef{Type: items[0], ID: items[1]}
	return ref, items[2], ref.IsValid() && items[2] != ""
}
