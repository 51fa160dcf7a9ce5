package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// appID salts the machine ID so the raw ID is not published.
const appID = "fmtx"

// MachineID retrieves the unique ID identifying the machine.
// The hostname is used when the machine ID is unavailable.
func MachineID() string {
	id, err := machineid.ProtectedID(appID)
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		if id, err = os.Hostname(); err != nil {
			return "unknown"
		}
		return id
	}
	if len(id) > 16 {
		id = id[:16]
	}
	return id
}
