package env

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

const appID = "aldl.go"

// MachineID retrieves an ID identifying the machine, hashed with the
// application ID so the raw machine ID isn't published.
func MachineID() string {
	id, err := machineid.ProtectedID(appID)
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		return "aldl"
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}
