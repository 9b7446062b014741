package lock

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// LockInfo is the info.json a bus holder leaves in its lock directory.
type LockInfo struct {
	Port     string    `json:"port"`
	Command  string    `json:"command,omitempty"` // "console" or "poll"
	PID      int       `json:"pid"`
	User     string    `json:"user"`
	Hostname string    `json:"hostname"`
	Started  time.Time `json:"started"`
}

// NewLockInfo records this process as the holder of port.
func NewLockInfo(port, command string) *LockInfo {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	user := os.Getenv("USER")
	if user == "" {
		user = "unknown"
	}
	return &LockInfo{
		Port:     port,
		Command:  command,
		PID:      os.Getpid(),
		User:     user,
		Hostname: host,
		Started:  time.Now(),
	}
}

// Age is how long the holder has had the bus.
func (i *LockInfo) Age() time.Duration {
	return time.Since(i.Started)
}

// SameHost reports whether the holder runs on this machine, where its PID
// can be checked.
func (i *LockInfo) SameHost() bool {
	host, err := os.Hostname()
	return err == nil && host == i.Hostname
}

func (i *LockInfo) Marshal() ([]byte, error) {
	return json.Marshal(i)
}

// ParseLockInfo reads an info.json.
func ParseLockInfo(data []byte) (*LockInfo, error) {
	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// String names the holder the way an operator would look for it, e.g.
// "fieldmon poll (pid 12, op@panel-1) on /dev/ttymxc2 since 09:00:00".
func (i *LockInfo) String() string {
	cmd := "fieldmon"
	if i.Command != "" {
		cmd += " " + i.Command
	}
	s := fmt.Sprintf("%s (pid %d, %s@%s)", cmd, i.PID, i.User, i.Hostname)
	if i.Port != "" {
		s += " on " + i.Port
	}
	if !i.Started.IsZero() {
		s += " since " + i.Started.Local().Format("15:04:05")
	}
	return s
}
