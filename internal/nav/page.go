// Package nav is the console's page router: a closed set of page ids, the
// activation contract pages implement, and a stack-based controller that
// owns "which page is visible and how did we get here".
package nav

import "fmt"

// PageID identifies a navigable page. The set is closed.
type PageID int

const (
	Home PageID = iota
	DeviceList
	DeviceConfig
	Monitor
	DataDetail
	AlarmCenter
	AlarmRule
	Settings
	Network
	MqttConfig
	Log
	Help

	pageCount
)

var pageNames = [pageCount]string{
	Home:         "Home",
	DeviceList:   "DeviceList",
	DeviceConfig: "DeviceConfig",
	Monitor:      "Monitor",
	DataDetail:   "DataDetail",
	AlarmCenter:  "AlarmCenter",
	AlarmRule:    "AlarmRule",
	Settings:     "Settings",
	Network:      "Network",
	MqttConfig:   "MqttConfig",
	Log:          "Log",
	Help:         "Help",
}

// Valid reports whether p is a member of the page set.
func (p PageID) Valid() bool {
	return p >= 0 && p < pageCount
}

func (p PageID) String() string {
	if !p.Valid() {
		return fmt.Sprintf("PageID(%d)", int(p))
	}
	return pageNames[p]
}

// Pages returns every page id in declaration order.
func Pages() []PageID {
	out := make([]PageID, 0, pageCount)
	for p := PageID(0); p < pageCount; p++ {
		out = append(out, p)
	}
	return out
}

// ParsePage maps a page name (as returned by String) back to its id.
func ParsePage(name string) (PageID, bool) {
	for p, n := range pageNames {
		if n == name {
			return PageID(p), true
		}
	}
	return 0, false
}
