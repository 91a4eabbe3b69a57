package tle

import (
	"strconv"
	"time"
)

// TLEEntry represents a single satellite's two-line element set.
type TLEEntry struct {
	NORADID int
	Name    string
	Epoch   time.Time
	Line1   string
	Line2   string
}

// Label returns a display name for log lines and report headers.
func (e TLEEntry) Label() string {
	if e.Name == "" {
		return "NORAD " + strconv.Itoa(e.NORADID)
	}
	return e.Name
}
