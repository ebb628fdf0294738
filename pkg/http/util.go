package http

import (
	"time"

	xutil "NeelyWave/pkg/util"
)

// ParseTime accepts RFC3339, exchange and MetaTrader layouts, and unix seconds or millis.
func ParseTime(s string) (time.Time, bool) { return xutil.ParseTime(s) }
