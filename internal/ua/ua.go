// Package ua wraps github.com/avct/uasurfer so callers never see its enums.
package ua

import (
	surfer "github.com/avct/uasurfer"
)

// Info carries the coarse user-agent attributes used for abuse correlation.
// Versions are deliberately left out: they change on every browser update and
// would make correlation keys churn.
type Info struct {
	Browser  string
	OS       string
	Platform string
	Device   string // Desktop, Mobile, Tablet or Other
	IsBot    bool
}

// Parse converts a raw User-Agent header into Info.
func Parse(raw string) Info {
	ua := surfer.Parse(raw)

	info := Info{
		Browser:  ua.Browser.Name.String(),
		OS:       ua.OS.Name.String(),
		Platform: ua.OS.Platform.String(),
		IsBot:    ua.IsBot(),
	}

	switch ua.DeviceType {
	case surfer.DeviceComputer:
		info.Device = "Desktop"
	case surfer.DeviceTablet:
		info.Device = "Tablet"
	case surfer.DevicePhone, surfer.DeviceWearable:
		info.Device = "Mobile"
	default:
		info.Device = "Other"
	}

	return info
}
