package device

import "strings"

// Info is the coarse browser/os/device triple derived from a User-Agent
// string for session display. Classification is deliberately shallow; the
// value is cosmetic, never security-relevant.
type Info struct {
	Browser string `json:"browser"`
	OS      string `json:"os"`
	Device  string `json:"device"`
}

// Parse extracts coarse device info from a user agent string.
func Parse(userAgent string) Info {
	if userAgent == "" {
		return Info{Browser: "Unknown", OS: "Unknown", Device: "Unknown"}
	}

	return Info{
		Browser: parseBrowser(userAgent),
		OS:      parseOS(userAgent),
		Device:  parseDevice(userAgent),
	}
}

// Summary returns a single human-readable label, e.g. "Chrome on Windows".
func (i Info) Summary() string {
	if i.Browser == "Unknown" && i.OS == "Unknown" {
		return "Unknown"
	}
	return i.Browser + " on " + i.OS
}

func parseBrowser(ua string) string {
	switch {
	// Order matters: Edge and Opera embed "Chrome", Chrome embeds "Safari".
	case strings.Contains(ua, "Edg/") || strings.Contains(ua, "Edge"):
		return "Edge"
	case strings.Contains(ua, "OPR/") || strings.Contains(ua, "Opera"):
		return "Opera"
	case strings.Contains(ua, "Chrome"):
		return "Chrome"
	case strings.Contains(ua, "Firefox"):
		return "Firefox"
	case strings.Contains(ua, "Safari"):
		return "Safari"
	default:
		return "Unknown"
	}
}

func parseOS(ua string) string {
	switch {
	case strings.Contains(ua, "iPhone") || strings.Contains(ua, "iPad"):
		return "iOS"
	case strings.Contains(ua, "Android"):
		return "Android"
	case strings.Contains(ua, "Windows"):
		return "Windows"
	case strings.Contains(ua, "Mac"):
		return "MacOS"
	case strings.Contains(ua, "Linux"):
		return "Linux"
	default:
		return "Unknown"
	}
}

func parseDevice(ua string) string {
	switch {
	case strings.Contains(ua, "iPad") || strings.Contains(ua, "Tablet"):
		return "Tablet"
	case strings.Contains(ua, "iPhone") || strings.Contains(ua, "Android") || strings.Contains(ua, "Mobile"):
		return "Mobile"
	default:
		return "Desktop"
	}
}
