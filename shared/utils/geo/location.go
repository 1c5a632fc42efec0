package geo

import "net/netip"

// LocationFromIP derives a coarse display location from an IP address.
// Without an external resolver the best we can do honestly is distinguish
// local and private origins from the public internet; deployments that need
// city-level labels put a geo resolver in front and record its answer.
func LocationFromIP(ip string) string {
	if ip == "" {
		return "Unknown"
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "Unknown"
	}

	switch {
	case addr.IsLoopback():
		return "Local"
	case addr.IsPrivate():
		return "Private Network"
	case addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast():
		return "Link-Local"
	default:
		return "Unknown"
	}
}
