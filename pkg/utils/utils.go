package utils

import (
	"net"
	"strconv"
	"strings"

	"k8s.io/klog"
)

// SplitHostPort splits "host:port" and falls back to defaultPort when the
// address has no port or the port can't be parsed.
// 127.0.0.1:8848 -> 127.0.0.1, 8848
func SplitHostPort(address string, defaultPort uint64) (string, uint64) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		// returning the original address instead if the address has no port
		return address, defaultPort
	}
	port, err := strconv.ParseUint(portStr, 10, 64)
	if err != nil {
		klog.Errorf("Parsing the port of address %s has an error: %v", address, err)
		return host, defaultPort
	}
	return host, port
}

// CleanNames trims the names and drops the empty ones,
// e.g. a list coming from a comma separated flag.
func CleanNames(names []string) []string {
	result := make([]string, 0, len(names))
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			if p := strings.TrimSpace(part); p != "" {
				result = append(result, p)
			}
		}
	}
	return result
}
