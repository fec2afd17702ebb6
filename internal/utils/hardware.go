// Package utils holds small host helpers.
package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"os"
	"strings"
)

// InstanceID names this server process's host in logs and status reports,
// e.g. "ETERNO-A1B2C3D4". It hashes the first active MAC address and falls
// back to the hostname.
func InstanceID() string {
	seed := ""
	if interfaces, err := net.Interfaces(); err == nil {
		for _, i := range interfaces {
			if i.Flags&net.FlagUp != 0 && i.Flags&net.FlagLoopback == 0 && len(i.HardwareAddr) > 0 {
				seed = i.HardwareAddr.String()
				break
			}
		}
	}
	if seed == "" {
		if host, err := os.Hostname(); err == nil {
			seed = host
		}
	}
	if seed == "" {
		return "ETERNO-UNKNOWN"
	}

	hash := sha256.Sum256([]byte(seed + "eterno-instance"))
	return "ETERNO-" + strings.ToUpper(hex.EncodeToString(hash[:])[:8])
}
