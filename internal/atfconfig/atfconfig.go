// Package atfconfig holds the installation-baked configuration values the
// driver and its companion query tool expose: ATF_WORKDIR,
// ATF_SHELL, and ATF_PKGDATADIR, each with a compiled-in default that an
// environment variable of the same name overrides.
package atfconfig

import (
	"fmt"
	"os"
	"sort"
)

// Defaults are the installation-time values baked in when this binary was
// built. A real packaging build would set these via -ldflags; the values
// here mirror the original tool's compiled-in defaults.
var Defaults = map[string]string{
	"workdir":    "/var/tmp",
	"shell":      "/bin/sh",
	"pkgdatadir": "/usr/share/atf",
}

// envKeys maps each configuration key to the environment variable that
// overrides its baked-in default.
var envKeys = map[string]string{
	"workdir":    "ATF_WORKDIR",
	"shell":      "ATF_SHELL",
	"pkgdatadir": "ATF_PKGDATADIR",
}

// Get returns the effective value of key: the environment override if set,
// otherwise the baked-in default. ok is false for an unrecognized key.
func Get(key string) (value string, ok bool) {
	def, known := Defaults[key]
	if !known {
		return "", false
	}
	if v, present := os.LookupEnv(envKeys[key]); present {
		return v, true
	}
	return def, true
}

// GetAll returns every recognized key with its effective value. The result
// is a map and carries no order; Keys gives the sorted key order.
func GetAll() map[string]string {
	out := make(map[string]string, len(Defaults))
	for k := range Defaults {
		v, _ := Get(k)
		out[k] = v
	}
	return out
}

// Keys returns the recognized configuration keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(Defaults))
	for k := range Defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ErrUnknownKey reports that a requested configuration key does not exist.
type ErrUnknownKey struct {
	Key string
}

func (e *ErrUnknownKey) Error() string {
	return fmt.Sprintf("unknown configuration variable: %s", e.Key)
}

// MustGet returns key's value or an *ErrUnknownKey, matching the
// companion tool's contract that an unknown key is a fatal error.
func MustGet(key string) (string, error) {
	v, ok := Get(key)
	if !ok {
		return "", &ErrUnknownKey{Key: key}
	}
	return v, nil
}
