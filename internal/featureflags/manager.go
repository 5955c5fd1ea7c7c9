// Package featureflags evaluates FEATURE_FLAGS rollouts.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "catalog_cache=on,seller_badges=25%,legacy_search=off"
type Manager struct {
	flags   map[string]string
	skipped []string
}

// NewManager creates a feature-flag manager from a comma-separated config string.
// Malformed entries are dropped and reported by Skipped.
func NewManager(raw string) *Manager {
	m := &Manager{flags: make(map[string]string)}

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		key, value = normalize(key), normalize(value)
		if !ok || key == "" || !validValue(value) {
			m.skipped = append(m.skipped, pair)
			continue
		}
		m.flags[key] = value
	}

	return m
}

// Enabled returns whether a flag is enabled for a given user.
// Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic user rollout, e.g. 25%)
//
// Anonymous callers pass userID 0 and only see flags that are fully on.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pct, ok := percentage(value)
	if !ok || pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	if userID == 0 {
		return false
	}
	return rolloutBucket(name, userID) < pct
}

// Raw returns a copy of configured flags.
func (m *Manager) Raw() map[string]string {
	if m == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Snapshot returns evaluated flag status for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	if m == nil {
		return map[string]bool{}
	}
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

// Names returns the configured flag names in sorted order.
func (m *Manager) Names() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.flags))
	for name := range m.flags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Skipped returns the raw entries that could not be parsed.
func (m *Manager) Skipped() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.skipped...)
}

func validValue(v string) bool {
	switch v {
	case "on", "true", "1", "off", "false", "0":
		return true
	}
	_, ok := percentage(v)
	return ok
}

func percentage(v string) (int, bool) {
	raw, ok := strings.CutSuffix(v, "%")
	if !ok {
		return 0, false
	}
	pct, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return pct, true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), userID)))
	return int(h.Sum32() % 100)
}
