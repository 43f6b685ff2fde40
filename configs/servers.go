package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// ServersFileName is the on-disk name of the saved server list.
const ServersFileName = "servers.yaml"

// ServerEntry is one saved analyzer server.
type ServerEntry struct {
	Name     string    `yaml:"name"`
	URL      string    `yaml:"url"`
	Device   string    `yaml:"device,omitempty"`
	LastUsed time.Time `yaml:"last_used,omitempty"`
}

// ServerList is the persisted set of known analyzer servers.
type ServerList struct {
	Servers []ServerEntry `yaml:"servers"`
}

// LoadServerList reads the saved server list from the config directory.
// A missing file yields an empty list, not an error.
func LoadServerList(configDir string) (*ServerList, error) {
	path := filepath.Join(configDir, ServersFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ServerList{}, nil
		}
		return nil, fmt.Errorf("failed to read server list %s: %w", path, err)
	}

	var list ServerList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse server list %s: %w", path, err)
	}
	return &list, nil
}

// Save writes the server list back to the config directory, creating it
// if needed.
func (l *ServerList) Save(configDir string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("failed to encode server list: %w", err)
	}

	path := filepath.Join(configDir, ServersFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write server list %s: %w", path, err)
	}
	return nil
}

// Remember inserts or updates an entry by name and stamps its last use.
func (l *ServerList) Remember(name, url, device string) {
	now := time.Now().UTC().Truncate(time.Second)
	for i := range l.Servers {
		if l.Servers[i].Name == name {
			l.Servers[i].URL = url
			l.Servers[i].Device = device
			l.Servers[i].LastUsed = now
			return
		}
	}
	l.Servers = append(l.Servers, ServerEntry{
		Name:     name,
		URL:      url,
		Device:   device,
		LastUsed: now,
	})
}

// Lookup returns the entry with the given name.
func (l *ServerList) Lookup(name string) (ServerEntry, bool) {
	for _, entry := range l.Servers {
		if entry.Name == name {
			return entry, true
		}
	}
	return ServerEntry{}, false
}

// Sorted returns the entries ordered by most recent use, then name.
func (l *ServerList) Sorted() []ServerEntry {
	sorted := make([]ServerEntry, len(l.Servers))
	copy(sorted, l.Servers)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].LastUsed.Equal(sorted[j].LastUsed) {
			return sorted[i].LastUsed.After(sorted[j].LastUsed)
		}
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}
