package workdocs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const resourcesFile = "project_resources.json"

// Resource is one shared project artifact agents may reference in their
// prompts (a spreadsheet, a document, a calendar, ...).
type Resource struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Purpose   string    `json:"purpose,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type resourceInventory struct {
	Resources map[string]Resource `json:"resources"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// ErrResourceNotFound is returned when removing a resource name that was
// never registered.
var ErrResourceNotFound = errors.New("project resource not found")

// Resources returns the shared resource inventory keyed by resource name.
func (m *Manager) Resources() (map[string]Resource, error) {
	m.globalMu.Lock()
	defer m.globalMu.Unlock()
	inv, err := m.loadResourcesLocked()
	if err != nil {
		return nil, err
	}
	return inv.Resources, nil
}

// RegisterResource adds or replaces a named resource in the inventory.
func (m *Manager) RegisterResource(name string, r Resource) error {
	if name == "" {
		return errors.New("resource name must not be empty")
	}
	if r.ID == "" {
		return fmt.Errorf("resource %q must have an id", name)
	}

	m.globalMu.Lock()
	defer m.globalMu.Unlock()

	inv, err := m.loadResourcesLocked()
	if err != nil {
		return err
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now()
	}
	inv.Resources[name] = r
	inv.UpdatedAt = time.Now()
	return writeJSONAtomic(filepath.Join(m.dataDir, resourcesFile), inv)
}

// RemoveResource deletes a named resource from the inventory.
func (m *Manager) RemoveResource(name string) error {
	m.globalMu.Lock()
	defer m.globalMu.Unlock()

	inv, err := m.loadResourcesLocked()
	if err != nil {
		return err
	}
	if _, ok := inv.Resources[name]; !ok {
		return fmt.Errorf("%w: %s", ErrResourceNotFound, name)
	}
	delete(inv.Resources, name)
	inv.UpdatedAt = time.Now()
	return writeJSONAtomic(filepath.Join(m.dataDir, resourcesFile), inv)
}

// RenderResources produces the human-readable inventory block injected into
// agent instructions. Empty inventories render to an empty string so prompts
// stay clean when no resources exist.
func (m *Manager) RenderResources() (string, error) {
	resources, err := m.Resources()
	if err != nil {
		return "", err
	}
	if len(resources) == 0 {
		return "", nil
	}

	names := make([]string, 0, len(resources))
	for name := range resources {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("## Shared project resources\n")
	for _, name := range names {
		r := resources[name]
		fmt.Fprintf(&b, "- %s (%s, id: %s)", name, r.Type, r.ID)
		if r.Purpose != "" {
			fmt.Fprintf(&b, ": %s", r.Purpose)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

func (m *Manager) loadResourcesLocked() (*resourceInventory, error) {
	data, err := os.ReadFile(filepath.Join(m.dataDir, resourcesFile))
	if errors.Is(err, fs.ErrNotExist) {
		return &resourceInventory{Resources: map[string]Resource{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read resource inventory: %w", err)
	}
	var inv resourceInventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("decode resource inventory: %w", err)
	}
	if inv.Resources == nil {
		inv.Resources = map[string]Resource{}
	}
	return &inv, nil
}
