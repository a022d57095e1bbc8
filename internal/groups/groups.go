// Package groups is the static catalog of communities a meeting can belong
// to, loaded from a JSON file at startup.
package groups

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Amazing-Persona-101/videome/internal/models"
)

// Defaults used when a meeting's group cannot be resolved.
const (
	DefaultName    = "The Default Group"
	DefaultSummary = "Check out this meeting!"
	DefaultIconURL = "/assets/defaultAppIcon.svg"
)

// Info is one catalog entry.
type Info struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IconURL string `json:"iconURL"`
}

// Catalog resolves group ids to display info.
type Catalog struct {
	byID map[string]Info
}

// Load reads the catalog file. A missing path yields an empty catalog, not
// an error: the service still runs, every group resolves to defaults.
func Load(path string) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Info)}
	if path == "" {
		return c, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("read groups file: %w", err)
	}
	var list []Info
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("parse groups file: %w", err)
	}
	for _, g := range list {
		c.byID[g.ID] = g
	}
	return c, nil
}

// FromList builds a catalog directly, mainly for tests.
func FromList(list []Info) *Catalog {
	c := &Catalog{byID: make(map[string]Info, len(list))}
	for _, g := range list {
		c.byID[g.ID] = g
	}
	return c
}

// Resolve maps a group id to display info, falling back to defaults for
// unknown or empty ids.
func (c *Catalog) Resolve(id string) models.Group {
	if g, ok := c.byID[id]; ok {
		gid := g.ID
		icon := g.IconURL
		if icon == "" {
			icon = DefaultIconURL
		}
		return models.Group{ID: &gid, Name: g.Name, IconURL: icon}
	}
	return models.Group{ID: nil, Name: DefaultName, IconURL: DefaultIconURL}
}

// Len reports the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.byID)
}
