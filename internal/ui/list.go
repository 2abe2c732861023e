package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
)

var _ list.Item = entryItem{}

// entryItem is one archive entry in the selection list.
type entryItem struct {
	path     string
	selected bool
}

func (i entryItem) FilterValue() string { return i.path }

func (i entryItem) Title() string {
	if i.selected {
		return "[x] " + i.path
	}
	return "[ ] " + i.path
}

func (i entryItem) Description() string {
	if strings.HasSuffix(i.path, "/") {
		return "directory"
	}
	return "file"
}

// entryItems builds list items for files, marking those in selection.
func entryItems(files, selection []string) []list.Item {
	chosen := make(map[string]bool, len(selection))
	for _, p := range selection {
		chosen[p] = true
	}

	items := make([]list.Item, len(files))
	for i, f := range files {
		items[i] = entryItem{path: f, selected: chosen[f]}
	}
	return items
}
