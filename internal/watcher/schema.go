package watcher

import (
	"errors"

	"github.com/hyperjump/jcsdl/internal/schema"
)

// WatchSchema reloads store whenever its schema file changes. A file that fails
// to load leaves the previous definition active.
func WatchSchema(store *schema.Store, opts ...WatcherOption) (*Watcher, error) {
	if store.Path() == "" {
		return nil, errors.New("schema store has no file to watch")
	}
	return ForFile(store.Path(), func(string) { _ = store.Reload() }, opts...), nil
}
