// Package watcher keeps a gitignore.Store in sync with its rule file.
//
// A Reloader watches the directory holding the rule file with fsnotify,
// falling back to stat polling where fsnotify is unavailable (network mounts,
// some container volumes). Bursts of editor writes are debounced into a
// single recompile, and the result is swapped into the Store so readers that
// already hold a snapshot are never disturbed.
//
// Usage:
//
//	rs, err := gitignore.LoadFile(path, nil)
//	if err != nil {
//	    return err
//	}
//	store := gitignore.NewStore(rs)
//
//	r, err := watcher.NewReloader(path, store, watcher.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	go func() {
//	    for ev := range r.Reloads() {
//	        log.Printf("reloaded %s: %d rules", ev.Path, ev.Rules)
//	    }
//	}()
//	return r.Start(ctx)
package watcher
