package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/zephyrtronium/calcpaper/internal/render"
)

// debounce is how long the paper file must be quiet before it is reloaded.
const debounce = 100 * time.Millisecond

// watchPaper renders the paper, then renders it again each time its file is
// written, until ctx is done.
func watchPaper(ctx context.Context, w io.Writer, o *rootOptions, r render.Renderer) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	path, err := filepath.Abs(o.cfg.Paper)
	if err != nil {
		return err
	}
	// Papers are replaced by rename when stored, so watch the directory.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	if err := r(w, o.paper); err != nil {
		return err
	}

	var quiet <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			quiet = time.After(debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			o.log.Error("watching paper", zap.Error(err))
		case <-quiet:
			quiet = nil
			if err := o.paper.Load(path); err != nil {
				o.log.Warn("reloading paper", zap.String("path", path), zap.Error(err))
				continue
			}
			fmt.Fprintln(w)
			if err := r(w, o.paper); err != nil {
				return err
			}
		}
	}
}
