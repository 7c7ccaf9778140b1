package vgcli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"oss.terrastruct.com/util-go/xmain"

	"github.com/vgraster/vgraster/lib/raster"
	"github.com/vgraster/vgraster/vgexport"
)

// debounce interval for editors that fire several events per save.
const watchDebounce = 100 * time.Millisecond

type watcher struct {
	ms         *xmain.State
	sess       raster.Session
	opts       vgexport.Opts
	inputPath  string
	outputPath string
}

func (w *watcher) run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	// Watch the parent directory: most editors save by replacing the
	// file, which would drop a watch on the file itself.
	err = fw.Add(filepath.Dir(w.inputPath))
	if err != nil {
		return err
	}

	w.export(ctx)

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.inputPath) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.ms.Log.Debug.Printf("detected change in %s", w.inputPath)
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.ms.Log.Error.Printf("watch error: %v", err)
		case <-pending:
			w.export(ctx)
		}
	}
}

// export renders once, logging failures instead of exiting so a broken
// intermediate save doesn't kill the watch loop.
func (w *watcher) export(ctx context.Context) {
	start := time.Now()

	spec, err := readSpec(w.ms, w.inputPath)
	if err != nil {
		w.ms.Log.Error.Printf("%v", err)
		return
	}

	out, err := vgexport.RenderSession(ctx, w.sess, spec, w.opts)
	if err != nil {
		w.ms.Log.Error.Printf("failed to export %s: %v", w.inputPath, err)
		// A wedged page stays wedged; replace the browser so the next
		// save has a chance.
		sess, rerr := w.sess.Restart()
		if rerr != nil {
			w.ms.Log.Error.Printf("failed to restart browser: %v", rerr)
			return
		}
		w.sess = sess
		return
	}

	err = w.ms.WritePath(w.outputPath, out)
	if err != nil {
		w.ms.Log.Error.Printf("failed to write %s: %v", w.outputPath, err)
		return
	}
	w.ms.Log.Success.Printf("successfully exported %v to %v in %s", w.inputPath, w.outputPath, time.Since(start).Round(time.Millisecond))
}
