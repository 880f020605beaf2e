package clients

import (
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the catalog whenever its directory changes. Events are
// debounced so an editor writing several files triggers a single reload.
func (c *Catalog) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	err = watcher.Add(c.dir)
	if err != nil {
		return err
	}

	reload := make(chan struct{})
	go scheduleReload(reload, c.Reload)
	go handleWatcher(watcher, reload)
	return nil
}

func handleWatcher(watcher *fsnotify.Watcher, reload chan<- struct{}) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write | fsnotify.Remove | fsnotify.Create) {
				reload <- struct{}{}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("client catalog watcher error: %v\n", err)
		}
	}
}

func scheduleReload(reload <-chan struct{}, callback func()) {
	var timer *time.Timer = nil
	var c <-chan time.Time = nil
	duration := time.Millisecond * 500
	for {
		select {
		case <-reload:
			if timer != nil {
				timer.Reset(duration)
			} else {
				timer = time.NewTimer(duration)
				c = timer.C
			}

		case <-c:
			c = nil
			timer = nil
			callback()
		}
	}
}
