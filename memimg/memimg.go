package memimg

import (
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Cache keeps food icons in memory, scaled to one grid block.
type Cache struct {
	mu        sync.RWMutex
	images    map[string]image.Image
	blockSize int
	log       zerolog.Logger
}

func New(blockSize int, log zerolog.Logger) *Cache {
	return &Cache{
		images:    make(map[string]image.Image),
		blockSize: blockSize,
		log:       log.With().Str("component", "memimg").Logger(),
	}
}

// LoadDir loads every image under directory. Files that fail to decode are
// logged and skipped.
func (c *Cache) LoadDir(directory string) error {
	return filepath.WalkDir(directory, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isImage(path) {
			return nil
		}
		if err := c.load(path); err != nil {
			c.log.Warn().Err(err).Str("path", path).Msg("skip icon")
		}
		return nil
	})
}

func (c *Cache) load(path string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return err
	}
	scaled := imaging.Fit(img, c.blockSize, c.blockSize, imaging.Lanczos)

	c.mu.Lock()
	c.images[filepath.Base(path)] = scaled
	c.mu.Unlock()
	return nil
}

func (c *Cache) remove(path string) {
	c.mu.Lock()
	delete(c.images, filepath.Base(path))
	c.mu.Unlock()
}

// Get returns the scaled icon stored under filename.
func (c *Cache) Get(filename string) (image.Image, bool) {
	c.mu.RLock()
	img, exists := c.images[filename]
	c.mu.RUnlock()
	return img, exists
}

// Len reports how many icons are cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Watch reloads icons in directory as they change. The watcher is running
// when Watch returns; stop closes it and waits for the event loop to exit.
func (c *Cache) Watch(directory string) (stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(directory); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				c.handle(event)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.log.Error().Err(err).Msg("watch icons")
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			watcher.Close()
			<-done
		})
	}, nil
}

func (c *Cache) handle(event fsnotify.Event) {
	if !isImage(event.Name) {
		return
	}
	switch {
	case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
		if err := c.load(event.Name); err != nil {
			// partially written files fail here and reload on the next write
			c.log.Debug().Err(err).Str("path", event.Name).Msg("reload icon")
			return
		}
		c.log.Info().Str("icon", filepath.Base(event.Name)).Msg("icon reloaded")
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		c.remove(event.Name)
		c.log.Info().Str("icon", filepath.Base(event.Name)).Msg("icon removed")
	}
}

func isImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp":
		return true
	}
	return false
}
