// SPDX-FileCopyrightText: 2026 The tripmesh-go Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"fmt"
	"math"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"github.com/tripmesh/tripmesh-go/pkg/mcp"
)

// Kind of offers in a catalog file.
type Kind string

const (
	KindTravel Kind = "travel"
	KindHotel  Kind = "hotel"
)

// catalogFile is the TOML representation of a catalog. A file might contain both sections.
type catalogFile struct {
	Travel *struct {
		Fallback     *TravelOffer             `toml:"fallback"`
		Destinations map[string][]TravelOffer `toml:"destinations"`
	} `toml:"travel"`

	Hotel *struct {
		Fallback     *HotelOffer             `toml:"fallback"`
		Destinations map[string][]HotelOffer `toml:"destinations"`
	} `toml:"hotel"`
}

// loadFile parses a catalog file into a Quoter of the requested kind. A missing fallback is replaced by the
// built-in catalog's one.
func loadFile(path string, kind Kind) (Quoter, error) {
	var cf catalogFile
	md, err := toml.DecodeFile(path, &cf)
	if err != nil {
		return nil, err
	}

	for _, key := range md.Undecoded() {
		log.WithFields(log.Fields{
			"file": path,
			"key":  key.String(),
		}).Warn("Ignoring unknown catalog key")
	}

	switch kind {
	case KindTravel:
		if cf.Travel == nil {
			return nil, fmt.Errorf("catalog %s has no travel section", path)
		}

		tc := DefaultTravelCatalog()
		tc.Destinations = cf.Travel.Destinations
		if cf.Travel.Fallback != nil {
			tc.Fallback = *cf.Travel.Fallback
		}
		return tc, nil

	case KindHotel:
		if cf.Hotel == nil {
			return nil, fmt.Errorf("catalog %s has no hotel section", path)
		}

		hc := DefaultHotelCatalog()
		hc.Destinations = cf.Hotel.Destinations
		if cf.Hotel.Fallback != nil {
			hc.Fallback = *cf.Hotel.Fallback
		}
		return hc, nil

	default:
		return nil, fmt.Errorf("unknown catalog kind %q", kind)
	}
}

// FileCatalog is a Quoter backed by a TOML file, which is reloaded after each change.
//
// A reload failing to parse the file keeps the previous offers.
type FileCatalog struct {
	path string
	kind Kind

	mutex  sync.RWMutex
	quoter Quoter

	watcher *fsnotify.Watcher
	stopSyn chan struct{}
	stopAck chan struct{}
	once    sync.Once
}

// OpenFile loads a catalog file and starts watching it.
func OpenFile(path string, kind Kind) (fc *FileCatalog, err error) {
	path = filepath.Clean(path)

	quoter, err := loadFile(path, kind)
	if err != nil {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return
	}

	// Editors tend to replace files instead of writing them. Thus, the directory is watched.
	if err = watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return
	}

	fc = &FileCatalog{
		path:    path,
		kind:    kind,
		quoter:  quoter,
		watcher: watcher,
		stopSyn: make(chan struct{}),
		stopAck: make(chan struct{}),
	}

	go fc.handler()

	log.WithFields(log.Fields{
		"file": path,
		"kind": kind,
	}).Info("Opened catalog file")
	return
}

func (fc *FileCatalog) log() *log.Entry {
	return log.WithFields(log.Fields{
		"file": fc.path,
		"kind": fc.kind,
	})
}

// Quote the currently loaded offers.
func (fc *FileCatalog) Quote(destination string, dates mcp.Dates) []mcp.Offer {
	fc.mutex.RLock()
	quoter := fc.quoter
	fc.mutex.RUnlock()

	return quoter.Quote(destination, dates)
}

// Reload the catalog file. On failure, the previous offers are kept.
func (fc *FileCatalog) Reload() error {
	quoter, err := loadFile(fc.path, fc.kind)
	if err != nil {
		return err
	}

	fc.mutex.Lock()
	fc.quoter = quoter
	fc.mutex.Unlock()

	fc.log().Info("Reloaded catalog file")
	return nil
}

// reload with an exponential backoff, as a file might be read while still being written.
func (fc *FileCatalog) reload() {
	for i := 0; i < 5; i++ {
		err := fc.Reload()
		if err == nil {
			return
		}

		fc.log().WithError(err).Warn("Reloading catalog file errored, retrying..")

		select {
		case <-fc.stopSyn:
			return
		case <-time.After(time.Duration(math.Pow(2, float64(i))) * 100 * time.Millisecond):
		}
	}

	fc.log().Error("Failed to reload catalog file, keeping previous offers")
}

func (fc *FileCatalog) handler() {
	defer close(fc.stopAck)

	for {
		select {
		case <-fc.stopSyn:
			return

		case e, ok := <-fc.watcher.Events:
			if !ok {
				fc.log().Error("fsnotify's Event channel was closed")
				return
			}

			if filepath.Clean(e.Name) != fc.path {
				continue
			}

			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				fc.log().WithField("operation", e.Op.String()).Debug("Ignoring fsnotify event")
				continue
			}

			fc.reload()

		case err, ok := <-fc.watcher.Errors:
			if !ok {
				fc.log().Error("fsnotify's Errors channel was closed")
				return
			}

			fc.log().WithError(err).Warn("fsnotify errored")
		}
	}
}

// Close stops watching the catalog file. The last loaded offers remain available.
func (fc *FileCatalog) Close() (err error) {
	fc.once.Do(func() {
		close(fc.stopSyn)
		<-fc.stopAck
		err = fc.watcher.Close()
	})
	return
}
