/*
NAME
  watch.go

DESCRIPTION
  watch.go wires the ambient concerns surrounding a Config: a rolling log
  sink built the way cmd/rv constructs one, an fsnotify watcher that
  re-applies a parameter bundle file on change, and an sd_notify readiness
  signal for Systemd-managed deployments.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"encoding/json"
	"os"

	"github.com/coreos/go-systemd/daemon"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log roller defaults, matching the teacher cmd/rv/main.go constants.
const (
	DefaultLogMaxSize   = 500 // MB
	DefaultLogMaxBackup = 10
	DefaultLogMaxAge    = 28 // days
)

// NewLogSink builds the lumberjack roller backing LogPath, the way
// cmd/rv builds its fileLog. Returns nil if LogPath is unset, in which
// case the caller should log to stderr instead.
func (c *Config) NewLogSink() *lumberjack.Logger {
	if c.LogPath == "" {
		return nil
	}
	maxSize := c.MaxLogSize
	if maxSize == 0 {
		maxSize = DefaultLogMaxSize
	}
	return &lumberjack.Logger{
		Filename:   c.LogPath,
		MaxSize:    maxSize,
		MaxBackups: DefaultLogMaxBackup,
		MaxAge:     DefaultLogMaxAge,
	}
}

// WatchBundle watches ParamBundlePath for writes and calls apply with
// the freshly decoded bundle on every change, until stop is closed.
// apply is expected to call c.Update and then re-run whatever depends on
// the config (the Session's reset, per spec.md §4.9). Returns
// immediately with an error if the path cannot be watched; the watch
// itself runs in a goroutine.
func (c *Config) WatchBundle(stop <-chan struct{}, apply func(map[string]interface{})) error {
	if c.ParamBundlePath == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "config: could not create fsnotify watcher")
	}
	if err := w.Add(c.ParamBundlePath); err != nil {
		w.Close()
		return errors.Wrapf(err, "config: could not watch %s", c.ParamBundlePath)
	}
	go func() {
		defer w.Close()
		for {
			select {
			case <-stop:
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				bundle, err := readBundle(c.ParamBundlePath)
				if err != nil {
					if c.Logger != nil {
						c.Logger.Warning("could not reload parameter bundle", "error", err.Error())
					}
					continue
				}
				apply(bundle)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				if c.Logger != nil {
					c.Logger.Warning("fsnotify watch error", "error", err.Error())
				}
			}
		}
	}()
	return nil
}

// readBundle decodes a parameter bundle file as JSON into the
// map[string]interface{} shape Update expects.
func readBundle(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "config: reading bundle file")
	}
	var bundle map[string]interface{}
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, errors.Wrap(err, "config: decoding bundle file")
	}
	return bundle, nil
}

// NotifyReady sends an sd_notify READY=1 to the Systemd manager, if
// Systemd is enabled and the process is running under one. Safe to call
// unconditionally; a no-op outside a systemd unit.
func (c *Config) NotifyReady() error {
	if !c.Systemd {
		return nil
	}
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		return errors.Wrap(err, "config: sd_notify failed")
	}
	if !sent && c.Logger != nil {
		c.Logger.Debug("sd_notify not sent: not running under systemd")
	}
	return nil
}
