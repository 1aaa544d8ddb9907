package main

import "github.com/grailbio/base/log"

// logAt reports whether opts.logLevel admits messages at severity
// level (0=errors-only .. 4=debug), mirroring grailbio/base/log's own
// Error < Info < Debug ordering rather than inventing a separate
// scale.
func (o *runOpts) logAt(level int) bool { return o.logLevel >= level }

func (o *runOpts) debugf(format string, args ...interface{}) {
	if o.logAt(4) {
		log.Debug.Printf(format, args...)
	}
}

func (o *runOpts) infof(format string, args ...interface{}) {
	if o.logAt(2) {
		log.Printf(format, args...)
	}
}
