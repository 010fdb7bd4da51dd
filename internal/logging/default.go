package logging

import (
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"slices"
	"strings"
	"sync/atomic"
)

// DefaultLogger writes one line per message through the standard log
// package: Debug and Info to the info writer, Warn and Error to the error
// writer. Fields are printed sorted by key.
type DefaultLogger struct {
	out    *log.Logger
	errOut *log.Logger
	level  *atomic.Int32
	fields Fields
}

// NewDefaultLogger logs to stdout and stderr at InfoLevel.
func NewDefaultLogger() *DefaultLogger {
	return NewWriterLogger(os.Stdout, os.Stderr)
}

// NewWriterLogger logs to the given writers at InfoLevel.
func NewWriterLogger(out, errOut io.Writer) *DefaultLogger {
	level := &atomic.Int32{}
	level.Store(int32(InfoLevel))
	return &DefaultLogger{
		out:    log.New(out, "", log.LstdFlags),
		errOut: log.New(errOut, "", log.LstdFlags),
		level:  level,
		fields: Fields{},
	}
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) { d.log(DebugLevel, nil, msg, fields) }
func (d *DefaultLogger) Info(msg string, fields ...Fields)  { d.log(InfoLevel, nil, msg, fields) }
func (d *DefaultLogger) Warn(msg string, fields ...Fields)  { d.log(WarnLevel, nil, msg, fields) }

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.log(ErrorLevel, err, msg, fields)
}

// WithFields returns a child logger sharing writers and level.
func (d *DefaultLogger) WithFields(fields Fields) Logger {
	merged := make(Fields, len(d.fields)+len(fields))
	maps.Copy(merged, d.fields)
	maps.Copy(merged, fields)
	return &DefaultLogger{out: d.out, errOut: d.errOut, level: d.level, fields: merged}
}

// SetLevel sets the minimum level; children created by WithFields follow.
func (d *DefaultLogger) SetLevel(level Level) {
	d.level.Store(int32(level))
}

func (d *DefaultLogger) log(level Level, err error, msg string, fields []Fields) {
	if level < Level(d.level.Load()) {
		return
	}

	line := format(level, err, msg, d.fields, fields)
	if level >= WarnLevel {
		d.errOut.Println(line)
		return
	}
	d.out.Println(line)
}

func format(level Level, err error, msg string, base Fields, extra []Fields) string {
	all := make(Fields, len(base))
	maps.Copy(all, base)
	for _, f := range extra {
		maps.Copy(all, f)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", level, msg)
	if err != nil {
		fmt.Fprintf(&b, ": %v", err)
	}
	for _, k := range slices.Sorted(maps.Keys(all)) {
		fmt.Fprintf(&b, " %s=%v", k, all[k])
	}
	return b.String()
}
