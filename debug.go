package main

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"

	"github.com/tideland/golib/logger"
)

var debuggingenabled = false

func initLogging(debug bool) {
	debuggingenabled = debug
	if debug {
		logger.SetLevel(logger.LevelDebug)
	} else {
		logger.SetLevel(logger.LevelInfo)
	}
}

// source https://groups.google.com/forum/?fromgroups#!topic/golang-nuts/C24fRw8HDmI
// from David Wright
type ErrorTrace struct {
	err   error
	trace string
}

func NewErrorTrace(v ...interface{}) error {
	msg := fmt.Sprint(v...)
	buf := bytes.Buffer{}
	skip := 2
addtrace:
	pc, file, line, ok := runtime.Caller(skip)
	if ok && skip < 6 { // print a max of 6 lines of trace
		fun := runtime.FuncForPC(pc)
		buf.WriteString(fmt.Sprint(fun.Name(), " -- ", file, ":", line, "\n"))
		skip++
		goto addtrace
	}

	if buf.Len() > 0 {
		trace := buf.String()
		return ErrorTrace{err: errors.New(msg), trace: trace}
	}
	return errors.New("error generating error")
}

func (et ErrorTrace) Error() string {
	return et.err.Error() + "\n  " + et.trace
}

func formatstring(v []interface{}) string {
	f := ""
	for range v {
		f += " %+v"
	}
	return f
}

// D logs at debug level, gated by the config debug flag.
func D(v ...interface{}) {
	if debuggingenabled {
		logger.Debugf(formatstring(v), v...)
	}
}

// P logs at info level.
func P(v ...interface{}) {
	logger.Infof(formatstring(v), v...)
}

// B logs an operational failure with a short caller trace.
func B(v ...interface{}) {
	logger.Errorf("%v", NewErrorTrace(v...))
}

// F logs a fatal condition with a caller trace and brings the daemon down.
func F(v ...interface{}) {
	logger.Criticalf("%v", NewErrorTrace(v...))
	panic("-----")
}
