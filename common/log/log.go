/*
 * Copyright (c) 2014, Yawning Angel <yawning at torproject dot org>
 * All rights reserved.
 *
 * Redistribution and use in source and binary forms, with or without
 * modification, are permitted provided that the following conditions are met:
 *
 *  * Redistributions of source code must retain the above copyright notice,
 *    this list of conditions and the following disclaimer.
 *
 *  * Redistributions in binary form must reproduce the above copyright notice,
 *    this list of conditions and the following disclaimer in the documentation
 *    and/or other materials provided with the distribution.
 *
 * THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
 * AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
 * IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
 * ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
 * LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
 * CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
 * SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
 * INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
 * CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
 * ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
 * POSSIBILITY OF SUCH DAMAGE.
 */

// Package log implements a simple set of leveled logging wrappers around
// logrus, with the ability to scrub sensitive values from the output.
package log

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

const elidedValue = "[scrubbed]"

var (
	logger = newLogger()

	enableLogging bool
	unsafeLogging bool
)

func newLogger() *logrus.Logger {
	l := logrus.New()

	// We do not want to log by default.
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	return l
}

// Init initializes logging with the given writer and unsafe logging
// parameter.  A nil writer disables logging.
func Init(w io.Writer, unsafe bool) {
	unsafeLogging = unsafe
	enableLogging = w != nil
	if !enableLogging {
		logger.SetOutput(io.Discard)
		return
	}
	logger.SetOutput(w)
}

// Enabled returns if logging is enabled.
func Enabled() bool {
	return enableLogging
}

// Unsafe returns if unsafe logging is allowed.
func Unsafe() bool {
	return unsafeLogging
}

// Level returns the current log level.
func Level() string {
	return logger.GetLevel().String()
}

// SetLogLevel sets the log level to the value indicated by the given string
// (case-insensitive).
func SetLogLevel(logLevelStr string) error {
	switch strings.ToUpper(logLevelStr) {
	case "ERROR":
		logger.SetLevel(logrus.ErrorLevel)
	case "WARN", "WARNING":
		logger.SetLevel(logrus.WarnLevel)
	case "INFO", "NOTICE":
		logger.SetLevel(logrus.InfoLevel)
	case "DEBUG":
		logger.SetLevel(logrus.DebugLevel)
	default:
		return fmt.Errorf("invalid log level '%s'", logLevelStr)
	}

	return nil
}

// WithField returns an entry with a single structured field attached.
func WithField(key string, value interface{}) *logrus.Entry {
	return logger.WithField(key, value)
}

// WithFields returns an entry with the given structured fields attached.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return logger.WithFields(fields)
}

// Errorf logs the given format string/arguments at the ERROR log level.
func Errorf(format string, a ...interface{}) {
	logger.Errorf(format, a...)
}

// Warnf logs the given format string/arguments at the WARN log level.
func Warnf(format string, a ...interface{}) {
	logger.Warnf(format, a...)
}

// Infof logs the given format string/arguments at the INFO log level.
func Infof(format string, a ...interface{}) {
	logger.Infof(format, a...)
}

// Debugf logs the given format string/arguments at the DEBUG log level.
func Debugf(format string, a ...interface{}) {
	logger.Debugf(format, a...)
}

// ElideBytes transforms secret material into a string suitable for logging,
// returning a placeholder unless unsafe logging is enabled.
func ElideBytes(b []byte) string {
	if unsafeLogging {
		return hex.EncodeToString(b)
	}
	return elidedValue
}

// ElideError transforms the string representation of the provided error
// based on the unsafeLogging setting.
func ElideError(err error) string {
	if unsafeLogging {
		return err.Error()
	}

	// Only the type is logged, since error strings can embed whatever the
	// peer sent.
	return fmt.Sprintf("error: <%T>", err)
}
