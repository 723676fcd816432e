// Copyright (c) 2016, 2018 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"code.cryptopower.dev/group/govledger/ledger"
	"code.cryptopower.dev/group/govledger/logger"
	"code.cryptopower.dev/group/govledger/pagestore"
	"code.cryptopower.dev/group/govledger/rpcserver"
	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

const logFilename = "govledger.log"

// logWriter implements an io.Writer that outputs to both standard error and
// the write-end pipe of an initialized log rotator.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stderr.Write(p)
	if logRotator != nil {
		return logRotator.Write(p)
	}
	return len(p), nil
}

// Loggers per subsystem.  A single backend logger is created and all subsytem
// loggers created from it will write to the backend.  When adding new
// subsystems, add the subsystem logger variable here and to the
// subsystemLoggers map.
//
// Loggers can not be used before the log rotator has been initialized with a
// log file.  This must be performed early during application startup by calling
// initLogRotator.
var (
	// backendLog is the logging backend used to create all subsystem loggers.
	backendLog = slog.NewBackend(logWriter{})

	// logRotator is one of the logging outputs.  It should be closed on
	// application shutdown.
	logRotator *rotator.Rotator

	log     = backendLog.Logger("GOVL")
	ldgrLog = backendLog.Logger("LDGR")
	pgstLog = backendLog.Logger("PGST")
	rpcsLog = backendLog.Logger("RPCS")
)

// Initialize package-global logger variables.
func init() {
	ledger.UseLogger(ldgrLog)
	pagestore.UseLogger(pgstLog)
	rpcserver.UseLogger(rpcsLog)

	logger.New(subsystemLoggers)
}

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]slog.Logger{
	"GOVL": log,
	"LDGR": ldgrLog,
	"PGST": pgstLog,
	"RPCS": rpcsLog,
}

// initLogRotator initializes the logging rotater to write logs to a file in
// logDir and create roll files in the same directory.  It must be called
// before the package-global log rotater variables are used.
func initLogRotator(logDir string, maxRolls int) error {
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %v", err)
	}

	r, err := rotator.New(filepath.Join(logDir, logFilename), 32*1024, false, maxRolls)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %v", err)
	}

	logRotator = r
	return nil
}

// closeLogRotator flushes and closes the log file, if one is open.
func closeLogRotator() {
	if logRotator != nil {
		logRotator.Close()
		logRotator = nil
	}
}
