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

// Package commands implements the ntorref command tree.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	pt "gitlab.torproject.org/tpo/anti-censorship/pluggable-transports/goptlib"

	"gitlab.com/yawning/ntorref.git/common/log"
	"gitlab.com/yawning/ntorref.git/common/ntor"
	"gitlab.com/yawning/ntorref.git/internal/x25519"
)

const (
	ntorrefVersion = "0.0.1"

	flagLogLevel      = "log-level"
	flagEnableLogging = "enable-logging"
	flagUnsafeLogging = "unsafe-logging"
	flagStateDir      = "state-dir"
	flagKeyBytes      = "key-bytes"
	flagCurve         = "curve"
	flagArgs          = "args"
)

// config is the viper instance backing the persistent flags.  Every flag may
// also be supplied through the environment as NTORREF_<FLAG>.
var config *viper.Viper

// Execute runs the command line.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	config = viper.New()
	config.SetEnvPrefix("NTORREF")
	config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	config.AutomaticEnv()

	root := &cobra.Command{
		Use:           "ntorref",
		Short:         "ntor-curve25519-sha256-1 reference implementation",
		Version:       ntorrefVersion,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := log.SetLogLevel(config.GetString(flagLogLevel)); err != nil {
				return err
			}
			if config.GetBool(flagEnableLogging) {
				log.Init(cmd.ErrOrStderr(), config.GetBool(flagUnsafeLogging))
			} else {
				log.Init(nil, config.GetBool(flagUnsafeLogging))
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String(flagLogLevel, "ERROR", "Log level (ERROR/WARN/INFO/DEBUG)")
	flags.Bool(flagEnableLogging, false, "Log to stderr")
	flags.Bool(flagUnsafeLogging, false, "Disable the scrubbing of key material from logs")
	flags.String(flagStateDir, ".", "Directory holding the server state file")
	flags.Int(flagKeyBytes, ntor.DefaultKeyLength, "Bytes of key material to derive")
	flags.String(flagCurve, "native", "Curve25519 implementation (native/reference)")
	if err := config.BindPFlags(flags); err != nil {
		panic("commands: failed to bind flags: " + err.Error())
	}

	root.AddCommand(
		keygenCmd(),
		selfTestCmd(),
		kdfVectorsCmd(),
		client1Cmd(),
		serverCmd(),
		client2Cmd(),
	)

	return root
}

// suite returns the ntor.Suite selected by the --curve flag.
func suite() (*ntor.Suite, error) {
	curve, err := x25519.ByName(config.GetString(flagCurve))
	if err != nil {
		return nil, err
	}
	return &ntor.Suite{Curve: curve}, nil
}

func keyBytes() int {
	return config.GetInt(flagKeyBytes)
}

// parseArgs parses a "k=v;k=v" parameter string, as used for pluggable
// transport bridge lines.
func parseArgs(s string) (*pt.Args, error) {
	args, err := pt.ParseClientParameters(s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse --%s: %w", flagArgs, err)
	}
	return &args, nil
}

func printValue(w io.Writer, name string, value string) {
	fmt.Fprintf(w, "%s: %s\n", name, value)
}
