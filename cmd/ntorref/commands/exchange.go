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

package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
	pt "gitlab.torproject.org/tpo/anti-censorship/pluggable-transports/goptlib"

	"gitlab.com/yawning/ntorref.git"
	"gitlab.com/yawning/ntorref.git/common/ntor"
)

// The client1/server/client2 commands run one handshake step each, taking
// and printing hex, so that every message can be fed to or taken from
// another implementation.

func client1Cmd() *cobra.Command {
	var argStr string

	cmd := &cobra.Command{
		Use:   "client1",
		Short: "Generate a CREATE message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := suite()
			if err != nil {
				return err
			}
			ptArgs, err := parseArgs(argStr)
			if err != nil {
				return err
			}
			nodeID, serverIdentity, err := ntorref.ClientStateFromArgs(ptArgs)
			if err != nil {
				return err
			}

			x, create, err := s.ClientPart1(nodeID, serverIdentity)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printValue(w, "x", x.Private().Hex())
			printValue(w, "create", hex.EncodeToString(create.Bytes()))
			return nil
		},
	}
	cmd.Flags().StringVar(&argStr, flagArgs, "", "Server parameters, \"node-id=<id>;public-key=<B>\"")
	_ = cmd.MarkFlagRequired(flagArgs)

	return cmd
}

func serverCmd() *cobra.Command {
	var argStr string

	cmd := &cobra.Command{
		Use:   "server CREATE",
		Short: "Answer a CREATE message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := suite()
			if err != nil {
				return err
			}
			ptArgs := &pt.Args{}
			if argStr != "" {
				if ptArgs, err = parseArgs(argStr); err != nil {
					return err
				}
			}
			st, err := ntorref.ServerStateFromArgs(config.GetString(flagStateDir), ptArgs)
			if err != nil {
				return fmt.Errorf("failed to load server state: %w", err)
			}
			create, err := hex.DecodeString(args[0])
			if err != nil {
				return fmt.Errorf("failed to decode CREATE: %w", err)
			}

			// Re-derive B with the selected curve.
			identity := s.KeypairFromPrivate(st.Identity().Private())
			keys, created, err := s.Server(identity, st.NodeID(), create, keyBytes())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printValue(w, "keys", hex.EncodeToString(keys))
			printValue(w, "created", hex.EncodeToString(created.Bytes()))
			return nil
		},
	}
	cmd.Flags().StringVar(&argStr, flagArgs, "", "Server identity, \"node-id=<id>;private-key=<b>\" (default: state file)")

	return cmd
}

func client2Cmd() *cobra.Command {
	var argStr string

	cmd := &cobra.Command{
		Use:   "client2 X CREATED",
		Short: "Complete a handshake with a CREATED message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := suite()
			if err != nil {
				return err
			}
			ptArgs, err := parseArgs(argStr)
			if err != nil {
				return err
			}
			nodeID, serverIdentity, err := ntorref.ClientStateFromArgs(ptArgs)
			if err != nil {
				return err
			}

			rawX, err := hex.DecodeString(args[0])
			if err != nil {
				return fmt.Errorf("failed to decode x: %w", err)
			}
			x, err := ntor.NewPrivateKey(rawX)
			if err != nil {
				return err
			}
			created, err := hex.DecodeString(args[1])
			if err != nil {
				return fmt.Errorf("failed to decode CREATED: %w", err)
			}

			keys, err := s.ClientPart2(s.KeypairFromPrivate(x), created, nodeID, serverIdentity, keyBytes())
			if err != nil {
				return err
			}
			printValue(cmd.OutOrStdout(), "keys", hex.EncodeToString(keys))
			return nil
		},
	}
	cmd.Flags().StringVar(&argStr, flagArgs, "", "Server parameters, \"node-id=<id>;public-key=<B>\"")
	_ = cmd.MarkFlagRequired(flagArgs)

	return cmd
}
