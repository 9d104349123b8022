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
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"gitlab.com/yawning/ntorref.git"
	"gitlab.com/yawning/ntorref.git/common/log"
	"gitlab.com/yawning/ntorref.git/common/ntor"
)

const selfTestNodeID = "iToldYouAboutStairs."

func selfTestCmd() *cobra.Command {
	var iterations int

	cmd := &cobra.Command{
		Use:   "self-test",
		Short: "Run complete handshakes against ourselves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := suite()
			if err != nil {
				return err
			}
			if err = selfTest(s, keyBytes(), iterations); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d handshakes\n", iterations)
			return nil
		},
	}
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 8, "Number of handshakes to run")

	return cmd
}

func selfTest(s *ntor.Suite, keyLen, iterations int) error {
	nodeID, err := ntor.NewNodeID([]byte(selfTestNodeID))
	if err != nil {
		return err
	}
	idKeypair, err := s.NewKeypair()
	if err != nil {
		return err
	}
	serverState := ntorref.NewServerState(nodeID, idKeypair)

	seen := make(map[string]int)
	for i := 0; i < iterations; i++ {
		clientHs := ntorref.NewClientHandshake(nodeID, idKeypair.Public(), ntorref.WithSuite(s), ntorref.WithKeyLength(keyLen))
		serverHs := ntorref.NewServerHandshake(serverState, ntorref.WithSuite(s), ntorref.WithKeyLength(keyLen))

		create, err := clientHs.Create()
		if err != nil {
			return fmt.Errorf("handshake %d: client: %w", i, err)
		}
		serverKeys, created, err := serverHs.Respond(create)
		if err != nil {
			return fmt.Errorf("handshake %d: server: %w", i, err)
		}
		clientKeys, err := clientHs.Complete(created)
		if err != nil {
			return fmt.Errorf("handshake %d: client: %w", i, err)
		}

		if !bytes.Equal(clientKeys, serverKeys) {
			return fmt.Errorf("handshake %d: key material mismatch", i)
		}
		if keyLen > 0 {
			k := hex.EncodeToString(clientKeys)
			if j, ok := seen[k]; ok {
				return fmt.Errorf("handshake %d: same key material as handshake %d", i, j)
			}
			seen[k] = i
		}
		log.Debugf("self-test: handshake %d ok", i)
	}

	return nil
}
