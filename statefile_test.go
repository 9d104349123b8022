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

package ntorref

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	pt "gitlab.torproject.org/tpo/anti-censorship/pluggable-transports/goptlib"

	"gitlab.com/yawning/ntorref.git/common/ntor"
)

func TestServerStateFromArgs(t *testing.T) {
	nodeID, _ := ntor.NewNodeID([]byte("\x00\x01\x02\x03\x04\x05\x06\x07\x08\x09\x0a\x0b\x0c\x0d\x0e\x0f\x10\x11\x12\x13"))
	serverKeypair, err := ntor.NewKeypair()
	if err != nil {
		t.Fatalf("server: ntor.NewKeypair failed: %s", err)
	}

	args := pt.Args{}
	args.Add("node-id", nodeID.Hex())
	args.Add("private-key", serverKeypair.Private().Hex())

	stateDir := t.TempDir()
	server, err := ServerStateFromArgs(stateDir, &args)
	if err != nil || server == nil {
		t.Fatalf("ServerStateFromArgs failed: %s", err)
	}
	if *server.NodeID() != *nodeID || *server.Identity().Public() != *serverKeypair.Public() {
		t.Fatal("ServerStateFromArgs loaded the wrong identity")
	}

	// Fully specified arguments never touch the state directory.
	if _, err := os.Stat(filepath.Join(stateDir, StateFile)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("file that shouldn't exist either exists or other err occurred: %s", err)
	}

	// Base64 works just as well, and a matching public key is accepted.
	args = pt.Args{}
	args.Add("node-id", nodeID.Base64())
	args.Add("private-key", serverKeypair.Private().Base64())
	args.Add("public-key", serverKeypair.Public().Base64())
	if _, err = ServerStateFromArgs(stateDir, &args); err != nil {
		t.Fatalf("ServerStateFromArgs failed: %s", err)
	}

	// A mismatched public key is not.
	otherKeypair, _ := ntor.NewKeypair()
	args = pt.Args{}
	args.Add("node-id", nodeID.Hex())
	args.Add("private-key", serverKeypair.Private().Hex())
	args.Add("public-key", otherKeypair.Public().Hex())
	if _, err = ServerStateFromArgs(stateDir, &args); err == nil {
		t.Fatal("ServerStateFromArgs accepted a mismatched public key")
	}

	// Neither is a partial specification.
	args = pt.Args{}
	args.Add("node-id", nodeID.Hex())
	if _, err = ServerStateFromArgs(stateDir, &args); err == nil {
		t.Fatal("ServerStateFromArgs accepted a missing private key")
	}
}

func TestServerStateDir(t *testing.T) {
	stateDir := t.TempDir()

	server, err := ServerStateFromArgs(stateDir, &pt.Args{})
	if err != nil || server == nil {
		t.Fatalf("ServerStateFromArgs failed: %s", err)
	}

	fPath := filepath.Join(stateDir, StateFile)
	fi, err := os.Stat(fPath)
	if err != nil {
		t.Fatalf("file that should exist either doesn't exists or other err occurred: %s", err)
	}
	if fi.Mode().Perm() != 0600 {
		t.Fatalf("state file has mode %v", fi.Mode().Perm())
	}

	raw, err := os.ReadFile(fPath)
	if err != nil {
		t.Fatalf("failed to read state file: %s", err)
	}
	var js jsonServerState
	if err = json.Unmarshal(raw, &js); err != nil {
		t.Fatalf("failed to parse state file: %s", err)
	}
	if js.PublicKey != server.Identity().Public().Base64() {
		t.Fatal("state file public key does not match")
	}

	// Loading again yields the same identity.
	again, err := ServerStateFromArgs(stateDir, &pt.Args{})
	if err != nil {
		t.Fatalf("ServerStateFromArgs failed: %s", err)
	}
	if *again.NodeID() != *server.NodeID() || *again.Identity().Private() != *server.Identity().Private() {
		t.Fatal("reloaded state differs")
	}

	// And the client parameters point at it.
	nodeID, publicKey, err := ClientStateFromArgs(server.ClientArgs())
	if err != nil {
		t.Fatalf("ClientStateFromArgs failed: %s", err)
	}
	if *nodeID != *server.NodeID() || *publicKey != *server.Identity().Public() {
		t.Fatal("ClientArgs round trip failed")
	}
}

func TestServerStateCorrupt(t *testing.T) {
	stateDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(stateDir, StateFile), []byte("{"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := ServerStateFromArgs(stateDir, &pt.Args{}); err == nil {
		t.Fatal("ServerStateFromArgs accepted a corrupt state file")
	}
}
