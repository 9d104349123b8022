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
	"fmt"
	"os"
	"path/filepath"

	pt "gitlab.torproject.org/tpo/anti-censorship/pluggable-transports/goptlib"

	"gitlab.com/yawning/ntorref.git/common/csrand"
	"gitlab.com/yawning/ntorref.git/common/log"
	"gitlab.com/yawning/ntorref.git/common/ntor"
)

const (
	// StateFile is the name of the server identity state file.
	StateFile = "ntorref_state.json"

	nodeIDArg     = "node-id"
	privateKeyArg = "private-key"
	publicKeyArg  = "public-key"
)

type jsonServerState struct {
	NodeID     string `json:"node-id"`
	PrivateKey string `json:"private-key"`
	PublicKey  string `json:"public-key"`
}

// ServerState is a server's long term identity: its NodeID and the
// identity keypair (b, B).  It is read-only once loaded.
type ServerState struct {
	nodeID      *ntor.NodeID
	identityKey *ntor.Keypair
}

// NewServerState creates a ServerState from an existing NodeID and identity
// keypair.
func NewServerState(nodeID *ntor.NodeID, identityKey *ntor.Keypair) *ServerState {
	return &ServerState{nodeID: nodeID, identityKey: identityKey}
}

// NodeID returns the server's NodeID.
func (st *ServerState) NodeID() *ntor.NodeID {
	return st.nodeID
}

// Identity returns the server's identity keypair.
func (st *ServerState) Identity() *ntor.Keypair {
	return st.identityKey
}

// ClientArgs returns the parameters a client needs to handshake with this
// server.
func (st *ServerState) ClientArgs() *pt.Args {
	args := pt.Args{}
	args.Add(nodeIDArg, st.nodeID.Hex())
	args.Add(publicKeyArg, st.identityKey.Public().Hex())
	return &args
}

// ServerStateFromArgs loads the server identity from args if it is fully
// specified there, otherwise from the state file in stateDir, creating the
// state file if it does not exist.
func ServerStateFromArgs(stateDir string, args *pt.Args) (*ServerState, error) {
	var js jsonServerState
	var nodeIDOk, privKeyOk bool

	js.NodeID, nodeIDOk = args.Get(nodeIDArg)
	js.PrivateKey, privKeyOk = args.Get(privateKeyArg)
	js.PublicKey, _ = args.Get(publicKeyArg)

	if !privKeyOk && !nodeIDOk {
		if err := jsonServerStateFromFile(stateDir, &js); err != nil {
			return nil, err
		}
	} else if !privKeyOk {
		return nil, fmt.Errorf("missing argument '%s'", privateKeyArg)
	} else if !nodeIDOk {
		return nil, fmt.Errorf("missing argument '%s'", nodeIDArg)
	}

	return serverStateFromJSONServerState(&js)
}

// ClientStateFromArgs parses the parameters a client needs to handshake with
// a server.
func ClientStateFromArgs(args *pt.Args) (*ntor.NodeID, *ntor.PublicKey, error) {
	nodeIDStr, ok := args.Get(nodeIDArg)
	if !ok {
		return nil, nil, fmt.Errorf("missing argument '%s'", nodeIDArg)
	}
	publicKeyStr, ok := args.Get(publicKeyArg)
	if !ok {
		return nil, nil, fmt.Errorf("missing argument '%s'", publicKeyArg)
	}

	nodeID, err := decodeNodeID(nodeIDStr)
	if err != nil {
		return nil, nil, err
	}
	publicKey, err := decodePublicKey(publicKeyStr)
	if err != nil {
		return nil, nil, err
	}

	return nodeID, publicKey, nil
}

// The arguments may be either hex or Base64 encoded, the encoded lengths
// never collide.

func decodeNodeID(s string) (*ntor.NodeID, error) {
	if len(s) == 2*ntor.NodeIDLength {
		return ntor.NodeIDFromHex(s)
	}
	return ntor.NodeIDFromBase64(s)
}

func decodePublicKey(s string) (*ntor.PublicKey, error) {
	if len(s) == 2*ntor.PublicKeyLength {
		return ntor.PublicKeyFromHex(s)
	}
	return ntor.PublicKeyFromBase64(s)
}

func decodeKeypair(s string) (*ntor.Keypair, error) {
	if len(s) == 2*ntor.PrivateKeyLength {
		return ntor.KeypairFromHex(s)
	}
	return ntor.KeypairFromBase64(s)
}

func serverStateFromJSONServerState(js *jsonServerState) (*ServerState, error) {
	var err error

	st := new(ServerState)
	if st.nodeID, err = decodeNodeID(js.NodeID); err != nil {
		return nil, err
	}
	if st.identityKey, err = decodeKeypair(js.PrivateKey); err != nil {
		return nil, err
	}
	if js.PublicKey != "" {
		publicKey, err := decodePublicKey(js.PublicKey)
		if err != nil {
			return nil, err
		}
		if *publicKey != *st.identityKey.Public() {
			return nil, fmt.Errorf("public key does not match the private key")
		}
	}

	return st, nil
}

func jsonServerStateFromFile(stateDir string, js *jsonServerState) error {
	fPath := filepath.Join(stateDir, StateFile)
	f, err := os.ReadFile(fPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err = newJSONServerState(stateDir, js); err == nil {
				return nil
			}
		}
		return fmt.Errorf("failed to load state file '%s': %w", fPath, err)
	}

	if err = json.Unmarshal(f, js); err != nil {
		return fmt.Errorf("failed to load state file '%s': %w", fPath, err)
	}
	log.Debugf("loaded server state from '%s'", fPath)

	return nil
}

func newJSONServerState(stateDir string, js *jsonServerState) (err error) {
	// Generate everything a server needs, using the cryptographic PRNG.
	var st ServerState
	rawID := make([]byte, ntor.NodeIDLength)
	if err = csrand.Bytes(rawID); err != nil {
		return
	}
	if st.nodeID, err = ntor.NewNodeID(rawID); err != nil {
		return
	}
	if st.identityKey, err = ntor.NewKeypair(); err != nil {
		return
	}

	// Encode it into JSON format and write the state file.
	js.NodeID = st.nodeID.Base64()
	js.PrivateKey = st.identityKey.Private().Base64()
	js.PublicKey = st.identityKey.Public().Base64()

	var encoded []byte
	if encoded, err = json.Marshal(js); err != nil {
		return
	}

	fPath := filepath.Join(stateDir, StateFile)
	if err = os.WriteFile(fPath, encoded, 0600); err != nil {
		return err
	}
	log.Infof("generated new server state in '%s'", fPath)

	return nil
}
