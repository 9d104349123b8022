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

// Package ntorref is a reference implementation of the ntor handshake
// (ntor-curve25519-sha256-1), intended for cross-checking other
// implementations rather than for carrying real traffic.
//
// The stateless handshake operations live in common/ntor.  This package
// wraps them in single-use handshake objects that enforce the message
// ordering:
//
//	client: INIT -> CLIENT_SENT_CREATE -> CLIENT_VERIFIED
//	server: INIT -> SERVER_SENT_CREATED
//
// Any error moves the object to FAILED, which is terminal.  A new attempt
// requires a new object, and therefore fresh ephemeral keys.
package ntorref

import (
	"errors"
	"fmt"
	"time"

	"gitlab.com/yawning/ntorref.git/common/log"
	"gitlab.com/yawning/ntorref.git/common/ntor"
	"gitlab.com/yawning/ntorref.git/common/replayfilter"
)

// State is the state of a handshake object.
type State int

const (
	StateInit State = iota
	StateClientSentCreate
	StateServerSentCreated
	StateClientVerified
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateClientSentCreate:
		return "CLIENT_SENT_CREATE"
	case StateServerSentCreated:
		return "SERVER_SENT_CREATED"
	case StateClientVerified:
		return "CLIENT_VERIFIED"
	case StateFailed:
		return "FAILED"
	}
	return fmt.Sprintf("[unknown state: %d]", int(s))
}

// ErrReplayedHandshake is the error returned when the server has already
// seen a CREATE message.
var ErrReplayedHandshake = errors.New("handshake: replayed CREATE message")

// InvalidStateError is the error returned when a handshake operation is
// invoked out of order.
type InvalidStateError struct {
	Op    string
	State State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("handshake: %s invalid in state %s", e.Op, e.State)
}

type options struct {
	suite  *ntor.Suite
	keyLen int
	filter *replayfilter.ReplayFilter
}

// Option configures a handshake object.
type Option func(*options)

// WithSuite selects the ntor.Suite (Curve25519 implementation and entropy
// source) used by the handshake.
func WithSuite(suite *ntor.Suite) Option {
	return func(o *options) {
		o.suite = suite
	}
}

// WithKeyLength sets the amount of key material derived, which defaults to
// ntor.DefaultKeyLength.
func WithKeyLength(n int) Option {
	return func(o *options) {
		o.keyLen = n
	}
}

// WithReplayFilter makes the server refuse CREATE messages already present
// in filter.  The filter may be shared between handshakes.
func WithReplayFilter(filter *replayfilter.ReplayFilter) Option {
	return func(o *options) {
		o.filter = filter
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		suite:  ntor.DefaultSuite,
		keyLen: ntor.DefaultKeyLength,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ClientHandshake is the client side of a single ntor handshake.
type ClientHandshake struct {
	opts           *options
	nodeID         *ntor.NodeID
	serverIdentity *ntor.PublicKey
	keypair        *ntor.Keypair
	state          State
}

// NewClientHandshake creates a client handshake with the server identified
// by nodeID and serverIdentity.
func NewClientHandshake(nodeID *ntor.NodeID, serverIdentity *ntor.PublicKey, opts ...Option) *ClientHandshake {
	hs := new(ClientHandshake)
	hs.opts = newOptions(opts)
	hs.nodeID = nodeID
	hs.serverIdentity = serverIdentity

	return hs
}

// State returns the current state of the handshake.
func (hs *ClientHandshake) State() State {
	return hs.state
}

func (hs *ClientHandshake) fail(err error) error {
	hs.state = StateFailed
	if hs.keypair != nil {
		hs.keypair.Private().Wipe()
		hs.keypair = nil
	}
	log.Warnf("client: handshake with %s failed: %s", hs.nodeID.Hex(), log.ElideError(err))
	return err
}

// Create generates a fresh ephemeral keypair and returns the CREATE message
// to send to the server.
func (hs *ClientHandshake) Create() ([]byte, error) {
	if hs.state != StateInit {
		return nil, &InvalidStateError{"Create", hs.state}
	}

	keypair, msg, err := hs.opts.suite.ClientPart1(hs.nodeID, hs.serverIdentity)
	if err != nil {
		return nil, hs.fail(err)
	}
	hs.keypair = keypair
	hs.state = StateClientSentCreate
	log.Debugf("client: sent CREATE to %s", hs.nodeID.Hex())

	return msg.Bytes(), nil
}

// Complete processes the server's CREATED message and returns the derived
// key material.  The ephemeral private key is discarded whatever the
// outcome.
func (hs *ClientHandshake) Complete(created []byte) ([]byte, error) {
	if hs.state != StateClientSentCreate {
		return nil, &InvalidStateError{"Complete", hs.state}
	}

	keys, err := hs.opts.suite.ClientPart2(hs.keypair, created, hs.nodeID, hs.serverIdentity, hs.opts.keyLen)
	if err != nil {
		return nil, hs.fail(err)
	}
	hs.keypair.Private().Wipe()
	hs.keypair = nil
	hs.state = StateClientVerified
	log.WithField("keys", log.ElideBytes(keys)).Debugf("client: handshake with %s complete", hs.nodeID.Hex())

	return keys, nil
}

// ServerHandshake is the server side of a single ntor handshake.
type ServerHandshake struct {
	opts        *options
	serverState *ServerState
	state       State
}

// NewServerHandshake creates a server handshake answering as serverState.
// The ServerState is only read, and may be shared between handshakes.
func NewServerHandshake(serverState *ServerState, opts ...Option) *ServerHandshake {
	hs := new(ServerHandshake)
	hs.opts = newOptions(opts)
	hs.serverState = serverState

	return hs
}

// State returns the current state of the handshake.
func (hs *ServerHandshake) State() State {
	return hs.state
}

func (hs *ServerHandshake) fail(err error) error {
	hs.state = StateFailed
	log.Warnf("server: rejected CREATE: %s", log.ElideError(err))
	return err
}

// Respond processes the client's CREATE message, returning the derived key
// material and the CREATED message to send back.
func (hs *ServerHandshake) Respond(create []byte) ([]byte, []byte, error) {
	if hs.state != StateInit {
		return nil, nil, &InvalidStateError{"Respond", hs.state}
	}

	// Framing problems and replays are refused up front, neither depends on
	// anything secret.
	if _, err := ntor.NewCreateMessage(create); err != nil {
		return nil, nil, hs.fail(err)
	}
	if hs.opts.filter != nil && hs.opts.filter.TestAndSet(time.Now(), create) {
		return nil, nil, hs.fail(ErrReplayedHandshake)
	}

	keys, created, err := hs.opts.suite.Server(hs.serverState.Identity(), hs.serverState.NodeID(), create, hs.opts.keyLen)
	if err != nil {
		return nil, nil, hs.fail(err)
	}
	hs.state = StateServerSentCreated
	log.WithField("keys", log.ElideBytes(keys)).Debugf("server: sent CREATED")

	return keys, created.Bytes(), nil
}

/* vim :set ts=4 sw=4 sts=4 noet : */
