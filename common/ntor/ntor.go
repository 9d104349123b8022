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

// Package ntor implements the Tor Project's ntor handshake,
// ntor-curve25519-sha256-1.
//
// The handshake consists of two messages:
//
//	CREATE  (client -> server): ID | KEYID(B) | X                   84 bytes
//	CREATED (server -> client): Y | AUTH                            64 bytes
//
// where ID is the server's NodeID, B the server's long term identity key, X
// and Y the client's and server's ephemeral keys, and AUTH the tag binding
// the transcript to B.  Both sides compute:
//
//	secret_input = EXP(X,y) | EXP(X,b) | ID | B | X | Y | PROTOID
//	verify = H(secret_input, t_verify)
//	auth_input = verify | ID | B | Y | X | PROTOID | "Server"
//	AUTH = H(auth_input, t_mac)
//
// and derive the session keys from secret_input with HKDF-SHA256.
//
// Length checks are the only failures reported early.  Identity mismatches,
// degenerate DH outputs and AUTH mismatches are accumulated and reported
// once, after all processing, as ErrHandshakeFailed.
package ntor

import (
	"crypto/subtle"
	"errors"
)

const secretInputLength = 2*SharedSecretLength + NodeIDLength +
	3*PublicKeyLength + len(ProtoID)

const authInputLength = 32 + NodeIDLength + 3*PublicKeyLength +
	len(ProtoID) + len("Server")

// ErrHandshakeFailed is the error returned when the handshake is rejected
// for any cryptographic reason.  Which check failed is deliberately not
// disclosed.
var ErrHandshakeFailed = errors.New("ntor: handshake failed")

// verdict accumulates the outcome of the deferred checks.  The zero value
// means no check has failed.
type verdict int

// require folds in ok, a subtle style 1 (pass) / 0 (fail) result.
func (v verdict) require(ok int) verdict {
	return v | verdict(ok^1)
}

// requireNonZero folds in the check that a DH output is not all zeros.
func (v verdict) requireNonZero(sharedSecret *[SharedSecretLength]byte) verdict {
	var zero [SharedSecretLength]byte
	return v.require(subtle.ConstantTimeCompare(sharedSecret[:], zero[:]) ^ 1)
}

func (v verdict) err() error {
	if v != 0 {
		return ErrHandshakeFailed
	}
	return nil
}

// ntorCommon builds secret_input and computes AUTH.  The argument order
// matches the server's view: exp1 = EXP(X,y), exp2 = EXP(X,b).
func ntorCommon(exp1, exp2 *[SharedSecretLength]byte, id *NodeID, b, x, y *PublicKey) ([]byte, *[AuthLength]byte) {
	secretInput := make([]byte, 0, secretInputLength)
	secretInput = append(secretInput, exp1[:]...)
	secretInput = append(secretInput, exp2[:]...)
	secretInput = append(secretInput, id[:]...)
	secretInput = append(secretInput, b[:]...)
	secretInput = append(secretInput, x[:]...)
	secretInput = append(secretInput, y[:]...)
	secretInput = append(secretInput, protoID...)

	verify := HVerify(secretInput)

	authInput := make([]byte, 0, authInputLength)
	authInput = append(authInput, verify...)
	authInput = append(authInput, id[:]...)
	authInput = append(authInput, b[:]...)
	authInput = append(authInput, y[:]...)
	authInput = append(authInput, x[:]...)
	authInput = append(authInput, protoID...)
	authInput = append(authInput, serverStr...)

	auth := new([AuthLength]byte)
	copy(auth[:], HMac(authInput))

	wipe(verify)
	wipe(authInput)

	return secretInput, auth
}

// ClientPart1 starts a handshake with the server identified by nodeID and
// serverIdentity (B).  The returned ephemeral Keypair must be kept for
// ClientPart2 and discarded afterwards.
func (s *Suite) ClientPart1(nodeID *NodeID, serverIdentity *PublicKey) (*Keypair, *CreateMessage, error) {
	ephemeral, err := s.NewKeypair()
	if err != nil {
		return nil, nil, err
	}

	msg := new(CreateMessage)
	copy(msg[:NodeIDLength], nodeID[:])
	copy(msg[NodeIDLength:NodeIDLength+KeyIDLength], serverIdentity.KeyID()[:])
	copy(msg[NodeIDLength+KeyIDLength:], ephemeral.Public()[:])

	return ephemeral, msg, nil
}

// Server processes a CREATE message with the identity keypair (b, B) and
// NodeID, returning keyLen bytes of key material and the CREATED response.
func (s *Suite) Server(identity *Keypair, myNodeID *NodeID, msg []byte, keyLen int) ([]byte, *CreatedMessage, error) {
	if err := checkKDFLength(keyLen); err != nil {
		return nil, nil, err
	}
	create, err := NewCreateMessage(msg)
	if err != nil {
		return nil, nil, err
	}

	var bad verdict
	bad = bad.require(subtle.ConstantTimeCompare(create.NodeID()[:], myNodeID[:]))
	bad = bad.require(subtle.ConstantTimeCompare(create.KeyID()[:], identity.Public().KeyID()[:]))

	clientPublic := create.ClientPublic()
	ephemeral, err := s.NewKeypair()
	if err != nil {
		return nil, nil, err
	}
	defer ephemeral.Private().Wipe()

	xy := s.dh(ephemeral.Private(), clientPublic)
	xb := s.dh(identity.Private(), clientPublic)
	bad = bad.requireNonZero(xy)
	bad = bad.requireNonZero(xb)

	secretInput, auth := ntorCommon(xy, xb, myNodeID, identity.Public(), clientPublic, ephemeral.Public())
	defer wipe(secretInput)
	wipe(xy[:])
	wipe(xb[:])

	created := new(CreatedMessage)
	copy(created[:PublicKeyLength], ephemeral.Public()[:])
	copy(created[PublicKeyLength:], auth[:])

	if err = bad.err(); err != nil {
		return nil, nil, err
	}

	keys, err := KDFNtor(secretInput, keyLen)
	if err != nil {
		return nil, nil, err
	}

	return keys, created, nil
}

// ClientPart2 completes the handshake started by ClientPart1 with the
// server's CREATED message, returning keyLen bytes of key material.
func (s *Suite) ClientPart2(ephemeral *Keypair, msg []byte, nodeID *NodeID, serverIdentity *PublicKey, keyLen int) ([]byte, error) {
	if err := checkKDFLength(keyLen); err != nil {
		return nil, err
	}
	created, err := NewCreatedMessage(msg)
	if err != nil {
		return nil, err
	}

	serverPublic := created.ServerPublic()

	var bad verdict
	yx := s.dh(ephemeral.Private(), serverPublic)
	bx := s.dh(ephemeral.Private(), serverIdentity)
	bad = bad.requireNonZero(yx)
	bad = bad.requireNonZero(bx)

	secretInput, auth := ntorCommon(yx, bx, nodeID, serverIdentity, ephemeral.Public(), serverPublic)
	defer wipe(secretInput)
	wipe(yx[:])
	wipe(bx[:])

	bad = bad.require(subtle.ConstantTimeCompare(auth[:], created.Auth()[:]))
	if err = bad.err(); err != nil {
		return nil, err
	}

	return KDFNtor(secretInput, keyLen)
}

// ClientPart1 is Suite.ClientPart1 with the DefaultSuite.
func ClientPart1(nodeID *NodeID, serverIdentity *PublicKey) (*Keypair, *CreateMessage, error) {
	return DefaultSuite.ClientPart1(nodeID, serverIdentity)
}

// Server is Suite.Server with the DefaultSuite.
func Server(identity *Keypair, myNodeID *NodeID, msg []byte, keyLen int) ([]byte, *CreatedMessage, error) {
	return DefaultSuite.Server(identity, myNodeID, msg, keyLen)
}

// ClientPart2 is Suite.ClientPart2 with the DefaultSuite.
func ClientPart2(ephemeral *Keypair, msg []byte, nodeID *NodeID, serverIdentity *PublicKey, keyLen int) ([]byte, error) {
	return DefaultSuite.ClientPart2(ephemeral, msg, nodeID, serverIdentity, keyLen)
}

/* vim :set ts=4 sw=4 sts=4 noet : */
