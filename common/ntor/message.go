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

package ntor

import "fmt"

const (
	// AuthLength is the length of the server's AUTH tag.
	AuthLength = 32

	// CreateLength is the length of the client's CREATE message,
	// ID | KEYID(B) | X.
	CreateLength = NodeIDLength + KeyIDLength + PublicKeyLength

	// CreatedLength is the length of the server's CREATED message, Y | AUTH.
	CreatedLength = PublicKeyLength + AuthLength
)

// MessageLengthError is the error returned when a handshake message is not
// the exact length required.  It is the only failure that is reported before
// any cryptographic processing takes place.
type MessageLengthError struct {
	Message  string
	Length   int
	Expected int
}

func (e *MessageLengthError) Error() string {
	return fmt.Sprintf("ntor: Invalid %s message length: %d (expected %d)",
		e.Message, e.Length, e.Expected)
}

// CreateMessage is the client to server handshake message.
type CreateMessage [CreateLength]byte

// NewCreateMessage copies raw into a CreateMessage, validating the length.
func NewCreateMessage(raw []byte) (*CreateMessage, error) {
	if len(raw) != CreateLength {
		return nil, &MessageLengthError{"CREATE", len(raw), CreateLength}
	}

	msg := new(CreateMessage)
	copy(msg[:], raw)

	return msg, nil
}

// Bytes returns the wire representation of the message.
func (msg *CreateMessage) Bytes() []byte {
	return msg[:]
}

// NodeID returns the NodeID the client believes the server has.
func (msg *CreateMessage) NodeID() *NodeID {
	nodeID := new(NodeID)
	copy(nodeID[:], msg[:NodeIDLength])
	return nodeID
}

// KeyID returns the KEYID of the server identity key the client used.
func (msg *CreateMessage) KeyID() *[KeyIDLength]byte {
	keyID := new([KeyIDLength]byte)
	copy(keyID[:], msg[NodeIDLength:NodeIDLength+KeyIDLength])
	return keyID
}

// ClientPublic returns the client's ephemeral public key X.
func (msg *CreateMessage) ClientPublic() *PublicKey {
	pubKey := new(PublicKey)
	copy(pubKey[:], msg[NodeIDLength+KeyIDLength:])
	return pubKey
}

// CreatedMessage is the server to client handshake message.
type CreatedMessage [CreatedLength]byte

// NewCreatedMessage copies raw into a CreatedMessage, validating the length.
func NewCreatedMessage(raw []byte) (*CreatedMessage, error) {
	if len(raw) != CreatedLength {
		return nil, &MessageLengthError{"CREATED", len(raw), CreatedLength}
	}

	msg := new(CreatedMessage)
	copy(msg[:], raw)

	return msg, nil
}

// Bytes returns the wire representation of the message.
func (msg *CreatedMessage) Bytes() []byte {
	return msg[:]
}

// ServerPublic returns the server's ephemeral public key Y.
func (msg *CreatedMessage) ServerPublic() *PublicKey {
	pubKey := new(PublicKey)
	copy(pubKey[:], msg[:PublicKeyLength])
	return pubKey
}

// Auth returns the AUTH tag.
func (msg *CreatedMessage) Auth() *[AuthLength]byte {
	auth := new([AuthLength]byte)
	copy(auth[:], msg[PublicKeyLength:])
	return auth
}
