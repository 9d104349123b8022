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

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"gitlab.com/yawning/ntorref.git/common/csrand"
	"gitlab.com/yawning/ntorref.git/internal/x25519"
)

const (
	// PublicKeyLength is the length of a Curve25519 public key.
	PublicKeyLength = x25519.PointSize

	// PrivateKeyLength is the length of a Curve25519 private key.
	PrivateKeyLength = x25519.ScalarSize

	// NodeIDLength is the length of a server's NodeID.
	NodeIDLength = 20

	// KeyIDLength is the length of KEYID(B).  KEYID(B) is B itself.
	KeyIDLength = PublicKeyLength

	// SharedSecretLength is the length of a raw Curve25519 DH output.
	SharedSecretLength = x25519.PointSize
)

// NodeIDLengthError is the error returned when the NodeID being imported is
// an invalid length.
type NodeIDLengthError int

func (e NodeIDLengthError) Error() string {
	return fmt.Sprintf("ntor: Invalid NodeID length: %d", int(e))
}

// PublicKeyLengthError is the error returned when the public key being
// imported is an invalid length.
type PublicKeyLengthError int

func (e PublicKeyLengthError) Error() string {
	return fmt.Sprintf("ntor: Invalid Curve25519 public key length: %d",
		int(e))
}

// PrivateKeyLengthError is the error returned when the private key being
// imported is an invalid length.
type PrivateKeyLengthError int

func (e PrivateKeyLengthError) Error() string {
	return fmt.Sprintf("ntor: Invalid Curve25519 private key length: %d",
		int(e))
}

// NodeID is a ntor node identifier.
type NodeID [NodeIDLength]byte

// NewNodeID creates a NodeID from the raw bytes.
func NewNodeID(raw []byte) (*NodeID, error) {
	if len(raw) != NodeIDLength {
		return nil, NodeIDLengthError(len(raw))
	}

	nodeID := new(NodeID)
	copy(nodeID[:], raw)

	return nodeID, nil
}

// NodeIDFromHex creates a new NodeID from the hexdecimal representation.
func NodeIDFromHex(encoded string) (*NodeID, error) {
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	return NewNodeID(raw)
}

// NodeIDFromBase64 creates a new NodeID from the Base64 representation.
func NodeIDFromBase64(encoded string) (*NodeID, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	return NewNodeID(raw)
}

// Bytes returns a pointer to the raw NodeID.
func (id *NodeID) Bytes() *[NodeIDLength]byte {
	return (*[NodeIDLength]byte)(id)
}

// Hex returns the hexdecimal representation of the NodeID.
func (id *NodeID) Hex() string {
	return hex.EncodeToString(id[:])
}

// Base64 returns the Base64 representation of the NodeID.
func (id *NodeID) Base64() string {
	return base64.StdEncoding.EncodeToString(id[:])
}

// PublicKey is a Curve25519 public key in little-endian byte order.
type PublicKey [PublicKeyLength]byte

// NewPublicKey creates a PublicKey from the raw bytes.
func NewPublicKey(raw []byte) (*PublicKey, error) {
	if len(raw) != PublicKeyLength {
		return nil, PublicKeyLengthError(len(raw))
	}

	pubKey := new(PublicKey)
	copy(pubKey[:], raw)

	return pubKey, nil
}

// PublicKeyFromHex returns a PublicKey from the hexdecimal representation.
func PublicKeyFromHex(encoded string) (*PublicKey, error) {
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	return NewPublicKey(raw)
}

// PublicKeyFromBase64 returns a PublicKey from the Base64 representation.
func PublicKeyFromBase64(encoded string) (*PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	return NewPublicKey(raw)
}

// Bytes returns a pointer to the raw Curve25519 PublicKey.
func (public *PublicKey) Bytes() *[PublicKeyLength]byte {
	return (*[PublicKeyLength]byte)(public)
}

// KeyID returns KEYID(B), which for this handshake is B itself.
func (public *PublicKey) KeyID() *[KeyIDLength]byte {
	return public.Bytes()
}

// Hex returns the hexdecimal representation of the Curve25519 PublicKey.
func (public *PublicKey) Hex() string {
	return hex.EncodeToString(public[:])
}

// Base64 returns the Base64 representation of the Curve25519 PublicKey.
func (public *PublicKey) Base64() string {
	return base64.StdEncoding.EncodeToString(public[:])
}

// PrivateKey is a clamped Curve25519 private key in little-endian byte order.
type PrivateKey [PrivateKeyLength]byte

// NewPrivateKey creates a PrivateKey from the raw bytes, clamping it.
func NewPrivateKey(raw []byte) (*PrivateKey, error) {
	if len(raw) != PrivateKeyLength {
		return nil, PrivateKeyLengthError(len(raw))
	}

	privKey := new(PrivateKey)
	copy(privKey[:], raw)
	x25519.Clamp(privKey.Bytes())

	return privKey, nil
}

// Bytes returns a pointer to the raw Curve25519 PrivateKey.
func (private *PrivateKey) Bytes() *[PrivateKeyLength]byte {
	return (*[PrivateKeyLength]byte)(private)
}

// Hex returns the hexdecimal representation of the Curve25519 PrivateKey.
func (private *PrivateKey) Hex() string {
	return hex.EncodeToString(private[:])
}

// Base64 returns the Base64 representation of the Curve25519 PrivateKey.
func (private *PrivateKey) Base64() string {
	return base64.StdEncoding.EncodeToString(private[:])
}

// Wipe overwrites the PrivateKey with zeros.
func (private *PrivateKey) Wipe() {
	for i := range private {
		private[i] = 0
	}
}

// Keypair is a Curve25519 keypair.
type Keypair struct {
	public  *PublicKey
	private *PrivateKey
}

// Public returns the Curve25519 public key belonging to the Keypair.
func (keypair *Keypair) Public() *PublicKey {
	return keypair.public
}

// Private returns the Curve25519 private key belonging to the Keypair.
func (keypair *Keypair) Private() *PrivateKey {
	return keypair.private
}

// Suite binds the handshake to a Curve25519 implementation and a source of
// entropy.  A Suite is immutable and safe for concurrent use provided Rand
// is.
type Suite struct {
	// Curve is the scalar multiplication implementation, x25519.Native if
	// nil.
	Curve x25519.Curve

	// Rand is the entropy source for key generation, csrand.Reader if nil.
	Rand io.Reader
}

// DefaultSuite is the Suite used by the package level functions.
var DefaultSuite = &Suite{Curve: x25519.Native, Rand: csrand.Reader}

func (s *Suite) curve() x25519.Curve {
	if s.Curve == nil {
		return x25519.Native
	}
	return s.Curve
}

// NewKeypair generates a new Curve25519 keypair.
func (s *Suite) NewKeypair() (*Keypair, error) {
	var raw [PrivateKeyLength]byte
	if err := csrand.BytesFrom(s.Rand, raw[:]); err != nil {
		return nil, err
	}
	defer func() {
		for i := range raw {
			raw[i] = 0
		}
	}()

	privKey, _ := NewPrivateKey(raw[:])
	return s.KeypairFromPrivate(privKey), nil
}

// KeypairFromPrivate derives the public key for private and returns the
// resulting Keypair.  The derivation is deterministic.
func (s *Suite) KeypairFromPrivate(private *PrivateKey) *Keypair {
	keypair := new(Keypair)
	keypair.private = private
	keypair.public = new(PublicKey)
	s.curve().ScalarBaseMult(keypair.public.Bytes(), private.Bytes())

	return keypair
}

// dh returns the raw, unhashed Curve25519 shared secret between private and
// public.  The output is not checked for being degenerate.
func (s *Suite) dh(private *PrivateKey, public *PublicKey) *[SharedSecretLength]byte {
	out := new([SharedSecretLength]byte)
	s.curve().ScalarMult(out, private.Bytes(), public.Bytes())
	return out
}

// NewKeypair generates a new Curve25519 keypair with the DefaultSuite.
func NewKeypair() (*Keypair, error) {
	return DefaultSuite.NewKeypair()
}

// KeypairFromHex returns a Keypair from the hexdecimal representation of the
// private key.
func KeypairFromHex(encoded string) (*Keypair, error) {
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	return keypairFromRaw(raw)
}

// KeypairFromBase64 returns a Keypair from the Base64 representation of the
// private key.
func KeypairFromBase64(encoded string) (*Keypair, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	return keypairFromRaw(raw)
}

func keypairFromRaw(raw []byte) (*Keypair, error) {
	privKey, err := NewPrivateKey(raw)
	if err != nil {
		return nil, err
	}

	return DefaultSuite.KeypairFromPrivate(privKey), nil
}
