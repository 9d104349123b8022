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
	"bytes"
	"errors"
	"testing"

	"gitlab.com/yawning/ntorref.git/internal/x25519"
)

var testNodeID = []byte("iToldYouAboutStairs.")

func newTestIdentity(t testing.TB) (*NodeID, *Keypair) {
	nodeID, err := NewNodeID(testNodeID)
	if err != nil {
		t.Fatal("Failed to load NodeId:", err)
	}
	idKeypair, err := NewKeypair()
	if err != nil {
		t.Fatal("Failed to generate identity keypair:", err)
	}
	return nodeID, idKeypair
}

// TestNewKeypair tests Curve25519 keypair generation.
func TestNewKeypair(t *testing.T) {
	keypair, err := NewKeypair()
	if err != nil {
		t.Fatal("NewKeypair() failed:", err)
	}
	if keypair == nil {
		t.Fatal("NewKeypair() returned nil")
	}

	priv := keypair.Private()
	if priv[0]&7 != 0 || priv[31]&0x80 != 0 || priv[31]&0x40 == 0 {
		t.Fatalf("NewKeypair() returned an unclamped private key: %x", priv[:])
	}

	// Deriving the public key again must give the same answer.
	again, err := KeypairFromHex(priv.Hex())
	if err != nil {
		t.Fatal("KeypairFromHex() failed:", err)
	}
	if *again.Public() != *keypair.Public() {
		t.Fatal("public key derivation is not deterministic")
	}
	again, err = KeypairFromBase64(priv.Base64())
	if err != nil {
		t.Fatal("KeypairFromBase64() failed:", err)
	}
	if *again.Public() != *keypair.Public() {
		t.Fatal("public key derivation is not deterministic")
	}

	if _, err = KeypairFromHex("abcd"); err == nil {
		t.Fatal("KeypairFromHex() accepted a short key")
	}
}

func TestNodeID(t *testing.T) {
	if _, err := NewNodeID(testNodeID[:19]); err == nil {
		t.Fatal("NewNodeID() accepted a 19 byte id")
	} else if e, ok := err.(NodeIDLengthError); !ok || int(e) != 19 {
		t.Fatal("NewNodeID() returned an unexpected error:", err)
	}

	nodeID, _ := NewNodeID(testNodeID)
	fromHex, err := NodeIDFromHex(nodeID.Hex())
	if err != nil || *fromHex != *nodeID {
		t.Fatal("NodeIDFromHex() failed:", err)
	}
	fromB64, err := NodeIDFromBase64(nodeID.Base64())
	if err != nil || *fromB64 != *nodeID {
		t.Fatal("NodeIDFromBase64() failed:", err)
	}
}

// Test Client/Server handshake.
func TestHandshake(t *testing.T) {
	for _, suite := range []*Suite{
		DefaultSuite,
		{Curve: x25519.Reference},
	} {
		nodeID, err := NewNodeID(testNodeID)
		if err != nil {
			t.Fatal("Failed to load NodeId:", err)
		}
		idKeypair, err := suite.NewKeypair()
		if err != nil {
			t.Fatal("Failed to generate identity keypair:", err)
		}

		// ClientPart1
		clientKeypair, create, err := suite.ClientPart1(nodeID, idKeypair.Public())
		if err != nil {
			t.Fatal("ClientPart1 failed:", err)
		}
		if !bytes.Equal(create[:NodeIDLength], nodeID[:]) ||
			!bytes.Equal(create[NodeIDLength:NodeIDLength+KeyIDLength], idKeypair.Public()[:]) ||
			!bytes.Equal(create[NodeIDLength+KeyIDLength:], clientKeypair.Public()[:]) {
			t.Fatalf("ClientPart1 returned a malformed CREATE: %x", create[:])
		}

		// Server
		serverKeys, created, err := suite.Server(idKeypair, nodeID, create.Bytes(), DefaultKeyLength)
		if err != nil {
			t.Fatal("Server failed:", err)
		}
		if len(serverKeys) != DefaultKeyLength {
			t.Fatalf("Server returned %d bytes of key material", len(serverKeys))
		}

		// ClientPart2
		clientKeys, err := suite.ClientPart2(clientKeypair, created.Bytes(), nodeID, idKeypair.Public(), DefaultKeyLength)
		if err != nil {
			t.Fatal("ClientPart2 failed:", err)
		}

		if !bytes.Equal(clientKeys, serverKeys) {
			t.Fatal("key material mismatched between client/server")
		}
	}
}

func TestHandshakeFreshKeys(t *testing.T) {
	nodeID, idKeypair := newTestIdentity(t)

	seen := make(map[string]bool)
	for i := 0; i < 8; i++ {
		x, create, err := ClientPart1(nodeID, idKeypair.Public())
		if err != nil {
			t.Fatal("ClientPart1 failed:", err)
		}
		serverKeys, created, err := Server(idKeypair, nodeID, create[:], DefaultKeyLength)
		if err != nil {
			t.Fatal("Server failed:", err)
		}
		clientKeys, err := ClientPart2(x, created[:], nodeID, idKeypair.Public(), DefaultKeyLength)
		if err != nil {
			t.Fatal("ClientPart2 failed:", err)
		}
		if !bytes.Equal(clientKeys, serverKeys) {
			t.Fatal("key material mismatched between client/server")
		}
		if seen[string(clientKeys)] {
			t.Fatal("two handshakes derived the same key material")
		}
		seen[string(clientKeys)] = true
	}
}

// TestHandshakeSuites runs the same transcript through both Curve25519
// implementations and expects identical output.
func TestHandshakeSuites(t *testing.T) {
	run := func(curve x25519.Curve) ([]byte, []byte, []byte) {
		entropy := func(b byte) *Suite {
			return &Suite{Curve: curve, Rand: bytes.NewReader(bytes.Repeat([]byte{b}, PrivateKeyLength))}
		}
		nodeID, _ := NewNodeID(testNodeID)
		idKeypair, err := entropy(0x42).NewKeypair()
		if err != nil {
			t.Fatal("Failed to generate identity keypair:", err)
		}
		x, create, err := entropy(0x17).ClientPart1(nodeID, idKeypair.Public())
		if err != nil {
			t.Fatal("ClientPart1 failed:", err)
		}
		serverKeys, created, err := entropy(0x23).Server(idKeypair, nodeID, create[:], DefaultKeyLength)
		if err != nil {
			t.Fatal("Server failed:", err)
		}
		clientKeys, err := entropy(0x00).ClientPart2(x, created[:], nodeID, idKeypair.Public(), DefaultKeyLength)
		if err != nil {
			t.Fatal("ClientPart2 failed:", err)
		}
		if !bytes.Equal(clientKeys, serverKeys) {
			t.Fatal("key material mismatched between client/server")
		}
		return create[:], created[:], clientKeys
	}

	nativeCreate, nativeCreated, nativeKeys := run(x25519.Native)
	refCreate, refCreated, refKeys := run(x25519.Reference)
	if !bytes.Equal(nativeCreate, refCreate) {
		t.Fatalf("CREATE mismatch: %x != %x", nativeCreate, refCreate)
	}
	if !bytes.Equal(nativeCreated, refCreated) {
		t.Fatalf("CREATED mismatch: %x != %x", nativeCreated, refCreated)
	}
	if !bytes.Equal(nativeKeys, refKeys) {
		t.Fatalf("key material mismatch: %x != %x", nativeKeys, refKeys)
	}
}

func TestServerKeyIDTamper(t *testing.T) {
	nodeID, idKeypair := newTestIdentity(t)
	_, create, err := ClientPart1(nodeID, idKeypair.Public())
	if err != nil {
		t.Fatal("ClientPart1 failed:", err)
	}

	for bit := 0; bit < KeyIDLength*8; bit++ {
		msg := *create
		msg[NodeIDLength+bit/8] ^= 1 << uint(bit%8)
		keys, created, err := Server(idKeypair, nodeID, msg[:], DefaultKeyLength)
		if !errors.Is(err, ErrHandshakeFailed) {
			t.Fatalf("Server accepted KEYID with bit %d flipped: %v", bit, err)
		}
		if keys != nil || created != nil {
			t.Fatal("Server returned output on failure")
		}
	}
}

func TestServerNodeIDMismatch(t *testing.T) {
	nodeID, idKeypair := newTestIdentity(t)
	otherID, _ := NewNodeID([]byte("\x00\x01\x02\x03\x04\x05\x06\x07\x08\x09\x0a\x0b\x0c\x0d\x0e\x0f\x10\x11\x12\x13"))

	_, create, err := ClientPart1(otherID, idKeypair.Public())
	if err != nil {
		t.Fatal("ClientPart1 failed:", err)
	}
	if _, _, err = Server(idKeypair, nodeID, create[:], DefaultKeyLength); !errors.Is(err, ErrHandshakeFailed) {
		t.Fatal("Server accepted a CREATE for a different NodeID:", err)
	}
}

func TestClientAuthTamper(t *testing.T) {
	nodeID, idKeypair := newTestIdentity(t)
	x, create, err := ClientPart1(nodeID, idKeypair.Public())
	if err != nil {
		t.Fatal("ClientPart1 failed:", err)
	}
	_, created, err := Server(idKeypair, nodeID, create[:], DefaultKeyLength)
	if err != nil {
		t.Fatal("Server failed:", err)
	}

	for bit := 0; bit < AuthLength*8; bit++ {
		msg := *created
		msg[PublicKeyLength+bit/8] ^= 1 << uint(bit%8)
		keys, err := ClientPart2(x, msg[:], nodeID, idKeypair.Public(), DefaultKeyLength)
		if !errors.Is(err, ErrHandshakeFailed) {
			t.Fatalf("ClientPart2 accepted AUTH with bit %d flipped: %v", bit, err)
		}
		if keys != nil {
			t.Fatal("ClientPart2 returned key material on failure")
		}
	}

	// The untouched message still works.
	if _, err = ClientPart2(x, created[:], nodeID, idKeypair.Public(), DefaultKeyLength); err != nil {
		t.Fatal("ClientPart2 failed:", err)
	}
}

func TestClientWrongIdentity(t *testing.T) {
	nodeID, idKeypair := newTestIdentity(t)
	_, otherKeypair := newTestIdentity(t)

	// The client believes B is otherKeypair, the server answers as idKeypair
	// after being told the KEYID it expects.
	x, create, err := ClientPart1(nodeID, idKeypair.Public())
	if err != nil {
		t.Fatal("ClientPart1 failed:", err)
	}
	_, created, err := Server(idKeypair, nodeID, create[:], DefaultKeyLength)
	if err != nil {
		t.Fatal("Server failed:", err)
	}
	if _, err = ClientPart2(x, created[:], nodeID, otherKeypair.Public(), DefaultKeyLength); !errors.Is(err, ErrHandshakeFailed) {
		t.Fatal("ClientPart2 accepted the wrong server identity:", err)
	}
}

func TestDegeneratePoints(t *testing.T) {
	nodeID, idKeypair := newTestIdentity(t)

	var p [32]byte
	p[0] = 0xed
	for i := 1; i < 31; i++ {
		p[i] = 0xff
	}
	p[31] = 0x7f
	lowOrder := [][32]byte{{0}, {1}, p}

	for _, point := range lowOrder {
		// Client supplying a low order X.
		var create CreateMessage
		copy(create[:], nodeID[:])
		copy(create[NodeIDLength:], idKeypair.Public()[:])
		copy(create[NodeIDLength+KeyIDLength:], point[:])
		keys, created, err := Server(idKeypair, nodeID, create[:], DefaultKeyLength)
		if !errors.Is(err, ErrHandshakeFailed) || keys != nil || created != nil {
			t.Fatalf("Server accepted low order X %x: %v", point, err)
		}

		// Server supplying a low order Y.
		x, _, err := ClientPart1(nodeID, idKeypair.Public())
		if err != nil {
			t.Fatal("ClientPart1 failed:", err)
		}
		var msg CreatedMessage
		copy(msg[:], point[:])
		if keys, err = ClientPart2(x, msg[:], nodeID, idKeypair.Public(), DefaultKeyLength); !errors.Is(err, ErrHandshakeFailed) || keys != nil {
			t.Fatalf("ClientPart2 accepted low order Y %x: %v", point, err)
		}
	}

	// A low order B poisons EXP(B,x) on the client.
	var zero PublicKey
	x, _, err := ClientPart1(nodeID, &zero)
	if err != nil {
		t.Fatal("ClientPart1 failed:", err)
	}
	var msg CreatedMessage
	copy(msg[:], idKeypair.Public()[:])
	if _, err = ClientPart2(x, msg[:], nodeID, &zero, DefaultKeyLength); !errors.Is(err, ErrHandshakeFailed) {
		t.Fatal("ClientPart2 accepted a low order B:", err)
	}
}

func TestMessageLength(t *testing.T) {
	nodeID, idKeypair := newTestIdentity(t)
	x, create, err := ClientPart1(nodeID, idKeypair.Public())
	if err != nil {
		t.Fatal("ClientPart1 failed:", err)
	}

	var lenErr *MessageLengthError
	for _, l := range []int{0, CreateLength - 1, CreateLength + 1} {
		msg := make([]byte, l)
		copy(msg, create[:])
		_, _, err = Server(idKeypair, nodeID, msg, DefaultKeyLength)
		if !errors.As(err, &lenErr) || lenErr.Length != l || lenErr.Expected != CreateLength {
			t.Fatalf("Server(%d bytes): unexpected error: %v", l, err)
		}
	}

	for _, l := range []int{0, CreatedLength - 1, CreatedLength + 1} {
		_, err = ClientPart2(x, make([]byte, l), nodeID, idKeypair.Public(), DefaultKeyLength)
		if !errors.As(err, &lenErr) || lenErr.Length != l || lenErr.Expected != CreatedLength {
			t.Fatalf("ClientPart2(%d bytes): unexpected error: %v", l, err)
		}
	}
}

func TestKeyLength(t *testing.T) {
	nodeID, idKeypair := newTestIdentity(t)
	x, create, err := ClientPart1(nodeID, idKeypair.Public())
	if err != nil {
		t.Fatal("ClientPart1 failed:", err)
	}

	if _, _, err = Server(idKeypair, nodeID, create[:], MaxKDFLength+1); !errors.Is(err, ErrKDFOutputLength) {
		t.Fatal("Server accepted an oversized key length:", err)
	}

	serverKeys, created, err := Server(idKeypair, nodeID, create[:], 0)
	if err != nil {
		t.Fatal("Server failed:", err)
	}
	clientKeys, err := ClientPart2(x, created[:], nodeID, idKeypair.Public(), 0)
	if err != nil {
		t.Fatal("ClientPart2 failed:", err)
	}
	if len(serverKeys) != 0 || len(clientKeys) != 0 {
		t.Fatal("zero length key material requested, got some anyway")
	}
}

func TestEntropyFailure(t *testing.T) {
	nodeID, idKeypair := newTestIdentity(t)
	suite := &Suite{Rand: bytes.NewReader(nil)}
	if _, _, err := suite.ClientPart1(nodeID, idKeypair.Public()); err == nil {
		t.Fatal("ClientPart1 succeeded without entropy")
	}
}

// Benchmark Client/Server handshake.  The actual time taken that will be
// observed on either the Client or Server is half the reported time per
// operation since the benchmark does both sides.
func BenchmarkHandshake(b *testing.B) {
	// Generate the "long lasting" identity key and NodeId.
	nodeID, idKeypair := newTestIdentity(b)
	b.ResetTimer()

	// Start the actual benchmark.
	for i := 0; i < b.N; i++ {
		x, create, err := ClientPart1(nodeID, idKeypair.Public())
		if err != nil {
			b.Fatal("ClientPart1 failed")
		}
		serverKeys, created, err := Server(idKeypair, nodeID, create[:], DefaultKeyLength)
		if err != nil {
			b.Fatal("Server failed")
		}
		clientKeys, err := ClientPart2(x, created[:], nodeID, idKeypair.Public(), DefaultKeyLength)
		if err != nil || !bytes.Equal(clientKeys, serverKeys) {
			b.Fatal("ClientPart2 failed")
		}
	}
}
