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

// Package x25519 provides the Curve25519 Diffie-Hellman primitive used by the
// ntor handshake, behind an interface so that the backing implementation can
// be swapped.
//
// Two implementations are provided.  Native is backed by
// golang.org/x/crypto/curve25519 and is what everything uses by default.
// Reference is a simple Montgomery ladder that exists to cross-check the
// former, and is not intended for use with real secrets.
//
// Neither implementation hashes its output or rejects low-order inputs.
// Callers are responsible for checking the result with IsZero.
package x25519

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/curve25519"
)

const (
	// ScalarSize is the size of a Curve25519 scalar in bytes.
	ScalarSize = 32

	// PointSize is the size of a serialized Curve25519 u-coordinate in bytes.
	PointSize = 32
)

// Basepoint is the canonical Curve25519 generator, u = 9.
var Basepoint = [PointSize]byte{9}

// Curve is a Curve25519 scalar multiplication implementation.
type Curve interface {
	// ScalarBaseMult sets dst to the product scalar * Basepoint.
	ScalarBaseMult(dst, scalar *[ScalarSize]byte)

	// ScalarMult sets dst to the product scalar * point.
	ScalarMult(dst, scalar, point *[ScalarSize]byte)
}

var (
	// Native is the golang.org/x/crypto/curve25519 backed Curve.
	Native Curve = nativeCurve{}

	// Reference is the pure-software Montgomery ladder Curve.
	Reference Curve = referenceCurve{}
)

// ByName returns the Curve registered under name.
func ByName(name string) (Curve, error) {
	switch name {
	case "", "native":
		return Native, nil
	case "reference", "ref":
		return Reference, nil
	}
	return nil, fmt.Errorf("x25519: unknown curve implementation: '%s'", name)
}

// Clamp applies the Curve25519 scalar clamping to k in place.
func Clamp(k *[ScalarSize]byte) {
	k[0] &= 248
	k[31] &= 127
	k[31] |= 64
}

// IsZero returns true iff b is all zero.  A zero result from ScalarMult
// indicates the peer supplied a point of small order.
func IsZero(b []byte) bool {
	var zero [PointSize]byte
	if len(b) != PointSize {
		return false
	}
	return subtle.ConstantTimeCompare(b, zero[:]) == 1
}

type nativeCurve struct{}

func (nativeCurve) String() string {
	return "native"
}

func (nativeCurve) ScalarBaseMult(dst, scalar *[ScalarSize]byte) {
	curve25519.ScalarBaseMult(dst, scalar) //nolint: staticcheck
}

func (nativeCurve) ScalarMult(dst, scalar, point *[ScalarSize]byte) {
	// curve25519.X25519 refuses low order points, which is not what is
	// wanted here, the handshake does that check itself.
	curve25519.ScalarMult(dst, scalar, point) //nolint: staticcheck
}
