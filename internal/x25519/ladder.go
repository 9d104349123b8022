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

package x25519

import (
	"encoding/binary"

	"filippo.io/edwards25519/field"
)

// a24 is (A - 2) / 4 for A = 486662, in the form used by RFC 7748.
const a24 = 121665

var (
	feOne = new(field.Element).One()

	feA = mustFeFromUint64(486662)
)

func mustFeFromBytes(b []byte) *field.Element {
	fe, err := new(field.Element).SetBytes(b)
	if err != nil {
		panic("internal/x25519: failed to deserialize constant: " + err.Error())
	}
	return fe
}

func mustFeFromUint64(x uint64) *field.Element {
	var b [32]byte
	binary.LittleEndian.PutUint64(b[:], x)
	return mustFeFromBytes(b[:])
}

type referenceCurve struct{}

func (referenceCurve) String() string {
	return "reference"
}

func (c referenceCurve) ScalarBaseMult(dst, scalar *[ScalarSize]byte) {
	c.ScalarMult(dst, scalar, &Basepoint)
}

// ScalarMult is the x-only Montgomery ladder from RFC 7748 section 5.  The
// most significant bit of point is ignored, and non-canonical encodings are
// accepted.
func (referenceCurve) ScalarMult(dst, scalar, point *[ScalarSize]byte) {
	var k [ScalarSize]byte
	copy(k[:], scalar[:])
	Clamp(&k)

	x1 := mustFeFromBytes(point[:])
	x2 := new(field.Element).Set(feOne)
	z2 := new(field.Element).Zero()
	x3 := new(field.Element).Set(x1)
	z3 := new(field.Element).Set(feOne)

	var a, aa, b, bb, e, c, d, da, cb field.Element
	swap := 0
	for t := 254; t >= 0; t-- {
		kT := int(k[t>>3]>>(uint(t)&7)) & 1
		swap ^= kT
		x2.Swap(x3, swap)
		z2.Swap(z3, swap)
		swap = kT

		a.Add(x2, z2)
		aa.Square(&a)
		b.Subtract(x2, z2)
		bb.Square(&b)
		e.Subtract(&aa, &bb)
		c.Add(x3, z3)
		d.Subtract(x3, z3)
		da.Multiply(&d, &a)
		cb.Multiply(&c, &b)

		x3.Add(&da, &cb)
		x3.Square(x3)
		z3.Subtract(&da, &cb)
		z3.Square(z3)
		z3.Multiply(z3, x1)
		x2.Multiply(&aa, &bb)
		z2.Mult32(&e, a24)
		z2.Add(z2, &aa)
		z2.Multiply(z2, &e)
	}
	x2.Swap(x3, swap)
	z2.Swap(z3, swap)

	// Invert maps zero to zero, so the identity comes out as all zeros.
	z2.Invert(z2)
	x2.Multiply(x2, z2)
	copy(dst[:], x2.Bytes())

	for i := range k {
		k[i] = 0
	}
}

// onCurve returns true iff u is the u-coordinate of a point on Curve25519
// rather than on its quadratic twist, that is iff u^3 + A*u^2 + u is square.
func onCurve(u *[PointSize]byte) bool {
	x := mustFeFromBytes(u[:])
	x2 := new(field.Element).Square(x)
	rhs := new(field.Element).Multiply(x2, x)
	t := new(field.Element).Multiply(feA, x2)
	rhs.Add(rhs, t)
	rhs.Add(rhs, x)
	_, wasSquare := new(field.Element).SqrtRatio(rhs, feOne)
	return wasSquare == 1
}
