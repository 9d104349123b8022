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

package csrand

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestBytes(t *testing.T) {
	var a, b [32]byte
	if err := Bytes(a[:]); err != nil {
		t.Fatal("Bytes failed:", err)
	}
	if err := Bytes(b[:]); err != nil {
		t.Fatal("Bytes failed:", err)
	}
	if bytes.Equal(a[:], b[:]) {
		t.Fatal("Bytes returned the same output twice")
	}
}

func TestBytesFromShort(t *testing.T) {
	var buf [32]byte
	err := BytesFrom(bytes.NewReader(make([]byte, 16)), buf[:])
	if err == nil {
		t.Fatal("BytesFrom accepted a short read")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("BytesFrom returned unexpected error: %v", err)
	}
}
