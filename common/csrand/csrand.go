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

// Package csrand implements the randomness source used for ephemeral key
// generation, along with some utility functions for common random byte
// related tasks.
//
// Everything here is backed by crypto/rand and is safe for concurrent use.
package csrand

import (
	cryptRand "crypto/rand"
	"fmt"
	"io"
)

// Reader is the process-wide CSPRNG.  It is shared by every handshake and
// requires no external locking.
var Reader io.Reader = csReader{}

type csReader struct {
	// This does not keep any state as it is backed by crypto/rand.
}

func (r csReader) Read(p []byte) (int, error) {
	return io.ReadFull(cryptRand.Reader, p)
}

// Bytes fills the slice with random data.
func Bytes(buf []byte) error {
	return BytesFrom(Reader, buf)
}

// BytesFrom fills the slice with data read from r, failing on short reads.
func BytesFrom(r io.Reader, buf []byte) error {
	if r == nil {
		r = Reader
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("csrand: failed to read %d bytes: %w", len(buf), err)
	}

	return nil
}

/* vim :set ts=4 sw=4 sts=4 noet : */
