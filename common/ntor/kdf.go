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
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// MaxKDFLength is the largest output HKDF-SHA256 can produce, 255 blocks.
// The block counter is a single byte and is never allowed to wrap.
const MaxKDFLength = 255 * sha256.Size

// DefaultKeyLength is the amount of key material a handshake derives unless
// the caller asks otherwise.
const DefaultKeyLength = 72

// ErrKDFOutputLength is the error returned when the requested KDF output
// length is negative or exceeds MaxKDFLength.
var ErrKDFOutputLength = errors.New("ntor: invalid KDF output length")

func checkKDFLength(n int) error {
	if n < 0 || n > MaxKDFLength {
		return fmt.Errorf("%w: %d", ErrKDFOutputLength, n)
	}
	return nil
}

// KDFRFC5869 is HKDF-SHA256 (RFC 5869) returning n bytes of output.  The
// extract step is HMAC(salt, key) and the expand step is keyed with the
// resulting PRK.
func KDFRFC5869(key, salt, info []byte, n int) ([]byte, error) {
	if err := checkKDFLength(n); err != nil {
		return nil, err
	}

	okm := make([]byte, n)
	if n == 0 {
		return okm, nil
	}

	prk := hkdf.Extract(sha256.New, key, salt)
	defer wipe(prk)
	if _, err := io.ReadFull(hkdf.Expand(sha256.New, prk, info), okm); err != nil {
		return nil, err
	}

	return okm, nil
}

// KDFNtor is KDFRFC5869 with the ntor salt (t_key) and info (m_expand).
func KDFNtor(secretInput []byte, n int) ([]byte, error) {
	return KDFRFC5869(secretInput, tKey, mExpand, n)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
