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
	"crypto/hmac"
	"crypto/sha256"
)

// ProtoID is the ntor protocol identifier.  Every tweak is derived from it.
const ProtoID = "ntor-curve25519-sha256-1"

const (
	// TMac is the tweak for the final AUTH tag.
	TMac = ProtoID + ":mac"

	// TKey is the tweak used as the HKDF salt.
	TKey = ProtoID + ":key_extract"

	// TVerify is the tweak for the intermediate verify value.
	TVerify = ProtoID + ":verify"

	// MExpand is the HKDF info string.
	MExpand = ProtoID + ":key_expand"
)

var (
	protoID   = []byte(ProtoID)
	tMac      = []byte(TMac)
	tKey      = []byte(TKey)
	tVerify   = []byte(TVerify)
	mExpand   = []byte(MExpand)
	serverStr = []byte("Server")
)

// H is HMAC-SHA256 with tweak as the key and message as the input.
func H(message, tweak []byte) []byte {
	h := hmac.New(sha256.New, tweak)
	_, _ = h.Write(message)
	return h.Sum(nil)
}

// HMac is H(message, t_mac).
func HMac(message []byte) []byte {
	return H(message, tMac)
}

// HVerify is H(message, t_verify).
func HVerify(message []byte) []byte {
	return H(message, tVerify)
}
