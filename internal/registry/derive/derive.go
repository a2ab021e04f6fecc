// Package derive computes deterministic account identifiers from seed labels
// and identifying fields.
//
// The identifier doubles as the storage key: any party can recompute it from
// the same inputs without a secondary index, and "an account already exists
// at this identifier" is the uniqueness mechanism for the whole registry.
package derive

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// AccountID is a derived account identifier: 64 lowercase hex characters of
// a BLAKE2b-256 digest.
type AccountID string

// Seed labels. These fix the keyspace per account kind; changing one would
// orphan every stored account of that kind.
const (
	SeedAdmin         = "admin"
	SeedProjectSuffix = "project_suffix"
	aliasSeparator    = "@"
)

// Derive computes the account identifier for a seed label and its
// identifying fields. Each input is length-prefixed before hashing so that
// adjacent fields cannot collide by shifting bytes between them
// (["ab","c"] and ["a","bc"] derive distinct identifiers).
func Derive(seed string, fields ...string) AccountID {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only fails for oversized keys; we pass none.
		panic(err)
	}

	var prefix [binary.MaxVarintLen64]byte
	write := func(s string) {
		n := binary.PutUvarint(prefix[:], uint64(len(s)))
		h.Write(prefix[:n])
		h.Write([]byte(s))
	}

	write(seed)
	for _, f := range fields {
		write(f)
	}

	return AccountID(hex.EncodeToString(h.Sum(nil)))
}

// AdminID returns the identifier of the singleton admin config account.
func AdminID() AccountID {
	return Derive(SeedAdmin)
}

// SuffixID returns the identifier of a project suffix account.
func SuffixID(suffix string) AccountID {
	return Derive(SeedProjectSuffix, suffix)
}

// AliasID returns the identifier of an alias account. The "@" field sits
// between username and suffix, mirroring the alias's canonical
// "username@suffix" rendering.
func AliasID(username, projectSuffix string) AccountID {
	return Derive(username, aliasSeparator, projectSuffix)
}

func (id AccountID) String() string {
	return string(id)
}
