package core

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
)

// StateHash identifies a game state. Equal states always produce equal hashes.
type StateHash uint64

// Hasher accumulates fields into a 64-bit FNV-1a digest.
type Hasher struct {
	h   hash.Hash64
	buf [8]byte
}

func NewHasher() *Hasher {
	return &Hasher{h: fnv.New64a()}
}

func (h *Hasher) Uint64(v uint64) *Hasher {
	binary.LittleEndian.PutUint64(h.buf[:], v)
	h.h.Write(h.buf[:])
	return h
}

func (h *Hasher) Int(v int) *Hasher { return h.Uint64(uint64(int64(v))) }

func (h *Hasher) Bool(v bool) *Hasher {
	if v {
		return h.Uint64(1)
	}
	return h.Uint64(0)
}

// String writes the length before the bytes so that ("ab","c") and ("a","bc") differ.
func (h *Hasher) String(s string) *Hasher {
	h.Int(len(s))
	h.h.Write([]byte(s))
	return h
}

func (h *Hasher) Bytes(b []byte) *Hasher {
	h.Int(len(b))
	h.h.Write(b)
	return h
}

func (h *Hasher) Sum() uint64 { return h.h.Sum64() }
