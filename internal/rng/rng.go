// Package rng provides the per-session seeded random stream used by every game.
//
// A Stream is an HMAC-SHA256 byte generator keyed by the session seed. Bytes
// are consumed four at a time and folded into a float in [0,1), so a game
// replayed from the same seed produces the same boards, decks and draws.
package rng

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DefaultClientSeed is mixed into every stream built with New.
const DefaultClientSeed = "purgatory"

// Source is the randomness a game consumes.
type Source interface {
	Float64() float64
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Stream is a deterministic HMAC-SHA256 byte stream.
// It is not safe for concurrent use; each session owns its own Stream.
type Stream struct {
	serverSeed string
	clientSeed string
	nonce      uint64

	round  uint64
	buf    []byte
	offset int
}

// New creates a stream from a session seed.
func New(seed string) *Stream {
	return NewStream(seed, DefaultClientSeed, 0)
}

// NewStream creates a stream from explicit server seed, client seed and nonce.
func NewStream(serverSeed, clientSeed string, nonce uint64) *Stream {
	return &Stream{
		serverSeed: serverSeed,
		clientSeed: clientSeed,
		nonce:      nonce,
	}
}

func (s *Stream) refill() {
	mac := hmac.New(sha256.New, []byte(s.serverSeed))
	fmt.Fprintf(mac, "%s:%d:%d", s.clientSeed, s.nonce, s.round)
	s.buf = mac.Sum(nil)
	s.offset = 0
	s.round++
}

func (s *Stream) nextByte() byte {
	if s.buf == nil || s.offset >= len(s.buf) {
		s.refill()
	}
	b := s.buf[s.offset]
	s.offset++
	return b
}

// Float64 returns a uniform value in [0,1) built from the next four bytes.
func (s *Stream) Float64() float64 {
	var f float64
	div := 256.0
	for i := 0; i < 4; i++ {
		f += float64(s.nextByte()) / div
		div *= 256
	}
	return f
}

// Intn returns a uniform integer in [0,n). It panics if n <= 0.
func (s *Stream) Intn(n int) int {
	if n <= 0 {
		panic("rng: invalid argument to Intn")
	}
	v := int(s.Float64() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

// Shuffle performs a Fisher-Yates shuffle over n elements.
func (s *Stream) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := s.Intn(i + 1)
		swap(i, j)
	}
}

// Perm returns a shuffled permutation of [0,n).
func Perm(src Source, n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	src.Shuffle(n, func(i, j int) { p[i], p[j] = p[j], p[i] })
	return p
}

// NewSeed returns a fresh 32-byte hex seed from crypto/rand.
func NewSeed() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("rng: failed to read random seed: %v", err))
	}
	return hex.EncodeToString(b)
}

// NewSalt returns a short random salt for derived seeds.
func NewSalt() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("rng: failed to read random salt: %v", err))
	}
	return hex.EncodeToString(b)
}

// Derive returns the seed for a numbered sub-round of a base seed.
// Given the same base, round and salt it always returns the same seed.
func Derive(base string, round int, salt string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%s", base, round, salt)))
	return hex.EncodeToString(sum[:])
}
