package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHasherDeterministic(t *testing.T) {
	h := WOSSHasher()
	a := h.Sum([]byte("hello"))
	b := h.Sum([]byte("hello"))
	require.Equal(t, a, b)
}

func TestHasherSensitiveToInput(t *testing.T) {
	h := WOSSHasher()
	a := h.Sum([]byte("hello"))
	b := h.Sum([]byte("world"))
	require.NotEqual(t, a, b)
}

func TestHasherTagsDontCollide(t *testing.T) {
	woss := WOSSHasher().Sum([]byte("same"))
	ckb := CKBHasher().Sum([]byte("same"))
	require.NotEqual(t, woss, ckb)
}

func TestHasherConcatenatesParts(t *testing.T) {
	h := WOSSHasher()
	whole := h.Sum([]byte("ab"), []byte("cd"))
	split := h.Sum([]byte("abcd"))
	require.Equal(t, split, whole)
}

func TestSumU32(t *testing.T) {
	h := WOSSHasher()
	a := h.SumU32("Flag", 1)
	b := h.SumU32("Flag", 2)
	require.NotEqual(t, a, b)

	c := h.SumU32("Data", 1)
	require.NotEqual(t, a, c)
}
