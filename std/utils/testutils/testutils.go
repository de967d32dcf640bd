package utils

import (
	"testing"

	enc "github.com/named-data/ndnrepo/std/encoding"
	"github.com/stretchr/testify/require"
)

var testT *testing.T

// SetT sets the test context used by the helpers below.
func SetT(t *testing.T) {
	testT = t
}

// NoErr unwraps a value, failing the test on error.
func NoErr[T any](v T, err error) T {
	require.NoError(testT, err)
	return v
}

// Err asserts that a call failed and returns its error.
func Err[T any](_ T, err error) error {
	require.Error(testT, err)
	return err
}

// Name parses a name URI, failing the test if it is malformed.
func Name(s string) enc.Name {
	return NoErr(enc.NameFromStr(s))
}

// Names parses several name URIs.
func Names(ss ...string) []enc.Name {
	ret := make([]enc.Name, len(ss))
	for i, s := range ss {
		ret[i] = Name(s)
	}
	return ret
}
