package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_Deterministic(t *testing.T) {
	a := Fingerprint("CREATE", "/items", []byte(`{"name":"Rice"}`))
	b := Fingerprint("CREATE", "/items", []byte(`{"name":"Rice"}`))

	assert.Equal(t, a, b)
	assert.Len(t, a, 64, "blake2b-256 hex digest must be 64 chars")
}

func TestFingerprint_DiffersPerField(t *testing.T) {
	base := Fingerprint("CREATE", "/items", []byte(`{"name":"Rice"}`))

	assert.NotEqual(t, base, Fingerprint("UPDATE", "/items", []byte(`{"name":"Rice"}`)))
	assert.NotEqual(t, base, Fingerprint("CREATE", "/items/1", []byte(`{"name":"Rice"}`)))
	assert.NotEqual(t, base, Fingerprint("CREATE", "/items", []byte(`{"name":"Beans"}`)))
}

func TestFingerprint_SeparatorPreventsShiftCollisions(t *testing.T) {
	assert.NotEqual(t,
		Fingerprint("DELETE", "/items/4", []byte("2")),
		Fingerprint("DELETE", "/items/42", nil),
	)
}

func TestFingerprint_NilAndEmptyPayloadMatch(t *testing.T) {
	assert.Equal(t,
		Fingerprint("DELETE", "/items/42", nil),
		Fingerprint("DELETE", "/items/42", []byte{}),
	)
}
