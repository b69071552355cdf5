package wherr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessageFormatting(t *testing.T) {
	plain := New(NotFound, "batch missing")
	assert.Equal(t, "not_found: batch missing", plain.Error())

	wrapped := Wrap(StorageIO, "put op failed", errors.New("disk full"))
	assert.Equal(t, "storage_io: put op failed: disk full", wrapped.Error())
}

func TestIsUnwrapsThroughStdlibWrapping(t *testing.T) {
	base := New(Inconsistent, "missing column family")
	outer := fmt.Errorf("opening ledger: %w", base)

	assert.True(t, Is(outer, Inconsistent))
	assert.False(t, Is(outer, NotFound))
}

func TestIsFalseOnPlainError(t *testing.T) {
	assert.False(t, Is(errors.New("boom"), StorageIO))
	assert.False(t, Is(nil, StorageIO))
}

func TestFatalClassification(t *testing.T) {
	fatal := []Kind{StorageIO, Encoding, BadKey, Inconsistent}
	for _, k := range fatal {
		assert.True(t, Fatal(k), "%s should abort the mutation", k)
	}

	nonFatal := []Kind{NotFound, InvalidArgument}
	for _, k := range nonFatal {
		assert.False(t, Fatal(k), "%s should surface without implying corruption", k)
	}
}
