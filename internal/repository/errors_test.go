package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := &Error{Kind: KindOptimisticLock, Op: "update node", Msg: "node 1 at version 0 was modified or removed"}

	assert.ErrorIs(t, err, ErrOptimisticLock)
	assert.NotErrorIs(t, err, ErrNotFound)

	wrapped := fmt.Errorf("service: %w", err)
	assert.ErrorIs(t, wrapped, ErrOptimisticLock)
	assert.Equal(t, KindOptimisticLock, KindOf(wrapped))
}

func TestError_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("database is locked")
	err := &Error{Kind: KindStore, Op: "save node", Msg: "inserting node", Err: cause}

	assert.Equal(t, "save node: store: inserting node: database is locked", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrStore)
}

func TestKindOf_Unknown(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestKind_Codes(t *testing.T) {
	assert.Equal(t, "VALIDATION_ERROR", KindValidation.Code())
	assert.Equal(t, "DUPLICATE_KEY", KindDuplicateKey.Code())
	assert.Equal(t, "OPTIMISTIC_LOCK_ERROR", KindOptimisticLock.Code())
	assert.Equal(t, "NODE_NOT_FOUND", KindNotFound.Code())
	assert.Equal(t, "DATABASE_ERROR", KindStore.Code())
	assert.Equal(t, "UNKNOWN_ERROR", KindUnknown.Code())
}
