package types

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	_, statErr := os.Stat("/definitely/not/here")

	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ""},
		{"wrapped not found", fmt.Errorf("read x: %w", ErrNotFound), KindNotFound},
		{"os not exist", statErr, KindNotFound},
		{"already exists", fmt.Errorf("rename: %w", ErrAlreadyExists), KindAlreadyExists},
		{"fs exist", &fs.PathError{Op: "rename", Path: "b", Err: fs.ErrExist}, KindAlreadyExists},
		{"permission", &fs.PathError{Op: "open", Path: "a", Err: fs.ErrPermission}, KindPermissionDenied},
		{"process", fmt.Errorf("submit: %w", ErrProcessUnavailable), KindProcessUnavailable},
		{"invalid", ErrInvalidRequest, KindInvalidRequest},
		{"other", errors.New("disk full"), KindIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestFailCarriesMessageOnly(t *testing.T) {
	res := Fail(fmt.Errorf("rename a -> b: %w", ErrAlreadyExists))

	assert.False(t, res.Success)
	assert.Equal(t, "rename a -> b: destination already exists", res.Error)
	assert.Equal(t, KindAlreadyExists, res.Code)
	assert.Nil(t, res.Value)
}

func TestListOKNeverNil(t *testing.T) {
	res := ListOK(nil)

	assert.True(t, res.Success)
	assert.NotNil(t, res.Files)
	assert.Empty(t, res.Files)
}

func TestEntryTypeOf(t *testing.T) {
	assert.Equal(t, EntryDirectory, EntryTypeOf(true))
	assert.Equal(t, EntryFile, EntryTypeOf(false))
}

func TestSentinelRoundTrip(t *testing.T) {
	for _, kind := range []ErrorKind{KindNotFound, KindAlreadyExists, KindPermissionDenied, KindProcessUnavailable, KindInvalidRequest} {
		t.Run(string(kind), func(t *testing.T) {
			assert.Equal(t, kind, Classify(Sentinel(kind)))
		})
	}

	assert.Nil(t, Sentinel(KindIO))
	assert.Nil(t, Sentinel("unknown"))
}
