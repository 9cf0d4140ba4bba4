package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeForError(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{ErrValidation, CodeValidation},
		{ErrAuth, CodeAuth},
		{ErrTimeout, CodeTimeout},
		{ErrNotFound, CodeNotFound},
		{ErrUnsupportedOperation, CodeUnsupported},
		{ErrEmailExists, CodeEmailExists},
		{ErrTransport, CodeTransport},
		{errors.New("anything else"), CodeInternal},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.code, CodeForError(tc.err))
	}
}

func TestCodeForWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("%w: email and password are required", ErrValidation)
	assert.Equal(t, CodeValidation, CodeForError(wrapped))
}

func TestErrorForCodeRoundTrip(t *testing.T) {
	for _, base := range []error{
		ErrValidation, ErrAuth, ErrTimeout, ErrNotFound,
		ErrUnsupportedOperation, ErrEmailExists,
	} {
		code := CodeForError(base)
		assert.ErrorIs(t, ErrorForCode(code, ""), base)
	}
}

func TestErrorForCodePreservesMessage(t *testing.T) {
	err := ErrorForCode(CodeAuth, "token expired")
	assert.ErrorIs(t, err, ErrAuth)
	assert.Contains(t, err.Error(), "token expired")
}

func TestErrorForUnknownCodeFallsBackToTransport(t *testing.T) {
	assert.ErrorIs(t, ErrorForCode("MYSTERY", "huh"), ErrTransport)
}

func TestFailurePayloadErrRoundTrip(t *testing.T) {
	p := FailurePayload(ErrEmailExists)
	assert.False(t, p.OK)
	assert.ErrorIs(t, p.Err(), ErrEmailExists)
}

func TestSuccessPayloadHasNoError(t *testing.T) {
	p := SuccessPayload(&Session{UserID: "u_1"}, nil)
	assert.True(t, p.OK)
	assert.NoError(t, p.Err())
}
