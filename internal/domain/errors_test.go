package domain

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrors_AreDistinctAndUsableWithErrorsIs(t *testing.T) {
	all := []error{ErrInput, ErrTransport, ErrDecode, ErrTooLarge, ErrConversion}
	for i, a := range all {
		require.NotNil(t, a)
		assert.NotEmpty(t, a.Error())
		for j, b := range all {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v must not match %v", a, b)
			}
		}
		wrapped := fmt.Errorf("context: %w", a)
		assert.True(t, errors.Is(wrapped, a))
	}
}

func TestEnvelopeJSON(t *testing.T) {
	ok, err := json.Marshal(Succeeded([]byte("docx-bytes")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"docx":"`+base64.StdEncoding.EncodeToString([]byte("docx-bytes"))+`"}`, string(ok))

	bad, err := json.Marshal(Failed("boom"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"boom"}`, string(bad))
}
