package pdf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPasswordError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "wrong password", err: errors.New("pdfcpu: please provide the correct password"), want: true},
		{name: "encrypted file", err: errors.New("this file is encrypted"), want: true},
		{name: "decrypt failure", err: errors.New("cannot decrypt stream"), want: true},
		{name: "unrelated", err: errors.New("unexpected token in object stream"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPasswordError(tt.err))
		})
	}
}

func TestIsEncrypted_MissingFile(t *testing.T) {
	encrypted, err := IsEncrypted(filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.False(t, encrypted)
}

func TestIsEncrypted_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf at all"), 0o600))

	encrypted, err := IsEncrypted(path)
	require.Error(t, err)
	assert.False(t, encrypted)
}

func TestDecrypt_MissingFile(t *testing.T) {
	_, _, err := Decrypt(filepath.Join(t.TempDir(), "missing.pdf"), Credentials{})
	require.Error(t, err)
}

func TestCredentialsEmpty(t *testing.T) {
	assert.True(t, Credentials{}.empty())
	assert.False(t, Credentials{UserPassword: "s3cret"}.empty())
	assert.False(t, Credentials{OwnerPassword: "s3cret"}.empty())
}
