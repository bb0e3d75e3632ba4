package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Credentials holds the passwords of an encrypted PDF. Charts and referral
// letters are routinely protected before they leave a clinic.
type Credentials struct {
	UserPassword  string `mapstructure:"user_password" yaml:"user_password" json:"user_password,omitempty"`
	OwnerPassword string `mapstructure:"owner_password" yaml:"owner_password" json:"owner_password,omitempty"`
}

func (c Credentials) empty() bool {
	return c.UserPassword == "" && c.OwnerPassword == ""
}

// IsEncrypted reports whether a PDF demands a password before its pages
// can be read.
func IsEncrypted(filename string) (bool, error) {
	_, err := api.PageCountFile(filename)
	if err == nil {
		return false, nil
	}
	if IsPasswordError(err) {
		return true, nil
	}
	return false, fmt.Errorf("check encryption of %s: %w", filename, err)
}

// Decrypt writes a decrypted copy of an encrypted PDF to a temporary file
// and returns its path. The cleanup function removes the copy; for a file
// that needs no decryption it is a no-op and the original path comes back.
func Decrypt(filename string, creds Credentials) (string, func(), error) {
	encrypted, err := IsEncrypted(filename)
	if err != nil {
		return "", nil, err
	}
	if !encrypted {
		return filename, func() {}, nil
	}
	if creds.empty() {
		return "", nil, fmt.Errorf("%s is password protected", filename)
	}

	conf := model.NewDefaultConfiguration()
	conf.UserPW = creds.UserPassword
	conf.OwnerPW = creds.OwnerPassword

	tmp, err := os.CreateTemp("", "medocr-decrypted-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	_ = tmp.Close()

	if err := api.DecryptFile(filename, path, conf); err != nil {
		_ = os.Remove(path)
		return "", nil, fmt.Errorf("decrypt %s: %w", filename, err)
	}
	return path, func() { _ = os.Remove(path) }, nil
}

// IsPasswordError reports whether an error looks like a missing or wrong
// PDF password.
func IsPasswordError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, keyword := range []string{"password", "encrypted", "decrypt", "authentication"} {
		if strings.Contains(msg, keyword) {
			return true
		}
	}
	return false
}
