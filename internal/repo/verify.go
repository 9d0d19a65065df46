package repo

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// signatureSuffix names the detached armored signature of a location.
const signatureSuffix = ".asc"

// ReadKeyring reads an armored OpenPGP public keyring.
func ReadKeyring(r io.Reader) (openpgp.EntityList, error) {
	kr, err := openpgp.ReadArmoredKeyRing(r)
	if err != nil {
		return nil, fmt.Errorf("reading keyring: %w", err)
	}
	return kr, nil
}

// ReadKeyringFile reads an armored OpenPGP public keyring from path.
func ReadKeyringFile(path string) (openpgp.EntityList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	defer f.Close()

	kr, err := ReadKeyring(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return kr, nil
}

// verifyDetached checks an armored detached signature over signed and
// returns the signing key's id.
func verifyDetached(keyring openpgp.EntityList, signed, sig []byte) (string, error) {
	signer, err := openpgp.CheckArmoredDetachedSignature(keyring, bytes.NewReader(signed), bytes.NewReader(sig), nil)
	if err != nil {
		return "", err
	}
	if signer == nil || signer.PrimaryKey == nil {
		return "", nil
	}
	return signer.PrimaryKey.KeyIdString(), nil
}
