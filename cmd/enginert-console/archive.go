package main

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/Voskan/enginert/pkg/resource/archive"
)

// openArchive mounts basePath and, when it carries a manifest, enforces its
// engine-version whitelist and signature (archive.OpenVerified) before
// handing the archive to the factory — a console operator mounting an
// untrusted or stale archive should hear about it immediately rather than
// silently serving whatever bytes happen to be in it.
func openArchive(basePath, engineVersion, trustedKeyPath string) (*archive.Archive, error) {
	var pub *rsa.PublicKey
	if trustedKeyPath != "" {
		key, err := loadRSAPublicKey(trustedKeyPath)
		if err != nil {
			return nil, fmt.Errorf("loading --trusted-key: %w", err)
		}
		pub = key
	}

	a, _, err := archive.OpenVerified(basePath, engineVersion, pub)
	return a, err
}

// loadRSAPublicKey reads a PEM-encoded PKIX RSA public key, as produced by
// `openssl rsa -pubout`.
func loadRSAPublicKey(path string) (*rsa.PublicKey, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(buf)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in %s", path)
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%s does not contain an RSA public key", path)
	}
	return pub, nil
}
