package main

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/Voskan/enginert/pkg/hashreg"
	"github.com/Voskan/enginert/pkg/resource/archive"
)

// packDirectory walks inputDir, hashes each file's logical resource path
// the same way the runtime factory does (archive.NormalizePath + MurmurHash2A
// 64-bit), and writes the resulting bundled archive plus manifest to
// output. Grounded on resource_archive.cpp's offline archive tool and this
// port's own archive.Build/archive.EncodeManifest. If signKeyPath is
// non-empty, the manifest is signed with the PEM RSA private key found
// there, so archive.OpenVerified can enforce it at mount time.
func packDirectory(log *logrus.Logger, inputDir, output string, engineVersions []string, signKeyPath string) error {
	reg := hashreg.NewRegistry()

	var entries []archive.BuildEntry
	var manifestEntries []archive.ManifestEntry

	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}
		logicalPath := "/" + filepath.ToSlash(rel)
		normalized := archive.NormalizePath(logicalPath)

		payload, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		h := hashreg.String64(reg, normalized)
		digest := make([]byte, 8)
		for i := 0; i < 8; i++ {
			digest[i] = byte(h >> (56 - 8*i))
		}

		log.WithField("path", normalized).Debug("packed entry")

		contentHash := sha256.Sum256(payload)
		entries = append(entries, archive.BuildEntry{Digest: digest, Payload: payload})
		manifestEntries = append(manifestEntries, archive.ManifestEntry{
			URL:         normalized,
			URLHash:     digest,
			ContentHash: contentHash[:],
			Flags:       archive.ManifestEntryBundled,
		})
		return nil
	})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no files found under %s", inputDir)
	}

	if err := archive.Build(output, entries); err != nil {
		return fmt.Errorf("building archive: %w", err)
	}

	manifest := &archive.Manifest{
		ResourceHashAlgorithm:  archive.HashAlgorithmSHA256,
		SignatureHashAlgorithm: archive.HashAlgorithmSHA256,
		SignatureAlgorithm:     archive.SignatureAlgorithmNone,
		EngineVersions:         engineVersions,
		Entries:                manifestEntries,
	}

	if signKeyPath != "" {
		priv, err := loadRSAPrivateKey(signKeyPath)
		if err != nil {
			return fmt.Errorf("loading --sign-key: %w", err)
		}
		if err := manifest.Sign(priv, archive.HashAlgorithmSHA256); err != nil {
			return fmt.Errorf("signing manifest: %w", err)
		}
		log.Info("manifest signed")
	}

	manifestPath := output + ".manifest"
	if err := os.WriteFile(manifestPath, archive.EncodeManifest(manifest), 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	log.WithField("entries", len(entries)).WithField("output", output).Info("wrote archive")
	log.WithField("manifest", manifestPath).Info("wrote manifest")
	return nil
}

// loadRSAPrivateKey reads a PEM-encoded PKCS#1 or PKCS#8 RSA private key
// from path, as produced by `openssl genrsa` / `openssl pkcs8`.
func loadRSAPrivateKey(path string) (*rsa.PrivateKey, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(buf)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in %s", path)
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%s does not contain an RSA private key", path)
	}
	return rsaKey, nil
}
