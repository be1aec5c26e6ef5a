package archive

import (
	"crypto/rsa"
	"fmt"
	"os"
)

// OpenVerified mounts the bundled archive at basePath exactly as Open does,
// then additionally loads basePath+".manifest" (written alongside it by
// cmd/enginert-pack) and enforces its engine-version whitelist and
// signature before returning, per spec.md §6: both checks are "Fatal at
// load". A missing manifest file is not itself an error — manifests are
// optional, and older archives or ones packed without a whitelist/signing
// step never carry one — but a present, malformed, wrongly-versioned, or
// wrongly-signed one is, and the archive is closed before returning the
// error so a caller never ends up holding a half-trusted mount.
//
// pub may be nil when the archive's manifests are never signed
// (SignatureAlgorithmNone); a signed manifest with a nil pub is always
// rejected (ErrSignatureMismatch), never silently accepted.
func OpenVerified(basePath, engineVersion string, pub *rsa.PublicKey) (*Archive, *Manifest, error) {
	a, err := Open(basePath)
	if err != nil {
		return nil, nil, err
	}

	buf, err := os.ReadFile(basePath + ".manifest")
	if err != nil {
		if os.IsNotExist(err) {
			return a, nil, nil
		}
		a.Close()
		return nil, nil, fmt.Errorf("%w: %v", ErrIoError, err)
	}

	m, err := DecodeManifest(buf)
	if err != nil {
		a.Close()
		return nil, nil, err
	}

	if len(m.EngineVersions) > 0 && engineVersion != "" && !m.VerifyEngineVersion(engineVersion) {
		a.Close()
		return nil, nil, fmt.Errorf("%w: engine version %q not in manifest whitelist %v", ErrVersionMismatch, engineVersion, m.EngineVersions)
	}

	if err := m.VerifySignature(pub); err != nil {
		a.Close()
		return nil, nil, err
	}

	return a, m, nil
}
