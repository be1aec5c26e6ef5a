package archive

import (
	"crypto"
	"crypto/rsa"
	"encoding/binary"
	"fmt"
)

// manifestMagic and manifestVersion identify a valid manifest file (spec.md
// §6: "Readers MUST reject manifests whose magic or version differ from
// the known constants").
const (
	manifestMagic   uint32 = 0x8d0ee1eb
	manifestVersion uint32 = 1
)

// HashAlgorithm enumerates the digest algorithms a manifest may declare for
// resource content hashes or its own signature (spec.md §6).
type HashAlgorithm uint8

const (
	HashAlgorithmMD5 HashAlgorithm = iota
	HashAlgorithmSHA1
	HashAlgorithmSHA256
	HashAlgorithmSHA512
)

// SignatureAlgorithm enumerates the signature schemes a manifest's
// signature field may use.
type SignatureAlgorithm uint8

const (
	SignatureAlgorithmNone SignatureAlgorithm = iota
	SignatureAlgorithmRSA
)

// ManifestEntryFlags mirrors the per-URL flags carried in a manifest record.
type ManifestEntryFlags uint32

const (
	ManifestEntryBundled ManifestEntryFlags = 1 << iota
	ManifestEntryCompressed
	ManifestEntryEncrypted
	ManifestEntryExcluded
)

// ManifestEntry is one {url, url_hash, content_hash, flags} record (spec.md
// §6 "Manifest file").
type ManifestEntry struct {
	URL         string
	URLHash     []byte
	ContentHash []byte
	Flags       ManifestEntryFlags
}

// Manifest is the decoded form of the length-delimited, protobuf-style
// manifest record described in spec.md §6: a magic/version pair, the two
// hash-algorithm enums, a signature-algorithm enum, an engine-version
// whitelist, a signature over the payload, and the repeated entry array.
//
// This port hand-rolls the length-delimited encoding rather than reaching
// for a protobuf/flatbuffers runtime: protoc-generated code cannot be
// produced without running the protobuf toolchain, which this exercise
// forbids (see DESIGN.md). The wire shape still follows "tag, length,
// bytes" framing in the spirit of a length-delimited protobuf message.
type Manifest struct {
	ResourceHashAlgorithm  HashAlgorithm
	SignatureHashAlgorithm HashAlgorithm
	SignatureAlgorithm     SignatureAlgorithm
	EngineVersions         []string
	Signature              []byte
	Entries                []ManifestEntry
}

// field tags for the hand-rolled length-delimited encoding.
const (
	tagResourceHashAlgo uint8 = iota + 1
	tagSignatureHashAlgo
	tagSignatureAlgo
	tagEngineVersion
	tagSignature
	tagEntry
)

// DecodeManifest parses buf into a Manifest, rejecting unknown magic or
// version up front.
func DecodeManifest(buf []byte) (*Manifest, error) {
	if len(buf) < 8 {
		return nil, fmt.Errorf("%w: manifest shorter than header", ErrFormatError)
	}
	be := binary.BigEndian
	magic := be.Uint32(buf[0:4])
	version := be.Uint32(buf[4:8])
	if magic != manifestMagic {
		return nil, fmt.Errorf("%w: unrecognized manifest magic", ErrVersionMismatch)
	}
	if version != manifestVersion {
		return nil, fmt.Errorf("%w: unrecognized manifest version", ErrVersionMismatch)
	}

	m := &Manifest{}
	off := 8
	for off < len(buf) {
		if off+5 > len(buf) {
			return nil, fmt.Errorf("%w: truncated manifest field", ErrFormatError)
		}
		tag := buf[off]
		length := be.Uint32(buf[off+1 : off+5])
		off += 5
		if uint64(off)+uint64(length) > uint64(len(buf)) {
			return nil, fmt.Errorf("%w: field length past end of manifest", ErrFormatError)
		}
		field := buf[off : off+int(length)]
		off += int(length)

		switch tag {
		case tagResourceHashAlgo:
			if len(field) != 1 {
				return nil, fmt.Errorf("%w: bad resource hash algorithm field", ErrFormatError)
			}
			m.ResourceHashAlgorithm = HashAlgorithm(field[0])
		case tagSignatureHashAlgo:
			if len(field) != 1 {
				return nil, fmt.Errorf("%w: bad signature hash algorithm field", ErrFormatError)
			}
			m.SignatureHashAlgorithm = HashAlgorithm(field[0])
		case tagSignatureAlgo:
			if len(field) != 1 {
				return nil, fmt.Errorf("%w: bad signature algorithm field", ErrFormatError)
			}
			m.SignatureAlgorithm = SignatureAlgorithm(field[0])
		case tagEngineVersion:
			m.EngineVersions = append(m.EngineVersions, string(field))
		case tagSignature:
			m.Signature = append([]byte(nil), field...)
		case tagEntry:
			e, err := decodeManifestEntry(field)
			if err != nil {
				return nil, err
			}
			m.Entries = append(m.Entries, e)
		default:
			// Unknown tags are skipped rather than rejected, so future
			// fields can be added without breaking older readers.
		}
	}
	return m, nil
}

func decodeManifestEntry(buf []byte) (ManifestEntry, error) {
	be := binary.BigEndian
	if len(buf) < 4 {
		return ManifestEntry{}, fmt.Errorf("%w: truncated manifest entry", ErrFormatError)
	}
	urlLen := be.Uint32(buf[0:4])
	off := 4
	if uint64(off)+uint64(urlLen) > uint64(len(buf)) {
		return ManifestEntry{}, fmt.Errorf("%w: manifest entry url past end", ErrFormatError)
	}
	url := string(buf[off : off+int(urlLen)])
	off += int(urlLen)

	if off+4 > len(buf) {
		return ManifestEntry{}, fmt.Errorf("%w: truncated manifest entry hashes", ErrFormatError)
	}
	urlHashLen := be.Uint32(buf[off : off+4])
	off += 4
	urlHash := append([]byte(nil), buf[off:off+int(urlHashLen)]...)
	off += int(urlHashLen)

	if off+4 > len(buf) {
		return ManifestEntry{}, fmt.Errorf("%w: truncated manifest entry content hash", ErrFormatError)
	}
	contentHashLen := be.Uint32(buf[off : off+4])
	off += 4
	contentHash := append([]byte(nil), buf[off:off+int(contentHashLen)]...)
	off += int(contentHashLen)

	if off+4 > len(buf) {
		return ManifestEntry{}, fmt.Errorf("%w: truncated manifest entry flags", ErrFormatError)
	}
	flags := ManifestEntryFlags(be.Uint32(buf[off : off+4]))

	return ManifestEntry{URL: url, URLHash: urlHash, ContentHash: contentHash, Flags: flags}, nil
}

// EncodeManifest serializes m back into the wire form DecodeManifest reads.
func EncodeManifest(m *Manifest) []byte {
	var buf []byte
	be := binary.BigEndian

	header := make([]byte, 8)
	be.PutUint32(header[0:4], manifestMagic)
	be.PutUint32(header[4:8], manifestVersion)
	buf = append(buf, header...)

	buf = appendField(buf, tagResourceHashAlgo, []byte{byte(m.ResourceHashAlgorithm)})
	buf = appendField(buf, tagSignatureHashAlgo, []byte{byte(m.SignatureHashAlgorithm)})
	buf = appendField(buf, tagSignatureAlgo, []byte{byte(m.SignatureAlgorithm)})
	for _, v := range m.EngineVersions {
		buf = appendField(buf, tagEngineVersion, []byte(v))
	}
	if len(m.Signature) > 0 {
		buf = appendField(buf, tagSignature, m.Signature)
	}
	for _, e := range m.Entries {
		buf = appendField(buf, tagEntry, encodeManifestEntry(e))
	}
	return buf
}

func appendField(buf []byte, tag uint8, field []byte) []byte {
	lenBuf := make([]byte, 5)
	lenBuf[0] = tag
	binary.BigEndian.PutUint32(lenBuf[1:5], uint32(len(field)))
	buf = append(buf, lenBuf...)
	return append(buf, field...)
}

func encodeManifestEntry(e ManifestEntry) []byte {
	var buf []byte
	urlLen := make([]byte, 4)
	binary.BigEndian.PutUint32(urlLen, uint32(len(e.URL)))
	buf = append(buf, urlLen...)
	buf = append(buf, e.URL...)

	urlHashLen := make([]byte, 4)
	binary.BigEndian.PutUint32(urlHashLen, uint32(len(e.URLHash)))
	buf = append(buf, urlHashLen...)
	buf = append(buf, e.URLHash...)

	contentHashLen := make([]byte, 4)
	binary.BigEndian.PutUint32(contentHashLen, uint32(len(e.ContentHash)))
	buf = append(buf, contentHashLen...)
	buf = append(buf, e.ContentHash...)

	flags := make([]byte, 4)
	binary.BigEndian.PutUint32(flags, uint32(e.Flags))
	buf = append(buf, flags...)

	return buf
}

// VerifyEngineVersion reports whether engineVersion appears in the
// manifest's whitelist (spec.md §6 "engine-version whitelist").
func (m *Manifest) VerifyEngineVersion(engineVersion string) bool {
	for _, v := range m.EngineVersions {
		if v == engineVersion {
			return true
		}
	}
	return false
}

// hashAlgoToCrypto maps a manifest HashAlgorithm to the crypto.Hash
// rsa.VerifyPKCS1v15 expects.
func hashAlgoToCrypto(algo HashAlgorithm) (crypto.Hash, error) {
	switch algo {
	case HashAlgorithmMD5:
		return crypto.MD5, nil
	case HashAlgorithmSHA1:
		return crypto.SHA1, nil
	case HashAlgorithmSHA256:
		return crypto.SHA256, nil
	case HashAlgorithmSHA512:
		return crypto.SHA512, nil
	default:
		return 0, fmt.Errorf("%w: unknown hash algorithm %d", ErrFormatError, algo)
	}
}

// VerifySignature checks m.Signature against pub, covering every other
// field of the manifest (spec.md §6: the signature "covers the manifest
// payload" and is "Fatal at load"). A SignatureAlgorithmNone manifest is
// unsigned and always passes; any other unrecognized algorithm is a
// format error rather than a silent pass.
func (m *Manifest) VerifySignature(pub *rsa.PublicKey) error {
	switch m.SignatureAlgorithm {
	case SignatureAlgorithmNone:
		return nil
	case SignatureAlgorithmRSA:
		if pub == nil {
			return fmt.Errorf("%w: manifest is signed but no trusted public key was supplied", ErrSignatureMismatch)
		}
		cryptoHash, err := hashAlgoToCrypto(m.SignatureHashAlgorithm)
		if err != nil {
			return err
		}
		h := cryptoHash.New()
		unsigned := *m
		unsigned.Signature = nil
		h.Write(EncodeManifest(&unsigned))

		if err := rsa.VerifyPKCS1v15(pub, cryptoHash, h.Sum(nil), m.Signature); err != nil {
			return fmt.Errorf("%w: %v", ErrSignatureMismatch, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown signature algorithm %d", ErrFormatError, m.SignatureAlgorithm)
	}
}

// Sign computes m.Signature in place over the manifest payload using priv,
// the inverse of VerifySignature (used by packaging tools, mirrored on
// cmd/enginert-pack's offline packer).
func (m *Manifest) Sign(priv *rsa.PrivateKey, algo HashAlgorithm) error {
	cryptoHash, err := hashAlgoToCrypto(algo)
	if err != nil {
		return err
	}
	m.SignatureHashAlgorithm = algo
	m.SignatureAlgorithm = SignatureAlgorithmRSA

	h := cryptoHash.New()
	unsigned := *m
	unsigned.Signature = nil
	h.Write(EncodeManifest(&unsigned))

	sig, err := rsa.SignPKCS1v15(nil, priv, cryptoHash, h.Sum(nil))
	if err != nil {
		return err
	}
	m.Signature = sig
	return nil
}
