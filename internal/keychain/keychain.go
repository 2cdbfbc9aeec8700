// Package keychain is the forensic reader's public entry point: it loads
// an Apple DB keychain image, drives the Loaded -> DbKeyKnown ->
// KeyCachePopulated state machine, and exposes the per-kind record
// iterators once a database key has (optionally) been recovered.
package keychain

import (
	"encoding/hex"
	"fmt"

	"github.com/n0fate/chainbreaker-go/internal/keychain/binview"
	"github.com/n0fate/chainbreaker-go/internal/keychain/cryptoprim"
	"github.com/n0fate/chainbreaker-go/internal/keychain/hashformat"
	"github.com/n0fate/chainbreaker-go/internal/keychain/kcerrors"
	"github.com/n0fate/chainbreaker-go/internal/keychain/keycache"
	"github.com/n0fate/chainbreaker-go/internal/keychain/kclog"
	"github.com/n0fate/chainbreaker-go/internal/keychain/records"
	"github.com/n0fate/chainbreaker-go/internal/keychain/tableindex"
	"github.com/n0fate/chainbreaker-go/internal/keychain/unwrap"
	"github.com/n0fate/chainbreaker-go/internal/keychain/wire"
)

// State is the keychain instance's position in the Loaded -> DbKeyKnown
// -> KeyCachePopulated lifecycle.
type State int

const (
	// StateLoaded means the container parsed successfully but no database
	// key has been recovered; password and private-key fields read locked.
	StateLoaded State = iota
	// StateDbKeyKnown means the database key was recovered but the key
	// cache has not yet been populated. Transient: populateKeyCache runs
	// synchronously before this state is ever observed externally.
	StateDbKeyKnown
	// StateKeyCachePopulated means every recoverable symmetric key has been
	// unwrapped and cached; password records decrypt wherever a cache
	// entry and valid ciphertext exist.
	StateKeyCachePopulated
)

// Keychain is a loaded, read-only keychain image together with its table
// index and (once unlocked) its database key and key cache.
type Keychain struct {
	view   *binview.View
	index  *tableindex.Index
	logger kclog.Logger

	state State
	dbKey []byte
	cache *keycache.Cache
}

// Load parses data as an Apple DB keychain image: the application-DB
// header, schema, and table index. A nil logger is replaced with
// kclog.Nop. Returns ErrMalformedContainer if the signature or any
// structural field is invalid.
func Load(data []byte, logger kclog.Logger) (*Keychain, error) {
	if logger == nil {
		logger = kclog.Nop{}
	}

	v := binview.New(data)

	header, err := wire.DecodeAppDBHeader(v)
	if err != nil {
		return nil, err
	}

	schema, err := wire.DecodeSchema(v, int(header.SchemaOffset))
	if err != nil {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}

	tableOffsets, err := wire.DecodeTableOffsets(v, int(header.SchemaOffset), schema)
	if err != nil {
		return nil, fmt.Errorf("decoding table offsets: %w", err)
	}

	idx, err := tableindex.Build(v, tableOffsets)
	if err != nil {
		return nil, err
	}

	return &Keychain{
		view:   v,
		index:  idx,
		logger: logger,
		state:  StateLoaded,
		cache:  keycache.New(),
	}, nil
}

// State reports the instance's current lifecycle state.
func (k *Keychain) State() State {
	return k.state
}

// UnwrappedKeyCount returns the number of symmetric keys successfully
// unwrapped into the key cache. Zero before unlock or if no symmetric-key
// table is present.
func (k *Keychain) UnwrappedKeyCount() int {
	return k.cache.Len()
}

// metaTable locates the meta table and scans its record-offset array to
// confirm it holds at least one record (the DB blob's home). No record
// offset is used to locate the blob: the DB blob sits at a fixed offset
// from the table start itself, not from any one record within it.
func (k *Keychain) metaTable() (tableOffset uint32, tableStart int, err error) {
	tableOffset, err = k.index.Offset(wire.TableMetadata)
	if err != nil {
		return 0, 0, err
	}

	tableStart = wire.HeaderSize + int(tableOffset)
	h, err := wire.DecodeTableHeader(k.view, tableStart)
	if err != nil {
		return 0, 0, fmt.Errorf("reading metadata table header: %w", err)
	}

	offsets, err := wire.RecordOffsets(k.view, tableStart, h)
	if err != nil {
		return 0, 0, fmt.Errorf("scanning metadata record offsets: %w", err)
	}
	if len(offsets) == 0 {
		return 0, 0, fmt.Errorf("%w: metadata table has no records", kcerrors.ErrMalformedContainer)
	}

	return tableOffset, tableStart, nil
}

// dbBlob decodes the DB blob at its fixed offset from the start of the
// meta table.
func (k *Keychain) dbBlob() (*wire.DbBlob, int, error) {
	_, tableStart, err := k.metaTable()
	if err != nil {
		return nil, 0, err
	}

	blobBase := tableStart + wire.DbBlobOffsetInMetaRecord
	blob, err := wire.DecodeDbBlob(k.view, blobBase)
	if err != nil {
		return nil, 0, fmt.Errorf("decoding db blob: %w", err)
	}
	return blob, blobBase, nil
}

// PasswordHash renders this keychain's DB blob as a cracker-consumable
// "$keychain$*salt*iv*cipher" line. Requires no unlock secret: it is
// purely a function of the DB blob bytes.
func (k *Keychain) PasswordHash() (string, error) {
	blob, blobBase, err := k.dbBlob()
	if err != nil {
		return "", err
	}
	ciphertext, err := blob.Ciphertext(k.view, blobBase)
	if err != nil {
		return "", err
	}
	h := hashformat.Hash{Salt: blob.Salt[:], IV: blob.IV[:], Cipher: ciphertext}
	return h.Format(), nil
}

// UnlockWithPassword derives the master key from password via PBKDF2 and
// recovers the database key. A wrong password leaves the instance in
// StateLoaded (ErrUnlockFailed) rather than panicking; iteration still
// succeeds with every password/private-key field locked.
func (k *Keychain) UnlockWithPassword(password string) error {
	blob, _, err := k.dbBlob()
	if err != nil {
		return err
	}
	masterKey := cryptoprim.DeriveMasterKey(password, blob.Salt[:])
	return k.recoverDbKey(masterKey)
}

// UnlockWithHexKey treats hexKey as the master key directly (skipping
// PBKDF2) and recovers the database key, mirroring the --key flag's
// "raw wrapping-key in hex" semantics.
func (k *Keychain) UnlockWithHexKey(hexKey string) error {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return fmt.Errorf("%w: decoding hex key: %v", kcerrors.ErrUnlockFailed, err)
	}
	return k.recoverDbKey(raw)
}

// UnlockWithFile extracts the master key from the first 24 bytes of an
// unlock-file's contents and recovers the database key.
func (k *Keychain) UnlockWithFile(data []byte) error {
	masterKey, err := wire.DecodeUnlockBlob(data)
	if err != nil {
		return err
	}
	return k.recoverDbKey(masterKey[:])
}

// recoverDbKey decrypts the DB blob under masterKey, and on success
// transitions Loaded -> DbKeyKnown -> KeyCachePopulated synchronously.
func (k *Keychain) recoverDbKey(masterKey []byte) error {
	blob, blobBase, err := k.dbBlob()
	if err != nil {
		return err
	}
	ciphertext, err := blob.Ciphertext(k.view, blobBase)
	if err != nil {
		return err
	}

	dbKey, err := unwrap.RecoverDbKey(masterKey, blob.IV[:], ciphertext)
	if err != nil {
		k.logger.Warnf("unlock failed: %v", err)
		return err
	}

	k.dbKey = dbKey
	k.state = StateDbKeyKnown
	k.populateKeyCache()
	k.state = StateKeyCachePopulated
	return nil
}

// populateKeyCache walks the symmetric-key table, unwrapping every
// decodable key blob under the now-known database key and inserting it
// into the cache under its (magic||label) identifier. Individual
// unwrap failures are logged and skipped; a missing symmetric-key table
// leaves the cache empty. Runs exactly once, from recoverDbKey.
func (k *Keychain) populateKeyCache() {
	tableOffset, err := k.index.Offset(wire.TableSymmetricKey)
	if err != nil {
		k.logger.Warnf("%s table is not available", wire.TableSymmetricKey)
		return
	}

	tableStart := wire.HeaderSize + int(tableOffset)
	h, err := wire.DecodeTableHeader(k.view, tableStart)
	if err != nil {
		k.logger.Warnf("reading symmetric key table header: %v", err)
		return
	}

	offsets, err := wire.RecordOffsets(k.view, tableStart, h)
	if err != nil {
		k.logger.Warnf("scanning symmetric key record offsets: %v", err)
		return
	}

	for _, recOff := range offsets {
		k.unwrapSymmetricKeyRecord(tableOffset, recOff)
	}
}

func (k *Keychain) unwrapSymmetricKeyRecord(tableOffset, recOff uint32) {
	base := wire.RecordBase(tableOffset, recOff)

	rh, err := wire.DecodeSymmetricKeyRecordHeader(k.view, base)
	if err != nil {
		k.logger.Debugf("skipping symmetric key record at %d: %v", base, err)
		return
	}

	payloadStart := base + wire.SymmetricKeyRecordHeaderSize
	payloadEnd := base + int(rh.RecordSize)
	if payloadEnd < payloadStart || !k.view.Contains(payloadStart, payloadEnd-payloadStart) {
		k.logger.Debugf("skipping symmetric key record at %d: record_size escapes view", base)
		return
	}
	payload, err := k.view.Slice(payloadStart, payloadEnd-payloadStart)
	if err != nil {
		k.logger.Debugf("skipping symmetric key record at %d: %v", base, err)
		return
	}

	kb, err := wire.DecodeKeyBlob(payload)
	if err != nil {
		k.logger.Debugf("skipping symmetric key record at %d: %v", base, err)
		return
	}
	if !kb.HasSSGPMagic() {
		k.logger.Debugf("skipping symmetric key record at %d: not an ssgp key blob", base)
		return
	}

	ciphertext, err := kb.Ciphertext(payload)
	if err != nil {
		k.logger.Debugf("skipping symmetric key record at %d: %v", base, err)
		return
	}
	label, err := kb.Label(payload)
	if err != nil {
		k.logger.Debugf("skipping symmetric key record at %d: %v", base, err)
		return
	}

	unwrapped, err := unwrap.UnwrapSymmetricKey(k.dbKey, kb.IV[:], ciphertext)
	if err != nil {
		k.logger.Debugf("symmetric key record at %d: %v", base, err)
		return
	}

	if err := k.cache.Put(wire.CacheKeyFrom(kb.Magic, label), unwrapped); err != nil {
		k.logger.Debugf("symmetric key record at %d: %v", base, err)
	}
}

// GenericPasswords returns every decodable generic-password record.
func (k *Keychain) GenericPasswords() []records.GenericPasswordRecord {
	return records.GenericPasswords(k.view, k.index, k.cache, k.logger)
}

// InternetPasswords returns every decodable Internet-password record.
func (k *Keychain) InternetPasswords() []records.InternetPasswordRecord {
	return records.InternetPasswords(k.view, k.index, k.cache, k.logger)
}

// AppleSharePasswords returns every decodable AppleShare-password record.
func (k *Keychain) AppleSharePasswords() []records.AppleShareRecord {
	return records.AppleShares(k.view, k.index, k.cache, k.logger)
}

// X509Certificates returns every decodable X.509 certificate record.
func (k *Keychain) X509Certificates() []records.X509CertificateRecord {
	return records.X509Certificates(k.view, k.index, k.logger)
}

// PublicKeys returns every decodable public-key record.
func (k *Keychain) PublicKeys() []records.PublicKeyRecord {
	return records.PublicKeys(k.view, k.index, k.logger)
}

// PrivateKeys returns every decodable private-key record. Key bodies are
// locked unless the database key has been recovered.
func (k *Keychain) PrivateKeys() []records.PrivateKeyRecord {
	return records.PrivateKeys(k.view, k.index, k.dbKey, k.logger)
}
