package escrow

import (
	"encoding/binary"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

// programExt is the extension name of all derived conditions.
const programExt = "escrow"

var (
	recordTag = []byte("escrow")
	vaultTag  = []byte("vault")
)

// Derivation holds the addresses of one escrow record and its vault.
type Derivation struct {
	Record     barter.Address
	RecordBump uint8
	// Vault is the derived authority owning the vault holding. The vault
	// holding is stored at its address.
	Vault     barter.Condition
	VaultBump uint8
}

// VaultAddress returns the address of the vault holding.
func (d Derivation) VaultAddress() barter.Address {
	return d.Vault.Address()
}

func recordSeeds(maker barter.Address, dealID uint64) [][]byte {
	id := make([]byte, 8)
	binary.LittleEndian.PutUint64(id, dealID)
	return [][]byte{recordTag, maker, id}
}

// Derive computes the record and vault addresses for the deal of maker.
// It fails with ErrAddressCollision only if no bump yields an address
// outside of the key controlled space.
func Derive(maker barter.Address, dealID uint64) (Derivation, error) {
	if err := maker.Validate(); err != nil {
		return Derivation{}, errors.Wrap(err, "maker")
	}
	record, rbump, err := barter.FindProgramAddress(programExt, recordSeeds(maker, dealID)...)
	if err != nil {
		return Derivation{}, wrapCollision(err, "record")
	}
	recordAddr := record.Address()
	vault, vbump, err := barter.FindProgramAddress(programExt, vaultTag, recordAddr)
	if err != nil {
		return Derivation{}, wrapCollision(err, "vault")
	}
	return Derivation{
		Record:     recordAddr,
		RecordBump: rbump,
		Vault:      vault,
		VaultBump:  vbump,
	}, nil
}

// Rederive reproduces the addresses of a stored escrow from its bumps.
func Rederive(e *Escrow) (Derivation, error) {
	record, err := barter.CreateProgramAddress(programExt, e.EscrowBump, recordSeeds(e.Maker, e.DealID)...)
	if err != nil {
		return Derivation{}, wrapCollision(err, "record")
	}
	recordAddr := record.Address()
	vault, err := barter.CreateProgramAddress(programExt, e.VaultBump, vaultTag, recordAddr)
	if err != nil {
		return Derivation{}, wrapCollision(err, "vault")
	}
	return Derivation{
		Record:     recordAddr,
		RecordBump: e.EscrowBump,
		Vault:      vault,
		VaultBump:  e.VaultBump,
	}, nil
}

func wrapCollision(err error, what string) error {
	if errors.ErrDuplicate.Is(err) {
		return errors.Wrapf(ErrAddressCollision, "%s: %s", what, err)
	}
	return errors.Wrap(err, what)
}
