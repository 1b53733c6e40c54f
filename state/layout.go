package state

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// Account data starts with an 8-byte discriminator derived from the account
// name, followed by the borsh-encoded struct.
var (
	PoolAccountDiscriminator     = accountDiscriminator("Pool")
	PositionAccountDiscriminator = accountDiscriminator("Position")
)

func accountDiscriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("account:" + name))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

// DecodePool parses a raw pool account.
func DecodePool(data []byte) (*Pool, error) {
	if err := checkDiscriminator(data, PoolAccountDiscriminator, "pool"); err != nil {
		return nil, err
	}
	pool := new(Pool)
	if err := bin.NewBorshDecoder(data[8:]).Decode(pool); err != nil {
		return nil, fmt.Errorf("decode pool account: %w", err)
	}
	return pool, nil
}

// EncodePool serializes a pool with its discriminator prefix.
func EncodePool(pool *Pool) ([]byte, error) {
	return encodeAccount(PoolAccountDiscriminator, pool)
}

// DecodePosition parses a raw position account.
func DecodePosition(data []byte) (*Position, error) {
	if err := checkDiscriminator(data, PositionAccountDiscriminator, "position"); err != nil {
		return nil, err
	}
	position := new(Position)
	if err := bin.NewBorshDecoder(data[8:]).Decode(position); err != nil {
		return nil, fmt.Errorf("decode position account: %w", err)
	}
	return position, nil
}

// EncodePosition serializes a position with its discriminator prefix.
func EncodePosition(position *Position) ([]byte, error) {
	return encodeAccount(PositionAccountDiscriminator, position)
}

func checkDiscriminator(data []byte, want [8]byte, kind string) error {
	if len(data) < 8 {
		return fmt.Errorf("%s account data too short: %d bytes", kind, len(data))
	}
	var got [8]byte
	copy(got[:], data[:8])
	if got != want {
		return fmt.Errorf("not a %s account: discriminator %x", kind, got)
	}
	return nil
}

func encodeAccount(discriminator [8]byte, account any) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(discriminator[:])
	if err := bin.NewBorshEncoder(&buf).Encode(account); err != nil {
		return nil, fmt.Errorf("encode account: %w", err)
	}
	return buf.Bytes(), nil
}
