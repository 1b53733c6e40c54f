package cpamm

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// ProgramID is the on-chain constant-product AMM program this engine
// mirrors.
var ProgramID = solana.MustPublicKeyFromBase58("cpamdpZCGKUy5JxQXB4dcpGPiikHawvSWAd6mEn1sGG")

func DerivePoolAuthority() solana.PublicKey {
	pda, _, _ := solana.FindProgramAddress(
		[][]byte{
			[]byte("pool_authority"),
		},
		ProgramID,
	)
	return pda
}

func DerivePositionAddress(positionNft solana.PublicKey) solana.PublicKey {
	pda, _, _ := solana.FindProgramAddress(
		[][]byte{
			[]byte("position"),
			positionNft.Bytes(),
		},
		ProgramID,
	)
	return pda
}

func DerivePositionNftAccount(positionNftMint solana.PublicKey) solana.PublicKey {
	pda, _, _ := solana.FindProgramAddress(
		[][]byte{
			[]byte("position_nft_account"),
			positionNftMint.Bytes(),
		},
		ProgramID,
	)
	return pda
}

func DeriveTokenVaultAddress(tokenMint, pool solana.PublicKey) solana.PublicKey {
	pda, _, _ := solana.FindProgramAddress(
		[][]byte{
			[]byte("token_vault"),
			tokenMint.Bytes(),
			pool.Bytes(),
		},
		ProgramID,
	)
	return pda
}

// DeriveRewardVaultAddress is seeded by the pool and the reward slot index.
func DeriveRewardVaultAddress(pool solana.PublicKey, rewardIndex uint64) solana.PublicKey {
	var indexBytes [8]byte
	binary.LittleEndian.PutUint64(indexBytes[:], rewardIndex)
	pda, _, _ := solana.FindProgramAddress(
		[][]byte{
			pool.Bytes(),
			indexBytes[:],
		},
		ProgramID,
	)
	return pda
}
