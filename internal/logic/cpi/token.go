package cpi

import (
	"safe-transfer-sol/internal/types"

	"github.com/blocto/solana-go-sdk/common"
	sdktoken "github.com/blocto/solana-go-sdk/program/token"
	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// LegacyTransfer SPL Token Transfer
type LegacyTransfer struct {
	Invoker Invoker
}

// Transfer: [0]=instr(3), [1:9]=amount
// accounts = [from(writable), to(writable), authority(signer)]
func (t *LegacyTransfer) Transfer(from, to, authority *types.AccountInfo, amount uint64) error {
	return t.Invoker.Invoke(buildTransfer(from, to, authority, amount))
}

// Token2022Transfer Token-2022 Transfer，程序 ID 由调用方指定
type Token2022Transfer struct {
	Invoker Invoker
}

func (t *Token2022Transfer) TransferV2(from, to, authority *types.AccountInfo, amount uint64, tokenProgram types.Pubkey) error {
	ix := buildTransfer(from, to, authority, amount)
	ix.ProgramID = tokenProgram.ToCommon()
	return t.Invoker.Invoke(ix)
}

func buildTransfer(from, to, authority *types.AccountInfo, amount uint64) sdktypes.Instruction {
	return sdktoken.Transfer(sdktoken.TransferParam{
		From:    from.Key.ToCommon(),
		To:      to.Key.ToCommon(),
		Auth:    authority.Key.ToCommon(),
		Signers: []common.PublicKey{},
		Amount:  amount,
	})
}
