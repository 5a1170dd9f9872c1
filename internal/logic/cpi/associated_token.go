package cpi

import (
	"safe-transfer-sol/internal/logic/processor"

	"github.com/blocto/solana-go-sdk/common"
	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// ATA 程序 Create 指令的 discriminator
const associatedTokenInstructionCreate byte = 0

// AssociatedTokenCreator 通过 Associated Token Account 程序创建接收方 TokenAccount
type AssociatedTokenCreator struct {
	Invoker Invoker
}

// CreateAssociatedTokenAccount
// Data: [0]=Create
// accounts = [funder(signer,writable), ata(writable), wallet, mint, system_program, token_program]
// 只使用传入的六个账户，按位置组装
func (c *AssociatedTokenCreator) CreateAssociatedTokenAccount(accts processor.CreateAccounts) error {
	ix := sdktypes.Instruction{
		ProgramID: common.SPLAssociatedTokenAccountProgramID,
		Accounts: []sdktypes.AccountMeta{
			{PubKey: accts.Funder.Key.ToCommon(), IsSigner: true, IsWritable: true},
			{PubKey: accts.Account.Key.ToCommon(), IsSigner: false, IsWritable: true},
			{PubKey: accts.Wallet.Key.ToCommon(), IsSigner: false, IsWritable: false},
			{PubKey: accts.Mint.Key.ToCommon(), IsSigner: false, IsWritable: false},
			{PubKey: accts.SystemProgram.Key.ToCommon(), IsSigner: false, IsWritable: false},
			{PubKey: accts.TokenProgram.Key.ToCommon(), IsSigner: false, IsWritable: false},
		},
		Data: []byte{associatedTokenInstructionCreate},
	}
	return c.Invoker.Invoke(ix)
}
