package client

import (
	"fmt"

	"safe-transfer-sol/internal/consts"
	"safe-transfer-sol/internal/types"

	"github.com/blocto/solana-go-sdk/common"
)

// FindAssociatedTokenAddress 推导 wallet 在指定 Token 程序下的 ATA 地址。
// seeds = [wallet, token_program, mint]，program = Associated Token Account 程序
func FindAssociatedTokenAddress(wallet, mint, tokenProgram types.Pubkey) (types.Pubkey, error) {
	addr, _, err := common.FindProgramAddress(
		[][]byte{wallet[:], tokenProgram[:], mint[:]},
		consts.AssociatedTokenProgram.ToCommon(),
	)
	if err != nil {
		return types.Pubkey{}, fmt.Errorf("find associated token address: wallet=%s mint=%s: %w", wallet, mint, err)
	}
	return types.PubkeyFromCommon(addr), nil
}
