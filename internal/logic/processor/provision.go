package processor

import "safe-transfer-sol/internal/types"

// ProvisionState 目标 TokenAccount 的创建状态
type ProvisionState uint8

const (
	AlreadyProvisioned ProvisionState = iota
	NeedsCreation
)

func (s ProvisionState) String() string {
	if s == NeedsCreation {
		return "NeedsCreation"
	}
	return "AlreadyProvisioned"
}

// CheckProvisioning 根据 owner 判断账户是否需要先创建
func CheckProvisioning(to *types.AccountInfo) ProvisionState {
	if to.IsUninitialized() {
		return NeedsCreation
	}
	return AlreadyProvisioned
}

// provision 仅在 NeedsCreation 时调用 ATA 创建，失败直接返回，不再转账
func provision(creator AssociatedAccountCreator, accts *SafeTransferAccounts) error {
	if CheckProvisioning(accts.To) != NeedsCreation {
		return nil
	}
	return creator.CreateAssociatedTokenAccount(CreateAccounts{
		Funder:        accts.Authority,
		Account:       accts.To,
		Wallet:        accts.Owner,
		Mint:          accts.Mint,
		SystemProgram: accts.SystemProgram,
		TokenProgram:  accts.TokenProgram,
	})
}
