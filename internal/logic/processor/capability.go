package processor

import "safe-transfer-sol/internal/types"

// CreateAccounts 创建关联 TokenAccount 所需的账户
type CreateAccounts struct {
	Funder        *types.AccountInfo // 支付租金
	Account       *types.AccountInfo // 待创建的 TokenAccount
	Wallet        *types.AccountInfo // TokenAccount 的 owner
	Mint          *types.AccountInfo
	SystemProgram *types.AccountInfo
	TokenProgram  *types.AccountInfo
}

// AssociatedAccountCreator 外部 ATA 创建能力
type AssociatedAccountCreator interface {
	CreateAssociatedTokenAccount(accounts CreateAccounts) error
}

// LegacyTransferrer 外部 SPL Token 转账能力
type LegacyTransferrer interface {
	Transfer(from, to, authority *types.AccountInfo, amount uint64) error
}

// Token2022Transferrer 外部 Token-2022 转账能力。
// 需要显式传入程序 ID，同一接口可服务于多个不兼容的部署
type Token2022Transferrer interface {
	TransferV2(from, to, authority *types.AccountInfo, amount uint64, tokenProgram types.Pubkey) error
}

// Capabilities 处理器依赖的全部外部能力
type Capabilities struct {
	Creator   AssociatedAccountCreator
	Legacy    LegacyTransferrer
	Token2022 Token2022Transferrer
}
