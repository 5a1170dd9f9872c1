package processor

import (
	"safe-transfer-sol/internal/apperr"
	"safe-transfer-sol/internal/consts"
	"safe-transfer-sol/internal/types"
)

// SafeTransferAccounts safe_transfer 的账户角色。
// 只按位置绑定，不校验账户内容：mint、token 账户等是否合法由下游 Token / ATA 程序负责。
type SafeTransferAccounts struct {
	Authority     *types.AccountInfo // 付费者兼转出授权人（signer）
	From          *types.AccountInfo // 转出 TokenAccount
	Owner         *types.AccountInfo // 接收方钱包
	To            *types.AccountInfo // 接收方 TokenAccount，可能尚未创建
	Mint          *types.AccountInfo // Token mint
	SystemProgram *types.AccountInfo
	TokenProgram  *types.AccountInfo // 决定走 Token 还是 Token-2022
}

// BindSafeTransferAccounts 按固定顺序绑定账户角色。
// Layout: [authority, from, owner, to, mint, system_program, token_program]，多余账户忽略
func BindSafeTransferAccounts(accounts []*types.AccountInfo) (*SafeTransferAccounts, error) {
	if len(accounts) < consts.SafeTransferAccountCount {
		return nil, apperr.InvalidAccount
	}
	for _, acc := range accounts[:consts.SafeTransferAccountCount] {
		if acc == nil {
			return nil, apperr.InvalidAccount
		}
	}
	return &SafeTransferAccounts{
		Authority:     accounts[0],
		From:          accounts[1],
		Owner:         accounts[2],
		To:            accounts[3],
		Mint:          accounts[4],
		SystemProgram: accounts[5],
		TokenProgram:  accounts[6],
	}, nil
}
