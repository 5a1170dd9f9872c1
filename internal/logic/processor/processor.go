// Package processor 实现 safe_transfer 指令的解析与分发：
// 校验账户、解码参数、按需创建接收方 ATA，再路由到 Token 或 Token-2022 转账。
// 任一步骤失败即整体失败，原子性由宿主执行环境保证。
package processor

import (
	"errors"

	"safe-transfer-sol/internal/apperr"
	"safe-transfer-sol/internal/types"
	"safe-transfer-sol/pkg/logger"
)

// Processor 无状态，可被重复调用
type Processor struct {
	caps Capabilities
}

func NewProcessor(caps Capabilities) *Processor {
	return &Processor{caps: caps}
}

// Process 指令总入口。返回的错误不做任何包装：
// AppError 原样返回，外部能力的错误也原样透传
func (p *Processor) Process(programID types.Pubkey, accounts []*types.AccountInfo, data []byte) error {
	err := p.dispatch(programID, accounts, data)
	if err != nil {
		var appErr apperr.AppError
		if errors.As(err, &appErr) {
			logger.Errorf("[safe_transfer] Error: %s", appErr)
		} else {
			logger.Warnf("[safe_transfer] cpi failed: %v", err)
		}
	}
	return err
}

func (p *Processor) dispatch(programID types.Pubkey, accounts []*types.AccountInfo, data []byte) error {
	opcode, payload, err := DecodeInstruction(data)
	if err != nil {
		return err
	}

	switch opcode {
	case OpcodeSafeTransfer:
		return p.safeTransfer(programID, accounts, payload)
	default:
		return apperr.InvalidInstruction
	}
}

func (p *Processor) safeTransfer(programID types.Pubkey, accounts []*types.AccountInfo, payload []byte) error {
	logger.Debugf("[safe_transfer] program=%s accounts=%d", programID, len(accounts))

	accts, err := BindSafeTransferAccounts(accounts)
	if err != nil {
		return err
	}

	params, err := DecodeSafeTransferParameters(payload)
	if err != nil {
		return err
	}

	// 未知 Token 程序在任何状态变更前失败
	tokenProgram := accts.TokenProgram.Key
	variant := ResolveTokenProgramVariant(tokenProgram)
	route, err := selectRoute(variant, tokenProgram, p.caps)
	if err != nil {
		return err
	}

	if err := provision(p.caps.Creator, accts); err != nil {
		return err
	}

	return route.transfer(accts, params.Amount)
}
