package processor

import (
	"safe-transfer-sol/internal/apperr"
	"safe-transfer-sol/internal/consts"
	"safe-transfer-sol/internal/types"
)

// TokenProgramVariant 由 token_program 地址推导出的 Token 程序类型，每次调用重新计算
type TokenProgramVariant uint8

const (
	VariantUnknown TokenProgramVariant = iota
	VariantLegacy
	VariantToken2022
)

func (v TokenProgramVariant) String() string {
	switch v {
	case VariantLegacy:
		return "Token"
	case VariantToken2022:
		return "Token2022"
	case VariantUnknown:
		return "Unknown"
	default:
		return "Unknown"
	}
}

// ResolveTokenProgramVariant 比对已知程序地址
func ResolveTokenProgramVariant(programID types.Pubkey) TokenProgramVariant {
	switch programID {
	case consts.TokenProgram:
		return VariantLegacy
	case consts.TokenProgram2022:
		return VariantToken2022
	default:
		return VariantUnknown
	}
}

// transferRoute 某一 Token 程序的转账路径
type transferRoute interface {
	transfer(accts *SafeTransferAccounts, amount uint64) error
}

type legacyRoute struct {
	t LegacyTransferrer
}

func (r legacyRoute) transfer(accts *SafeTransferAccounts, amount uint64) error {
	return r.t.Transfer(accts.From, accts.To, accts.Authority, amount)
}

type token2022Route struct {
	t         Token2022Transferrer
	programID types.Pubkey
}

func (r token2022Route) transfer(accts *SafeTransferAccounts, amount uint64) error {
	return r.t.TransferV2(accts.From, accts.To, accts.Authority, amount, r.programID)
}

// selectRoute 纯函数：variant → 转账路径。VariantUnknown 单独返回错误，不走 default
func selectRoute(variant TokenProgramVariant, programID types.Pubkey, caps Capabilities) (transferRoute, error) {
	switch variant {
	case VariantLegacy:
		return legacyRoute{t: caps.Legacy}, nil
	case VariantToken2022:
		return token2022Route{t: caps.Token2022, programID: programID}, nil
	case VariantUnknown:
		return nil, apperr.InvalidTokenProgram
	}
	return nil, apperr.InvalidTokenProgram
}
