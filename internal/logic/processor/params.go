package processor

import (
	"fmt"

	"safe-transfer-sol/internal/apperr"
	"safe-transfer-sol/pkg/logger"

	"github.com/near/borsh-go"
)

// SafeTransferParametersSize borsh 编码后的固定长度（u64）
const SafeTransferParametersSize = 8

// SafeTransferParameters safe_transfer 的指令参数
type SafeTransferParameters struct {
	Amount uint64 // 转账数量（最小单位）
}

// DecodeSafeTransferParameters 解码 payload，长度必须恰好为 8 字节
func DecodeSafeTransferParameters(payload []byte) (params *SafeTransferParameters, err error) {
	if len(payload) != SafeTransferParametersSize {
		return nil, apperr.InvalidSafeTransferParameters
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[safe_transfer][panic] borsh.Deserialize panic: %v, payload=%x", r, payload)
			params, err = nil, apperr.InvalidSafeTransferParameters
		}
	}()

	var p SafeTransferParameters
	if err := borsh.Deserialize(&p, payload); err != nil {
		return nil, apperr.InvalidSafeTransferParameters
	}
	return &p, nil
}

// EncodeSafeTransferParameters 编码参数，供客户端构造指令
func EncodeSafeTransferParameters(params SafeTransferParameters) ([]byte, error) {
	data, err := borsh.Serialize(params)
	if err != nil {
		return nil, fmt.Errorf("serialize SafeTransferParameters: %w", err)
	}
	return data, nil
}
