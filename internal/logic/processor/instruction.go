package processor

import "safe-transfer-sol/internal/apperr"

// Opcode 指令首字节，决定指令类型
type Opcode uint8

const (
	OpcodeSafeTransfer Opcode = 0
)

func (o Opcode) String() string {
	switch o {
	case OpcodeSafeTransfer:
		return "SafeTransfer"
	default:
		return "Unknown"
	}
}

// DecodeInstruction 拆分指令数据为 opcode 与剩余 payload，不解析 payload
func DecodeInstruction(data []byte) (Opcode, []byte, error) {
	if len(data) == 0 {
		return 0, nil, apperr.InvalidInstruction
	}
	return Opcode(data[0]), data[1:], nil
}
