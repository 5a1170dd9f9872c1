// Package cpi 将处理器依赖的外部能力落到真实的 SPL 指令上：
// 用 solana-go-sdk 构造 ATA / Token / Token-2022 指令，交给宿主的 Invoker 执行。
package cpi

import (
	"safe-transfer-sol/internal/logic/processor"

	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// Invoker 跨程序调用入口，由宿主环境实现
type Invoker interface {
	Invoke(ix sdktypes.Instruction) error
}

// NewCapabilities 基于同一个 Invoker 组装处理器所需的全部能力
func NewCapabilities(inv Invoker) processor.Capabilities {
	return processor.Capabilities{
		Creator:   &AssociatedTokenCreator{Invoker: inv},
		Legacy:    &LegacyTransfer{Invoker: inv},
		Token2022: &Token2022Transfer{Invoker: inv},
	}
}

// Recorder 记录所有 CPI 指令而不执行，用于本地模拟
type Recorder struct {
	Instructions []sdktypes.Instruction
	// FailAt 非 nil 时，第 *FailAt 次（从 0 开始）调用返回 Err
	FailAt *int
	Err    error
}

func (r *Recorder) Invoke(ix sdktypes.Instruction) error {
	if r.FailAt != nil && len(r.Instructions) == *r.FailAt {
		return r.Err
	}
	r.Instructions = append(r.Instructions, ix)
	return nil
}
