package client

import (
	"fmt"
	"strings"

	"safe-transfer-sol/internal/consts"
	"safe-transfer-sol/internal/logic/processor"
	"safe-transfer-sol/internal/types"

	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// SafeTransferParam 构造 safe_transfer 指令所需参数
type SafeTransferParam struct {
	ProgramID    types.Pubkey // safe_transfer 程序地址
	Payer        types.Pubkey // 付费者兼转出钱包
	Receiver     types.Pubkey // 接收方钱包
	Mint         types.Pubkey
	Amount       uint64
	TokenProgram types.Pubkey // Token 或 Token-2022
}

// NewSafeTransferInstruction 构造 safe_transfer 指令。
// Data: [0]=opcode, [1:9]=amount
// Accounts: [payer, from, receiver, to, mint, system_program, token_program, associated_token_program]
// 最后一个 ATA 程序账户不参与绑定，仅供链上 CPI 使用
func NewSafeTransferInstruction(p SafeTransferParam) (sdktypes.Instruction, error) {
	from, err := FindAssociatedTokenAddress(p.Payer, p.Mint, p.TokenProgram)
	if err != nil {
		return sdktypes.Instruction{}, err
	}
	to, err := FindAssociatedTokenAddress(p.Receiver, p.Mint, p.TokenProgram)
	if err != nil {
		return sdktypes.Instruction{}, err
	}

	payload, err := processor.EncodeSafeTransferParameters(processor.SafeTransferParameters{Amount: p.Amount})
	if err != nil {
		return sdktypes.Instruction{}, err
	}
	data := make([]byte, 0, 1+len(payload))
	data = append(data, byte(processor.OpcodeSafeTransfer))
	data = append(data, payload...)

	return sdktypes.Instruction{
		ProgramID: p.ProgramID.ToCommon(),
		Accounts: []sdktypes.AccountMeta{
			{PubKey: p.Payer.ToCommon(), IsSigner: true, IsWritable: true},
			{PubKey: from.ToCommon(), IsSigner: false, IsWritable: true},
			{PubKey: p.Receiver.ToCommon(), IsSigner: false, IsWritable: false},
			{PubKey: to.ToCommon(), IsSigner: false, IsWritable: true},
			{PubKey: p.Mint.ToCommon(), IsSigner: false, IsWritable: false},
			{PubKey: consts.SystemProgram.ToCommon(), IsSigner: false, IsWritable: false},
			{PubKey: p.TokenProgram.ToCommon(), IsSigner: false, IsWritable: false},
			{PubKey: consts.AssociatedTokenProgram.ToCommon(), IsSigner: false, IsWritable: false},
		},
		Data: data,
	}, nil
}

// ParseTokenProgram 解析命令行中的 Token 程序：legacy / 2022 / base58 地址
func ParseTokenProgram(s string) (types.Pubkey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "legacy", "token", "spl-token":
		return consts.TokenProgram, nil
	case "2022", "token2022", "token-2022":
		return consts.TokenProgram2022, nil
	}
	p, err := types.TryPubkeyFromBase58(s)
	if err != nil {
		return types.Pubkey{}, fmt.Errorf("token program: %w", err)
	}
	return p, nil
}
