package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"safe-transfer-sol/internal/types"
	"safe-transfer-sol/pkg/logger"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/rpc"
	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// ErrConfirmTimeout 在超时前未达到目标 commitment
var ErrConfirmTimeout = errors.New("transaction confirmation timeout")

var commitmentRank = map[rpc.Commitment]int{
	rpc.CommitmentProcessed: 1,
	rpc.CommitmentConfirmed: 2,
	rpc.CommitmentFinalized: 3,
}

// SenderOption 发送与确认参数
type SenderOption struct {
	ProgramID      types.Pubkey
	RequestTimeout time.Duration  // 单次 RPC 超时
	ConfirmTimeout time.Duration  // 等待确认的总时长
	PollInterval   time.Duration  // 状态轮询间隔
	Commitment     rpc.Commitment // 目标确认级别
}

// Sender 构造、签名并发送 safe_transfer 交易
type Sender struct {
	client *client.Client
	opt    SenderOption
}

func NewSender(c *client.Client, opt SenderOption) *Sender {
	return &Sender{client: c, opt: opt}
}

// SafeTransfer 发送一笔 safe_transfer 交易并等待确认，返回交易签名
func (s *Sender) SafeTransfer(
	ctx context.Context,
	payer sdktypes.Account,
	receiver, mint types.Pubkey,
	amount uint64,
	tokenProgram types.Pubkey,
) (string, error) {
	ix, err := NewSafeTransferInstruction(SafeTransferParam{
		ProgramID:    s.opt.ProgramID,
		Payer:        types.PubkeyFromCommon(payer.PublicKey),
		Receiver:     receiver,
		Mint:         mint,
		Amount:       amount,
		TokenProgram: tokenProgram,
	})
	if err != nil {
		return "", err
	}
	return s.Send(ctx, payer, ix)
}

// Send 发送任意指令并等待确认
func (s *Sender) Send(ctx context.Context, payer sdktypes.Account, ixs ...sdktypes.Instruction) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.opt.RequestTimeout)
	latest, err := s.client.GetLatestBlockhash(reqCtx)
	cancel()
	if err != nil {
		return "", fmt.Errorf("GetLatestBlockhash failed: %w", err)
	}

	tx, err := sdktypes.NewTransaction(sdktypes.NewTransactionParam{
		Message: sdktypes.NewMessage(sdktypes.NewMessageParam{
			FeePayer:        payer.PublicKey,
			RecentBlockhash: latest.Blockhash,
			Instructions:    ixs,
		}),
		Signers: []sdktypes.Account{payer},
	})
	if err != nil {
		return "", fmt.Errorf("build transaction: %w", err)
	}

	reqCtx, cancel = context.WithTimeout(ctx, s.opt.RequestTimeout)
	sig, err := s.client.SendTransaction(reqCtx, tx)
	cancel()
	if err != nil {
		return "", fmt.Errorf("SendTransaction failed: %w", err)
	}
	logger.Infof("[sender] 交易已发送: sig=%s blockhash=%s", sig, latest.Blockhash)

	if err := s.waitConfirmed(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

// waitConfirmed 轮询签名状态直到达到目标 commitment、交易失败或超时
func (s *Sender) waitConfirmed(ctx context.Context, sig string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opt.ConfirmTimeout)
	defer cancel()

	target := commitmentRank[s.opt.Commitment]
	ticker := time.NewTicker(s.opt.PollInterval)
	defer ticker.Stop()

	for {
		status, err := s.client.GetSignatureStatus(ctx, sig)
		switch {
		case err != nil:
			logger.Warnf("[sender] GetSignatureStatus 失败: sig=%s err=%v", sig, err)
		case status == nil:
			// 节点尚未看到该交易
		case status.Err != nil:
			return fmt.Errorf("transaction %s failed: %v", sig, status.Err)
		case status.ConfirmationStatus != nil && commitmentRank[*status.ConfirmationStatus] >= target:
			logger.Infof("[sender] 交易已确认: sig=%s slot=%d status=%s", sig, status.Slot, *status.ConfirmationStatus)
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: sig=%s", ErrConfirmTimeout, sig)
		case <-ticker.C:
		}
	}
}
