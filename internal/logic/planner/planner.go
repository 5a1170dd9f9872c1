// Package planner 在本地用真实账户状态跑一遍 safe_transfer 处理器，
// 记录将要发出的 CPI，发送交易前即可发现链上会返回的错误。
package planner

import (
	"context"
	"fmt"

	"safe-transfer-sol/internal/client"
	"safe-transfer-sol/internal/logic/cpi"
	"safe-transfer-sol/internal/logic/processor"
	"safe-transfer-sol/internal/types"
	"safe-transfer-sol/pkg/logger"

	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// Plan 一次 safe_transfer 的本地模拟结果
type Plan struct {
	Instruction   sdktypes.Instruction          // 待发送的 safe_transfer 指令
	Accounts      []*types.AccountInfo          // 按指令顺序读取到的账户
	Variant       processor.TokenProgramVariant // 由 token_program 推导
	NeedsCreation bool                          // 是否会先创建接收方 ATA
	Invocations   []sdktypes.Instruction        // 处理器发出的 CPI，按顺序
}

// 指令账户中接收方 ATA 的位置
const destinationIndex = 3

type Planner struct {
	fetcher client.AccountFetcher
}

func NewPlanner(fetcher client.AccountFetcher) *Planner {
	return &Planner{fetcher: fetcher}
}

// Plan 构造指令并模拟执行。处理器返回的错误原样透传
func (p *Planner) Plan(ctx context.Context, param client.SafeTransferParam) (*Plan, error) {
	ix, err := client.NewSafeTransferInstruction(param)
	if err != nil {
		return nil, err
	}

	keys := make([]types.Pubkey, len(ix.Accounts))
	for i, meta := range ix.Accounts {
		keys[i] = types.PubkeyFromCommon(meta.PubKey)
	}
	accounts, err := p.fetchAccounts(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch accounts: %w", err)
	}
	for i, meta := range ix.Accounts {
		accounts[i].IsSigner = meta.IsSigner
		accounts[i].IsWritable = meta.IsWritable
	}

	rec := &cpi.Recorder{}
	proc := processor.NewProcessor(cpi.NewCapabilities(rec))
	if err := proc.Process(param.ProgramID, accounts, ix.Data); err != nil {
		return nil, err
	}

	plan := &Plan{
		Instruction:   ix,
		Accounts:      accounts,
		Variant:       processor.ResolveTokenProgramVariant(param.TokenProgram),
		NeedsCreation: processor.CheckProvisioning(accounts[destinationIndex]) == processor.NeedsCreation,
		Invocations:   rec.Instructions,
	}
	logger.Infof("[planner] receiver=%s mint=%s amount=%d variant=%s needsCreation=%v cpi=%d",
		param.Receiver, param.Mint, param.Amount, plan.Variant, plan.NeedsCreation, len(plan.Invocations))
	return plan, nil
}

// uncacher 带缓存的 fetcher 可提供不经缓存的读取
type uncacher interface {
	Uncached() client.AccountFetcher
}

// fetchAccounts 读取指令账户。目标 ATA 可能已被关闭而 owner 归零，
// 缓存里的 owner 不可信，始终直接读取
func (p *Planner) fetchAccounts(ctx context.Context, keys []types.Pubkey) ([]*types.AccountInfo, error) {
	var accounts []*types.AccountInfo
	if u, ok := p.fetcher.(uncacher); ok && len(keys) > destinationIndex {
		rest := make([]types.Pubkey, 0, len(keys)-1)
		rest = append(rest, keys[:destinationIndex]...)
		rest = append(rest, keys[destinationIndex+1:]...)
		fetched, err := p.fetcher.FetchAccounts(ctx, rest)
		if err != nil {
			return nil, err
		}
		if len(fetched) != len(rest) {
			return nil, fmt.Errorf("got %d want %d", len(fetched), len(rest))
		}
		dest, err := u.Uncached().FetchAccounts(ctx, keys[destinationIndex:destinationIndex+1])
		if err != nil {
			return nil, err
		}
		if len(dest) != 1 {
			return nil, fmt.Errorf("destination: got %d want 1", len(dest))
		}
		accounts = make([]*types.AccountInfo, 0, len(keys))
		accounts = append(accounts, fetched[:destinationIndex]...)
		accounts = append(accounts, dest[0])
		accounts = append(accounts, fetched[destinationIndex:]...)
	} else {
		fetched, err := p.fetcher.FetchAccounts(ctx, keys)
		if err != nil {
			return nil, err
		}
		accounts = fetched
	}

	if len(accounts) != len(keys) {
		return nil, fmt.Errorf("got %d want %d", len(accounts), len(keys))
	}
	for i, acc := range accounts {
		if acc == nil {
			return nil, fmt.Errorf("account %s missing from result", keys[i])
		}
	}
	return accounts, nil
}
