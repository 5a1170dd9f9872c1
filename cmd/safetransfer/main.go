package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"syscall"

	"safe-transfer-sol/internal/apperr"
	"safe-transfer-sol/internal/client"
	"safe-transfer-sol/internal/config"
	"safe-transfer-sol/internal/logic/planner"
	"safe-transfer-sol/internal/svc"
	"safe-transfer-sol/internal/types"
	"safe-transfer-sol/pkg/logger"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
)

var (
	configFile   = flag.String("f", "etc/safetransfer.yaml", "the config file")
	mode         = flag.String("mode", "plan", "plan | send")
	receiver     = flag.String("receiver", "", "receiver wallet (base58)")
	mint         = flag.String("mint", "", "token mint (base58)")
	amount       = flag.String("amount", "", "amount in base units (u64)")
	tokenProgram = flag.String("token-program", "legacy", "legacy | 2022 | <program id>")
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			logx.Errorf("panic: %+v\nstack: %s", r, debug.Stack())
			os.Exit(2)
		}
	}()

	flag.Parse()

	var c config.Config
	conf.MustLoad(*configFile, &c)
	if err := c.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config %s: %v\n", *configFile, err)
		os.Exit(1)
	}
	if err := logger.Init(c.LogConf.ToLogOption()); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(c); err != nil {
		logger.Errorf("[safetransfer] %s", describeError(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(c config.Config) error {
	param, err := parseArgs(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serviceContext, err := svc.NewServiceContext(c)
	if err != nil {
		return err
	}
	defer serviceContext.Close()
	param.Payer = types.PubkeyFromCommon(serviceContext.Payer.PublicKey)

	plan, err := serviceContext.Planner.Plan(ctx, param)
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}
	printPlan(plan)

	if *mode == "plan" {
		return nil
	}

	sig, err := serviceContext.Sender.Send(ctx, serviceContext.Payer, plan.Instruction)
	if err != nil {
		// 链上状态可能已变化，下次重新读取
		keys := make([]types.Pubkey, len(plan.Accounts))
		for i, acc := range plan.Accounts {
			keys[i] = acc.Key
		}
		serviceContext.InvalidateOwners(context.Background(), keys...)
		return fmt.Errorf("send: %w", err)
	}
	logger.Infof("[safetransfer] confirmed, signature=%s", sig)
	fmt.Println(sig)
	return nil
}

// describeError 处理器错误附带链上一致的错误码
func describeError(err error) string {
	if code, ok := apperr.CodeOf(err); ok {
		return fmt.Sprintf("%v (code=%d)", err, code)
	}
	return err.Error()
}

func parseArgs(c config.Config) (client.SafeTransferParam, error) {
	var param client.SafeTransferParam
	if *mode != "plan" && *mode != "send" {
		return param, fmt.Errorf("unknown mode %q", *mode)
	}

	recv, err := types.TryPubkeyFromBase58(*receiver)
	if err != nil {
		return param, fmt.Errorf("receiver: %w", err)
	}
	m, err := types.TryPubkeyFromBase58(*mint)
	if err != nil {
		return param, fmt.Errorf("mint: %w", err)
	}
	amt, err := strconv.ParseUint(*amount, 10, 64)
	if err != nil {
		return param, fmt.Errorf("amount: %w", err)
	}
	tp, err := client.ParseTokenProgram(*tokenProgram)
	if err != nil {
		return param, err
	}

	param.ProgramID = c.MustProgramID()
	param.Receiver = recv
	param.Mint = m
	param.Amount = amt
	param.TokenProgram = tp
	return param, nil
}

func printPlan(plan *planner.Plan) {
	fmt.Printf("variant:        %s\n", plan.Variant)
	fmt.Printf("needs creation: %v\n", plan.NeedsCreation)
	for i, ix := range plan.Invocations {
		fmt.Printf("cpi[%d]:         program=%s accounts=%d data=%x\n", i, ix.ProgramID, len(ix.Accounts), ix.Data)
	}
}
