package config

import (
	"errors"
	"fmt"

	"safe-transfer-sol/internal/types"
	"safe-transfer-sol/pkg/logger"
)

type LogConfig struct {
	Format   string `json:"format,default=console"` // 日志格式，支持 "console" 或 "json"
	LogDir   string `json:"log_dir,optional"`       // 日志目录，为空时输出到 stdout
	Level    string `json:"level,default=info"`     // 日志级别：debug / info / warn / error
	Compress bool   `json:"compress,optional"`      // 是否压缩旧日志文件
}

func (c *LogConfig) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.Format,
		LogDir:   c.LogDir,
		Level:    c.Level,
		Compress: c.Compress,
	}
}

// RpcConfig Solana RPC 相关配置
type RpcConfig struct {
	Endpoint          string `json:"endpoint"`                       // RPC 地址，例如 https://api.devnet.solana.com
	TimeoutSec        int    `json:"timeout_sec,default=10"`         // 单次 RPC 请求超时（秒）
	ConfirmTimeoutSec int    `json:"confirm_timeout_sec,default=60"` // 等待交易确认的最长时间（秒）
	PollIntervalMs    int    `json:"poll_interval_ms,default=500"`   // 查询交易状态的间隔（毫秒）
	Commitment        string `json:"commitment,default=confirmed"`   // processed / confirmed / finalized
}

// RedisConfig 账户 owner 缓存，Addr 为空时不启用
type RedisConfig struct {
	Addr        string `json:"addr,optional"`             // Redis 地址
	Password    string `json:"password,optional"`         // Redis 密码
	DB          int    `json:"db,optional"`               // Redis DB
	OwnerTTLSec int    `json:"owner_ttl_sec,default=600"` // owner 缓存 TTL（秒）
}

// Config 命令行工具主配置
type Config struct {
	LogConf     LogConfig   `json:"logger,optional"`
	Rpc         RpcConfig   `json:"rpc"`
	Redis       RedisConfig `json:"redis,optional"`
	ProgramID   string      `json:"program_id"`   // safe_transfer 程序地址
	KeypairPath string      `json:"keypair_path"` // 付费者 keypair（Solana CLI JSON 格式）
}

// Validate 检查必填项与取值范围
func (c *Config) Validate() error {
	if c.Rpc.Endpoint == "" {
		return errors.New("rpc.endpoint is required")
	}
	if _, err := types.TryPubkeyFromBase58(c.ProgramID); err != nil {
		return fmt.Errorf("program_id: %w", err)
	}
	if c.KeypairPath == "" {
		return errors.New("keypair_path is required")
	}
	switch c.Rpc.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return fmt.Errorf("rpc.commitment: unsupported value %q", c.Rpc.Commitment)
	}
	if c.Rpc.TimeoutSec <= 0 || c.Rpc.ConfirmTimeoutSec <= 0 || c.Rpc.PollIntervalMs <= 0 {
		return errors.New("rpc timeouts must be positive")
	}
	if c.Redis.Addr != "" && c.Redis.OwnerTTLSec <= 0 {
		return errors.New("redis.owner_ttl_sec must be positive")
	}
	return nil
}

// MustProgramID 返回已校验的程序地址，需先调用 Validate
func (c *Config) MustProgramID() types.Pubkey {
	return types.PubkeyFromBase58(c.ProgramID)
}
