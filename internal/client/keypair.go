package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// LoadKeypair 读取 Solana CLI 格式的 keypair 文件（64 字节 JSON 数组）
func LoadKeypair(path string) (sdktypes.Account, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return sdktypes.Account{}, fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return sdktypes.Account{}, fmt.Errorf("read keypair %s: %w", path, err)
	}

	var ints []int
	if err := json.Unmarshal(raw, &ints); err != nil {
		return sdktypes.Account{}, fmt.Errorf("parse keypair %s: %w", path, err)
	}
	key := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return sdktypes.Account{}, fmt.Errorf("parse keypair %s: byte %d out of range", path, i)
		}
		key[i] = byte(v)
	}

	account, err := sdktypes.AccountFromBytes(key)
	if err != nil {
		return sdktypes.Account{}, fmt.Errorf("load keypair %s: %w", path, err)
	}
	return account, nil
}
