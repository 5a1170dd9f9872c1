package client

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"safe-transfer-sol/internal/cache"
	"safe-transfer-sol/internal/consts"
	"safe-transfer-sol/internal/types"

	"github.com/alicebob/miniredis/v2"
	"github.com/blocto/solana-go-sdk/common"
	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(b byte) types.Pubkey {
	var p types.Pubkey
	for i := range p {
		p[i] = b
	}
	return p
}

func TestFindAssociatedTokenAddress(t *testing.T) {
	wallet := consts.AssociatedTokenProgram // 任意合法公钥
	mint := types.PubkeyFromBase58(consts.TokenProgram2022Str)

	legacy, err := FindAssociatedTokenAddress(wallet, mint, consts.TokenProgram)
	require.NoError(t, err)

	// 与 sdk 的 legacy 推导结果一致
	expected, _, err := common.FindAssociatedTokenAddress(wallet.ToCommon(), mint.ToCommon())
	require.NoError(t, err)
	assert.Equal(t, types.PubkeyFromCommon(expected), legacy)

	v2, err := FindAssociatedTokenAddress(wallet, mint, consts.TokenProgram2022)
	require.NoError(t, err)
	assert.NotEqual(t, legacy, v2, "不同 Token 程序下 ATA 地址应不同")
}

func TestNewSafeTransferInstruction(t *testing.T) {
	param := SafeTransferParam{
		ProgramID:    key(0xab),
		Payer:        key(1),
		Receiver:     key(2),
		Mint:         key(3),
		Amount:       1_000_000_000,
		TokenProgram: consts.TokenProgram2022,
	}
	ix, err := NewSafeTransferInstruction(param)
	require.NoError(t, err)

	assert.Equal(t, key(0xab).ToCommon(), ix.ProgramID)
	require.Len(t, ix.Data, 9)
	assert.Equal(t, byte(0), ix.Data[0])
	assert.Equal(t, uint64(1_000_000_000), binary.LittleEndian.Uint64(ix.Data[1:]))

	from, err := FindAssociatedTokenAddress(param.Payer, param.Mint, param.TokenProgram)
	require.NoError(t, err)
	to, err := FindAssociatedTokenAddress(param.Receiver, param.Mint, param.TokenProgram)
	require.NoError(t, err)

	require.Len(t, ix.Accounts, 8)
	expected := []types.Pubkey{
		param.Payer, from, param.Receiver, to, param.Mint,
		consts.SystemProgram, consts.TokenProgram2022, consts.AssociatedTokenProgram,
	}
	for i, k := range expected {
		assert.Equal(t, k.ToCommon(), ix.Accounts[i].PubKey, "account %d", i)
	}
	assert.True(t, ix.Accounts[0].IsSigner)
	assert.True(t, ix.Accounts[1].IsWritable)
	assert.True(t, ix.Accounts[3].IsWritable)
	assert.NotEqual(t, from, to, "接收方 ATA 应由 receiver 推导")
}

func TestParseTokenProgram(t *testing.T) {
	cases := map[string]types.Pubkey{
		"":                         consts.TokenProgram,
		"legacy":                   consts.TokenProgram,
		"2022":                     consts.TokenProgram2022,
		"Token2022":                consts.TokenProgram2022,
		consts.TokenProgram2022Str: consts.TokenProgram2022,
	}
	for in, want := range cases {
		got, err := ParseTokenProgram(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseTokenProgram("bogus")
	assert.Error(t, err)
}

func TestLoadKeypair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "id.json")
	account := sdktypes.NewAccount()

	ints := make([]int, len(account.PrivateKey))
	for i, b := range account.PrivateKey {
		ints[i] = int(b)
	}
	raw, err := json.Marshal(ints)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	loaded, err := LoadKeypair(path)
	require.NoError(t, err)
	assert.Equal(t, account.PublicKey, loaded.PublicKey)

	require.NoError(t, os.WriteFile(path, []byte(`[1,2,300]`), 0o600))
	_, err = LoadKeypair(path)
	assert.Error(t, err, "超出 byte 范围应报错")

	_, err = LoadKeypair(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

// stubFetcher 记录被请求的账户
type stubFetcher struct {
	requested [][]types.Pubkey
	owners    map[types.Pubkey]types.Pubkey
	err       error
}

func (s *stubFetcher) FetchAccounts(_ context.Context, keys []types.Pubkey) ([]*types.AccountInfo, error) {
	s.requested = append(s.requested, keys)
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*types.AccountInfo, len(keys))
	for i, k := range keys {
		out[i] = &types.AccountInfo{Key: k, Owner: s.owners[k]}
	}
	return out, nil
}

func TestCachedAccountFetcher(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	next := &stubFetcher{owners: map[types.Pubkey]types.Pubkey{
		key(1): consts.TokenProgram,
		// key(2) 未初始化
	}}
	f := NewCachedAccountFetcher(next, cache.NewOwnerCache(rdb, time.Minute))
	ctx := context.Background()

	infos, err := f.FetchAccounts(ctx, []types.Pubkey{key(1), key(2)})
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, consts.TokenProgram, infos[0].Owner)
	assert.True(t, infos[1].IsUninitialized())

	// 第二次：key(1) 命中缓存，key(2) 为空 owner 不缓存，需重新查询
	infos, err = f.FetchAccounts(ctx, []types.Pubkey{key(1), key(2)})
	require.NoError(t, err)
	assert.Equal(t, consts.TokenProgram, infos[0].Owner)
	require.Len(t, next.requested, 2)
	assert.Equal(t, []types.Pubkey{key(2)}, next.requested[1])

	require.NoError(t, f.Invalidate(ctx, key(1)))
	_, err = f.FetchAccounts(ctx, []types.Pubkey{key(1)})
	require.NoError(t, err)
	assert.Equal(t, []types.Pubkey{key(1)}, next.requested[2])
}

func TestCachedAccountFetcherPropagatesError(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	rpcErr := errors.New("rpc down")
	f := NewCachedAccountFetcher(&stubFetcher{err: rpcErr}, cache.NewOwnerCache(rdb, time.Minute))

	_, err := f.FetchAccounts(context.Background(), []types.Pubkey{key(1)})
	assert.ErrorIs(t, err, rpcErr)
}

// shortFetcher 返回的账户数少于请求数
type shortFetcher struct{}

func (shortFetcher) FetchAccounts(_ context.Context, keys []types.Pubkey) ([]*types.AccountInfo, error) {
	return []*types.AccountInfo{{Key: keys[0]}}, nil
}

func TestCachedAccountFetcherLengthMismatch(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := NewCachedAccountFetcher(shortFetcher{}, cache.NewOwnerCache(rdb, time.Minute))
	infos, err := f.FetchAccounts(context.Background(), []types.Pubkey{key(1), key(2)})
	assert.Error(t, err, "下游返回数量不一致时应报错而不是 panic")
	assert.Nil(t, infos)
}

func TestCachedAccountFetcherUncached(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	next := &stubFetcher{owners: map[types.Pubkey]types.Pubkey{key(1): consts.TokenProgram}}
	f := NewCachedAccountFetcher(next, cache.NewOwnerCache(rdb, time.Minute))
	assert.Same(t, next, f.Uncached())
}
