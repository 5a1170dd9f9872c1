package processor

import (
	"encoding/binary"
	"errors"
	"testing"

	"safe-transfer-sol/internal/apperr"
	"safe-transfer-sol/internal/consts"
	"safe-transfer-sol/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testProgramID = testKey(0xab)

// call 记录一次外部能力调用
type call struct {
	kind         string
	amount       uint64
	tokenProgram types.Pubkey
	create       CreateAccounts
}

// fakeCaps 同时实现三种外部能力，按调用顺序记录
type fakeCaps struct {
	calls       []call
	createErr   error
	transferErr error
}

func (f *fakeCaps) CreateAssociatedTokenAccount(accounts CreateAccounts) error {
	f.calls = append(f.calls, call{kind: "create", create: accounts})
	return f.createErr
}

func (f *fakeCaps) Transfer(_, _, _ *types.AccountInfo, amount uint64) error {
	f.calls = append(f.calls, call{kind: "legacy", amount: amount})
	return f.transferErr
}

func (f *fakeCaps) TransferV2(_, _, _ *types.AccountInfo, amount uint64, tokenProgram types.Pubkey) error {
	f.calls = append(f.calls, call{kind: "token2022", amount: amount, tokenProgram: tokenProgram})
	return f.transferErr
}

func (f *fakeCaps) kinds() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.kind)
	}
	return out
}

func newTestProcessor() (*Processor, *fakeCaps) {
	f := &fakeCaps{}
	return NewProcessor(Capabilities{Creator: f, Legacy: f, Token2022: f}), f
}

func testKey(b byte) types.Pubkey {
	var p types.Pubkey
	for i := range p {
		p[i] = b
	}
	return p
}

// buildAccounts 构造 7 个账户，toOwner 为 to 的 owner，tokenProgram 为 token_program 地址
func buildAccounts(toOwner, tokenProgram types.Pubkey) []*types.AccountInfo {
	return []*types.AccountInfo{
		{Key: testKey(1), IsSigner: true, IsWritable: true},
		{Key: testKey(2), Owner: tokenProgram, IsWritable: true},
		{Key: testKey(3)},
		{Key: testKey(4), Owner: toOwner, IsWritable: true},
		{Key: testKey(5), Owner: tokenProgram},
		{Key: consts.SystemProgram, Executable: true},
		{Key: tokenProgram, Executable: true},
	}
}

func buildData(opcode byte, amount uint64) []byte {
	data := make([]byte, 9)
	data[0] = opcode
	binary.LittleEndian.PutUint64(data[1:], amount)
	return data
}

// to 未初始化 + legacy Token → 先创建再转账
func TestProcess_CreateThenLegacyTransfer(t *testing.T) {
	p, f := newTestProcessor()
	accounts := buildAccounts(consts.UninitializedOwner, consts.TokenProgram)

	err := p.Process(testProgramID, accounts, buildData(0, 1000))
	require.NoError(t, err)

	assert.Equal(t, []string{"create", "legacy"}, f.kinds(), "应先创建 ATA 再转账")
	assert.Equal(t, uint64(1000), f.calls[1].amount)

	created := f.calls[0].create
	assert.Same(t, accounts[0], created.Funder)
	assert.Same(t, accounts[3], created.Account)
	assert.Same(t, accounts[2], created.Wallet)
	assert.Same(t, accounts[4], created.Mint)
	assert.Same(t, accounts[5], created.SystemProgram)
	assert.Same(t, accounts[6], created.TokenProgram)
}

// to 已存在 + Token-2022，amount=0
func TestProcess_Token2022WithoutCreation(t *testing.T) {
	p, f := newTestProcessor()
	accounts := buildAccounts(consts.TokenProgram2022, consts.TokenProgram2022)

	err := p.Process(testProgramID, accounts, buildData(0, 0))
	require.NoError(t, err)

	require.Equal(t, []string{"token2022"}, f.kinds())
	assert.Equal(t, uint64(0), f.calls[0].amount)
	assert.Equal(t, consts.TokenProgram2022, f.calls[0].tokenProgram, "Token-2022 需显式传入程序 ID")
}

// 非 0 opcode 直接失败，不检查账户与 payload
func TestProcess_UnknownOpcode(t *testing.T) {
	p, f := newTestProcessor()

	for _, opcode := range []byte{1, 2, 0x7f, 0xff} {
		err := p.Process(testProgramID, nil, []byte{opcode, 1, 2, 3})
		assert.ErrorIs(t, err, apperr.InvalidInstruction, "opcode=%d", opcode)

		err = p.Process(testProgramID, buildAccounts(consts.TokenProgram, consts.TokenProgram), buildData(opcode, 5))
		assert.ErrorIs(t, err, apperr.InvalidInstruction, "opcode=%d", opcode)
	}
	assert.Empty(t, f.calls)
}

// 空指令
func TestProcess_EmptyInstruction(t *testing.T) {
	p, f := newTestProcessor()

	assert.ErrorIs(t, p.Process(testProgramID, nil, nil), apperr.InvalidInstruction)
	assert.ErrorIs(t, p.Process(testProgramID, nil, []byte{}), apperr.InvalidInstruction)
	assert.Empty(t, f.calls)
}

// 账户不足 7 个
func TestProcess_NotEnoughAccounts(t *testing.T) {
	p, f := newTestProcessor()
	accounts := buildAccounts(consts.UninitializedOwner, consts.TokenProgram)

	for n := 0; n < len(accounts); n++ {
		err := p.Process(testProgramID, accounts[:n], buildData(0, 1))
		assert.ErrorIs(t, err, apperr.InvalidAccount, "accounts=%d", n)
	}
	assert.Empty(t, f.calls)
}

// 多余账户被忽略，只读取前 7 个
func TestProcess_ExtraAccountsIgnored(t *testing.T) {
	p, f := newTestProcessor()
	accounts := buildAccounts(consts.TokenProgram, consts.TokenProgram)
	accounts = append(accounts, &types.AccountInfo{Key: consts.AssociatedTokenProgram}, nil)

	require.NoError(t, p.Process(testProgramID, accounts, buildData(0, 7)))
	assert.Equal(t, []string{"legacy"}, f.kinds())
}

func TestProcess_NilRoleAccount(t *testing.T) {
	p, f := newTestProcessor()
	accounts := buildAccounts(consts.TokenProgram, consts.TokenProgram)
	accounts[3] = nil

	assert.ErrorIs(t, p.Process(testProgramID, accounts, buildData(0, 7)), apperr.InvalidAccount)
	assert.Empty(t, f.calls)
}

// payload 长度不为 8
func TestProcess_BadPayloadLength(t *testing.T) {
	p, f := newTestProcessor()
	accounts := buildAccounts(consts.UninitializedOwner, consts.TokenProgram)

	for _, n := range []int{0, 1, 5, 7, 9, 16} {
		data := append([]byte{0}, make([]byte, n)...)
		err := p.Process(testProgramID, accounts, data)
		assert.ErrorIs(t, err, apperr.InvalidSafeTransferParameters, "payload=%d", n)
	}
	assert.Empty(t, f.calls, "参数错误时不应调用任何外部能力")
}

// 未知 Token 程序，两种转账都不调用，也不创建账户
func TestProcess_UnknownTokenProgram(t *testing.T) {
	p, f := newTestProcessor()
	bogus := testKey(9)

	err := p.Process(testProgramID, buildAccounts(consts.UninitializedOwner, bogus), buildData(0, 1000))
	assert.ErrorIs(t, err, apperr.InvalidTokenProgram)
	assert.Empty(t, f.calls)

	err = p.Process(testProgramID, buildAccounts(bogus, bogus), buildData(0, 1000))
	assert.ErrorIs(t, err, apperr.InvalidTokenProgram)
	assert.Empty(t, f.calls)
}

// 只有 owner 为空时才创建
func TestProcess_ProvisionOnlyWhenUninitialized(t *testing.T) {
	owners := map[string]types.Pubkey{
		"token":     consts.TokenProgram,
		"token2022": consts.TokenProgram2022,
		"other":     testKey(8),
	}
	for name, owner := range owners {
		t.Run(name, func(t *testing.T) {
			p, f := newTestProcessor()
			require.NoError(t, p.Process(testProgramID, buildAccounts(owner, consts.TokenProgram), buildData(0, 3)))
			assert.Equal(t, []string{"legacy"}, f.kinds())
		})
	}
}

// 创建失败则不转账，错误原样返回
func TestProcess_CreateFailureAborts(t *testing.T) {
	p, f := newTestProcessor()
	createErr := errors.New("ata: account already in use")
	f.createErr = createErr

	err := p.Process(testProgramID, buildAccounts(consts.UninitializedOwner, consts.TokenProgram2022), buildData(0, 10))
	assert.Same(t, createErr, err, "外部错误不应被包装")
	assert.Equal(t, []string{"create"}, f.kinds())
}

// 转账失败，结果即为该错误
func TestProcess_TransferFailurePropagates(t *testing.T) {
	p, f := newTestProcessor()
	transferErr := errors.New("token: insufficient funds")
	f.transferErr = transferErr

	err := p.Process(testProgramID, buildAccounts(consts.TokenProgram, consts.TokenProgram), buildData(0, 10))
	assert.Same(t, transferErr, err)
	assert.Equal(t, []string{"legacy"}, f.kinds())
}
