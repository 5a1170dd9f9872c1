package types

// AccountInfo 表示指令执行时由宿主传入的一个账户视图。
// 处理器只读取 Key / Owner，其余字段原样交给下游 CPI。
type AccountInfo struct {
	Key        Pubkey // 账户地址
	Owner      Pubkey // 当前所属程序，未初始化时为全 0
	Lamports   uint64 // 余额（lamports）
	Data       []byte // 账户数据
	IsSigner   bool   // 是否为签名者
	IsWritable bool   // 是否可写
	Executable bool   // 是否为可执行程序账户
}

// IsUninitialized 判断账户是否尚未被任何程序初始化
func (a *AccountInfo) IsUninitialized() bool {
	return a.Owner.IsZero()
}
