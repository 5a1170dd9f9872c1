package consts

// SafeTransferAccountCount safe_transfer 指令要求的账户数量
const SafeTransferAccountCount = 7
