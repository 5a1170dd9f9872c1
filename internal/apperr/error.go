// Package apperr 定义 safe_transfer 程序的错误集合。
// 错误码与链上 Custom(code) 一一对应，顺序不可调整。
package apperr

import (
	"errors"
	"fmt"
)

// AppError 为封闭的错误类型，除错误码外不携带任何信息
type AppError uint32

const (
	InvalidInstruction            AppError = iota // 空指令或未知 opcode
	InvalidAccount                                // 账户数量不足
	MathOverflow                                  // 保留：算术溢出
	InvalidOffset                                 // 保留：缓冲区偏移非法
	InvalidSafeTransferParameters                 // 参数无法解码为 SafeTransferParameters
	TypeCastFailed                                // 保留：类型转换失败
	InvalidTokenProgram                           // token_program 不是受支持的 Token 程序
)

var messages = [...]string{
	InvalidInstruction:            "Invalid instruction",
	InvalidAccount:                "Invalid account",
	MathOverflow:                  "Math operation overflow",
	InvalidOffset:                 "Invalid offset",
	InvalidSafeTransferParameters: "Invalid safe_transfer parameters",
	TypeCastFailed:                "Type cast error",
	InvalidTokenProgram:           "Invalid token program",
}

func (e AppError) Error() string {
	if int(e) < len(messages) {
		return messages[e]
	}
	return fmt.Sprintf("unknown error %d", uint32(e))
}

// Code 返回对应的 Custom 错误码
func (e AppError) Code() uint32 {
	return uint32(e)
}

// CodeOf 提取 err 链中的 AppError 错误码
func CodeOf(err error) (uint32, bool) {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Code(), true
	}
	return 0, false
}
