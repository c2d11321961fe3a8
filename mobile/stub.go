//go:build !mobile

// Package mobile 提供 ebitenmobile 绑定入口
//
// 普通构建时只编译此文件；实际入口在 mobile.go（-tags mobile）。
package mobile

// Dummy 是一个空导出函数，确保包在非移动端构建时也能被引用
func Dummy() {}
