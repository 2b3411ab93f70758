// Package naming 实现目标存档文件名的语法：
//
//	<Title> <Region><Slot><Ext>
//
// 例如 "Final Fantasy Vii (USA).1.srm"。本包只做纯函数计算，不碰文件系统。
package naming

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/John-Robertt/mcsync/internal/domain"
	"github.com/John-Robertt/mcsync/internal/region"
)

// DefaultExt 是目标存档的固定扩展名。
const DefaultExt = ".srm"

// slotOffset 是槽位数字在文件名中的位置：倒数第 6 个字符。
const slotOffset = 6

// ViolationError 表示数据集记录不符合命名约定（区域前缀缺失或未知）。
type ViolationError struct {
	Code   domain.Code
	Prefix string
	Reason string // "no_dash" | "unknown_prefix"
}

func (e *ViolationError) Error() string {
	switch e.Reason {
	case "no_dash":
		return fmt.Sprintf("编号 %q 不含 '-'，无法解析区域前缀", string(e.Code))
	case "unknown_prefix":
		return fmt.Sprintf("编号 %q 的区域前缀 %q 不在区域表中", string(e.Code), e.Prefix)
	default:
		return fmt.Sprintf("编号 %q 不符合命名约定", string(e.Code))
	}
}

// Region 取 code 第一个 '-' 之前的前缀并查表。未知前缀一律失败，不做默认区域。
func Region(code domain.Code, tab region.Table) (string, error) {
	prefix, ok := code.Prefix()
	if !ok {
		return "", &ViolationError{Code: code, Reason: "no_dash"}
	}
	r, ok := tab.Lookup(prefix)
	if !ok {
		return "", &ViolationError{Code: code, Prefix: prefix, Reason: "unknown_prefix"}
	}
	return r, nil
}

// SlotSuffix 从镜像文件名（不是目录名）推导槽位后缀。
//
// 规则：
// - 倒数第 6 个字符不存在或不是 0-9：""（默认槽位）
// - 数字 0 或 1：""（1 号槽位不带后缀；0 视为默认槽位）
// - 数字 n（2..9）：".{n-1}"，即 1 基到 0 基的重编号
func SlotSuffix(name string) string {
	rs := []rune(name)
	if len(rs) < slotOffset {
		return ""
	}
	c := rs[len(rs)-slotOffset]
	if c < '0' || c > '9' {
		return ""
	}
	n := int(c - '0')
	if n <= 1 {
		return ""
	}
	return fmt.Sprintf(".%d", n-1)
}

// TitleCase 先整体转小写，再把每个空白分隔单词的首字符转为标题大小写，最后用单个空格拼接。
//
// 大小写转换使用完整的 Unicode 映射（例如词尾 Σ 小写为 ς）。首字符用 titlecase
// 而不是 uppercase：ß → "Ss"，这样结果仍对自身幂等：TitleCase(TitleCase(s)) == TitleCase(s)。
// 单词内部的其它字符保持小写结果；连续空白、首尾空白都会被折叠。
func TitleCase(title string) string {
	// Caser 有状态，不能跨 goroutine 共享，因此每次调用各自构造。
	words := strings.Fields(cases.Lower(language.Und).String(title))
	upper := cases.Title(language.Und)
	for i, w := range words {
		_, size := utf8.DecodeRuneInString(w)
		words[i] = upper.String(w[:size]) + w[size:]
	}
	return strings.Join(words, " ")
}

// FileName 拼出目标文件名。ext 为空时使用 DefaultExt。
func FileName(title, region, slot, ext string) string {
	if ext == "" {
		ext = DefaultExt
	}
	return TitleCase(title) + " " + region + slot + ext
}
