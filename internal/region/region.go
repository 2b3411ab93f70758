// Package region 维护区域前缀（SLUS/SLES/SLPS…）到显示后缀（"(USA)" 等）的只读映射。
//
// Table 在启动时构造一次，之后只读；通过参数注入 planner，不使用全局变量。
package region

import (
	"fmt"
	"sort"
	"strings"
)

// builtin 是内置的前缀表。每个前缀只对应一个区域。
var builtin = map[string]string{
	"SLUS": "(USA)",
	"SCUS": "(USA)",
	"LPS":  "(USA)",
	"SLES": "(Europe)",
	"SCES": "(Europe)",
	"SCED": "(Europe)",
	"SLPS": "(Japan)",
	"SCPS": "(Japan)",
	"SIPS": "(Japan)",
	"SLMS": "(Japan)",
	"CPCS": "(Japan)",
	"SCAJ": "(Japan)",
	"ESPM": "(Japan)",
	"SLKA": "(Japan)",
	"HPS":  "(Japan)",
}

// Table 是不可变的前缀表。零值可用（但为空，所有查询都失败）。
type Table struct {
	m map[string]string
}

// Default 返回只含内置前缀的表。
func Default() Table {
	t, _ := New(nil)
	return t
}

// New 在内置表基础上合并 extra。
//
// 约束：
// - 前缀与区域都不能为空
// - extra 不能把内置前缀改成不同的区域（同值重复声明允许）
func New(extra map[string]string) (Table, error) {
	m := make(map[string]string, len(builtin)+len(extra))
	for k, v := range builtin {
		m[k] = v
	}

	// 按前缀排序遍历，保证错误信息稳定。
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := strings.TrimSpace(extra[k])
		p := strings.TrimSpace(k)
		if p == "" {
			return Table{}, fmt.Errorf("区域前缀不能为空")
		}
		if v == "" {
			return Table{}, fmt.Errorf("区域前缀 %q 的区域不能为空", p)
		}
		if old, ok := m[p]; ok && old != v {
			return Table{}, fmt.Errorf("区域前缀 %q 冲突：已映射为 %q，不能改为 %q", p, old, v)
		}
		m[p] = v
	}
	return Table{m: m}, nil
}

// Lookup 精确匹配前缀（区分大小写）。未知前缀返回 ok=false，不做默认值兜底。
func (t Table) Lookup(prefix string) (string, bool) {
	r, ok := t.m[prefix]
	return r, ok
}

// Len 返回表中前缀数量。
func (t Table) Len() int { return len(t.m) }

// Prefixes 返回排好序的全部前缀（用于 print-config 等展示）。
func (t Table) Prefixes() []string {
	out := make([]string, 0, len(t.m))
	for k := range t.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
