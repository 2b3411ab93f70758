package domain

import "strings"

// Code 是参考数据集 ps1 表中的游戏编号，形如 SLUS-00594。
//
// 注意：游戏目录名（查询键）不一定等于 Code，二者只通过数据集关联。
type Code string

// Prefix 返回第一个 '-' 之前的区域前缀（例如 SLUS）。
// 没有 '-' 时 ok=false，由上层报告命名约定违例。
func (c Code) Prefix() (prefix string, ok bool) {
	p, _, found := strings.Cut(string(c), "-")
	if !found {
		return "", false
	}
	return p, true
}
