package convert

import (
	"github.com/John-Robertt/mcsync/internal/domain"
)

// Observer 用于把“转换进度/条目结果”从核心流程中解耦出来。
//
// 约束：convert 包只负责发事件，不做任何输出；复制成功的那一行由 Observer 决定如何展示。
// 事件按扫描顺序在同一个 goroutine 中依次发出。
type Observer interface {
	// OnStart 在扫描完成、开始逐个处理前调用。
	OnStart(opts Options, total int)
	// OnItemDone 在每个文件处理结束（planned/copied/failed）后调用；idx 从 1 开始。
	OnItemDone(idx, total int, res domain.ItemResult)
}
