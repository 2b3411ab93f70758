package planner

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/John-Robertt/mcsync/internal/domain"
	"github.com/John-Robertt/mcsync/internal/naming"
	"github.com/John-Robertt/mcsync/internal/region"
)

// Resolver 按查询键返回数据集记录。找不到时 ok=false、err=nil。
type Resolver interface {
	Lookup(ctx context.Context, key string) (domain.GameRecord, bool, error)
}

// UnresolvedRecordError 表示游戏目录名在数据集中没有对应记录。
// 这是整次转换的致命错误：遇到即中止。
type UnresolvedRecordError struct {
	Key  string
	Path string
}

func (e *UnresolvedRecordError) Error() string {
	return fmt.Sprintf("数据集中没有编号 %q 的记录（来自 %q）", e.Key, e.Path)
}

// Planner 把单个镜像文件映射为目标存档路径（只计算，不复制）。
//
// Regions 在启动时构造一次后注入；DestDir 下不会创建任何子目录。
type Planner struct {
	Resolver Resolver
	Regions  region.Table
	DestDir  string
	Ext      string // 空则为 naming.DefaultExt
}

// Plan 依次执行：取查询键 → 查数据集 → 解析区域 → 推导槽位 → 规范标题 → 拼文件名。
// 任一步失败都直接返回错误，不做降级。
func (p Planner) Plan(ctx context.Context, img domain.ImageFile) (domain.CopyPlan, error) {
	key := Key(img.AbsPath)

	rec, ok, err := p.Resolver.Lookup(ctx, key)
	if err != nil {
		return domain.CopyPlan{}, err
	}
	if !ok {
		return domain.CopyPlan{}, &UnresolvedRecordError{Key: key, Path: img.AbsPath}
	}

	reg, err := naming.Region(rec.Code, p.Regions)
	if err != nil {
		return domain.CopyPlan{}, err
	}

	// 槽位看镜像文件自己的文件名，而不是目录名。
	slot := naming.SlotSuffix(filepath.Base(img.AbsPath))
	name := naming.FileName(rec.Title, reg, slot, p.Ext)

	return domain.CopyPlan{
		Src:    img.AbsPath,
		Dst:    filepath.Join(p.DestDir, name),
		Key:    key,
		Record: rec,
		Region: reg,
		Slot:   slot,
		Size:   img.Size,
	}, nil
}

// Key 返回查询键：镜像文件直接父目录的名字（即游戏目录名），与文件内容无关。
func Key(path string) string {
	return filepath.Base(filepath.Dir(filepath.Clean(path)))
}
