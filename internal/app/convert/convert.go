// Package convert 是转换驱动：扫描 → 逐个规划 → 复制 → 汇报。
//
// 严格串行，按扫描顺序处理；任一文件的任一步骤失败都会中止整次转换，
// 之后的文件不再处理（没有“跳过继续”的模式）。
package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/John-Robertt/mcsync/internal/app/planner"
	"github.com/John-Robertt/mcsync/internal/domain"
	"github.com/John-Robertt/mcsync/internal/infra/fsx"
	"github.com/John-Robertt/mcsync/internal/naming"
	"github.com/John-Robertt/mcsync/internal/region"
	"github.com/John-Robertt/mcsync/internal/scan"
)

// ErrReverseUnsupported 表示请求了 srm → mcd 的反向转换。
// 反向的命名与槽位还原规则尚未确定，因此不做猜测，直接拒绝。
var ErrReverseUnsupported = errors.New("反向转换（srm → mcd）尚未实现")

// Options 是一次转换的输入。
type Options struct {
	Source string // 备份根目录（其下有 <platform>/<游戏目录>/）
	Dest   string // 平铺的存档输出目录，必须已存在
	Scan   scan.Options

	Ext       string // 空则为 .srm
	Overwrite bool   // 目标已存在时是否覆盖
	DryRun    bool   // 只规划不复制
	Reverse   bool
}

// Converter 组合转换所需的协作者。Fs 为空时使用真实文件系统。
type Converter struct {
	Fs       afero.Fs
	Resolver planner.Resolver
	Regions  region.Table
	Observer Observer
}

// Execute 执行一次转换并返回报告。
//
// 返回的 error 是第一个失败（若有）；报告中包含失败前已处理的条目和失败条目本身。
func (c Converter) Execute(ctx context.Context, opts Options) (domain.RunReport, error) {
	fsys := c.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	rr := domain.RunReport{
		RunID:     uuid.NewString(),
		Source:    opts.Source,
		Dest:      opts.Dest,
		DryRun:    opts.DryRun,
		StartedAt: time.Now().UTC(),
		Items:     make([]domain.ItemResult, 0, 64),
	}
	finish := func(err error) (domain.RunReport, error) {
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr, err
	}

	if opts.Reverse {
		rr.Items = append(rr.Items, failedItem(domain.ImageFile{}, ErrReverseUnsupported))
		return finish(ErrReverseUnsupported)
	}

	images, err := scan.FindImages(fsys, opts.Source, opts.Scan)
	if err != nil {
		rr.Items = append(rr.Items, failedItem(domain.ImageFile{}, err))
		return finish(err)
	}

	logger := log.WithFields(log.Fields{"run": rr.RunID, "dry_run": opts.DryRun})
	logger.WithField("images", len(images)).Info("扫描完成")
	if c.Observer != nil {
		c.Observer.OnStart(opts, len(images))
	}

	p := planner.Planner{
		Resolver: c.Resolver,
		Regions:  c.Regions,
		DestDir:  opts.Dest,
		Ext:      opts.Ext,
	}

	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}

		res, err := c.one(ctx, fsys, p, img, opts)
		rr.Items = append(rr.Items, res)
		if c.Observer != nil {
			c.Observer.OnItemDone(i+1, len(images), res)
		}
		if err != nil {
			logger.WithFields(log.Fields{
				"src":  img.AbsPath,
				"code": res.ErrorCode,
				"err":  err,
			}).Error("转换中止")
			return finish(err)
		}
		logger.WithFields(log.Fields{"src": res.Src, "dst": res.Dst}).Debug(res.Status)
	}

	return finish(nil)
}

func (c Converter) one(ctx context.Context, fsys afero.Fs, p planner.Planner, img domain.ImageFile, opts Options) (domain.ItemResult, error) {
	plan, err := p.Plan(ctx, img)
	if err != nil {
		return failedItem(img, err), err
	}

	res := domain.ItemResult{
		Src:    plan.Src,
		Dst:    plan.Dst,
		Key:    plan.Key,
		Code:   string(plan.Record.Code),
		Title:  plan.Record.Title,
		Size:   plan.Size,
		Status: domain.StatusPlanned,
	}
	if opts.DryRun {
		return res, nil
	}

	n, err := fsx.CopyFile(fsys, plan.Src, plan.Dst, opts.Overwrite)
	if err != nil {
		res.Status = domain.StatusFailed
		res.ErrorCode = Code(err)
		res.ErrorMsg = err.Error()
		return res, err
	}
	res.Size = n
	res.Status = domain.StatusCopied
	return res, nil
}

func failedItem(img domain.ImageFile, err error) domain.ItemResult {
	it := domain.ItemResult{
		Src:       img.AbsPath,
		Size:      img.Size,
		Status:    domain.StatusFailed,
		ErrorCode: Code(err),
		ErrorMsg:  err.Error(),
	}
	if img.AbsPath != "" {
		it.Key = filepath.Base(filepath.Dir(img.AbsPath))
	}
	return it
}

// Code 把错误映射为报告中的 error_code。无法归类的错误视为 I/O 失败。
func Code(err error) string {
	var (
		ue *planner.UnresolvedRecordError
		ve *naming.ViolationError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrReverseUnsupported):
		return domain.ErrCodeReverseUnsupported
	case errors.As(err, &ue):
		return domain.ErrCodeUnresolvedRecord
	case errors.As(err, &ve):
		return domain.ErrCodeNamingViolation
	case fsx.IsPathTypeConflict(err), errors.Is(err, os.ErrExist):
		return domain.ErrCodeTargetConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domain.ErrCodeCanceled
	default:
		return domain.ErrCodeIOFailed
	}
}
