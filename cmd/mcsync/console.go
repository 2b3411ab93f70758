package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/John-Robertt/mcsync/internal/app/convert"
	"github.com/John-Robertt/mcsync/internal/domain"
)

var _ convert.Observer = (*console)(nil)

// console 把转换事件展示到终端。
//
// 输出约定：
// - 每个复制成功的文件在 out 上打印一行 "Copied: <src>\t->\t<dst>"
// - 开始/失败/汇总等过程信息写到 info（通常是 stderr）
type console struct {
	out  io.Writer
	info io.Writer

	mu        sync.Mutex
	startedAt time.Time
	total     int
}

func newConsole(out, info io.Writer) *console {
	return &console{out: out, info: info}
}

func (c *console) OnStart(opts convert.Options, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.startedAt = time.Now()
	c.total = total

	mode := "copy"
	if opts.DryRun {
		mode = "dry-run"
	}
	fmt.Fprintf(c.info, "[%s] mcsync convert (%s)\n", c.startedAt.Format("15:04:05"), mode)
	fmt.Fprintf(c.info, "  source: %s\n", opts.Source)
	fmt.Fprintf(c.info, "  dest: %s\n", opts.Dest)
	fmt.Fprintf(c.info, "  images: %d\n", total)
}

func (c *console) OnItemDone(idx, total int, res domain.ItemResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch res.Status {
	case domain.StatusCopied:
		fmt.Fprintf(c.out, "Copied: %s\t->\t%s\n", res.Src, res.Dst)
	case domain.StatusFailed:
		fmt.Fprintf(c.info, "[%d/%d] FAIL %s: %s\n", idx, total, res.ErrorCode, truncate(res.ErrorMsg, 160))
	}
}

// writePlanTable 用表格列出 dry-run 规划出的映射。
func writePlanTable(w io.Writer, rr domain.RunReport) error {
	table := tablewriter.NewWriter(w)
	table.Header("Key", "Code", "Title", "File", "Size")
	for _, it := range rr.Items {
		if it.Status != domain.StatusPlanned {
			continue
		}
		if err := table.Append([]string{it.Key, it.Code, it.Title, filepath.Base(it.Dst), humanize.IBytes(uint64(it.Size))}); err != nil {
			return err
		}
	}
	return table.Render()
}

// writeSummary 打印一行汇总；failed>0 时附上第一个失败原因。
func writeSummary(w io.Writer, rr domain.RunReport) {
	s := rr.Summary
	fmt.Fprintf(w, "完成: planned=%d copied=%d failed=%d bytes=%s (%s)\n",
		s.Planned, s.Copied, s.Failed, humanize.IBytes(uint64(s.Bytes)),
		formatShortDuration(rr.FinishedAt.Sub(rr.StartedAt)),
	)
	for _, it := range rr.Items {
		if it.Status == domain.StatusFailed {
			src := it.Src
			if src == "" {
				src = rr.Source
			}
			fmt.Fprintf(w, "中止于 %s: %s\n", src, it.ErrorCode)
			break
		}
	}
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
