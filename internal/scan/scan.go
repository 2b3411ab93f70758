package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/John-Robertt/mcsync/internal/domain"
)

const (
	// DefaultPlatform 是扫描根目录下固定的平台子目录。
	DefaultPlatform = "PS1"
	// DefaultReserved 出现在目录名中即表示不是游戏目录（区分大小写）。
	DefaultReserved = "MemoryCard"
)

// Options 控制扫描布局；零值字段使用默认值。
type Options struct {
	Platform string
	Reserved string
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.Platform) == "" {
		o.Platform = DefaultPlatform
	}
	if o.Reserved == "" {
		o.Reserved = DefaultReserved
	}
	return o
}

// FindImages 扫描 <root>/<platform>/ 下的存档镜像文件。
//
// 规则（硬约束）：
// - 只看平台目录的直接子目录；目录名包含 Reserved 的不是游戏目录
// - 游戏目录内只收集普通文件，子目录静默跳过（不递归）
// - 结果按路径逐级升序排序（先目录名后文件名），保证多次运行输出一致
// - 根目录、平台目录或任一游戏目录不可读：返回错误
// - 平台目录存在但没有可用条目：返回空切片而不是错误
//
// 注意：扫描阶段只做 stat，不读文件内容。条目类型用 Stat 判断（跟随符号链接）；
// 无法 stat 的条目（例如断开的链接）既不是目录也不是文件，直接跳过。
func FindImages(fsys afero.Fs, root string, opts Options) ([]domain.ImageFile, error) {
	opts = opts.withDefaults()
	root = filepath.Clean(root)
	platformDir := filepath.Join(root, opts.Platform)

	games, err := afero.ReadDir(fsys, platformDir)
	if err != nil {
		return nil, errors.WithMessagef(err, "读取平台目录 %q 失败", platformDir)
	}

	files := make([]domain.ImageFile, 0, 64)
	for _, g := range games {
		name := g.Name()
		if strings.Contains(name, opts.Reserved) {
			log.WithField("dir", name).Debug("跳过保留目录")
			continue
		}
		gameDir := filepath.Join(platformDir, name)
		if !isDir(fsys, gameDir) {
			continue
		}

		entries, err := afero.ReadDir(fsys, gameDir)
		if err != nil {
			return nil, errors.WithMessagef(err, "读取游戏目录 %q 失败", gameDir)
		}
		for _, e := range entries {
			path := filepath.Join(gameDir, e.Name())
			info, ok := statRegular(fsys, path)
			if !ok {
				continue
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return nil, err
			}
			files = append(files, domain.ImageFile{
				AbsPath: path,
				RelPath: rel,
				Folder:  name,
				Name:    e.Name(),
				Size:    info.Size(),
			})
		}
	}

	// 按路径逐级比较排序：所有条目共享 <root>/<platform> 前缀，
	// 所以先比游戏目录名、再比文件名。直接比较整串会让 "Foo (Disc 2)/" 排在 "Foo/" 前面。
	sort.Slice(files, func(i, j int) bool {
		if files[i].Folder != files[j].Folder {
			return files[i].Folder < files[j].Folder
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

func isDir(fsys afero.Fs, path string) bool {
	fi, err := fsys.Stat(path)
	return err == nil && fi.IsDir()
}

func statRegular(fsys afero.Fs, path string) (os.FileInfo, bool) {
	fi, err := fsys.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return nil, false
	}
	return fi, true
}
