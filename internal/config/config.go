package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/mcsync/internal/naming"
	"github.com/John-Robertt/mcsync/internal/region"
	"github.com/John-Robertt/mcsync/internal/scan"
)

const (
	// ErrCodeNotFound 表示显式指定的 --config 文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissing 表示合并后仍缺少必填项（db/input/output）。
	ErrCodeMissing = "config_missing"
)

// DefaultFileName 是在 cwd 下自动查找的配置文件名。
const DefaultFileName = "mcsync.yaml"

// CLIArgs 是命令行（含环境变量）给出的值，并保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：CLI > 配置文件 > 默认值。
type CLIArgs struct {
	ConfigPath string

	DB     string
	Input  string
	Output string

	Platform string
	Reserved string
	Ext      string
	Report   string

	NoClobber    bool
	NoClobberSet bool
	DryRun       bool
	DryRunSet    bool
}

// FileConfig 对应 mcsync.yaml 的解析结构。
type FileConfig struct {
	DB        string            `yaml:"db"`
	Input     string            `yaml:"input"`
	Output    string            `yaml:"output"`
	Platform  string            `yaml:"platform"`
	Reserved  string            `yaml:"reserved"`
	Extension string            `yaml:"extension"`
	NoClobber *bool             `yaml:"no_clobber"`
	DryRun    *bool             `yaml:"dry_run"`
	Report    string            `yaml:"report"`
	Regions   map[string]string `yaml:"regions"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	ConfigFile string `yaml:"config_file,omitempty"`

	DB     string `yaml:"db"`
	Input  string `yaml:"input"`
	Output string `yaml:"output"`

	Platform  string `yaml:"platform"`
	Reserved  string `yaml:"reserved"`
	Extension string `yaml:"extension"`
	NoClobber bool   `yaml:"no_clobber"`
	DryRun    bool   `yaml:"dry_run"`
	Report    string `yaml:"report,omitempty"`

	// ExtraRegions 是配置文件追加的区域前缀；Regions 是合并内置表后的结果。
	ExtraRegions map[string]string `yaml:"regions,omitempty"`
	Regions      region.Table      `yaml:"-"`
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeMissing:
		return fmt.Sprintf("%s：%v", e.Code, e.Err)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 给了 --config：必须存在
// 2) 否则尝试 <cwd>/mcsync.yaml（可选）
//
// 覆盖优先级（固定）：CLI > 配置文件 > 默认值。
// 相对路径一律以 cwd 为基准转为绝对路径。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	var (
		cfgPath string
		fc      FileConfig
		exists  bool
	)
	if strings.TrimSpace(cli.ConfigPath) != "" {
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		if !exists {
			return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
	} else {
		cfgPath = filepath.Join(cwdAbs, DefaultFileName)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		if !exists {
			cfgPath = "" // 不存在也不报错
		}
	}

	return merge(cwdAbs, cli, fc, cfgPath)
}

func merge(cwdAbs string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	eff := EffectiveConfig{
		ConfigFile: cfgPath,
		DB:         pick(cli.DB, fc.DB, ""),
		Input:      pick(cli.Input, fc.Input, ""),
		Output:     pick(cli.Output, fc.Output, ""),
		Platform:   pick(cli.Platform, fc.Platform, scan.DefaultPlatform),
		Reserved:   pick(cli.Reserved, fc.Reserved, scan.DefaultReserved),
		Extension:  pick(cli.Ext, fc.Extension, naming.DefaultExt),
		Report:     pick(cli.Report, fc.Report, ""),
	}

	// no_clobber / dry_run：CLI > config > 默认 false
	if cli.NoClobberSet {
		eff.NoClobber = cli.NoClobber
	} else if fc.NoClobber != nil {
		eff.NoClobber = *fc.NoClobber
	}
	if cli.DryRunSet {
		eff.DryRun = cli.DryRun
	} else if fc.DryRun != nil {
		eff.DryRun = *fc.DryRun
	}

	var missing []string
	if eff.DB == "" {
		missing = append(missing, "db")
	}
	if eff.Input == "" {
		missing = append(missing, "input")
	}
	if eff.Output == "" {
		missing = append(missing, "output")
	}
	if len(missing) > 0 {
		return EffectiveConfig{}, &Error{Code: ErrCodeMissing, Path: cfgPath, Err: fmt.Errorf("缺少必填项：%s", strings.Join(missing, ", "))}
	}

	eff.Input = absCleanFrom(cwdAbs, eff.Input)
	eff.Output = absCleanFrom(cwdAbs, eff.Output)
	if isFilePathDSN(eff.DB) {
		eff.DB = absCleanFrom(cwdAbs, eff.DB)
	}
	if eff.Report != "" {
		eff.Report = absCleanFrom(cwdAbs, eff.Report)
	}

	if err := validateExt(eff.Extension); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if strings.ContainsRune(eff.Platform, filepath.Separator) || eff.Platform == "." || eff.Platform == ".." {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("platform 必须是单级目录名，实际是 %q", eff.Platform)}
	}

	tab, err := region.New(fc.Regions)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	eff.Regions = tab
	if len(fc.Regions) > 0 {
		eff.ExtraRegions = make(map[string]string, len(fc.Regions))
		for k, v := range fc.Regions {
			eff.ExtraRegions[k] = v
		}
	}

	return eff, nil
}

func pick(cli, file, def string) string {
	if s := strings.TrimSpace(cli); s != "" {
		return s
	}
	if s := strings.TrimSpace(file); s != "" {
		return s
	}
	return def
}

func validateExt(ext string) error {
	switch {
	case !strings.HasPrefix(ext, "."):
		return fmt.Errorf("extension 必须以 '.' 开头，实际是 %q", ext)
	case len(ext) < 2:
		return fmt.Errorf("extension 不能只有 '.'")
	case strings.ContainsAny(ext, `/\`):
		return fmt.Errorf("extension 不能包含路径分隔符：%q", ext)
	}
	return nil
}

// isFilePathDSN 判断 db 是否是本地路径（而不是 URI 形式的 DSN）。
func isFilePathDSN(dsn string) bool {
	for _, p := range []string{"file:", "mysql://", "postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, p) {
			return false
		}
	}
	return true
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 YAML 配置文件（未知字段报错）。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		if errors.Is(err, io.EOF) {
			// 空文件：等价于没有任何字段。
			return FileConfig{}, true, nil
		}
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
