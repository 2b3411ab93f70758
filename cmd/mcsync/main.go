// Command mcsync 把 MemCard PRO 风格的 PS1 存档镜像（<platform>/<GAMEID>/*.mcd）
// 复制为 RetroArch 可识别的平铺 .srm 文件。
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/mcsync/internal/app/convert"
	"github.com/John-Robertt/mcsync/internal/config"
	"github.com/John-Robertt/mcsync/internal/domain"
	"github.com/John-Robertt/mcsync/internal/gamedb"
	"github.com/John-Robertt/mcsync/internal/infra/fsx"
	"github.com/John-Robertt/mcsync/internal/scan"
)

func main() {
	// .env 不存在是常态，忽略错误。
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// baseOptions 是所有子命令共享的全局参数。
type baseOptions struct {
	Config string    `long:"config" env:"MCSYNC_CONFIG" description:"配置文件路径（默认查找 ./mcsync.yaml）"`
	DB     string    `long:"db" env:"MCSYNC_DB" description:"游戏数据库：sqlite 文件路径，或 mysql:// / postgres:// DSN"`
	Log    logConfig `group:"Logging" namespace:"log" env-namespace:"MCSYNC_LOG"`
}

// PathOptions 是 convert 与 print-config 共用的转换参数。
type PathOptions struct {
	Input     string `short:"i" long:"input" env:"MCSYNC_INPUT" description:"备份根目录（其下有 <platform>/<GAMEID>/）"`
	Output    string `short:"o" long:"output" env:"MCSYNC_OUTPUT" description:"存档输出目录（必须已存在）"`
	Platform  string `long:"platform" description:"平台目录名（默认 PS1）"`
	Reserved  string `long:"reserved" description:"跳过的保留目录名（默认 MemoryCard）"`
	Ext       string `long:"ext" description:"输出扩展名（默认 .srm）"`
	DryRun    bool   `long:"dry-run" description:"只规划并列出映射，不复制"`
	NoClobber bool   `long:"no-clobber" description:"目标已存在时报错而不是覆盖"`
	Report    string `long:"report" description:"把 RunReport JSON 写到该路径"`
}

type application struct {
	base   baseOptions
	stdout io.Writer
	stderr io.Writer
}

type cmdConvert struct {
	PathOptions
	Reverse bool `short:"r" long:"reverse" description:"反向转换（srm → mcd，尚未实现）"`

	app *application
}

type cmdPrintConfig struct {
	PathOptions

	app *application
}

func run(args []string, stdout, stderr io.Writer) int {
	app := &application{stdout: stdout, stderr: stderr}

	parser := flags.NewParser(&app.base, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "mcsync"
	parser.LongDescription = `mcsync 把 <input>/<platform>/<GAMEID>/*.mcd 按游戏数据库中的标题
复制为 <output>/<Title> (<Region>)[.N].srm。

可选地在当前目录放置 '` + config.DefaultFileName + `'，或用 --config 指定配置文件；
用 print-config 子命令查看最终生效的配置。`

	mustAddCmd(parser, "convert", "转换存档镜像", "扫描、解析、命名并复制每个存档镜像；任一文件失败即中止。",
		&cmdConvert{app: app})
	mustAddCmd(parser, "print-config", "打印生效配置", "以 YAML 打印合并 CLI、环境变量与配置文件后的最终配置。",
		&cmdPrintConfig{app: app})

	if _, err := parser.ParseArgs(args); err != nil {
		return exitCode(err, parser, stdout, stderr)
	}
	return 0
}

func mustAddCmd(parser *flags.Parser, name, short, long string, data interface{}) {
	if _, err := parser.AddCommand(name, short, long, data); err != nil {
		// 只有命令定义本身有误才会失败。
		panic(err)
	}
}

// exitCode：0 成功（含 --help），1 运行失败，2 用法错误。
func exitCode(err error, parser *flags.Parser, stdout, stderr io.Writer) int {
	var fe *flags.Error
	if errors.As(err, &fe) {
		switch fe.Type {
		case flags.ErrHelp:
			fmt.Fprintln(stdout, fe.Message)
			return 0
		case flags.ErrCommandRequired:
			fmt.Fprintf(stderr, "%s\n\n", fe.Message)
			parser.WriteHelp(stderr)
			return 2
		default:
			fmt.Fprintln(stderr, fe.Message)
			return 2
		}
	}
	fmt.Fprintf(stderr, "错误：%v\n", err)
	return 1
}

func (app *application) loadConfig(p PathOptions) (config.EffectiveConfig, error) {
	if err := initLog(app.base.Log); err != nil {
		return config.EffectiveConfig{}, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return config.EffectiveConfig{}, fmt.Errorf("读取当前目录失败：%w", err)
	}
	return config.LoadEffective(cwd, cliArgs(app.base, p))
}

// cliArgs 把解析后的参数映射到 config.CLIArgs。
// bool 参数只能打开不能关闭，因此 true 即视为“显式指定”。
func cliArgs(base baseOptions, p PathOptions) config.CLIArgs {
	return config.CLIArgs{
		ConfigPath:   base.Config,
		DB:           base.DB,
		Input:        p.Input,
		Output:       p.Output,
		Platform:     p.Platform,
		Reserved:     p.Reserved,
		Ext:          p.Ext,
		Report:       p.Report,
		NoClobber:    p.NoClobber,
		NoClobberSet: p.NoClobber,
		DryRun:       p.DryRun,
		DryRunSet:    p.DryRun,
	}
}

func (cmd *cmdConvert) Execute(args []string) error {
	if len(args) > 0 {
		return &flags.Error{Type: flags.ErrUnknown, Message: fmt.Sprintf("convert 不接受位置参数：%q", args)}
	}
	app := cmd.app

	eff, err := app.loadConfig(cmd.PathOptions)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conv := convert.Converter{
		Fs:       afero.NewOsFs(),
		Regions:  eff.Regions,
		Observer: newConsole(app.stdout, app.stderr),
	}
	// 反向转换直接被拒绝，不需要打开数据库。
	if !cmd.Reverse {
		db, err := gamedb.Open(eff.DB)
		if err != nil {
			return err
		}
		defer db.Close()
		conv.Resolver = db
	}

	rr, runErr := conv.Execute(ctx, convert.Options{
		Source:    eff.Input,
		Dest:      eff.Output,
		Scan:      scan.Options{Platform: eff.Platform, Reserved: eff.Reserved},
		Ext:       eff.Extension,
		Overwrite: !eff.NoClobber,
		DryRun:    eff.DryRun,
		Reverse:   cmd.Reverse,
	})

	if eff.DryRun && runErr == nil {
		if err := writePlanTable(app.stdout, rr); err != nil {
			return err
		}
	}
	writeSummary(app.stderr, rr)

	if eff.Report != "" {
		if err := writeReportFile(afero.NewOsFs(), eff.Report, rr); err != nil {
			if runErr != nil {
				fmt.Fprintf(app.stderr, "写入 report 失败：%v\n", err)
				return runErr
			}
			return fmt.Errorf("写入 report 失败：%w", err)
		}
	}
	return runErr
}

func (cmd *cmdPrintConfig) Execute(args []string) error {
	if len(args) > 0 {
		return &flags.Error{Type: flags.ErrUnknown, Message: fmt.Sprintf("print-config 不接受位置参数：%q", args)}
	}
	eff, err := cmd.app.loadConfig(cmd.PathOptions)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(cmd.app.stdout)
	enc.SetIndent(2)
	if err := enc.Encode(eff); err != nil {
		return err
	}
	return enc.Close()
}

// writeReportFile 原子写入报告：目录不存在时创建，文件存在时整体替换。
func writeReportFile(fsys afero.Fs, path string, rr domain.RunReport) error {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomicReplace(fsys, filepath.Dir(path), filepath.Base(path), b)
}
