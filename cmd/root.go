package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/moyu-x/rmdup/internal/app"
	"github.com/moyu-x/rmdup/internal/exitcodes"
	"github.com/moyu-x/rmdup/pkg/config"
	"github.com/moyu-x/rmdup/pkg/logger"
	"github.com/moyu-x/rmdup/pkg/sizeunit"
	"github.com/moyu-x/rmdup/tui"
)

// errInvalidInput 命令行参数错误，退出码为 exitcodes.InvalidInput
var errInvalidInput = errors.New("invalid input")

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rmdup [directory]",
		Short: "查找并删除目录中内容完全相同的文件",
		Long: `rmdup 遍历目录（默认为当前目录），按内容 MD5 找出重复文件，
每组只保留一份，其余文件在确认后删除。

保留规则:
- 文件名带括号的副本（例如 "report (1).txt"）优先删除
- 否则保留修改时间最早的文件
- 全部带括号时保留最先发现的文件`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return fmt.Errorf("%w: %v", errInvalidInput, err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDedup(cmd, args, in, out)
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errInvalidInput, err)
	})

	flags := cmd.Flags()
	flags.BoolP("interactive", "i", false, "逐组选择要删除的文件")
	flags.BoolP("verbose", "v", false, "显示计算指纹的进度和跳过的文件")
	flags.BoolP("follow-links", "L", false, "跟随符号链接")
	flags.StringP("min-size", "s", "0", "忽略小于该大小的文件，例如 10K、1.5MB")
	flags.Bool("debug", false, "输出调试信息")
	flags.Bool("dry-run", false, "只显示将要删除的文件，不实际删除")
	flags.IntP("workers", "w", 0, "并发计算指纹的数量（默认为 CPU 核数）")
	flags.Bool("verify", false, "删除前逐字节确认与保留文件一致")
	flags.String("config", "", "配置文件路径（默认查找 $HOME/.rmdup/config.yaml）")

	return cmd
}

func runDedup(cmd *cobra.Command, args []string, in io.Reader, out io.Writer) error {
	flags := cmd.Flags()

	cfgFile, _ := flags.GetString("config")
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	minSizeText := cfg.Scanner.MinSize
	if flags.Changed("min-size") {
		minSizeText, _ = flags.GetString("min-size")
	}
	minSize, err := sizeunit.Parse(minSizeText)
	if err != nil {
		return fmt.Errorf("%w: 无法解析最小文件大小 %q\n支持的格式: %s", errInvalidInput, minSizeText, sizeunit.AcceptedFormats)
	}

	logLevel := cfg.Logging.Level
	if debug, _ := flags.GetBool("debug"); debug {
		logLevel = "debug"
	}
	if err := logger.Init(logLevel, cfg.Logging.File); err != nil {
		return err
	}

	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	opts := &app.DedupOptions{
		Root:           root,
		FollowSymlinks: cfg.Scanner.FollowSymlinks,
		MinSize:        minSize,
		Workers:        cfg.Performance.Workers,
		Prefilter:      cfg.Scanner.Prefilter,
		Verify:         cfg.Safety.Verify,
		In:             in,
		Out:            out,
	}
	if flags.Changed("follow-links") {
		opts.FollowSymlinks, _ = flags.GetBool("follow-links")
	}
	if flags.Changed("workers") {
		workers, _ := flags.GetInt("workers")
		if workers < 1 {
			return fmt.Errorf("%w: --workers 必须大于 0", errInvalidInput)
		}
		opts.Workers = workers
	}
	if flags.Changed("verify") {
		opts.Verify, _ = flags.GetBool("verify")
	}
	opts.Interactive, _ = flags.GetBool("interactive")
	opts.DryRun, _ = flags.GetBool("dry-run")
	opts.Verbose, _ = flags.GetBool("verbose")

	_, err = app.RunDedup(cmd.Context(), opts)
	return err
}

// run 执行命令并返回退出码
func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	cmd := newRootCmd(in, out)
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitcodes.Success
	case errors.Is(err, context.Canceled), errors.Is(err, tui.ErrCancelled):
		fmt.Fprintln(errOut, "\n操作已取消，已执行的删除不会恢复")
		return exitcodes.Success
	case errors.Is(err, errInvalidInput):
		fmt.Fprintf(errOut, "参数错误: %s\n", strings.TrimPrefix(err.Error(), errInvalidInput.Error()+": "))
		return exitcodes.InvalidInput
	default:
		fmt.Fprintf(errOut, "错误: %v\n", err)
		return exitcodes.RuntimeError
	}
}

// Execute 由 main.main 调用，SIGINT / SIGTERM 会取消正在进行的扫描或提示
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	logger.Close()
	os.Exit(code)
}
