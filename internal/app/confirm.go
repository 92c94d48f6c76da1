package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Confirm 输出问题并读取一行回答，只有 y / yes 视为同意
// 多次提问时应传入同一个 *bufio.Reader，否则每次新建的缓冲会吞掉后续输入
// ctx 取消时立即返回 ctx.Err()，读取输入的 goroutine 会阻塞到 in 关闭或进程退出
func Confirm(ctx context.Context, in io.Reader, out io.Writer, question string) (bool, error) {
	reader, ok := in.(*bufio.Reader)
	if !ok {
		reader = bufio.NewReader(in)
	}

	fmt.Fprint(out, question)

	type answer struct {
		text string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		text, err := reader.ReadString('\n')
		ch <- answer{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(out)
		return false, ctx.Err()
	case a := <-ch:
		if a.err != nil && a.err != io.EOF {
			return false, fmt.Errorf("读取确认输入失败: %w", a.err)
		}
		switch strings.ToLower(strings.TrimSpace(a.text)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}
