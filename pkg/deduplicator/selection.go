package deduplicator

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/moyu-x/rmdup/pkg/scanner"
)

var (
	ErrInvalidSelection = errors.New("invalid selection")
	ErrWouldDeleteAll   = errors.New("selection would delete every copy")
)

type SelectionMode int

const (
	SelectNone SelectionMode = iota
	SelectAllButOldest
	SelectIndices
)

// Selection 交互模式下用户对一个组的选择
// Indices 为 1 起始的序号，对应按修改时间升序排列后的成员
type Selection struct {
	Mode    SelectionMode
	Indices []int
}

// ParseSelection 解析用户输入
//   - "a" / "all"：删除除最旧文件之外的全部
//   - "n" / "none" / 空：不删除
//   - "2,3" 或 "2 3"：删除指定序号
func ParseSelection(text string, n int) (Selection, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	switch s {
	case "", "n", "none":
		return Selection{Mode: SelectNone}, nil
	case "a", "all":
		return Selection{Mode: SelectAllButOldest}, nil
	}

	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	seen := make(map[int]bool)
	var indices []int
	for _, f := range fields {
		idx, err := strconv.Atoi(f)
		if err != nil {
			return Selection{}, fmt.Errorf("%w: %q 不是序号", ErrInvalidSelection, f)
		}
		if idx < 1 || idx > n {
			return Selection{}, fmt.Errorf("%w: 序号 %d 超出范围 1-%d", ErrInvalidSelection, idx, n)
		}
		if !seen[idx] {
			seen[idx] = true
			indices = append(indices, idx)
		}
	}

	if len(indices) == n {
		return Selection{}, ErrWouldDeleteAll
	}

	sort.Ints(indices)
	return Selection{Mode: SelectIndices, Indices: indices}, nil
}

// Select 根据用户选择生成决策，待删除文件与最旧的保留文件配对
func Select(group *DuplicateGroup, sel Selection) (Decision, error) {
	sorted := SortOldestFirst(group.Members)
	marked := make([]bool, len(sorted))

	switch sel.Mode {
	case SelectNone:
	case SelectAllButOldest:
		for i := 1; i < len(sorted); i++ {
			marked[i] = true
		}
	case SelectIndices:
		for _, idx := range sel.Indices {
			if idx < 1 || idx > len(sorted) {
				return Decision{}, fmt.Errorf("%w: 序号 %d 超出范围 1-%d", ErrInvalidSelection, idx, len(sorted))
			}
			marked[idx-1] = true
		}
	default:
		return Decision{}, ErrInvalidSelection
	}

	decision := Decision{Group: group}
	var kept []scanner.FileRecord
	for i, m := range sorted {
		if !marked[i] {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return Decision{}, ErrWouldDeleteAll
	}
	decision.Kept = kept

	for i, m := range sorted {
		if marked[i] {
			decision.Deletions = append(decision.Deletions, Deletion{File: m, DuplicateOf: kept[0]})
		}
	}
	return decision, nil
}
