package deduplicator

import (
	"sort"
	"strings"

	"github.com/moyu-x/rmdup/pkg/scanner"
)

// Deletion 一个待删除文件及其重复的目标文件（用于展示）
type Deletion struct {
	File        scanner.FileRecord
	DuplicateOf scanner.FileRecord
}

// Decision 单个重复组的保留决策
type Decision struct {
	Group     *DuplicateGroup
	Kept      []scanner.FileRecord
	Deletions []Deletion
}

// ToDelete 返回待删除文件，顺序与 Deletions 一致
func (d Decision) ToDelete() []scanner.FileRecord {
	files := make([]scanner.FileRecord, 0, len(d.Deletions))
	for _, del := range d.Deletions {
		files = append(files, del.File)
	}
	return files
}

// RetainedFor 以待删除文件路径为键，值为它重复的文件
func (d Decision) RetainedFor() map[string]scanner.FileRecord {
	m := make(map[string]scanner.FileRecord, len(d.Deletions))
	for _, del := range d.Deletions {
		m[del.File.Path] = del.DuplicateOf
	}
	return m
}

// HasParens 文件名中是否含有括号，例如 "file (1).txt"
func HasParens(path string) bool {
	name := (scanner.FileRecord{Path: path}).Name()
	return strings.ContainsAny(name, "()")
}

// Decide 对单个组应用自动保留规则
//
//  1. 文件名带括号的成员全部删除，并与第一个不带括号的成员配对；
//     如果所有成员都带括号，保留第一个发现的成员，其余与它配对。
//  2. 没有带括号的成员时，按修改时间稳定排序，保留最旧的文件。
func Decide(group *DuplicateGroup) Decision {
	var withParens, withoutParens []scanner.FileRecord
	for _, m := range group.Members {
		if HasParens(m.Path) {
			withParens = append(withParens, m)
		} else {
			withoutParens = append(withoutParens, m)
		}
	}

	decision := Decision{Group: group}

	switch {
	case len(withParens) > 0 && len(withoutParens) > 0:
		decision.Kept = withoutParens
		for _, m := range withParens {
			decision.Deletions = append(decision.Deletions, Deletion{File: m, DuplicateOf: withoutParens[0]})
		}

	case len(withParens) > 0:
		// 全部带括号，至少保留一份
		kept := withParens[0]
		decision.Kept = []scanner.FileRecord{kept}
		for _, m := range withParens[1:] {
			decision.Deletions = append(decision.Deletions, Deletion{File: m, DuplicateOf: kept})
		}

	default:
		sorted := SortOldestFirst(group.Members)
		oldest := sorted[0]
		decision.Kept = []scanner.FileRecord{oldest}
		for _, m := range sorted[1:] {
			decision.Deletions = append(decision.Deletions, Deletion{File: m, DuplicateOf: oldest})
		}
	}

	return decision
}

// SortOldestFirst 按修改时间升序稳定排序，返回新切片
func SortOldestFirst(members []scanner.FileRecord) []scanner.FileRecord {
	sorted := make([]scanner.FileRecord, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ModTime.Before(sorted[j].ModTime)
	})
	return sorted
}
