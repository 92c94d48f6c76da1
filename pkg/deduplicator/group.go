package deduplicator

import (
	"errors"

	"github.com/moyu-x/rmdup/pkg/hasher"
	"github.com/moyu-x/rmdup/pkg/scanner"
)

// ErrTrivialGroup 重复组至少需要两个成员
var ErrTrivialGroup = errors.New("duplicate group needs at least two members")

// DuplicateGroup 指纹相同的一组文件，成员按发现顺序排列
type DuplicateGroup struct {
	Fingerprint hasher.Fingerprint
	Members     []scanner.FileRecord
}

func NewDuplicateGroup(fp hasher.Fingerprint, members []scanner.FileRecord) (*DuplicateGroup, error) {
	if len(members) < 2 {
		return nil, ErrTrivialGroup
	}
	return &DuplicateGroup{
		Fingerprint: fp,
		Members:     members,
	}, nil
}

// Size 组内单个文件的大小
func (g *DuplicateGroup) Size() uint64 {
	return g.Members[0].Size
}

// Wasted 保留一份之外占用的字节数
func (g *DuplicateGroup) Wasted() uint64 {
	return g.Size() * uint64(len(g.Members)-1)
}

// Group 按指纹精确分组，只保留成员数不少于 2 的组
// 失败的结果被忽略；组的顺序由第一个成员在输入中的位置决定
func Group(results []hasher.HashResult) []*DuplicateGroup {
	index := make(map[hasher.Fingerprint]int)
	var buckets [][]scanner.FileRecord
	var fingerprints []hasher.Fingerprint

	for _, r := range results {
		if r.Err != nil {
			continue
		}
		i, ok := index[r.Fingerprint]
		if !ok {
			i = len(buckets)
			index[r.Fingerprint] = i
			buckets = append(buckets, nil)
			fingerprints = append(fingerprints, r.Fingerprint)
		}
		buckets[i] = append(buckets[i], r.File)
	}

	var groups []*DuplicateGroup
	for i, members := range buckets {
		g, err := NewDuplicateGroup(fingerprints[i], members)
		if err != nil {
			continue
		}
		groups = append(groups, g)
	}
	return groups
}
