package sizeunit

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidSizeFormat 大小字符串无法解析
var ErrInvalidSizeFormat = errors.New("invalid size format")

// AcceptedFormats 用于命令行错误提示
const AcceptedFormats = "100, 100B, 10K, 10KB, 1.5M, 1.5MB, 2G, 2GB, 1T, 1TB (单位不区分大小写，按 1024 进制)"

const unitBase = 1024

var units = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// 单位后缀 -> 乘数
var multipliers = map[string]float64{
	"":   1,
	"b":  1,
	"k":  1 << 10,
	"kb": 1 << 10,
	"m":  1 << 20,
	"mb": 1 << 20,
	"g":  1 << 30,
	"gb": 1 << 30,
	"t":  1 << 40,
	"tb": 1 << 40,
	"p":  1 << 50,
	"pb": 1 << 50,
	"e":  1 << 60,
	"eb": 1 << 60,
}

// Format 将字节数格式化为人类可读的字符串，保留两位小数
func Format(bytes uint64) string {
	if bytes == 0 {
		return "0 B"
	}

	value := float64(bytes)
	i := 0
	for value >= unitBase && i < len(units)-1 {
		value /= unitBase
		i++
	}
	return fmt.Sprintf("%.2f %s", value, units[i])
}

// Parse 解析用户输入的大小阈值，空字符串视为 0
func Parse(text string) (uint64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, nil
	}

	end := 0
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}

	numPart := s[:end]
	unitPart := strings.ToLower(strings.TrimSpace(s[end:]))

	if numPart == "" {
		return 0, fmt.Errorf("%w: %q 缺少数值", ErrInvalidSizeFormat, text)
	}

	value, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q 数值无效", ErrInvalidSizeFormat, text)
	}

	mult, ok := multipliers[unitPart]
	if !ok {
		return 0, fmt.Errorf("%w: %q 未知单位 %q", ErrInvalidSizeFormat, text, unitPart)
	}

	result := math.Round(value * mult)
	if result >= math.MaxUint64 {
		return 0, fmt.Errorf("%w: %q 超出范围", ErrInvalidSizeFormat, text)
	}

	return uint64(result), nil
}
