// Package vin 修正 VIN 中常见的人工录入错误。
//
// 只做字符级修正，不校验长度与校验位；VIN 是否有效完全以登记库的解码结果为准。
package vin

import (
	"strings"
	"unicode"

	"vinaudit/internal/model"
)

// Normalize 按固定顺序修正 VIN，返回修正结果与最后一次生效的修正标记
//
//  1. 去除所有空白
//  2. Q/q → 0
//  3. O/o → 0（包含 "unknown" 时跳过）
//  4. I/i → 1
func Normalize(raw string) model.NormalizedVIN {
	value := raw
	tag := model.CorrectionNone

	if stripped := removeSpaces(value); stripped != value {
		value = stripped
		tag = model.CorrectionSpacesRemoved
	}

	if replaced := replaceFold(value, 'q', '0'); replaced != value {
		value = replaced
		tag = model.CorrectionQToZero
	}

	if !strings.Contains(strings.ToLower(value), "unknown") {
		if replaced := replaceFold(value, 'o', '0'); replaced != value {
			value = replaced
			tag = model.CorrectionOToZero
		}
	}

	if replaced := replaceFold(value, 'i', '1'); replaced != value {
		value = replaced
		tag = model.CorrectionIToOne
	}

	return model.NormalizedVIN{Value: value, Correction: tag}
}

func removeSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// replaceFold 忽略大小写替换单个字母
func replaceFold(s string, letter, with rune) string {
	upper := unicode.ToUpper(letter)
	return strings.Map(func(r rune) rune {
		if r == letter || r == upper {
			return with
		}
		return r
	}, s)
}
