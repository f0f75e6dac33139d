package utils

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-pinyin"
)

var acronymArgs = func() pinyin.Args {
	a := pinyin.NewArgs()
	a.Style = pinyin.FirstLetter
	return a
}()

// Acronym 返回姓名的大写缩写：拉丁字母取每个单词的首字母，汉字取每个字拼音的首字母。
// 例如 "Luca De Candia" -> "LDC"，"王小明" -> "WXM"
func Acronym(name string) string {
	var b strings.Builder

	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.Is(unicode.Han, r) {
				if letters := pinyin.LazyPinyin(string(r), acronymArgs); len(letters) > 0 {
					b.WriteString(strings.ToUpper(letters[0]))
				}
				continue
			}
			if unicode.IsLetter(r) {
				b.WriteRune(unicode.ToUpper(r))
				break
			}
		}
	}

	return b.String()
}
