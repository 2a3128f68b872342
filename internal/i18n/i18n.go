package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

const (
	// LocaleEN 英文
	LocaleEN = "en"
	// LocaleZH 简体中文
	LocaleZH = "zh"
	// DefaultLocale 缺省语言
	DefaultLocale = LocaleEN

	localeQueryKey = "lang"
)

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.SimplifiedChinese,
})

// ResolveLocale 解析请求语言（?lang= 优先，其次 Accept-Language）
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale
	}
	if raw := strings.TrimSpace(c.Query(localeQueryKey)); raw != "" {
		return NormalizeLocale(raw)
	}
	header := strings.TrimSpace(c.GetHeader("Accept-Language"))
	if header == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	if index == 1 {
		return LocaleZH
	}
	return LocaleEN
}

// NormalizeLocale 归一化语言标识
func NormalizeLocale(raw string) string {
	tag, err := language.Parse(strings.TrimSpace(raw))
	if err != nil {
		return DefaultLocale
	}
	base, _ := tag.Base()
	if base.String() == LocaleZH {
		return LocaleZH
	}
	return LocaleEN
}

// T 获取翻译文本，缺失时回退英文，再回退 key 本身
func T(locale, key string) string {
	if msg, ok := lookup(locale, key); ok {
		return msg
	}
	return key
}

// Sprintf 获取带参数的翻译文本
func Sprintf(locale, key string, args ...interface{}) string {
	msg, ok := lookup(locale, key)
	if !ok {
		return key
	}
	if len(args) == 0 || !strings.Contains(msg, "%") {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// Has 是否存在该 key
func Has(key string) bool {
	_, ok := messages[LocaleEN][key]
	return ok
}

func lookup(locale, key string) (string, bool) {
	if table, ok := messages[locale]; ok {
		if msg, ok := table[key]; ok {
			return msg, true
		}
	}
	msg, ok := messages[DefaultLocale][key]
	return msg, ok
}
