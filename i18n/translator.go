package i18n

import (
	"strings"
	"sync/atomic"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "declared" or "dtype").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
// Templates reference data entries as {name}.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"malformed_shape":      "malformed shape spec {text}",
		"shape_mismatch":       "declared shape {declared}, got {actual}",
		"invalid_type":         "cannot use {got} as {dtype}",
		"not_instance":         "not an instance of {type}",
		"not_iterable":         "value is not iterable at depth {depth}",
		"overflow":             "{value} does not fit in {dtype}",
		"invalid_value":        "invalid value",
		"unknown_keyword":      "keyword {keyword} not defined in registry",
		"string_shape_skipped": "string shape not checked for {keyword}",
		"duplicate_key":        "duplicate key {key}",
		"registry_invalid":     "invalid registry entry {name}: {reason}",
	},
	"ja": {
		"malformed_shape":      "形状指定が不正です: {text}",
		"shape_mismatch":       "形状が一致しません (宣言 {declared}, 実際 {actual})",
		"invalid_type":         "{got} を {dtype} として扱えません",
		"not_instance":         "{type} のインスタンスではありません",
		"not_iterable":         "深さ {depth} の値が反復可能ではありません",
		"overflow":             "{value} は {dtype} に収まりません",
		"invalid_value":        "値が不正です",
		"unknown_keyword":      "キーワード {keyword} はレジストリに定義されていません",
		"string_shape_skipped": "{keyword} の文字列形状は検査されません",
		"duplicate_key":        "キー {key} が重複しています",
		"registry_invalid":     "レジストリ項目 {name} が不正です: {reason}",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	return expand(tmpl, data)
}

// expand substitutes {name} placeholders; unknown placeholders are dropped
// together with a leading space so messages degrade to their static part.
func expand(tmpl string, data map[string]string) string {
	var b strings.Builder
	for {
		i := strings.IndexByte(tmpl, '{')
		if i < 0 {
			b.WriteString(tmpl)
			break
		}
		j := strings.IndexByte(tmpl[i:], '}')
		if j < 0 {
			b.WriteString(tmpl)
			break
		}
		name := tmpl[i+1 : i+j]
		if v, ok := data[name]; ok {
			b.WriteString(tmpl[:i])
			b.WriteString(v)
		} else {
			b.WriteString(strings.TrimRight(tmpl[:i], " "))
		}
		tmpl = tmpl[i+j+1:]
	}
	return b.String()
}

// translatorBox keeps the stored type fixed; atomic.Value rejects stores of
// differing concrete types.
type translatorBox struct{ tr Translator }

var currentTranslator atomic.Value

func init() { currentTranslator.Store(translatorBox{dictTranslator{lang: "en"}}) }

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator.Store(translatorBox{dictTranslator{lang: lang}})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	currentTranslator.Store(translatorBox{tr})
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	return currentTranslator.Load().(translatorBox).tr.Message(code, data)
}
