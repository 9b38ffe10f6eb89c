package gateway

import (
	"strings"
	"unicode"
)

// DetectLanguage returns the primary-script language of the text. Hangul and
// kana are checked before Han so mixed-script Japanese is not mislabeled as
// Chinese (Japanese sentences routinely contain kanji).
func DetectLanguage(text string) Language {
	hasHan := false
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Hangul, r):
			return LangKorean
		case unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r):
			return LangJapanese
		case unicode.Is(unicode.Han, r):
			hasHan = true
		}
	}
	if hasHan {
		return LangChinese
	}
	return LangEnglish
}

// appIntentKeywords mark a question as asking about the product itself rather
// than a health topic. Any case-insensitive substring match wins.
var appIntentKeywords = []string{
	"poopalooza",
	"this app",
	"the app",
	"how to use",
	"how do i use",
	"what can you do",
	"feature",
	"這個app",
	"功能",
	"怎麼用",
	"如何使用",
	"使用方法",
	"使用說明",
	"介紹一下",
	"使い方",
	"機能",
	"사용법",
	"기능",
}

// topicRules is an ordered rule list; the first matching rule wins and new
// categories are added by appending a rule, not by editing existing ones.
type topicRule struct {
	topic    Topic
	keywords []string
}

var topicRules = []topicRule{
	{TopicConstipation, []string{
		"constipat", "便秘", "排便困難", "大不出", "拉不出", "便がでない", "변비",
	}},
	{TopicDiarrhea, []string{
		"diarrh", "loose stool", "腹瀉", "拉肚子", "軟便", "水便", "下痢", "설사",
	}},
	{TopicBloating, []string{
		"bloat", "gassy", "flatulen", "脹氣", "腹脹", "肚子脹", "お腹の張り", "복부팽만", "더부룩",
	}},
	{TopicHemorrhoids, []string{
		"hemorrhoid", "haemorrhoid", "piles", "痔瘡", "痔", "치질",
	}},
}

// Classify is a pure function of the question text: language detection,
// app-intent detection, then ordered topic matching with general as the
// fallback. Repeated calls with identical input always agree.
func Classify(question string) Intent {
	lang := DetectLanguage(question)
	lower := strings.ToLower(question)

	for _, kw := range appIntentKeywords {
		if strings.Contains(lower, kw) {
			return Intent{AppIntent: true, Language: lang}
		}
	}

	for _, rule := range topicRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return Intent{Language: lang, Topic: rule.topic}
			}
		}
	}

	return Intent{Language: lang, Topic: TopicGeneral}
}
