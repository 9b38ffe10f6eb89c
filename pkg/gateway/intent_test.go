package gateway_test

import (
	"testing"

	"github.com/Tiffanyxxx3238/poopalooza-server/pkg/gateway"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		text string
		want gateway.Language
	}{
		{"why am I constipated", gateway.LangEnglish},
		{"我最近一直便秘怎麼辦", gateway.LangChinese},
		{"最近便秘がひどいです", gateway.LangJapanese}, // kanji plus kana stays Japanese
		{"요즘 변비가 심해요", gateway.LangKorean},
		{"", gateway.LangEnglish},
		{"123 !?", gateway.LangEnglish},
	}

	for _, tt := range tests {
		if got := gateway.DetectLanguage(tt.text); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestClassify_AppIntent(t *testing.T) {
	tests := []string{
		"how do I use this app",
		"What features does Poopalooza have?",
		"這個app有什麼功能",
		"このアプリの使い方を教えて",
		"앱 사용법 알려줘",
	}

	for _, q := range tests {
		intent := gateway.Classify(q)
		if !intent.AppIntent {
			t.Errorf("Classify(%q) should be app intent", q)
		}
	}
}

func TestClassify_Topics(t *testing.T) {
	tests := []struct {
		question string
		want     gateway.Topic
	}{
		{"I think I have constipation", gateway.TopicConstipation},
		{"我一直便秘", gateway.TopicConstipation},
		{"why do I keep getting diarrhea", gateway.TopicDiarrhea},
		{"一直拉肚子怎麼辦", gateway.TopicDiarrhea},
		{"I feel so bloated after meals", gateway.TopicBloating},
		{"吃完飯就脹氣", gateway.TopicBloating},
		{"do I have hemorrhoids", gateway.TopicHemorrhoids},
		{"痔瘡会自己好嗎", gateway.TopicHemorrhoids},
		{"what should I eat for gut health", gateway.TopicGeneral},
	}

	for _, tt := range tests {
		intent := gateway.Classify(tt.question)
		if intent.AppIntent {
			t.Errorf("Classify(%q) wrongly detected app intent", tt.question)
			continue
		}
		if intent.Topic != tt.want {
			t.Errorf("Classify(%q).Topic = %v, want %v", tt.question, intent.Topic, tt.want)
		}
	}
}

func TestClassify_FirstRuleWins(t *testing.T) {
	// Mentions both constipation and diarrhea; the earlier rule decides.
	intent := gateway.Classify("我便秘完又拉肚子")
	if intent.Topic != gateway.TopicConstipation {
		t.Errorf("expected constipation to win, got %v", intent.Topic)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	question := "最近便秘がひどくてお腹も張ります"
	first := gateway.Classify(question)
	for i := 0; i < 100; i++ {
		if got := gateway.Classify(question); got != first {
			t.Fatalf("classification not stable: %+v vs %+v", got, first)
		}
	}
}
