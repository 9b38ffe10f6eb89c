package gateway

// Canned user-facing texts, selected by detected language. These are
// configuration data: the gateway picks them by key and never inspects their
// content.

var appIntroMessages = map[Language]string{
	LangEnglish: `Poopalooza helps you take care of your digestive health:

• Ask the AI assistant about constipation, diarrhea, bloating, hemorrhoids, diet, and daily habits
• Track your bowel movements and spot patterns over time
• Get practical, quantified advice with clear "see a doctor" thresholds

Just type a health question to get started!`,

	LangChinese: `Poopalooza 幫助你照顧腸道健康：

• 向 AI 助手詢問便秘、腹瀉、脹氣、痔瘡、飲食與生活習慣問題
• 記錄排便狀況，觀察長期變化
• 獲得具體、可執行的建議，並清楚告訴你何時該就醫

直接輸入健康問題即可開始！`,

	LangJapanese: `Poopalooza は腸の健康をサポートします：

• 便秘・下痢・お腹の張り・痔・食事・生活習慣について AI アシスタントに質問できます
• お通じを記録して長期的な変化を確認できます
• 具体的で実行しやすいアドバイスと受診の目安をお伝えします

健康に関する質問を入力してみてください！`,

	LangKorean: `Poopalooza는 장 건강 관리를 도와드립니다:

• 변비, 설사, 복부팽만, 치질, 식단, 생활 습관에 대해 AI 어시스턴트에게 질문하세요
• 배변 기록을 남기고 장기적인 변화를 확인하세요
• 구체적이고 실행 가능한 조언과 병원 방문 기준을 알려드립니다

건강 질문을 입력해 보세요!`,
}

var invalidQuestionMessages = map[Language]string{
	LangEnglish:  "Please provide a valid question.",
	LangChinese:  "請提供有效的問題。",
	LangJapanese: "有効な質問を入力してください。",
	LangKorean:   "유효한 질문을 입력해 주세요.",
}

var minuteLimitMessages = map[Language]string{
	LangEnglish:  "Too many requests, please try again in a minute. In the meantime: drink enough water, eat fiber-rich foods, and keep a regular toilet routine.",
	LangChinese:  "請求太頻繁，請一分鐘後再試。這段時間可以：多喝水、攝取高纖維食物、維持固定如廁習慣。",
	LangJapanese: "リクエストが多すぎます。1分後にもう一度お試しください。その間に：水分補給、食物繊維の摂取、規則正しいトイレ習慣を心がけましょう。",
	LangKorean:   "요청이 너무 많습니다. 1분 후 다시 시도해 주세요. 그동안: 물을 충분히 마시고, 섬유질이 풍부한 음식을 드시고, 규칙적인 배변 습관을 유지하세요.",
}

var dailyLimitMessages = map[Language]string{
	LangEnglish:  "Today's free question budget is used up — it resets at midnight UTC. Until then: stay hydrated, move after meals, and don't ignore the urge to go.",
	LangChinese:  "今日免費提問額度已用完，將於 UTC 午夜重置。在那之前：保持水分、飯後散步、有便意不要忍。",
	LangJapanese: "本日の無料質問枠を使い切りました。UTC の深夜0時にリセットされます。それまでは：水分補給、食後の軽い運動、便意を我慢しないことを心がけましょう。",
	LangKorean:   "오늘의 무료 질문 한도를 모두 사용했습니다. UTC 자정에 초기화됩니다. 그동안: 수분을 유지하고, 식후에 가볍게 움직이고, 변의를 참지 마세요.",
}

var providerQuotaMessages = map[Language]string{
	LangEnglish:  "The free AI quota is temporarily exhausted. Please try again later — your question was not counted against your budget.",
	LangChinese:  "免費 AI 額度暫時用完，請稍後再試。這次提問不會計入你的額度。",
	LangJapanese: "無料の AI 枠を一時的に使い切りました。しばらくしてからもう一度お試しください。今回の質問は利用枠に計上されません。",
	LangKorean:   "무료 AI 한도가 일시적으로 소진되었습니다. 잠시 후 다시 시도해 주세요. 이번 질문은 한도에 포함되지 않습니다.",
}

var unavailableMessages = map[Language]string{
	LangEnglish:  "Sorry, the AI assistant is temporarily unavailable. Please try again later. General tips: drink 1.5-2 L of water a day, eat vegetables at every meal, and walk after dinner.",
	LangChinese:  "抱歉，AI 助手暫時無法使用，請稍後再試。通用建議：每天喝 1.5-2 公升的水、每餐吃蔬菜、晚餐後散步。",
	LangJapanese: "申し訳ありません。AI アシスタントは一時的に利用できません。後ほどお試しください。一般的なアドバイス：1日1.5〜2Lの水分補給、毎食の野菜、夕食後の散歩。",
	LangKorean:   "죄송합니다. AI 어시스턴트를 일시적으로 사용할 수 없습니다. 나중에 다시 시도해 주세요. 일반 팁: 하루 1.5-2L의 물, 매끼 채소, 저녁 식사 후 산책.",
}

var timeoutMessages = map[Language]string{
	LangEnglish:  "The AI took too long to answer. Please try asking again — shorter questions usually get faster answers.",
	LangChinese:  "AI 回應逾時，請再試一次。較短的問題通常能更快得到回答。",
	LangJapanese: "AI の応答がタイムアウトしました。もう一度お試しください。短い質問の方が早く回答が得られます。",
	LangKorean:   "AI 응답 시간이 초과되었습니다. 다시 시도해 주세요. 짧은 질문일수록 빠른 답변을 받을 수 있습니다.",
}

func messageFor(table map[Language]string, lang Language) string {
	if msg, ok := table[lang]; ok {
		return msg
	}
	return table[LangEnglish]
}

// AppIntro returns the canned feature summary for a language.
func AppIntro(lang Language) string {
	return messageFor(appIntroMessages, lang)
}

// fallbackFor picks actionable fallback text for a failed request.
func fallbackFor(kind Kind, lang Language) string {
	switch kind {
	case KindInvalidInput:
		return messageFor(invalidQuestionMessages, lang)
	case KindMinuteLimit:
		return messageFor(minuteLimitMessages, lang)
	case KindDailyLimit:
		return messageFor(dailyLimitMessages, lang)
	case KindUpstreamQuota:
		return messageFor(providerQuotaMessages, lang)
	case KindUpstreamTimeout:
		return messageFor(timeoutMessages, lang)
	default:
		return messageFor(unavailableMessages, lang)
	}
}
