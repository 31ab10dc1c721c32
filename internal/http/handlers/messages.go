package handlers

// User-facing strings keyed by message and locale. The product ships English
// and Hindi, matching its launch audience.
var messages = map[string]map[string]string{
	"validation": {
		"en": "Please provide both a title and a photo!",
		"hi": "कृपया टाइटल और फोटो दोनों दें!",
	},
	"generation_failed": {
		"en": "Something went wrong. Please try again.",
		"hi": "कुछ गलत हो गया। कृपया फिर से प्रयास करें।",
	},
	"low_coins": {
		"en": "Low coins - recharge to continue generating.",
		"hi": "कम कॉइन - जनरेट करने के लिए रिचार्ज करें।",
	},
}

func message(key, locale string) string {
	byLocale, ok := messages[key]
	if !ok {
		return key
	}
	if msg, ok := byLocale[locale]; ok {
		return msg
	}
	return byLocale["en"]
}
