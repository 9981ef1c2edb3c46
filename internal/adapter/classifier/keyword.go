package classifier

import (
	"context"
	"strings"
	"time"

	"github.com/seu-repo/symptom-assistant/internal/domain"
)

type rule struct {
	keywords []string
	result   domain.ClassificationResult
}

// Rules are checked in order; emergencies come first so that "chest pain"
// wins over milder matches in the same sentence.
var rules = map[domain.Language][]rule{
	domain.LanguageEnglish: {
		{
			keywords: []string{"chest pain", "breathing", "breathless", "unconscious"},
			result: domain.ClassificationResult{
				Reply:      "Chest pain or trouble breathing can be serious. Please seek emergency care right away.",
				Confidence: "90%",
				Suggestion: domain.SuggestionEmergency,
			},
		},
		{
			keywords: []string{"fever", "temperature"},
			result: domain.ClassificationResult{
				Reply:      "It sounds like you have a fever. Get plenty of rest, drink fluids and keep an eye on your temperature.",
				Confidence: "80%",
				Suggestion: domain.SuggestionRest,
			},
		},
		{
			keywords: []string{"cough", "cold", "sore throat"},
			result: domain.ClassificationResult{
				Reply:      "A mild cough or cold usually gets better with rest, warm fluids and steam.",
				Confidence: "75%",
				Suggestion: domain.SuggestionRest,
			},
		},
		{
			keywords: []string{"headache", "migraine"},
			result: domain.ClassificationResult{
				Reply:      "Headaches have many causes. If it is severe or keeps coming back, please see a doctor.",
				Confidence: "70%",
				Suggestion: domain.SuggestionDoctor,
			},
		},
	},
	domain.LanguageHindi: {
		{
			keywords: []string{"सीने में दर्द", "सांस"},
			result: domain.ClassificationResult{
				Reply:      "सीने में दर्द या सांस लेने में तकलीफ गंभीर हो सकती है। कृपया तुरंत आपातकालीन सहायता लें।",
				Confidence: "90%",
				Suggestion: domain.SuggestionEmergency,
			},
		},
		{
			keywords: []string{"बुखार"},
			result: domain.ClassificationResult{
				Reply:      "लगता है आपको बुखार है। आराम करें, पानी पीते रहें और तापमान पर नज़र रखें।",
				Confidence: "80%",
				Suggestion: domain.SuggestionRest,
			},
		},
		{
			keywords: []string{"खांसी", "जुकाम"},
			result: domain.ClassificationResult{
				Reply:      "हल्की खांसी या जुकाम आमतौर पर आराम, गर्म पेय और भाप से ठीक हो जाता है।",
				Confidence: "75%",
				Suggestion: domain.SuggestionRest,
			},
		},
		{
			keywords: []string{"सिरदर्द", "सिर दर्द"},
			result: domain.ClassificationResult{
				Reply:      "सिरदर्द के कई कारण हो सकते हैं। अगर दर्द तेज़ है या बार-बार होता है, तो डॉक्टर से मिलें।",
				Confidence: "70%",
				Suggestion: domain.SuggestionDoctor,
			},
		},
	},
}

var fallback = map[domain.Language]domain.ClassificationResult{
	domain.LanguageEnglish: {
		Reply:      "I could not identify your symptoms clearly. Please consult a doctor for a proper diagnosis.",
		Confidence: "60%",
		Suggestion: domain.SuggestionDoctor,
	},
	domain.LanguageHindi: {
		Reply:      "मैं आपके लक्षण स्पष्ट रूप से नहीं पहचान सका। कृपया सही जांच के लिए डॉक्टर से परामर्श करें।",
		Confidence: "60%",
		Suggestion: domain.SuggestionDoctor,
	},
}

// KeywordClassifier is the reference classification policy: case-insensitive
// keyword matching in the active language after a fixed artificial latency.
type KeywordClassifier struct {
	latency time.Duration
}

func NewKeywordClassifier(latency time.Duration) *KeywordClassifier {
	return &KeywordClassifier{latency: latency}
}

func (c *KeywordClassifier) Classify(ctx context.Context, text string, lang domain.Language) (domain.ClassificationResult, error) {
	if c.latency > 0 {
		timer := time.NewTimer(c.latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return domain.ClassificationResult{}, ctx.Err()
		}
	}

	if _, ok := rules[lang]; !ok {
		lang = domain.LanguageEnglish
	}

	lower := strings.ToLower(text)
	for _, r := range rules[lang] {
		for _, keyword := range r.keywords {
			if strings.Contains(lower, keyword) {
				return r.result, nil
			}
		}
	}

	return fallback[lang], nil
}
