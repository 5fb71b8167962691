package usecases

import (
	"strings"

	"project_healthbot/internal/entities"
)

// User-facing texts produced by the bot itself rather than a knowledge source.
var (
	disclaimerText = entities.Localized{
		entities.LangEnglish: "⚠️ This information is for educational purposes only. Please consult a doctor or your nearest health center for medical advice.",
		entities.LangHindi:   "⚠️ यह जानकारी केवल शैक्षिक उद्देश्य के लिए है। चिकित्सा सलाह के लिए कृपया डॉक्टर या नजदीकी स्वास्थ्य केंद्र से संपर्क करें।",
		entities.LangOdia:    "⚠️ ଏହି ସୂଚନା କେବଳ ଶିକ୍ଷାମୂଳକ ଉଦ୍ଦେଶ୍ୟରେ। ଚିକିତ୍ସା ପରାମର୍ଶ ପାଇଁ ଦୟାକରି ଡାକ୍ତର କିମ୍ବା ନିକଟସ୍ଥ ସ୍ୱାସ୍ଥ୍ୟ କେନ୍ଦ୍ର ସହ ଯୋଗାଯୋଗ କରନ୍ତୁ।",
	}

	backendErrorText = entities.Localized{
		entities.LangEnglish: "Sorry, I couldn't get an answer right now. Please try again later.",
		entities.LangHindi:   "क्षमा करें, अभी उत्तर नहीं मिल सका। कृपया बाद में फिर प्रयास करें।",
		entities.LangOdia:    "କ୍ଷମା କରନ୍ତୁ, ବର୍ତ୍ତମାନ ଉତ୍ତର ମିଳିପାରିଲା ନାହିଁ। ଦୟାକରି ପରେ ପୁଣି ଚେଷ୍ଟା କରନ୍ତୁ।",
	}

	noAnswerText = entities.Localized{
		entities.LangEnglish: "Sorry, no answer.",
		entities.LangHindi:   "क्षमा करें, कोई उत्तर नहीं मिला।",
		entities.LangOdia:    "କ୍ଷମା କରନ୍ତୁ, କୌଣସି ଉତ୍ତର ମିଳିଲା ନାହିଁ।",
	}

	welcomeText = entities.Localized{
		entities.LangEnglish: "Welcome to the public health assistant! Ask about dengue, malaria, vaccines or prevention, or pick a topic below. Send \"lang hi\" or \"lang or\" to switch language.",
		entities.LangHindi:   "जन स्वास्थ्य सहायक में आपका स्वागत है! डेंगू, मलेरिया, टीके या बचाव के बारे में पूछें, या नीचे से विषय चुनें। भाषा बदलने के लिए \"lang en\" या \"lang or\" भेजें।",
		entities.LangOdia:    "ଜନସ୍ୱାସ୍ଥ୍ୟ ସହାୟକକୁ ସ୍ୱାଗତ! ଡେଙ୍ଗୁ, ମ୍ୟାଲେରିଆ, ଟୀକା କିମ୍ବା ପ୍ରତିରୋଧ ବିଷୟରେ ପଚାରନ୍ତୁ, କିମ୍ବା ତଳୁ ଏକ ବିଷୟ ବାଛନ୍ତୁ। ଭାଷା ବଦଳାଇବାକୁ \"lang en\" କିମ୍ବା \"lang hi\" ପଠାନ୍ତୁ।",
	}

	languageSetText = entities.Localized{
		entities.LangEnglish: "Language set to English.",
		entities.LangHindi:   "भाषा हिंदी पर सेट की गई।",
		entities.LangOdia:    "ଭାଷା ଓଡ଼ିଆକୁ ସେଟ୍ କରାଗଲା।",
	}

	languageUnknownText = entities.Localized{
		entities.LangEnglish: "Supported languages: en (English), hi (Hindi), or (Odia). Example: lang hi",
		entities.LangHindi:   "समर्थित भाषाएँ: en (English), hi (हिंदी), or (ଓଡ଼ିଆ)। उदाहरण: lang hi",
		entities.LangOdia:    "ସମର୍ଥିତ ଭାଷା: en (English), hi (हिंदी), or (ଓଡ଼ିଆ)। ଉଦାହରଣ: lang or",
	}
)

// riskKeywords trigger the disclaimer. Kept apart from the FAQ topic
// keywords: these describe the kind of question, not its topic.
var riskKeywords = []string{
	"symptom", "disease", "medicine", "treatment",
	"लक्षण", "रोग", "बीमारी", "दवा", "इलाज",
	"ଲକ୍ଷଣ", "ରୋଗ", "ଔଷଧ", "ଚିକିତ୍ସା",
}

// NeedsDisclaimer reports whether text mentions a health-risk keyword.
func NeedsDisclaimer(text string) bool {
	return containsAny(strings.ToLower(text), riskKeywords)
}
