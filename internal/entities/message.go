package entities

// Channel names accepted by the dispatcher. "sms" and "tg" are aliases.
const (
	ChannelWhatsApp = "whatsapp"
	ChannelSMS      = "sms"
	ChannelTelegram = "telegram"
	ChannelTG       = "tg"
	ChannelWeb      = "web"
)

// Message is an inbound chat message after webhook normalization.
type Message struct {
	From     string // sender id: phone number or Telegram chat id
	Content  string
	Platform string // "whatsapp", "telegram", "web"
}

// AnswerSource names the chain stage that produced an answer.
type AnswerSource string

const (
	SourceFAQ   AnswerSource = "faq"
	SourceAI    AnswerSource = "ai"
	SourceNLU   AnswerSource = "nlu"
	SourceError AnswerSource = "error"
)

// Answer is the request-scoped result of the resolution chain.
type Answer struct {
	Text       string       `json:"answer"`
	Source     AnswerSource `json:"source"`
	Language   Language     `json:"language"`
	Disclaimer bool         `json:"disclaimer"`
}

// AIResultKind tags the variant carried by an AIResult.
type AIResultKind int

const (
	AIEmpty AIResultKind = iota
	AIText
	AIError
)

// AIResult is what the generative backend adapter hands to the chain.
// Text is set for AIText, Detail for AIError.
type AIResult struct {
	Kind   AIResultKind
	Text   string
	Detail string
}

func AITextResult(text string) AIResult    { return AIResult{Kind: AIText, Text: text} }
func AIEmptyResult() AIResult              { return AIResult{Kind: AIEmpty} }
func AIErrorResult(detail string) AIResult { return AIResult{Kind: AIError, Detail: detail} }

// MenuOption is one quick-reply button: Label is shown, Query is sent back.
type MenuOption struct {
	Label string
	Query string
}
