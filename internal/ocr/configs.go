package ocr

// Config is one recognition attempt in the thorough search
type Config struct {
	Lang           string `json:"lang"`
	PSM            int    `json:"psm"`
	PreserveSpaces bool   `json:"preserve_spaces,omitempty"`
	Whitelist      string `json:"whitelist,omitempty"`
}

const (
	englishWhitelist = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz.,:-¥$€()[]"
	amountWhitelist  = "0123456789.,¥$€"
)

// ConfigsFor returns the attempts for a language, best first. Unknown
// languages get the Japanese/English set.
func ConfigsFor(language string) []Config {
	switch language {
	case LangJapanese:
		return []Config{
			{Lang: LangJapanese, PSM: PSMSingleBlock, PreserveSpaces: true},
			{Lang: LangJapanese, PSM: PSMAuto},
			{Lang: LangJapanese, PSM: PSMSingleLine},
		}
	case LangEnglish:
		return []Config{
			{Lang: LangEnglish, PSM: PSMSingleBlock, PreserveSpaces: true},
			{Lang: LangEnglish, PSM: PSMSingleLine, Whitelist: englishWhitelist},
			{Lang: LangEnglish, PSM: PSMSingleWord, Whitelist: amountWhitelist},
		}
	default:
		return []Config{
			{Lang: LangJapaneseEnglish, PSM: PSMSingleBlock, PreserveSpaces: true},
			{Lang: LangJapanese, PSM: PSMSingleBlock, PreserveSpaces: true},
			{Lang: LangJapaneseEnglish, PSM: PSMAuto},
			{Lang: LangJapaneseEnglish, PSM: PSMSingleLine},
		}
	}
}

// Request converts the config into engine settings
func (c Config) Request() Request {
	return Request{
		Languages:      SplitLanguages(c.Lang),
		PSM:            c.PSM,
		PreserveSpaces: c.PreserveSpaces,
		Whitelist:      c.Whitelist,
	}
}
