package models

type EssayType string

const (
	EssayNarrative     EssayType = "narrative"
	EssayArgumentative EssayType = "argumentative"
	EssayExpository    EssayType = "expository"
	EssayDescriptive   EssayType = "descriptive"
	EssayPractical     EssayType = "practical"
	EssayImaginative   EssayType = "imaginative"
	EssayDiary         EssayType = "diary"
	EssayWeeklyDiary   EssayType = "weekly_diary"
	EssayOther         EssayType = "other"
)

var essayTypeLabels = map[EssayType]string{
	EssayNarrative:     "narrative essay telling a story or an experience",
	EssayArgumentative: "argumentative essay stating and defending a point of view",
	EssayExpository:    "expository essay explaining a thing or a piece of knowledge",
	EssayDescriptive:   "descriptive essay portraying scenery or people",
	EssayPractical:     "practical writing such as a letter, notice or speech",
	EssayImaginative:   "imaginative writing such as a fairy tale, fable or science fiction story",
	EssayDiary:         "diary entry recording a day of everyday life",
	EssayWeeklyDiary:   "weekly journal summarizing a week of study and life",
	EssayOther:         "free-form essay with no particular genre requirement",
}

func (t EssayType) Valid() bool {
	_, ok := essayTypeLabels[t]
	return ok
}

// Describe returns the prompt wording for the essay type.
func (t EssayType) Describe() string {
	return essayTypeLabels[t]
}

// Language is the language an essay is written in.
type Language string

const (
	LanguageChinese Language = "chinese"
	LanguageEnglish Language = "english"
)

func (l Language) Valid() bool {
	return l == LanguageChinese || l == LanguageEnglish
}

// Describe returns the prompt wording for the language.
func (l Language) Describe() string {
	if l == LanguageEnglish {
		return "English"
	}
	return "Simplified Chinese"
}

// LengthUnit is what essay lengths are counted in.
func (l Language) LengthUnit() string {
	if l == LanguageEnglish {
		return "words"
	}
	return "characters"
}

const (
	MinGrade = 1
	MaxGrade = 12
)

// EssayParams describes an essay or writing guide request. Exactly one of
// Topic and Image supplies the subject matter. An empty Language means
// Chinese.
type EssayParams struct {
	Topic     string
	Image     *Image
	Grade     int
	EssayType EssayType
	WordCount string
	Language  Language
}

// EssayExamples holds one essay on the same topic in each of three styles.
type EssayExamples struct {
	Creative      string `json:"creative"`
	Philosophical string `json:"philosophical"`
	Analytical    string `json:"analytical"`
}
