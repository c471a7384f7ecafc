package domain

// Turn is one completed exchange: the user's transcribed utterance plus
// the two generated responses derived from it.
type Turn struct {
	User           string `json:"user"`
	Coaching       string `json:"coaching"`
	Conversational string `json:"conversational"`
}
