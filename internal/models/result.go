package models

type SettingsRequest struct {
	Provider string `json:"provider"`
	APIKey   string `json:"api_key"`
}

type SettingsResponse struct {
	Provider      string `json:"provider"`
	CredentialSet bool   `json:"credential_set"`
}

type TextResponse struct {
	Text string `json:"text"`
}

type BatchTextResponse struct {
	Texts []string `json:"texts"`
}

type TableResponse struct {
	Markdown string `json:"markdown"`
}

type EssayExamplesRequest struct {
	Topic string `json:"topic"`
}

type TutorRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type OverlayRequest struct {
	Box2D       Box2D   `json:"box_2d"`
	ImageWidth  float64 `json:"image_width"`
	ImageHeight float64 `json:"image_height"`
}

type ErrorResponse struct {
	Error       string `json:"error"`
	Code        int    `json:"code"`
	Kind        string `json:"kind,omitempty"`
	Reconfigure bool   `json:"reconfigure,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}
