package domain

// BackLink is the "back" affordance handed to the view layer.
type BackLink struct {
	Prompt     string `json:"prompt,omitempty"`
	URL        string `json:"url,omitempty"`
	Suppressed bool   `json:"suppressed"`
}

// ExitLink points out of a journey from its first stage.
func ExitLink(url, prompt string) *BackLink {
	return &BackLink{Prompt: prompt, URL: url}
}

// SuppressedBackLink hides the back affordance.
func SuppressedBackLink() BackLink {
	return BackLink{Suppressed: true}
}
