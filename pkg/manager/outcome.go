package manager

import (
	"net/url"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Outcome is the result of a manager operation: what the caller must show
// next and the journey state to hand back to the user.
type Outcome struct {
	// Journey is the updated history, nil once the journey was exited.
	Journey *domain.Journey
	// Token is the serialised Journey, empty once the journey was exited.
	Token string
	// Stage is the stage now current, nil once the journey was exited.
	Stage *domain.Stage
	// BackLink is the back affordance to display on Stage.
	BackLink domain.BackLink
	// Response is what a rendered stage produced.
	Response any
	// RedirectURL is set for callable stages and exits: the caller redirects there.
	RedirectURL string
	// Exited reports that back navigation left the journey through its exit link.
	Exited bool
}

// Redirect reports whether the caller must redirect rather than render.
func (o *Outcome) Redirect() bool {
	return o.RedirectURL != ""
}

// WithJourneyParam returns rawURL with the journey token set as the
// ctx_journey query parameter, replacing any previous value.
func WithJourneyParam(rawURL, token string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(domain.ContextParamName, token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
