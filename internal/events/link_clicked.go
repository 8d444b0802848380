package events

// LinkClicked is published to the click stream when a redirect is served.
// Nullable fields are encoded as explicit nulls so downstream consumers in
// other languages see a stable shape. The consumer deduplicates on EventID.
type LinkClicked struct {
	EventID   string  `json:"eventId"`
	LinkID    string  `json:"linkId"`
	Code      string  `json:"code"`
	ClickedAt string  `json:"clickedAt"`
	Referrer  *string `json:"referrer"`
	UserAgent *string `json:"userAgent"`
	IPHash    *string `json:"ipHash"`
	Country   *string `json:"country"`
}

// TopicLinkClicked is the default stream topic for click events.
const TopicLinkClicked = "url.events.link-clicked"
