package domain

// Source is where a media element came from. It decides which player
// implementation the client picks and whether the URL is network-fetchable.
type Source string

const (
	SourceYouTube   Source = "youtube"
	SourceOneDrive  Source = "onedrive"
	SourceDirectUrl Source = "direct"
	SourceLocal     Source = "local"
)

// MediaOption is one encoded rendition of a media element.
type MediaOption struct {
	Src        string `json:"src"`
	Resolution string `json:"resolution"`
}

type Subtitle struct {
	Src  string `json:"src"`
	Lang string `json:"lang"`
}

// MediaElement is a playable unit. It is immutable once created: playlist
// slots and the playing pointer reference it by value, never mutate it.
type MediaElement struct {
	Title       string        `json:"title,omitempty"`
	Src         []MediaOption `json:"src"`
	Sub         []Subtitle    `json:"sub"`
	Source      Source        `json:"source,omitempty"`
	OriginalUrl string        `json:"originalUrl,omitempty"`
}
