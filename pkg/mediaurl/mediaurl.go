package mediaurl

import (
	"errors"
	"net/url"
	"strings"
)

// Kind is the source classification of a playable URL.
type Kind string

const (
	KindYouTube  Kind = "youtube"
	KindOneDrive Kind = "onedrive"
	KindDirect   Kind = "direct"
	KindLocal    Kind = "local"
)

var ErrInvalidUrl = errors.New("invalid media url")

// Classify decides the source kind from the URL string alone. Blob URLs are
// in-browser ephemeral references: they are classified as local and bypass
// the network-URL validation, since they are not fetchable by anyone but the
// client that minted them.
func Classify(rawUrl string) (Kind, error) {
	if strings.HasPrefix(rawUrl, "blob:") {
		return KindLocal, nil
	}

	u, err := url.Parse(rawUrl)
	if err != nil {
		return "", ErrInvalidUrl
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidUrl
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case isYouTubeHost(host):
		return KindYouTube, nil
	case isOneDriveHost(host):
		return KindOneDrive, nil
	default:
		return KindDirect, nil
	}
}

func isYouTubeHost(host string) bool {
	return host == "youtu.be" ||
		host == "youtube.com" ||
		strings.HasSuffix(host, ".youtube.com")
}

func isOneDriveHost(host string) bool {
	return host == "1drv.ms" ||
		host == "onedrive.live.com" ||
		strings.HasSuffix(host, ".sharepoint.com")
}
