package mediaurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		url     string
		want    Kind
		wantErr bool
	}{
		{"https://www.youtube.com/watch?v=abc", KindYouTube, false},
		{"https://youtube.com/watch?v=abc", KindYouTube, false},
		{"https://youtu.be/abc", KindYouTube, false},
		{"https://music.youtube.com/watch?v=abc", KindYouTube, false},
		{"https://1drv.ms/v/s!abc", KindOneDrive, false},
		{"https://onedrive.live.com/download?cid=abc", KindOneDrive, false},
		{"https://company-my.sharepoint.com/personal/file.mp4", KindOneDrive, false},
		{"https://cdn.example.com/movie.mp4", KindDirect, false},
		{"http://example.com/movie.mp4", KindDirect, false},
		{"blob:https://app.example.com/550e8400-e29b", KindLocal, false},
		{"ftp://example.com/movie.mp4", "", true},
		{"not a url", "", true},
		{"https://", "", true},
		{"", "", true},
		{"//example.com/movie.mp4", "", true},
		{"https://notyoutube.com/watch", KindDirect, false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := Classify(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidUrl)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
