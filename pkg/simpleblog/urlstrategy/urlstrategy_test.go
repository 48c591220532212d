package urlstrategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentBasedStrategy(t *testing.T) {
	s := NewContentBasedStrategy("http://localhost:8080/")

	u, err := s.MediaURL("authors/a1.png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/authors/a1.png", u)

	key, ok := s.ObjectKey(u)
	assert.True(t, ok)
	assert.Equal(t, "authors/a1.png", key)

	key, ok = s.ObjectKey(u + "?v=2")
	assert.True(t, ok)
	assert.Equal(t, "authors/a1.png", key)

	_, ok = s.ObjectKey("https://ui-avatars.com/api/?name=John+Doe")
	assert.False(t, ok)

	_, ok = s.ObjectKey("http://localhost:8080/media/")
	assert.False(t, ok)

	_, err = NewContentBasedStrategy("").MediaURL("authors/a1.png")
	assert.Error(t, err)
}

func TestCDNStrategy(t *testing.T) {
	s := NewCDNStrategy("https://cdn.example.com")

	u, err := s.MediaURL("blogPosts/p1.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/blogPosts/p1.jpg", u)

	key, ok := s.ObjectKey(u)
	assert.True(t, ok)
	assert.Equal(t, "blogPosts/p1.jpg", key)

	_, ok = s.ObjectKey("https://other.example.com/blogPosts/p1.jpg")
	assert.False(t, ok)

	_, err = s.MediaURL("")
	assert.Error(t, err)
}

func TestNewURLStrategy(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "content based", config: Config{Type: StrategyTypeContentBased, APIBaseURL: "http://api"}},
		{name: "default type", config: Config{APIBaseURL: "http://api"}},
		{name: "cdn", config: Config{Type: StrategyTypeCDN, CDNBaseURL: "https://cdn"}},
		{name: "cdn without url", config: Config{Type: StrategyTypeCDN}, wantErr: true},
		{name: "content based without url", config: Config{Type: StrategyTypeContentBased}, wantErr: true},
		{name: "unknown", config: Config{Type: "presigned"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewURLStrategy(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, s)
		})
	}
}

func TestNewDefaultStrategy(t *testing.T) {
	u, err := NewDefaultStrategy("").MediaURL("authors/a.png")
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIBaseURL+"/media/authors/a.png", u)
}
