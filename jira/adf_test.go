package jira

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextToADF_Paragraphs(t *testing.T) {
	doc := TextToADF("First paragraph.\n\nSecond paragraph.")

	assert.Equal(t, "doc", doc.Type)
	assert.Equal(t, 1, doc.Version)
	require.Len(t, doc.Content, 2)

	for i, want := range []string{"First paragraph.", "Second paragraph."} {
		node := doc.Content[i]
		assert.Equal(t, "paragraph", node.Type)
		require.Len(t, node.Content, 1)
		assert.Equal(t, "text", node.Content[0].Type)
		assert.Equal(t, want, node.Content[0].Text)
	}
}

func TestTextToADF_BulletBlock(t *testing.T) {
	doc := TextToADF("Action items:\n\n- ship it\n- write docs\n* tell support")

	require.Len(t, doc.Content, 2)
	assert.Equal(t, "paragraph", doc.Content[0].Type)

	list := doc.Content[1]
	assert.Equal(t, "bulletList", list.Type)
	require.Len(t, list.Content, 3)

	for i, want := range []string{"ship it", "write docs", "tell support"} {
		item := list.Content[i]
		assert.Equal(t, "listItem", item.Type)
		require.Len(t, item.Content, 1)
		require.Len(t, item.Content[0].Content, 1)
		assert.Equal(t, want, item.Content[0].Content[0].Text)
	}
}

func TestTextToADF_MixedBlockStaysParagraph(t *testing.T) {
	// A block where only some lines are bullets is not a list.
	doc := TextToADF("intro line\n- but this bullet shares the block")

	require.Len(t, doc.Content, 1)
	assert.Equal(t, "paragraph", doc.Content[0].Type)
}

func TestTextToADF_Empty(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n\n"} {
		doc := TextToADF(text)
		require.Len(t, doc.Content, 1, "TextToADF(%q)", text)
		assert.Equal(t, "paragraph", doc.Content[0].Type, "empty input still yields a valid document")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name:    "missing url",
			cfg:     Config{Auth: AuthConfig{Type: AuthPAT, Token: "t"}},
			wantErr: ErrConfigURLRequired,
		},
		{
			name:    "missing auth type",
			cfg:     Config{URL: "https://x.atlassian.net"},
			wantErr: ErrConfigAuthTypeRequired,
		},
		{
			name:    "api token without email",
			cfg:     Config{URL: "https://x.atlassian.net", Auth: AuthConfig{Type: AuthAPIToken, Token: "t"}},
			wantErr: ErrConfigAPITokenAuth,
		},
		{
			name:    "basic without password",
			cfg:     Config{URL: "https://x.atlassian.net", Auth: AuthConfig{Type: AuthBasic, Username: "u"}},
			wantErr: ErrConfigBasicAuth,
		},
		{
			name:    "pat without token",
			cfg:     Config{URL: "https://x.atlassian.net", Auth: AuthConfig{Type: AuthPAT}},
			wantErr: ErrConfigPATAuth,
		},
		{
			name:    "unknown auth type",
			cfg:     Config{URL: "https://x.atlassian.net", Auth: AuthConfig{Type: "oauth"}},
			wantErr: ErrConfigAuthTypeInvalid,
		},
		{
			name: "valid api token",
			cfg: Config{
				URL:  "https://x.atlassian.net",
				Auth: AuthConfig{Type: AuthAPIToken, Email: "a@b.c", Token: "t"},
			},
		},
		{
			name: "valid pat",
			cfg:  Config{URL: "https://jira.corp", Auth: AuthConfig{Type: AuthPAT, Token: "t"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Version(t *testing.T) {
	assert.Equal(t, APIVersionV3, (&Config{}).Version())
	assert.Equal(t, APIVersionV3, (&Config{APIVersion: APIVersionAuto}).Version())
	assert.Equal(t, APIVersionV2, (&Config{APIVersion: APIVersionV2}).Version())
}
