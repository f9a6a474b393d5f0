package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	assert.True(t, Valid("imagenes"))
	assert.True(t, Valid("documentos"))
	assert.False(t, Valid("secrets"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("Imagenes")) // category names are case-sensitive
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		name     string
		category string
		filename string
		want     bool
	}{
		{"lowercase extension", "imagenes", "photo.jpg", true},
		{"uppercase extension", "imagenes", "photo.JPG", true},
		{"mixed case extension", "imagenes", "photo.JpEg", true},
		{"executable rejected", "imagenes", "photo.exe", false},
		{"no extension", "imagenes", "photo", false},
		{"trailing dot", "imagenes", "photo.", false},
		{"document", "documentos", "notes.txt", true},
		{"document wrong category", "musica", "notes.txt", false},
		{"audio", "musica", "song.mp3", true},
		{"contact card", "contactos", "book.vcf", true},
		{"email message", "correos", "mail.eml", true},
		{"video", "videos", "clip.MKV", true},
		{"unknown category", "secrets", "notes.txt", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.category, tt.filename))
		})
	}
}

func TestNames(t *testing.T) {
	names := Names()
	assert.Len(t, names, 6)
	assert.Equal(t, []string{"contactos", "correos", "documentos", "imagenes", "musica", "videos"}, names)
}
