package models

// Song is a catalog record. The catalog lives behind an external API; the
// engine only relies on the ID for matching and never validates the rest.
type Song struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	AlbumArt string `json:"album_art"`
	AudioURL string `json:"audio_url"`
	Duration int    `json:"duration"`
	Genre    string `json:"genre"`
	Language string `json:"language"`
}
