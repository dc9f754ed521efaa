// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort            = "8080"
	DefaultDBPath          = "soundsift.db"
	DefaultMusicBrainzURL  = "https://musicbrainz.org/ws/2"
	DefaultSpotifyAPIURL   = "https://api.spotify.com/v1"
	DefaultSpotifyTokenURL = "https://accounts.spotify.com/api/token"
	DefaultLastFMURL       = "https://ws.audioscrobbler.com/2.0"
	DefaultConcurrency     = 2
	DefaultPollInterval    = 2 * time.Second
	DefaultHTTPTimeout     = 15 * time.Second
	DownloadTimeout        = 5 * time.Minute
	ImageHTTPTimeout       = 30 * time.Second
	DefaultRetryCount      = 3
	DefaultRetryBase       = 1 * time.Second
	DefaultSignTTL         = 15 * time.Minute
)

// Reconciliation
const (
	// AcceptThreshold is the similarity score a candidate must strictly
	// exceed before its metadata is trusted.
	AcceptThreshold = 0.7

	// TokenExpirySkew is subtracted from a provider token's lifetime so a
	// token is refreshed before it can expire mid-request.
	TokenExpirySkew = 60 * time.Second

	// UnknownArtist and UnknownAlbum are the sentinel values used when a
	// field cannot be inferred from the raw label.
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
)

// Database
const (
	JobsTable   = "import_jobs"
	TracksTable = "tracks"
)

// MIME Types
const (
	MimeTypeFLAC = "audio/flac"
	MimeTypeMP3  = "audio/mpeg"
	MimeTypeJPEG = "image/jpeg"
)

// File Extensions
const (
	ExtFLAC = ".flac"
	ExtMP3  = ".mp3"
	ExtJPG  = ".jpg"
)

// File Permissions
const (
	DirPermissions  = 0755
	FilePermissions = 0644
)

// Characters to sanitize from filesystem paths
const InvalidPathChars = "<>:\"/\\|?*"
