// Package tagging writes reconciled metadata into audio files.
package tagging

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"

	"soundsift/internal/constants"
	"soundsift/internal/domain"
)

// TagFile writes metadata tags to the audio file at filePath. The format is
// chosen by extension.
func TagFile(filePath string, track *domain.Track, coverData []byte) error {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case constants.ExtFLAC:
		return tagFLAC(filePath, track, coverData)
	case constants.ExtMP3:
		return tagMP3(filePath, track, coverData)
	default:
		return fmt.Errorf("unsupported file format: %s", ext)
	}
}

// tagFLAC rewrites the Vorbis comment and picture blocks, keeping the other
// metadata blocks intact.
func tagFLAC(filePath string, track *domain.Track, coverData []byte) error {
	f, err := flac.ParseFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to parse FLAC file: %w", err)
	}

	// Drop any existing VORBIS_COMMENT and PICTURE blocks; ours replace them.
	var kept []*flac.MetaDataBlock
	for _, block := range f.Meta {
		if block.Type != flac.VorbisComment && block.Type != flac.Picture {
			kept = append(kept, block)
		}
	}
	f.Meta = kept

	comment := newVorbisComment(track)
	commentBlock := comment.Marshal()
	f.Meta = append(f.Meta, &commentBlock)

	if len(coverData) > 0 {
		picture, err := flacpicture.NewFromImageData(
			flacpicture.PictureTypeFrontCover,
			"Front Cover",
			coverData,
			detectMIME(coverData),
		)
		if err != nil {
			return fmt.Errorf("failed to build picture block: %w", err)
		}
		pictureBlock := picture.Marshal()
		f.Meta = append(f.Meta, &pictureBlock)
	}

	if err := f.Save(filePath); err != nil {
		return fmt.Errorf("failed to save FLAC file: %w", err)
	}
	return nil
}

func newVorbisComment(track *domain.Track) *flacvorbis.MetaDataBlockVorbisComment {
	comment := flacvorbis.New()

	addField := func(name, value string) {
		if value != "" {
			comment.Add(name, value) //nolint:errcheck // only errors on invalid field names
		}
	}

	addField(flacvorbis.FIELD_TITLE, track.Title)
	addField(flacvorbis.FIELD_ARTIST, track.Artist)
	addField(flacvorbis.FIELD_ALBUM, track.Album)
	addField(flacvorbis.FIELD_DATE, track.ReleaseDate)
	if len(track.ReleaseDate) >= 4 {
		addField("YEAR", track.ReleaseDate[:4])
	}
	for _, g := range track.Genres {
		addField(flacvorbis.FIELD_GENRE, g)
	}
	for _, id := range track.ExternalIDs {
		if isrc, ok := strings.CutPrefix(id, "isrc:"); ok {
			addField("ISRC", isrc)
		}
	}
	addField("SOURCE", track.SourceURL)

	return comment
}

// tagMP3 writes ID3v2.4 tags to an MP3 file.
func tagMP3(filePath string, track *domain.Track, coverData []byte) error {
	tag, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open MP3 file: %w", err)
	}
	defer tag.Close()

	tag.SetVersion(4)

	if track.Title != "" {
		tag.SetTitle(track.Title)
	}
	if track.Artist != "" {
		tag.SetArtist(track.Artist)
	}
	if track.Album != "" {
		tag.SetAlbum(track.Album)
	}
	if len(track.ReleaseDate) >= 4 {
		tag.SetYear(track.ReleaseDate[:4])
	}
	if len(track.Genres) > 0 {
		tag.SetGenre(strings.Join(track.Genres, ";"))
	}
	if track.ReleaseDate != "" {
		tag.AddTextFrame(tag.CommonID("Release time"), tag.DefaultEncoding(), track.ReleaseDate)
	}
	for _, id := range track.ExternalIDs {
		if isrc, ok := strings.CutPrefix(id, "isrc:"); ok {
			tag.AddTextFrame(tag.CommonID("ISRC"), tag.DefaultEncoding(), isrc)
		}
	}
	if track.SourceURL != "" {
		tag.AddTextFrame(tag.CommonID("WWWAudioSource"), tag.DefaultEncoding(), track.SourceURL)
	}

	if len(coverData) > 0 {
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    detectMIME(coverData),
			PictureType: id3v2.PTFrontCover,
			Description: "Front Cover",
			Picture:     coverData,
		})
	}

	return tag.Save()
}

// detectMIME sniffs the image type so PNG covers aren't labelled image/jpeg.
func detectMIME(data []byte) string {
	mime := http.DetectContentType(data)
	if idx := strings.Index(mime, ";"); idx != -1 {
		mime = strings.TrimSpace(mime[:idx])
	}
	return mime
}

// DownloadImage fetches cover art bytes from a URL. An empty URL returns nil
// without error.
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, nil
	}

	client := &http.Client{Timeout: constants.ImageHTTPTimeout}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // deferred cleanup

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d (URL: %s)", resp.StatusCode, url)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return buf.Bytes(), nil
}
