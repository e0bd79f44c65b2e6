// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"encoding/base64"
	"encoding/binary"
	"strings"

	"golang.org/x/text/cases"

	"github.com/ik5/audmux/media"
	"github.com/ik5/audmux/stream"
)

const pictureKey = "metadata_block_picture"

var commentKeys = map[string]media.StandardTagKey{
	"album artist":                 media.TagAlbumArtist,
	"album":                        media.TagAlbum,
	"albumartist":                  media.TagAlbumArtist,
	"albumartistsort":              media.TagSortAlbumArtist,
	"albumsort":                    media.TagSortAlbum,
	"arranger":                     media.TagArranger,
	"artist":                       media.TagArtist,
	"artistsort":                   media.TagSortArtist,
	"author":                       media.TagWriter,
	"barcode":                      media.TagIdentBarcode,
	"bpm":                          media.TagBpm,
	"catalog #":                    media.TagIdentCatalogNumber,
	"catalog":                      media.TagIdentCatalogNumber,
	"catalognumber":                media.TagIdentCatalogNumber,
	"catalogue #":                  media.TagIdentCatalogNumber,
	"comment":                      media.TagComment,
	"compileation":                 media.TagCompilation,
	"composer":                     media.TagComposer,
	"conductor":                    media.TagConductor,
	"copyright":                    media.TagCopyright,
	"date":                         media.TagDate,
	"description":                  media.TagDescription,
	"disc":                         media.TagDiscNumber,
	"discnumber":                   media.TagDiscNumber,
	"discsubtitle":                 media.TagDiscSubtitle,
	"disctotal":                    media.TagDiscTotal,
	"disk":                         media.TagDiscNumber,
	"disknumber":                   media.TagDiscNumber,
	"disksubtitle":                 media.TagDiscSubtitle,
	"disktotal":                    media.TagDiscTotal,
	"djmixer":                      media.TagMixDj,
	"ean/upn":                      media.TagIdentEanUpn,
	"encoded-by":                   media.TagEncodedBy,
	"encoder settings":             media.TagEncoderSettings,
	"encoder":                      media.TagEncoder,
	"encoding":                     media.TagEncoderSettings,
	"engineer":                     media.TagEngineer,
	"ensemble":                     media.TagEnsemble,
	"genre":                        media.TagGenre,
	"isrc":                         media.TagIdentIsrc,
	"language":                     media.TagLanguage,
	"label":                        media.TagLabel,
	"license":                      media.TagLicense,
	"lyricist":                     media.TagLyricist,
	"lyrics":                       media.TagLyrics,
	"media":                        media.TagMediaFormat,
	"mixer":                        media.TagMixEngineer,
	"mood":                         media.TagMood,
	"musicbrainz_albumartistid":    media.TagMusicBrainzAlbumArtistID,
	"musicbrainz_albumid":          media.TagMusicBrainzAlbumID,
	"musicbrainz_artistid":         media.TagMusicBrainzArtistID,
	"musicbrainz_discid":           media.TagMusicBrainzDiscID,
	"musicbrainz_originalalbumid":  media.TagMusicBrainzOriginalAlbumID,
	"musicbrainz_originalartistid": media.TagMusicBrainzOriginalArtistID,
	"musicbrainz_recordingid":      media.TagMusicBrainzRecordingID,
	"musicbrainz_releasegroupid":   media.TagMusicBrainzReleaseGroupID,
	"musicbrainz_releasetrackid":   media.TagMusicBrainzReleaseTrackID,
	"musicbrainz_trackid":          media.TagMusicBrainzTrackID,
	"musicbrainz_workid":           media.TagMusicBrainzWorkID,
	"opus":                         media.TagOpus,
	"organization":                 media.TagLabel,
	"originaldate":                 media.TagOriginalDate,
	"part":                         media.TagPart,
	"performer":                    media.TagPerformer,
	"producer":                     media.TagProducer,
	"productnumber":                media.TagIdentPn,
	"publisher":                    media.TagLabel,
	"rating":                       media.TagRating,
	"releasecountry":               media.TagReleaseCountry,
	"remixer":                      media.TagRemixer,
	"replaygain_album_gain":        media.TagReplayGainAlbumGain,
	"replaygain_album_peak":        media.TagReplayGainAlbumPeak,
	"replaygain_track_gain":        media.TagReplayGainTrackGain,
	"replaygain_track_peak":        media.TagReplayGainTrackPeak,
	"script":                       media.TagScript,
	"subtitle":                     media.TagTrackSubtitle,
	"title":                        media.TagTrackTitle,
	"titlesort":                    media.TagSortTrackTitle,
	"totaldiscs":                   media.TagDiscTotal,
	"totaltracks":                  media.TagTrackTotal,
	"tracknumber":                  media.TagTrackNumber,
	"tracktotal":                   media.TagTrackTotal,
	"unsyncedlyrics":               media.TagLyrics,
	"upc":                          media.TagIdentUpc,
	"version":                      media.TagVersion,
	"writer":                       media.TagWriter,
	"year":                         media.TagDate,
}

// ReadCommentHeader parses a comment packet, including its packet type and
// signature.
func ReadCommentHeader(pkt []byte) (media.MetadataRevision, error) {
	if !IsHeaderPacket(pkt, packetTypeComment) {
		return media.MetadataRevision{}, wrapErr(ErrInvalidHeader, "not a comment packet")
	}

	var b media.MetadataBuilder
	if err := ReadComment(stream.NewBufReader(pkt[7:]), &b); err != nil {
		return media.MetadataRevision{}, err
	}

	return b.Metadata(), nil
}

// ReadComment reads a Vorbis comment block without framing bit into b. The
// same block is embedded in Opus and FLAC streams.
func ReadComment(r *stream.BufReader, b *media.MetadataBuilder) error {
	vendor, err := readLengthPrefixed(r)
	if err != nil {
		return wrapErr(ErrInvalidHeader, "vendor string: %v", err)
	}
	b.SetVendor(string(vendor))

	n, err := stream.ReadU32LE(r)
	if err != nil {
		return wrapErr(ErrInvalidHeader, "comment count: %v", err)
	}

	// Each comment costs at least its four byte length.
	if uint64(n)*4 > r.BytesAvailable() {
		return wrapErr(ErrInvalidHeader, "%d comments do not fit in the packet", n)
	}

	for range n {
		comment, err := readLengthPrefixed(r)
		if err != nil {
			return wrapErr(ErrInvalidHeader, "comment: %v", err)
		}

		tag := parseComment(string(comment))
		if strings.EqualFold(tag.Key, pictureKey) {
			if v, ok := parsePicture(tag.Value); ok {
				b.AddVisual(v)
				continue
			}
		}
		b.AddTag(tag)
	}

	return nil
}

func readLengthPrefixed(r *stream.BufReader) ([]byte, error) {
	n, err := stream.ReadU32LE(r)
	if err != nil {
		return nil, err
	}
	return r.ReadBufBytesRef(int(n))
}

// parseComment splits KEY=value. Keys compare case-insensitively.
func parseComment(s string) media.Tag {
	key, value, _ := strings.Cut(s, "=")

	return media.Tag{
		StdKey: commentKeys[cases.Fold().String(key)],
		Key:    key,
		Value:  value,
	}
}

// parsePicture decodes a base64 FLAC picture block.
func parsePicture(s string) (media.Visual, bool) {
	var v media.Visual

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return v, false
	}

	be := binary.BigEndian
	take := func(n uint32) ([]byte, bool) {
		if uint64(len(raw)) < uint64(n) {
			return nil, false
		}
		out := raw[:n]
		raw = raw[n:]
		return out, true
	}
	u32 := func() (uint32, bool) {
		p, ok := take(4)
		if !ok {
			return 0, false
		}
		return be.Uint32(p), true
	}
	str := func() (string, bool) {
		n, ok := u32()
		if !ok {
			return "", false
		}
		p, ok := take(n)
		return string(p), ok
	}

	usage, ok := u32()
	if !ok {
		return v, false
	}
	v.Usage = media.StandardVisualKey(min(usage, 255))

	if v.MediaType, ok = str(); !ok {
		return v, false
	}
	if v.Description, ok = str(); !ok {
		return v, false
	}

	var dims [4]uint32
	for i := range dims {
		if dims[i], ok = u32(); !ok {
			return v, false
		}
	}
	v.Width, v.Height, v.BitsPerPixel = dims[0], dims[1], dims[2]

	n, ok := u32()
	if !ok {
		return v, false
	}
	data, ok := take(n)
	if !ok {
		return v, false
	}
	v.Data = append([]byte(nil), data...)

	return v, true
}
