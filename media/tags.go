// SPDX-License-Identifier: EPL-2.0

package media

// StandardTagKey is a well known tag, independent of how a container spells
// it.
type StandardTagKey uint16

const (
	TagUnknown StandardTagKey = iota
	TagAlbum
	TagAlbumArtist
	TagArranger
	TagArtist
	TagBpm
	TagComment
	TagCompilation
	TagComposer
	TagConductor
	TagCopyright
	TagDate
	TagDescription
	TagDiscNumber
	TagDiscSubtitle
	TagDiscTotal
	TagEncodedBy
	TagEncoder
	TagEncoderSettings
	TagEngineer
	TagEnsemble
	TagGenre
	TagIdentBarcode
	TagIdentCatalogNumber
	TagIdentEanUpn
	TagIdentIsrc
	TagIdentPn
	TagIdentUpc
	TagLabel
	TagLanguage
	TagLicense
	TagLyricist
	TagLyrics
	TagMediaFormat
	TagMixDj
	TagMixEngineer
	TagMood
	TagMusicBrainzAlbumArtistID
	TagMusicBrainzAlbumID
	TagMusicBrainzArtistID
	TagMusicBrainzDiscID
	TagMusicBrainzOriginalAlbumID
	TagMusicBrainzOriginalArtistID
	TagMusicBrainzRecordingID
	TagMusicBrainzReleaseGroupID
	TagMusicBrainzReleaseTrackID
	TagMusicBrainzTrackID
	TagMusicBrainzWorkID
	TagOpus
	TagOriginalDate
	TagPart
	TagPerformer
	TagProducer
	TagRating
	TagReleaseCountry
	TagRemixer
	TagReplayGainAlbumGain
	TagReplayGainAlbumPeak
	TagReplayGainTrackGain
	TagReplayGainTrackPeak
	TagScript
	TagSortAlbum
	TagSortAlbumArtist
	TagSortArtist
	TagSortTrackTitle
	TagTrackNumber
	TagTrackSubtitle
	TagTrackTitle
	TagTrackTotal
	TagVersion
	TagWriter
)

var tagKeyNames = [...]string{
	TagUnknown:                     "unknown",
	TagAlbum:                       "album",
	TagAlbumArtist:                 "album_artist",
	TagArranger:                    "arranger",
	TagArtist:                      "artist",
	TagBpm:                         "bpm",
	TagComment:                     "comment",
	TagCompilation:                 "compilation",
	TagComposer:                    "composer",
	TagConductor:                   "conductor",
	TagCopyright:                   "copyright",
	TagDate:                        "date",
	TagDescription:                 "description",
	TagDiscNumber:                  "disc_number",
	TagDiscSubtitle:                "disc_subtitle",
	TagDiscTotal:                   "disc_total",
	TagEncodedBy:                   "encoded_by",
	TagEncoder:                     "encoder",
	TagEncoderSettings:             "encoder_settings",
	TagEngineer:                    "engineer",
	TagEnsemble:                    "ensemble",
	TagGenre:                       "genre",
	TagIdentBarcode:                "barcode",
	TagIdentCatalogNumber:          "catalog_number",
	TagIdentEanUpn:                 "ean_upn",
	TagIdentIsrc:                   "isrc",
	TagIdentPn:                     "product_number",
	TagIdentUpc:                    "upc",
	TagLabel:                       "label",
	TagLanguage:                    "language",
	TagLicense:                     "license",
	TagLyricist:                    "lyricist",
	TagLyrics:                      "lyrics",
	TagMediaFormat:                 "media_format",
	TagMixDj:                       "mix_dj",
	TagMixEngineer:                 "mix_engineer",
	TagMood:                        "mood",
	TagMusicBrainzAlbumArtistID:    "musicbrainz_album_artist_id",
	TagMusicBrainzAlbumID:          "musicbrainz_album_id",
	TagMusicBrainzArtistID:         "musicbrainz_artist_id",
	TagMusicBrainzDiscID:           "musicbrainz_disc_id",
	TagMusicBrainzOriginalAlbumID:  "musicbrainz_original_album_id",
	TagMusicBrainzOriginalArtistID: "musicbrainz_original_artist_id",
	TagMusicBrainzRecordingID:      "musicbrainz_recording_id",
	TagMusicBrainzReleaseGroupID:   "musicbrainz_release_group_id",
	TagMusicBrainzReleaseTrackID:   "musicbrainz_release_track_id",
	TagMusicBrainzTrackID:          "musicbrainz_track_id",
	TagMusicBrainzWorkID:           "musicbrainz_work_id",
	TagOpus:                        "opus",
	TagOriginalDate:                "original_date",
	TagPart:                        "part",
	TagPerformer:                   "performer",
	TagProducer:                    "producer",
	TagRating:                      "rating",
	TagReleaseCountry:              "release_country",
	TagRemixer:                     "remixer",
	TagReplayGainAlbumGain:         "replaygain_album_gain",
	TagReplayGainAlbumPeak:         "replaygain_album_peak",
	TagReplayGainTrackGain:         "replaygain_track_gain",
	TagReplayGainTrackPeak:         "replaygain_track_peak",
	TagScript:                      "script",
	TagSortAlbum:                   "sort_album",
	TagSortAlbumArtist:             "sort_album_artist",
	TagSortArtist:                  "sort_artist",
	TagSortTrackTitle:              "sort_track_title",
	TagTrackNumber:                 "track_number",
	TagTrackSubtitle:               "track_subtitle",
	TagTrackTitle:                  "track_title",
	TagTrackTotal:                  "track_total",
	TagVersion:                     "version",
	TagWriter:                      "writer",
}

func (k StandardTagKey) String() string {
	if int(k) < len(tagKeyNames) {
		return tagKeyNames[k]
	}
	return "unknown"
}

// StandardVisualKey is the intended use of an attached picture, numbered as in
// the ID3v2 APIC and FLAC PICTURE picture types.
type StandardVisualKey uint8

const (
	VisualOther StandardVisualKey = iota
	VisualFileIcon
	VisualOtherIcon
	VisualFrontCover
	VisualBackCover
	VisualLeaflet
	VisualMedia
	VisualLeadArtist
	VisualArtist
	VisualConductor
	VisualBand
	VisualComposer
	VisualLyricist
	VisualRecordingLocation
	VisualRecordingSession
	VisualPerformance
	VisualScreenCapture
	VisualBrightFish
	VisualIllustration
	VisualBandLogo
	VisualPublisherLogo
)
