// SPDX-License-Identifier: EPL-2.0

package media

// Tag is one metadata item. StdKey is TagUnknown when Key has no standard
// meaning.
type Tag struct {
	StdKey StandardTagKey
	Key    string
	Value  string
}

// Visual is an attached picture.
type Visual struct {
	MediaType    string
	Description  string
	Width        uint32
	Height       uint32
	BitsPerPixel uint32
	Usage        StandardVisualKey
	Tags         []Tag
	Data         []byte
}

// VendorData is an opaque, application specific blob.
type VendorData struct {
	Ident string
	Data  []byte
}

// MetadataRevision is a snapshot of all metadata read at one point in the
// stream.
type MetadataRevision struct {
	Vendor     string
	Tags       []Tag
	Visuals    []Visual
	VendorData []VendorData
}

// Tag returns the first tag with key k.
func (m *MetadataRevision) Tag(k StandardTagKey) (Tag, bool) {
	for _, t := range m.Tags {
		if t.StdKey == k {
			return t, true
		}
	}
	return Tag{}, false
}

// MetadataBuilder accumulates a revision.
type MetadataBuilder struct {
	rev MetadataRevision
}

func (b *MetadataBuilder) SetVendor(v string) {
	b.rev.Vendor = v
}

func (b *MetadataBuilder) AddTag(t Tag) {
	b.rev.Tags = append(b.rev.Tags, t)
}

func (b *MetadataBuilder) AddVisual(v Visual) {
	b.rev.Visuals = append(b.rev.Visuals, v)
}

func (b *MetadataBuilder) AddVendorData(d VendorData) {
	b.rev.VendorData = append(b.rev.VendorData, d)
}

// Metadata returns the accumulated revision.
func (b *MetadataBuilder) Metadata() MetadataRevision {
	return b.rev
}

// MetadataLog is a queue of revisions in the order they were read. The oldest
// revision is current until the caller skips ahead.
type MetadataLog struct {
	revisions []MetadataRevision
}

// Push appends a revision.
func (l *MetadataLog) Push(rev MetadataRevision) {
	l.revisions = append(l.revisions, rev)
}

// Len is the number of queued revisions.
func (l *MetadataLog) Len() int {
	return len(l.revisions)
}

// Current returns the oldest queued revision.
func (l *MetadataLog) Current() (*MetadataRevision, bool) {
	if len(l.revisions) == 0 {
		return nil, false
	}
	return &l.revisions[0], true
}

// IsLatest reports whether there is no newer revision than the current one.
func (l *MetadataLog) IsLatest() bool {
	return len(l.revisions) <= 1
}

// Skip drops the current revision and returns it.
func (l *MetadataLog) Skip() (MetadataRevision, bool) {
	if len(l.revisions) == 0 {
		return MetadataRevision{}, false
	}
	rev := l.revisions[0]
	l.revisions = l.revisions[1:]
	return rev, true
}

// SkipToLatest drops every revision except the newest and returns it.
func (l *MetadataLog) SkipToLatest() (*MetadataRevision, bool) {
	if len(l.revisions) == 0 {
		return nil, false
	}
	l.revisions = l.revisions[len(l.revisions)-1:]
	return &l.revisions[0], true
}

// Append moves every revision of other to the end of l.
func (l *MetadataLog) Append(other *MetadataLog) {
	l.revisions = append(l.revisions, other.revisions...)
	other.revisions = nil
}
