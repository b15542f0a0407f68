// Package manifest is a concrete installer-manifest record built entirely
// on pkg/tstoken: a name/version header, a nested Platform base record, a
// list of file entries, and — as an alternate encoding of the same
// file-list data — a container of path/checksum pairs. It exists to
// exercise pkg/tstoken's nested-base, container, and pair composition in
// one realistic type rather than in isolated unit tests alone.
package manifest

import (
	"errors"
	"io"

	"github.com/ssargent/tokenstream/pkg/tsio"
	"github.com/ssargent/tokenstream/pkg/tstoken"
)

// ErrMalformed is returned by Decode when the underlying reader's error
// latch trips before the manifest is fully decoded.
var ErrMalformed = errors.New("manifest: malformed record")

const (
	tokenName         = 0
	tokenVersion      = 1
	tokenPlatform     = 2
	tokenFiles        = 3
	tokenCompactFiles = 4
)

// Platform identifies the OS/architecture pair a manifest's files target.
type Platform struct {
	OS   string
	Arch string
}

const (
	platformTokenOS = 0
	platformTokenArch = 1
)

var platformMap = tstoken.NewTokenMap(
	tstoken.Entry[Platform]{Token: platformTokenOS, Accessor: tstoken.Accessor[Platform]{
		Get: func(r *tsio.Reader, d *Platform) { d.OS = r.GetString() },
		Put: func(w *tsio.Writer, t uint64, s *Platform) { tstoken.PutString(w, t, tstoken.WithDefault(s.OS, "")) },
	}},
	tstoken.Entry[Platform]{Token: platformTokenArch, Accessor: tstoken.Accessor[Platform]{
		Get: func(r *tsio.Reader, d *Platform) { d.Arch = r.GetString() },
		Put: func(w *tsio.Writer, t uint64, s *Platform) { tstoken.PutString(w, t, tstoken.WithDefault(s.Arch, "")) },
	}},
)

// FileEntry describes one file an installed package placed on disk.
type FileEntry struct {
	Path   string
	Size   uint64
	SHA256 []byte
}

const (
	fileTokenPath   = 0
	fileTokenSize   = 1
	fileTokenSHA256 = 2
)

var fileEntryMap = tstoken.NewTokenMap(
	tstoken.Entry[FileEntry]{Token: fileTokenPath, Accessor: tstoken.Accessor[FileEntry]{
		Get: func(r *tsio.Reader, d *FileEntry) { d.Path = r.GetString() },
		Put: func(w *tsio.Writer, t uint64, s *FileEntry) { tstoken.PutString(w, t, tstoken.WithDefault(s.Path, "")) },
	}},
	tstoken.Entry[FileEntry]{Token: fileTokenSize, Accessor: tstoken.Accessor[FileEntry]{
		Get: func(r *tsio.Reader, d *FileEntry) { d.Size = r.GetUint64() },
		Put: func(w *tsio.Writer, t uint64, s *FileEntry) { tstoken.PutUint64(w, t, tstoken.WithDefault(s.Size, 0)) },
	}},
	tstoken.Entry[FileEntry]{Token: fileTokenSHA256, Accessor: tstoken.Accessor[FileEntry]{
		Get: func(r *tsio.Reader, d *FileEntry) { d.SHA256 = r.GetBytes() },
		Put: func(w *tsio.Writer, t uint64, s *FileEntry) { w.PutBytes(t, s.SHA256, nil) },
	}},
)

// PathChecksum is a lighter-weight alternative to FileEntry for a caller
// that only needs to diff paths against checksums, demonstrating
// tsio.PutPair/GetPair wired through a tstoken container field rather than
// a full nested record per element.
type PathChecksum struct {
	Path     string
	Checksum []byte
}

// Manifest is the top-level record: a name, a version, the target
// Platform (a nested base record under its own token), a list of installed
// files, and an optional compact path/checksum view of the same files.
type Manifest struct {
	Name         string
	Version      string
	Platform     Platform
	Files        []FileEntry
	CompactFiles []PathChecksum
}

var tokenMap = tstoken.NewTokenMap(
	tstoken.Entry[Manifest]{Token: tokenName, Accessor: tstoken.Accessor[Manifest]{
		Get: func(r *tsio.Reader, d *Manifest) { d.Name = r.GetString() },
		Put: func(w *tsio.Writer, t uint64, s *Manifest) { tstoken.PutString(w, t, tstoken.WithDefault(s.Name, "")) },
	}},
	tstoken.Entry[Manifest]{Token: tokenVersion, Accessor: tstoken.Accessor[Manifest]{
		Get: func(r *tsio.Reader, d *Manifest) { d.Version = r.GetString() },
		Put: func(w *tsio.Writer, t uint64, s *Manifest) { tstoken.PutString(w, t, tstoken.WithDefault(s.Version, "")) },
	}},
	tstoken.NestedBase(tokenPlatform, platformMap, func(m *Manifest) *Platform { return &m.Platform }),
	tstoken.RecordContainerField(tokenFiles, func(m *Manifest) *[]FileEntry { return &m.Files }, fileEntryMap),
	tstoken.ContainerField(tokenCompactFiles,
		func(m *Manifest) *[]PathChecksum { return &m.CompactFiles },
		func(r *tsio.Reader) PathChecksum {
			path, sum := tsio.GetPair(r,
				func(r *tsio.Reader) string { return r.GetString() },
				func(r *tsio.Reader) []byte { return r.GetBytes() },
			)
			return PathChecksum{Path: path, Checksum: sum}
		},
		func(w *tsio.Writer, token uint64, v PathChecksum) {
			tsio.PutPair(w, token, v.Path, v.Checksum,
				func(w *tsio.Writer, t uint64, v string) { w.PutString(t, v, "") },
				func(w *tsio.Writer, t uint64, v []byte) { w.PutBytes(t, v, nil) },
			)
		},
	),
)

// Encode serializes m to a standalone byte slice.
func Encode(m *Manifest) []byte {
	w := tsio.NewMemoryWriter()
	tokenMap.Write(w, m)
	return w.Bytes()
}

// WriteTo serializes m directly onto sink, for callers streaming the wire
// format onto a channel they don't own a buffer for (e.g. an
// http.ResponseWriter) rather than collecting it into a byte slice first.
func WriteTo(sink io.Writer, m *Manifest) error {
	w := tsio.NewWriter(sink)
	tokenMap.Write(w, m)
	if w.BadStream() {
		return ErrMalformed
	}
	return nil
}

// Decode parses data as a Manifest record.
func Decode(data []byte) (*Manifest, error) {
	var m Manifest
	r := tsio.NewReader(data)
	tokenMap.Read(r, &m)
	if r.BadStream() {
		return nil, ErrMalformed
	}
	return &m, nil
}
