package watcher

// FilesystemType is a coarse classification of the filesystem holding the
// watched document.
type FilesystemType int

const (
	FSTypeUnknown FilesystemType = iota
	FSTypeLocal
	FSTypeNFS
	FSTypeSMB
	FSTypeFUSE
)

func (t FilesystemType) String() string {
	switch t {
	case FSTypeLocal:
		return "local"
	case FSTypeNFS:
		return "nfs"
	case FSTypeSMB:
		return "smb"
	case FSTypeFUSE:
		return "fuse"
	}
	return "unknown"
}

// Remote reports whether change notifications are unreliable on t, so the
// watcher should poll.
func (t FilesystemType) Remote() bool {
	return t == FSTypeNFS || t == FSTypeSMB || t == FSTypeFUSE
}

// detectFilesystemTypeFunc is swapped out in tests.
var detectFilesystemTypeFunc = detectFilesystemType

// DetectFilesystemType classifies the filesystem holding path. It returns
// FSTypeUnknown when the platform cannot tell.
func DetectFilesystemType(path string) FilesystemType {
	return detectFilesystemTypeFunc(path)
}
