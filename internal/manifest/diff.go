package manifest

import "sort"

// Status classifies one difference between two manifests.
type Status int

const (
	StatusLocalOnly Status = iota + 1
	StatusRemoteOnly
	StatusLocalNewer
	StatusRemoteNewer
)

var statusNames = [...]string{
	StatusLocalOnly:   "local_only",
	StatusRemoteOnly:  "remote_only",
	StatusLocalNewer:  "local_newer",
	StatusRemoteNewer: "remote_newer",
}

func (s Status) String() string {
	if s > 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// DiffEntry is one classified difference for a single path. Size and
// ModTime fields are zero for the side that does not have the path.
type DiffEntry struct {
	Path          string
	Status        Status
	LocalSize     int64
	RemoteSize    int64
	LocalModTime  int64
	RemoteModTime int64
}

// Diff compares two manifests over the union of their keys and returns
// entries only for paths that differ, sorted by path. Paths present on
// both sides with equal hashes produce no entry; a missing hash on
// either side never compares equal. Modification-time ties between
// differing files favor remote_newer.
func Diff(local, remote Manifest) []DiffEntry {
	var entries []DiffEntry

	for path, lr := range local {
		rr, ok := remote[path]
		if !ok {
			entries = append(entries, DiffEntry{
				Path:         path,
				Status:       StatusLocalOnly,
				LocalSize:    lr.Size,
				LocalModTime: lr.ModTime,
			})
			continue
		}
		if lr.Hash != "" && lr.Hash == rr.Hash {
			continue
		}
		status := StatusRemoteNewer
		if lr.ModTime > rr.ModTime {
			status = StatusLocalNewer
		}
		entries = append(entries, DiffEntry{
			Path:          path,
			Status:        status,
			LocalSize:     lr.Size,
			RemoteSize:    rr.Size,
			LocalModTime:  lr.ModTime,
			RemoteModTime: rr.ModTime,
		})
	}

	for path, rr := range remote {
		if _, ok := local[path]; ok {
			continue
		}
		entries = append(entries, DiffEntry{
			Path:          path,
			Status:        StatusRemoteOnly,
			RemoteSize:    rr.Size,
			RemoteModTime: rr.ModTime,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries
}
