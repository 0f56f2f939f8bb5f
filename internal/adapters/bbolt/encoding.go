// Blob encoding for the watchlist bucket.
//
// Bucket layout:
//
//	watchlist/
//	  format:  "1"
//	  entries: JSON object, path -> digest (same document as watched_files.json)
//
// Reusing the JSON document keeps list order and lets `migrate` move data
// between backends without a translation step.
package bbolt

import (
	"fmt"

	"github.com/corey/watchdog/internal/adapters/jsonfile"
	"github.com/corey/watchdog/internal/ports"
)

// Bucket keys
var (
	bucketWatchList = []byte("watchlist")
	keyFormat       = []byte("format")
	keyEntries      = []byte("entries")
)

const formatVersion = "1"

func encodeEntries(list *ports.WatchList) (version, blob []byte, err error) {
	blob, err = jsonfile.Encode(list)
	if err != nil {
		return nil, nil, err
	}
	return []byte(formatVersion), blob, nil
}

// decodeEntries accepts a missing bucket (both nil) as an empty list.
func decodeEntries(version, blob []byte) (*ports.WatchList, error) {
	if version == nil && blob == nil {
		return ports.NewWatchList(), nil
	}
	if string(version) != formatVersion {
		return nil, fmt.Errorf("unsupported format version %q", version)
	}
	return jsonfile.Decode(blob)
}
