// JSON encoding for watch lists.
//
// Format: a single JSON object mapping absolute path to lowercase hex digest,
// pretty-printed with a two-space indent. Key order follows WatchList order on
// write and document order on read, so list output is stable across runs.
//
//	{
//	  "/home/me/notes.txt": "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
//	}
package jsonfile

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/corey/watchdog/internal/ports"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

var prettyOptions = &pretty.Options{Width: 80, Indent: "  "}

// Encode serializes list as a pretty-printed JSON object in list order.
func Encode(list *ports.WatchList) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	first := true
	for path, d := range list.All() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := enc.Encode(path); err != nil {
			return nil, fmt.Errorf("encode key %q: %w", path, err)
		}
		buf.WriteByte(':')
		if err := enc.Encode(d); err != nil {
			return nil, fmt.Errorf("encode digest for %q: %w", path, err)
		}
	}
	buf.WriteByte('}')

	return pretty.PrettyOptions(buf.Bytes(), prettyOptions), nil
}

// Decode parses data into a watch list.
//
// Empty or whitespace-only data and a literal null decode to an empty list.
// Anything that is not a JSON object of string values is rejected; the error
// does not wrap ErrCorruptedStore, the Store adds that classification.
// Duplicate keys keep the first position and the last value.
func Decode(data []byte) (*ports.WatchList, error) {
	list := ports.NewWatchList()
	if len(bytes.TrimSpace(data)) == 0 {
		return list, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}

	root := gjson.ParseBytes(data)
	if root.Type == gjson.Null {
		return list, nil
	}
	if !root.IsObject() {
		return nil, fmt.Errorf("top level is %s, want object", typeName(root))
	}

	var shapeErr error
	root.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.String {
			shapeErr = fmt.Errorf("value for %q is %s, want string", key.String(), typeName(value))
			return false
		}
		list.Add(key.String(), value.String())
		return true
	})
	if shapeErr != nil {
		return nil, shapeErr
	}
	return list, nil
}

func typeName(r gjson.Result) string {
	switch {
	case r.IsObject():
		return "object"
	case r.IsArray():
		return "array"
	case r.Type == gjson.JSON:
		return "json"
	}
	return r.Type.String()
}
