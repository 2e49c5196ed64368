package labels

import (
	"net/url"
	"strings"
)

// FromForm reads labels from form fields of the form
// "<prefix>[<id>]" plus the JSON field "<prefix>_json". The bracketed
// keys are offered to both the attachment-ID and blob-ID sources since
// upload widgets submit whichever ID they hold.
func FromForm(form url.Values, prefix string) Input {
	in := Input{
		ByAttachmentID: map[string]string{},
		ByBlobID:       map[string]string{},
		FilenameJSON:   form.Get(prefix + "_json"),
	}
	open := prefix + "["
	for key, values := range form {
		if !strings.HasPrefix(key, open) || !strings.HasSuffix(key, "]") || len(values) == 0 {
			continue
		}
		id := key[len(open) : len(key)-1]
		if id == "" {
			continue
		}
		in.ByAttachmentID[id] = values[0]
		in.ByBlobID[id] = values[0]
	}
	return in
}
