package asset

import (
	"strings"

	"github.com/ipfs/go-cid"
)

// Reference is a token's asset reference split into the parts the
// downloader needs.
type Reference struct {
	Raw  string
	Name string
	CID  cid.Cid
}

// ParseReference takes the last "/" segment as the asset name and records
// the first segment that decodes as an IPFS CID, if any.
func ParseReference(raw string) Reference {
	ref := Reference{Raw: raw, Name: raw[strings.LastIndex(raw, "/")+1:]}

	rest := strings.TrimPrefix(raw, "ipfs://")
	for _, seg := range strings.Split(rest, "/") {
		if seg == "" || seg == "ipfs" || strings.Contains(seg, ".") || strings.Contains(seg, ":") {
			continue
		}
		if c, err := cid.Decode(seg); err == nil {
			ref.CID = c
			break
		}
	}
	return ref
}

// CIDString is the CID in its canonical string form, or "" when none was found.
func (r Reference) CIDString() string {
	if !r.CID.Defined() {
		return ""
	}
	return r.CID.String()
}
