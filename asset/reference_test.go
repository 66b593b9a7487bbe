package asset

import "testing"

func TestParseReference(t *testing.T) {
	const v0 = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"
	const v1 = "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"

	cases := []struct {
		raw  string
		name string
		cid  string
	}{
		{"ipfs://" + v0 + "/12.mp4", "12.mp4", v0},
		{"https://gateway.pinata.cloud/ipfs/" + v1 + "/clip.mp4", "clip.mp4", v1},
		{"ipfs://" + v0, v0, v0},
		{"video.mp4", "video.mp4", ""},
		{"https://example.com/media/", "", ""},
	}
	for _, c := range cases {
		ref := ParseReference(c.raw)
		if ref.Name != c.name {
			t.Errorf("ParseReference(%q).Name = %q, want %q", c.raw, ref.Name, c.name)
		}
		if got := ref.CIDString(); got != c.cid {
			t.Errorf("ParseReference(%q) cid = %q, want %q", c.raw, got, c.cid)
		}
	}
}
