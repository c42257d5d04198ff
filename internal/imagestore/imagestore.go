// Package imagestore abstracts the external image hosting used for item photos.
package imagestore

import (
	"context"
	"net/url"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/pkg/errors"
)

type (
	// An AssetResult reports the outcome of a single asset deletion.
	AssetResult struct {
		ID      string `json:"id"`
		Success bool   `json:"success"`
		Err     string `json:"error,omitempty"`
	}

	// A Store can resolve and delete hosted image assets.
	Store interface {
		// ExtractAssetID parses a delivery URL into a deletable asset
		// identifier. It returns an empty string when the URL is not
		// recognized.
		ExtractAssetID(rawurl string) string
		// DeleteAssets deletes the backing assets for the given identifiers,
		// one result per identifier.
		DeleteAssets(ctx context.Context, ids []string) []AssetResult
	}
)

// ExtractAssetID parses a Cloudinary delivery URL into its public ID.
//
//	https://res.cloudinary.com/demo/image/upload/v1570979139/lostfound/backpack.jpg
//	-> lostfound/backpack
func ExtractAssetID(rawurl string) string {
	u, err := url.Parse(rawurl)
	if err != nil || u.Host == "" {
		return ""
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	upload := -1
	for i, s := range segments {
		if s == "upload" {
			upload = i
			break
		}
	}
	if upload < 0 || upload == len(segments)-1 {
		return ""
	}

	rest := segments[upload+1:]
	// Skip the optional version segment (v<digits>).
	if len(rest) > 1 && strings.HasPrefix(rest[0], "v") && isDigits(rest[0][1:]) {
		rest = rest[1:]
	}

	id := strings.Join(rest, "/")
	return strings.TrimSuffix(id, path.Ext(id))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Cloudinary is a Store backed by the Cloudinary upload API.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinary returns a Store configured from a cloudinary:// URL.
func NewCloudinary(rawurl string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(rawurl)
	if err != nil {
		return nil, errors.Wrap(err, "could not configure cloudinary")
	}
	return &Cloudinary{cld: cld}, nil
}

// ExtractAssetID parses a delivery URL into its public ID.
func (s *Cloudinary) ExtractAssetID(rawurl string) string {
	return ExtractAssetID(rawurl)
}

// DeleteAssets deletes the backing assets for the given identifiers.
func (s *Cloudinary) DeleteAssets(ctx context.Context, ids []string) []AssetResult {
	results := make([]AssetResult, 0, len(ids))

	for _, id := range ids {
		resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: id})
		switch {
		case err != nil:
			results = append(results, AssetResult{ID: id, Err: err.Error()})
		case resp.Result != "ok" && resp.Result != "not found":
			results = append(results, AssetResult{ID: id, Err: resp.Result})
		default:
			results = append(results, AssetResult{ID: id, Success: true})
		}
	}
	return results
}
