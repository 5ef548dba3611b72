package vrchat

import (
	"strings"

	"github.com/vrcshowcase/showcase-backend/internal/domain"
	"github.com/vrcshowcase/showcase-backend/internal/provider"
)

// apiWorld mirrors the subset of the VRChat world response the engine uses.
type apiWorld struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	AuthorName    string            `json:"authorName"`
	Description   string            `json:"description"`
	ImageURL      string            `json:"imageUrl"`
	Capacity      int               `json:"capacity"`
	Tags          []string          `json:"tags"`
	UnityPackages []apiUnityPackage `json:"unityPackages"`
}

type apiUnityPackage struct {
	Platform string `json:"platform"`
}

func (w apiWorld) toResult(worldID string) *provider.WorldResult {
	id := w.ID
	if id == "" {
		id = worldID
	}
	return &provider.WorldResult{
		WorldID:     id,
		Name:        w.Name,
		AuthorName:  w.AuthorName,
		Description: w.Description,
		ImageURL:    w.ImageURL,
		Capacity:    w.Capacity,
		Platform:    derivePlatform(w),
	}
}

// derivePlatform determines platform support from unityPackages, falling back
// to world tags. Worlds without any platform signal default to PC Only since
// that is the overwhelming majority.
func derivePlatform(w apiWorld) string {
	var standalone, android bool
	for _, pkg := range w.UnityPackages {
		p := strings.ToLower(pkg.Platform)
		if strings.Contains(p, "standalone") {
			standalone = true
		}
		if strings.Contains(p, "android") {
			android = true
		}
	}

	switch {
	case standalone && android:
		return domain.PlatformCross
	case standalone:
		return domain.PlatformPC
	case android:
		return domain.PlatformQuest
	}

	var questTag, pcTag bool
	for _, tag := range w.Tags {
		t := strings.ToLower(tag)
		if strings.Contains(t, "quest") || strings.Contains(t, "android") || strings.Contains(t, "mobile") {
			questTag = true
		}
		if strings.Contains(t, "pc") || strings.Contains(t, "windows") {
			pcTag = true
		}
	}

	switch {
	case questTag && pcTag:
		return domain.PlatformCross
	case questTag:
		return domain.PlatformQuest
	}
	return domain.PlatformPC
}
