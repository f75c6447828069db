package reader

import "github.com/hyperifyio/ytreader/internal/dom"

// isProtected reports whether el must stay visible because it is the video
// player, sits inside one of the player containers, or wraps the player. The
// broad catalog matches generic wrappers, and without this check reader mode
// would hide the video itself.
func isProtected(el dom.Element) bool {
	if isPlayerRoot(el) {
		return true
	}
	if isExemptOverlay(el) {
		return false
	}
	return dom.Closest(el, isPlayerContainer) != nil || el.Contains(playerRootSelector)
}

const playerRootSelector = "#player, .html5-video-player"

func isPlayerRoot(el dom.Element) bool {
	return el.ID() == "player" || el.HasClass("html5-video-player")
}

func isPlayerContainer(el dom.Element) bool {
	id := el.ID()
	for _, p := range protectedIDs {
		if id == p {
			return true
		}
	}
	for _, c := range protectedClasses {
		if el.HasClass(c) {
			return true
		}
	}
	return false
}

// isExemptOverlay matches the player chrome bars, which are hidden even
// inside a protected subtree.
func isExemptOverlay(el dom.Element) bool {
	for _, c := range exemptOverlayClasses {
		if el.HasClass(c) {
			return true
		}
	}
	return false
}
