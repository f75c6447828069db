package reader

// suppressionCatalog lists the page regions hidden in reader mode, in the
// order they are processed. Duplicates are harmless: an element is recorded
// in the ledger only once per cycle.
var suppressionCatalog = []string{
	"#masthead-container",
	"ytd-topbar-renderer",
	"#secondary",
	"ytd-comments",
	"ytd-merch-shelf-renderer",
	"ytd-promoted-sparkles-web-renderer",
	"ytd-ad-slot-renderer",
	"ytd-player-legacy-desktop-watch-ads-renderer",
	"ytd-action-panel-renderer",
	"ytd-info-panel-container",
	"ytd-watch-metadata",
	"ytd-slim-video-metadata-renderer",
	"ytd-video-owner-renderer",
	"ytd-video-primary-info-renderer",
	"ytd-two-column-watch-next-results",
	"#related",
	"#panels",
	"#chat",
	"#menu-container",
	"#actions",
	"#top-row.ytd-watch-metadata",
	"#bottom-row.ytd-watch-metadata",
	".ytp-chrome-bottom",
	".ytp-chrome-top",
	"ytd-popup-container",
	"yt-confirm-dialog-renderer",
	"ytd-engagement-panel-section-list-renderer",
	"#contents.ytd-rich-grid-renderer",
	"#page-manager.ytd-app",
	"ytd-playlist-panel-renderer",
	"ytd-searchbox",
	"ytd-compact-radio-renderer",
	"ytd-compact-playlist-renderer",
	"ytd-comments-section-renderer",
	"yt-chip-cloud-renderer",
	"ytd-guide-renderer",
	"#guide-button",
	"#yt-alert",
	"#yt-player-legacy",
	"#yt-masthead",
	"#yt-url-endpoint",
	"#yt-app-promo",
	"#yt-related",
	"#yt-sidebar",
	"#yt-navigation-panel",
	"#yt-app-tray",
	"#yt-page-skeleton",
	"#player-full-bleed-container",
	"#content-container",
	"#chips-wrapper",
	"#info-contents",
	"#expander",
	"#header",
	"#sections",
	"#primary-inner",
	"#meta",
	"#info",
	"#panels",
	"#chat",
	"#menu",
	"#actions",
	"#top-row",
	"#bottom-row",
	"#comments",
	"#secondary",
	"#primary",
	"#player-ads",
	"#player-ads-container",
}

// Catalog returns a copy of the suppression selectors.
func Catalog() []string {
	out := make([]string, len(suppressionCatalog))
	copy(out, suppressionCatalog)
	return out
}

// Player-safety markers. An element inside any of these is never hidden
// unless it is one of the exempt overlays.
var (
	protectedIDs         = []string{"player", "player-container", "primary"}
	protectedClasses     = []string{"html5-video-player", "ytd-watch-flexy"}
	exemptOverlayClasses = []string{"ytp-chrome-bottom", "ytp-chrome-top"}
)

// Ids of the injected reader UI.
const (
	containerID     = "yt-reader-elements-container"
	summaryBoxID    = "yt-summary-box"
	disableButtonID = "yt-reader-disable-button"

	// markerAttr tags every element this engine hid; the value keys the ledger.
	markerAttr = "data-ytreader-id"

	fallbackSummary   = "No summary available."
	disableButtonText = "Disable Reader Mode"
)
