package scrape

import (
	"net/http"
	"strings"
)

// BlockType describes why a fetched page is unusable.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
	BlockLoginWall  BlockType = "login_wall"
)

// jsShellMaxBytes bounds the body size of pages checked for a JS-only shell.
const jsShellMaxBytes = 2000

// bodySignature marks a block when all of its markers appear in a body.
type bodySignature struct {
	kind    BlockType
	markers []string
}

// bodySignatures are checked in order; the first match wins.
var bodySignatures = []bodySignature{
	{BlockCloudflare, []string{"checking your browser"}},
	{BlockCloudflare, []string{"cf-browser-verification"}},
	{BlockCloudflare, []string{"cloudflare", "challenge"}},
	{BlockCaptcha, []string{"captcha"}},
}

// loginWallIndicators appear on pages that hide content behind sign-in.
// Generic "sign in" and "join to see" prompts also appear on public
// LinkedIn pages that carry full content, so they do not count.
var loginWallIndicators = []string{
	"authwall",
	"login_required",
	"please log in",
	"sign up to view",
	"sign in to view",
}

// DetectBlock inspects a response and its body for anti-bot challenges,
// captchas, login walls and script-only shells.
func DetectBlock(resp *http.Response, body []byte) (bool, BlockType) {
	if resp == nil {
		return false, BlockNone
	}
	if isCloudflareDenial(resp) {
		return true, BlockCloudflare
	}

	lower := strings.ToLower(string(body))
	for _, sig := range bodySignatures {
		if containsAll(lower, sig.markers) {
			return true, sig.kind
		}
	}
	if hasLoginIndicator(lower) {
		return true, BlockLoginWall
	}
	if len(body) < jsShellMaxBytes && isJSShell(lower) {
		return true, BlockJSShell
	}
	return false, BlockNone
}

// challengeMaxBytes bounds rendered text checked for challenge markers.
// Longer pages that merely mention them are real content.
const challengeMaxBytes = 1000

// DetectTextBlock checks already rendered page text, such as a reader
// response, for an anti-bot challenge.
func DetectTextBlock(text string) BlockType {
	if len(text) >= challengeMaxBytes {
		return BlockNone
	}
	lower := strings.ToLower(text)
	for _, sig := range bodySignatures {
		if containsAll(lower, sig.markers) {
			return sig.kind
		}
	}
	if strings.Contains(lower, "enable javascript") || strings.Contains(lower, "just a moment") {
		return BlockJSShell
	}
	return BlockNone
}

func isCloudflareDenial(resp *http.Response) bool {
	if resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusServiceUnavailable {
		return false
	}
	h := resp.Header
	return h.Get("cf-ray") != "" || h.Get("cf-cache-status") != "" || h.Get("server") == "cloudflare"
}

func isJSShell(lower string) bool {
	if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
		return true
	}
	return strings.Contains(lower, `meta http-equiv="refresh"`)
}

// IsLoginWall reports whether page text looks like an authentication wall
// rather than content. Text under 100 bytes counts as a wall.
func IsLoginWall(text string) bool {
	if len(strings.TrimSpace(text)) < 100 {
		return true
	}
	return hasLoginIndicator(strings.ToLower(text))
}

func hasLoginIndicator(lower string) bool {
	for _, indicator := range loginWallIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

func containsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
