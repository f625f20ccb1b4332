package fetch

import (
	"context"
	"log/slog"
	"unicode/utf8"
)

// MaxJobDescriptionLength caps the text taken from a posting, in runes.
const MaxJobDescriptionLength = 20000

// JobFetcher loads the description text of a job posting URL.
type JobFetcher struct {
	options *Options
	render  Renderer
}

// NewJobFetcher creates a JobFetcher. A nil render disables the headless
// browser fallback.
func NewJobFetcher(opts *Options, render Renderer) *JobFetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JobFetcher{options: opts, render: render}
}

// FetchJobDescription downloads url and extracts the posting text using
// platform-specific selectors. Pages that yield little text are rendered in a
// headless browser when one is configured.
func (f *JobFetcher) FetchJobDescription(ctx context.Context, url string) (string, error) {
	result, err := URL(ctx, url, f.options)
	if err != nil {
		return "", err
	}

	platform := DetectPlatform(url)
	text, err := extractJobText(result.HTML, platform)
	if err != nil {
		return "", &Error{URL: url, Message: "failed to parse page", Cause: err}
	}

	if f.render != nil && ShouldUseBrowser(text) {
		slog.InfoContext(ctx, "job posting text too short, using headless browser",
			"url", url, "platform", platform, "chars", len(text))
		html, err := f.render(ctx, url)
		if err != nil {
			slog.WarnContext(ctx, "browser fallback failed", "url", url, "error", err)
		} else if rendered, err := extractJobText(html, platform); err == nil && len(rendered) > len(text) {
			text = rendered
		}
	}

	if text == "" {
		return "", &Error{URL: url, Message: "no job description text found"}
	}
	return truncateRunes(text, MaxJobDescriptionLength), nil
}

func extractJobText(html string, platform Platform) (string, error) {
	return ExtractMainText(html, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...)
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
