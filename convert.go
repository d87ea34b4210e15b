package htmlmd

import (
	"context"
	"fmt"
	"time"

	"github.com/yaklabco/htmlmd/internal/logging"
	htmlparser "github.com/yaklabco/htmlmd/pkg/parser/html"
	"github.com/yaklabco/htmlmd/pkg/serializer"
	"github.com/yaklabco/htmlmd/pkg/transform"
)

// Convert converts html to GitHub Flavored Markdown.
//
// On failure the returned string is empty and the error is one of
// *UnsupportedOptionError, *DepthExceededError or *InternalError.
func Convert(html string, opts Options) (string, error) {
	return ConvertContext(context.Background(), html, opts)
}

// ConvertContext is Convert with a context carrying the logger used for
// debug output. Conversion does not block, so the context is never polled
// for cancellation.
func ConvertContext(ctx context.Context, html string, opts Options) (markdown string, err error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}

	logger := logging.FromContext(ctx)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			markdown = ""
			err = &InternalError{Message: fmt.Sprintf("conversion panicked: %v", r)}
		}
	}()

	tree, err := htmlparser.Parse(html, htmlparser.Options{
		Fragment: opts.Fragment,
		MaxDepth: opts.MaxDepth,
	})
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc, err := transform.Transform(tree, transform.Options{
		Rule:             opts.Rule,
		AutolinkHeadings: opts.EnableAutolinkHeadings,
		DetectLanguage:   opts.DetectLanguage,
		MaxDepth:         opts.MaxDepth,
	})
	if err != nil {
		return "", fmt.Errorf("transform: %w", err)
	}

	markdown = serializer.Serialize(doc)

	logger.Debug("converted html",
		logging.FieldInputBytes, len(html),
		logging.FieldOutputBytes, len(markdown),
		logging.FieldDuration, time.Since(start),
	)

	return markdown, nil
}
