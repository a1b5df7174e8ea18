package service

import "errors"

// Error classes of the generation pipeline. Callers match them with errors.Is; the wrapped
// message is meant for the person who has to fix the input or the template.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrTemplateMissing   = errors.New("template missing")
	ErrTemplateCorrupt   = errors.New("template corrupt")
	ErrTemplateSyntax    = errors.New("template syntax error")
	ErrRender            = errors.New("render failed")
	ErrUnsupportedExport = errors.New("unsupported export")
	ErrDelivery          = errors.New("delivery failed")
	ErrMailNotConfigured = errors.New("mail not configured")
	ErrInvalidFileName   = errors.New("invalid file name")
)
