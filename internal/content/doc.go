// Package content generates the marketing documents a packaged episode
// carries: episode description, ranked title options, and social copy for
// both the show and the guest.
//
// Generation is deterministic and template driven. Each titling strategy
// produces exactly one candidate; research findings sharpen the angles when
// available but are never required.
package content
