package parser

import (
	"encoding/xml"
	"os"
	"path/filepath"

	"github.com/scenekit/mitsuba-go/prop"
	"github.com/scenekit/mitsuba-go/scene"
)

// recognizedButIgnored lists children of the root <scene> element
// (spec.md §6 "Scene-description XML") that are recognized but out of
// scope for this parser (spec.md §1 "Deliberately
// out of scope"); they are consumed and discarded without the non-fatal
// logging an actually-unrecognized tag gets.
var recognizedButIgnored = map[string]bool{
	"integrator": true,
	"sampler":    true,
	"ply":        true,
	"scene":      true,
}

// ParseFile opens path and parses it into a new Scene (spec.md §4.5). It
// is the entry point cmd/mitsubaconv drives.
func ParseFile(path string, strict bool) (*scene.Scene, error) {
	c := NewContext(strict)
	if err := c.parseFileInto(path); err != nil {
		return nil, err
	}
	return c.Scene, nil
}

// parseFileInto opens path, walks its root <scene> element, and feeds
// every recognized top-level child into the shared Scene. It is also the
// recursion point <include> uses, reusing c's Scene and Defaults table
// (spec.md §4.5 "the SAME scene and defaults table").
func (c *Context) parseFileInto(path string) error {
	abs, aerr := filepath.Abs(path)
	if aerr != nil {
		abs = path
	}
	for _, seen := range c.includeStack {
		if seen == abs {
			return scene.Errf(scene.Io, "include cycle detected at %s", path)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return scene.Wrap(scene.Io, path, err)
	}
	defer f.Close()

	savedP := c.P

	p := prop.New(f)
	p.Strict = c.Strict
	if savedP != nil {
		// Shared by reference, not copied: mutations this (possibly
		// nested) parse makes are visible to the parent once it resumes
		// (spec.md §4.5/§9 "a child include mutates the parent's
		// defaults table").
		p.Defaults = savedP.Defaults
	}
	c.P = p
	c.includeStack = append(c.includeStack, abs)

	root, rerr := p.RootElement()
	if rerr != nil {
		c.P = savedP
		return scene.Wrap(scene.XmlTokenizer, path, rerr)
	}

	baseDir := filepath.Dir(abs)
	walkErr := c.walkSceneBody(root, baseDir)

	c.includeStack = c.includeStack[:len(c.includeStack)-1]
	c.P = savedP

	return walkErr
}

// walkSceneBody iterates root's direct children once, dispatching each to
// its entity parser (spec.md §4.5 "top-level event loop").
func (c *Context) walkSceneBody(root xml.StartElement, baseDir string) error {
	for {
		child, ok, err := c.P.NextChild(root.Name)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		switch child.Name.Local {
		case "bsdf":
			if _, perr := c.parseBSDF(child); perr != nil {
				return perr
			}
		case "texture":
			if _, perr := c.parseTexture(child); perr != nil {
				return perr
			}
		case "medium":
			if _, perr := c.parseMedium(child); perr != nil {
				return perr
			}
		case "sensor":
			if _, perr := c.parseSensor(child); perr != nil {
				return perr
			}
		case "emitter":
			if _, perr := c.parseEmitter(child); perr != nil {
				return perr
			}
		case "shape":
			if _, perr := c.parseShape(child); perr != nil {
				return perr
			}
		case "default":
			if derr := c.P.CollectDefault(child); derr != nil {
				return derr
			}
		case "include":
			if ierr := c.handleInclude(child, baseDir); ierr != nil {
				return ierr
			}
		default:
			if recognizedButIgnored[child.Name.Local] {
				if serr := c.P.Skip(child); serr != nil {
					return serr
				}
				continue
			}
			c.Log.Info("unrecognized top-level element <%s>, skipping", child.Name.Local)
			if serr := c.P.Skip(child); serr != nil {
				return serr
			}
		}
	}
}

// handleInclude resolves filename relative to baseDir and recurses
// (spec.md §4.5 "include filename=... resolves relative to the current
// file's directory"). The target failing to open is fatal.
func (c *Context) handleInclude(start xml.StartElement, baseDir string) error {
	filename, ferr := c.P.RequireAttr(start, "filename")
	if ferr != nil {
		return ferr
	}
	target := filename
	if !filepath.IsAbs(target) {
		target = filepath.Join(baseDir, filename)
	}

	if serr := c.P.Skip(start); serr != nil {
		return serr
	}
	return c.parseFileInto(target)
}
