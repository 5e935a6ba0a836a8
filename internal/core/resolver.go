package core

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/namastexlabs/genie/pkg/models"
)

// refPattern matches @path context reference tokens embedded in markdown,
// e.g. "@genie/wishes/backlog/w1/wish.md". The path part stops at whitespace
// and common markdown punctuation.
var refPattern = regexp.MustCompile(`@[A-Za-z0-9_./-]+`)

// RefResolver turns an @relative/path token into the raw content of the file
// it points at, resolved against the repository root. It does not interpret
// markdown structure; callers decide how to embed or display the content.
type RefResolver interface {
	Resolve(ref string) ([]byte, error)
	ResolveAll(ref string) (map[string][]byte, error)
}

type refResolver struct {
	root string
}

// NewRefResolver creates a RefResolver rooted at root.
func NewRefResolver(root string) RefResolver {
	return &refResolver{root: root}
}

// Resolve strips the leading @, joins the path with the repository root, and
// returns the exact byte content of the target file. A missing target fails
// with ErrDanglingReference.
func (r *refResolver) Resolve(ref string) ([]byte, error) {
	rel, err := cleanRef(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(r.root, filepath.FromSlash(rel)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("resolving %s: %w", ref, models.ErrDanglingReference)
		}
		return nil, fmt.Errorf("resolving %s: %w", ref, err)
	}
	return data, nil
}

// ResolveAll resolves ref and, recursively, every @path token found inside
// the resolved content, returning a map keyed by reference. A visited set
// guards against reference cycles; revisited references are simply not
// resolved twice.
func (r *refResolver) ResolveAll(ref string) (map[string][]byte, error) {
	resolved := make(map[string][]byte)
	if err := r.resolveChain(ref, resolved); err != nil {
		return nil, err
	}
	return resolved, nil
}

func (r *refResolver) resolveChain(ref string, resolved map[string][]byte) error {
	rel, err := cleanRef(ref)
	if err != nil {
		return err
	}
	key := "@" + rel
	if _, seen := resolved[key]; seen {
		return nil
	}

	data, err := r.Resolve(ref)
	if err != nil {
		return err
	}
	resolved[key] = data

	for _, nested := range refPattern.FindAllString(string(data), -1) {
		if err := r.resolveChain(nested, resolved); err != nil {
			return err
		}
	}
	return nil
}

// cleanRef validates the token shape and returns the slash-form relative
// path. References must stay inside the repository root.
func cleanRef(ref string) (string, error) {
	if !strings.HasPrefix(ref, "@") {
		return "", fmt.Errorf("resolving %q: reference must start with @", ref)
	}
	rel := strings.TrimPrefix(ref, "@")
	if rel == "" {
		return "", fmt.Errorf("resolving %q: empty reference path", ref)
	}
	cleaned := filepath.ToSlash(filepath.Clean(rel))
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") || filepath.IsAbs(rel) {
		return "", fmt.Errorf("resolving %q: reference escapes the repository root", ref)
	}
	return cleaned, nil
}
