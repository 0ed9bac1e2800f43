package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/mbtassist/pkg/adapters/file"
	"github.com/aretw0/mbtassist/pkg/project"
)

// loadDocument resolves ref to a project document: an existing .json/.yaml
// file is read directly, anything else is looked up in the store.
func (a *app) loadDocument(ctx context.Context, ref string) (*project.Document, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		doc, err := file.ReadFile(ref)
		if err != nil {
			return nil, err
		}
		return doc, nil
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	doc, err := a.store.Load(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to load project %q: %w", ref, err)
	}
	return doc, nil
}
