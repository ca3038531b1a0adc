package ui

import "context"

// PreferenceStore persists the dark-mode flag.
type PreferenceStore interface {
	LoadPreference(ctx context.Context) bool
	SavePreference(ctx context.Context, dark bool) error
}

// Toggle flips the display preference, applies it and persists it.
type Toggle struct {
	store PreferenceStore
	apply func(dark bool)
	dark  bool
}

// NewToggle uses SetTheme when apply is nil.
func NewToggle(store PreferenceStore, apply func(dark bool)) *Toggle {
	if apply == nil {
		apply = SetTheme
	}
	return &Toggle{store: store, apply: apply}
}

// ApplyOnLoad applies the persisted value without writing it back.
func (t *Toggle) ApplyOnLoad(ctx context.Context) bool {
	t.dark = t.store.LoadPreference(ctx)
	t.apply(t.dark)
	return t.dark
}

// Toggle reads the current value, flips it, applies and saves.
func (t *Toggle) Toggle(ctx context.Context) (bool, error) {
	dark := !t.store.LoadPreference(ctx)
	t.dark = dark
	t.apply(dark)
	if err := t.store.SavePreference(ctx, dark); err != nil {
		return dark, err
	}
	return dark, nil
}

func (t *Toggle) Dark() bool { return t.dark }
