package main

import (
	"context"
	"strings"
)

// settingsResolver reads and writes the flat settings table with per-user
// scoping. A scoped key ("{user}::{key}") shadows the bare global key, so the
// app can ship shared defaults that any user overrides non-destructively: new
// users inherit the global value until their first save, and one user's save
// never touches what everyone else falls back to.
type settingsResolver struct {
	store tableStore
}

// scopedKey builds the per-user key. An empty userID addresses the global row.
func scopedKey(userID, key string) string {
	if userID == "" {
		return key
	}
	return userID + "::" + key
}

// get resolves key for userID: the scoped row wins when present and
// non-empty; otherwise, when fallbackGlobal is set, the bare global row; and
// finally def. Values come back as raw strings — parsing is the caller's job.
// Absence is not an error; a storage failure returns def alongside the error.
func (s settingsResolver) get(ctx context.Context, key, def, userID string, fallbackGlobal bool) (string, error) {
	rows, err := s.store.ListRows(ctx, tabSettings)
	if err != nil {
		return def, err
	}

	lookup := func(k string) (string, bool) {
		for _, r := range rows {
			if strings.TrimSpace(r["key"]) == k && r["value"] != "" {
				return r["value"], true
			}
		}
		return "", false
	}

	if v, ok := lookup(scopedKey(userID, key)); ok {
		return v, nil
	}
	if userID != "" && fallbackGlobal {
		if v, ok := lookup(key); ok {
			return v, nil
		}
	}
	return def, nil
}

// set upserts the scoped row only — the bare global key is never written when
// a user is given, so shared defaults stay intact.
func (s settingsResolver) set(ctx context.Context, key, value, userID string) error {
	sk := scopedKey(userID, key)

	rows, err := s.store.ListRows(ctx, tabSettings)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if strings.TrimSpace(r["key"]) == sk {
			return s.store.UpdateRow(ctx, tabSettings, toID(r["id"]), row{"value": value})
		}
	}
	return s.store.AppendRow(ctx, tabSettings, row{
		"id":    formatID(newRowID()),
		"key":   sk,
		"value": value,
	})
}
